package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
)

// severityFactors is the global severity weighting. It is deliberately a lookup table and not
// tenant configurable; the step from 2 to 3 is super-linear.
var severityFactors = [types.SeverityMax + 1]float64{0.0, 0.5, 1.0, 1.5}

// SeverityFactor returns the weighting factor of a (clamped) severity
func SeverityFactor(severity int) float64 {
	return severityFactors[types.ClampSeverity(severity)]
}

// Rationale lines
const (
	RationaleHardRule   = "RED: at least one hard rule triggered."
	RationaleDisclaimer = "Note: this classification is decision support, not an automatic decision."
	rationaleMultiDim   = "RED: multi-dimensional indicators (%d) ≥ threshold (%d)."
	rationaleGreen      = "GREEN: score %.1f ≤ greenMax %.1f."
	rationaleYellow     = "YELLOW: score %.1f ≤ yellowMax %.1f."
	rationaleRed        = "RED: score %.1f > yellowMax %.1f."
	rationaleVolume     = "YELLOW: %d indicators present ≥ volume threshold (%d), raised from GREEN."
	rationaleUnknownIDs = "Warning: unknown indicators not in the current catalog were ignored: %s."
)

const (
	// roundingEpsilon absorbs binary representation error so 0.05 rounds to 0.1
	roundingEpsilon = 1e-9

	// protectiveInput is the protective factor sum; no source feeds it yet
	protectiveInput = 0.0
)

// Result is the complete outcome of one evaluation
type Result struct {
	RawScore            float64
	ProtectiveReduction float64
	FinalScore          float64
	TrafficLight        types.TrafficLight
	Rationale           []string
	HardRuleHits        []model.HardRuleHit
	DimensionsPresent   []string
	PresentCount        int
	UnknownIndicators   []string
}

// Round1 rounds half up at one decimal place
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5+roundingEpsilon) / 10
}

// Evaluate scores an aggregation against a matrix. It is a pure function of its inputs.
// Only catalog indicators contribute; tagged ids outside the catalog are reported as a warning.
func Evaluate(m *model.RiskMatrix, agg Aggregation) *Result {
	var (
		raw          float64
		presentCount int
		dimensions   = make(map[string]struct{})
		hits         = []model.HardRuleHit{}
	)

	for _, ind := range m.Indicators {
		sev := types.ClampSeverity(agg.Severity(ind.ID))

		if sev > 0 && sev >= ind.PresentAtSeverity {
			presentCount++
			dimensions[ind.Dimension] = struct{}{}
		}

		if ind.HardRule != nil && sev >= ind.HardRule.AtOrAbove {
			hits = append(hits, model.HardRuleHit{IndicatorID: ind.ID, Label: ind.HardRule.Label})
		}

		raw += ind.Weight * SeverityFactor(sev) * m.Multiplier(ind.Dimension)
	}

	reduction := math.Min(protectiveInput, m.ProtectiveCapMaxReduction)
	final := math.Max(0, Round1(raw-reduction))

	dims := make([]string, 0, len(dimensions))
	for d := range dimensions {
		dims = append(dims, d)
	}
	sort.Strings(dims)

	res := &Result{
		RawScore:            Round1(raw),
		ProtectiveReduction: Round1(reduction),
		FinalScore:          final,
		Rationale:           []string{},
		HardRuleHits:        hits,
		DimensionsPresent:   dims,
		PresentCount:        presentCount,
		UnknownIndicators:   append([]string{}, agg.UnknownIndicators...),
	}

	// Order matters: hard rules, then breadth, then score, then volume.
	switch {
	case len(hits) > 0:
		res.TrafficLight = types.TrafficLightRed
		res.Rationale = append(res.Rationale, RationaleHardRule)

	case len(dims) >= m.MultiDimensionMinForRed:
		res.TrafficLight = types.TrafficLightRed
		res.Rationale = append(res.Rationale, fmt.Sprintf(rationaleMultiDim, len(dims), m.MultiDimensionMinForRed))

	case final <= m.GreenMax:
		res.TrafficLight = types.TrafficLightGreen
		res.Rationale = append(res.Rationale, fmt.Sprintf(rationaleGreen, final, m.GreenMax))

	case final <= m.YellowMax:
		res.TrafficLight = types.TrafficLightYellow
		res.Rationale = append(res.Rationale, fmt.Sprintf(rationaleYellow, final, m.YellowMax))

	default:
		res.TrafficLight = types.TrafficLightRed
		res.Rationale = append(res.Rationale, fmt.Sprintf(rationaleRed, final, m.YellowMax))
	}

	if res.TrafficLight == types.TrafficLightGreen && presentCount >= m.VolumeMinIndicatorsForYellow {
		res.TrafficLight = types.TrafficLightYellow
		res.Rationale = append(res.Rationale, fmt.Sprintf(rationaleVolume, presentCount, m.VolumeMinIndicatorsForYellow))
	}

	if m.Meta.SupportOnly {
		res.Rationale = append(res.Rationale, RationaleDisclaimer)
	}

	if len(agg.UnknownIndicators) > 0 {
		res.Rationale = append(res.Rationale, fmt.Sprintf(rationaleUnknownIDs, strings.Join(agg.UnknownIndicators, ", ")))
	}

	return res
}
