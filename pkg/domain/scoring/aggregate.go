package scoring

import (
	"sort"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/domain/types"
)

// Aggregation is the per-indicator worst case of all tags on a case
type Aggregation struct {
	// Severities maps indicator id to the highest clamped severity tagged for it
	Severities map[string]int
	// UnknownIndicators lists tagged ids missing from the catalog, sorted and unique
	UnknownIndicators []string
}

// Aggregate reduces tags to one severity per indicator using the maximum.
// Tags are never summed or averaged: one severe observation dominates any number of mild ones.
func Aggregate(tags []model.Tag, catalog *model.RiskMatrix) Aggregation {
	agg := Aggregation{
		Severities:        make(map[string]int),
		UnknownIndicators: []string{},
	}

	unknown := make(map[string]struct{})
	for _, tag := range tags {
		if tag.IndicatorID == "" {
			continue
		}

		sev := types.ClampSeverity(tag.Severity)
		if cur, ok := agg.Severities[tag.IndicatorID]; !ok || sev > cur {
			agg.Severities[tag.IndicatorID] = sev
		}

		if catalog != nil && !catalog.HasIndicator(tag.IndicatorID) {
			unknown[tag.IndicatorID] = struct{}{}
		}
	}

	for id := range unknown {
		agg.UnknownIndicators = append(agg.UnknownIndicators, id)
	}
	sort.Strings(agg.UnknownIndicators)

	return agg
}

// Severity returns the aggregated severity of an indicator, 0 when untagged
func (a Aggregation) Severity(indicatorID string) int {
	return a.Severities[indicatorID]
}
