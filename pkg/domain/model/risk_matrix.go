package model

import (
	"bytes"
	"encoding/json"
	"io"
	"math"

	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultDimensionMultiplier applies to dimensions without an explicit multiplier
const DefaultDimensionMultiplier = 1.0

// HardRule forces RED once an indicator is tagged at or above AtOrAbove
type HardRule struct {
	AtOrAbove int    `json:"atOrAbove"`
	Label     string `json:"label"`
}

// Indicator is a named, weighted risk signal belonging to a dimension
type Indicator struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Dimension         string    `json:"dimension"`
	Weight            float64   `json:"weight"`
	PresentAtSeverity int       `json:"presentAtSeverity"`
	HardRule          *HardRule `json:"hardRule,omitempty"`
}

// MatrixMeta holds presentation flags of a configuration
type MatrixMeta struct {
	SupportOnly bool `json:"supportOnly"`
}

// RiskMatrix is the typed body of a tenant's risk matrix configuration.
// The JSON field names are the exchange format and must stay stable.
type RiskMatrix struct {
	GreenMax                     float64            `json:"greenMax"`
	YellowMax                    float64            `json:"yellowMax"`
	DimensionMultiplier          map[string]float64 `json:"dimensionMultiplier"`
	MultiDimensionMinForRed      int                `json:"multiDimensionMinForRed"`
	VolumeMinIndicatorsForYellow int                `json:"volumeMinIndicatorsForYellow"`
	ProtectiveCapMaxReduction    float64            `json:"protectiveCapMaxReduction"`
	Indicators                   []Indicator        `json:"indicators"`
	Meta                         MatrixMeta         `json:"meta"`
}

// ParseRiskMatrix decodes and validates a configuration document.
// Unknown fields are rejected so that typos do not silently fall back to zero values.
func ParseRiskMatrix(data []byte) (*RiskMatrix, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var m RiskMatrix
	if err := dec.Decode(&m); err != nil {
		return nil, goerr.Wrap(ErrInvalidMatrix, "failed to decode risk matrix", goerr.V("cause", err.Error()))
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, goerr.Wrap(ErrInvalidMatrix, "trailing data after risk matrix document")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural consistency of the matrix
func (m *RiskMatrix) Validate() error {
	if !isFinite(m.GreenMax) || !isFinite(m.YellowMax) {
		return goerr.Wrap(ErrInvalidMatrix, "thresholds must be finite numbers")
	}
	if m.GreenMax >= m.YellowMax {
		return goerr.Wrap(ErrInvalidMatrix, "greenMax must be less than yellowMax",
			goerr.V("greenMax", m.GreenMax), goerr.V("yellowMax", m.YellowMax))
	}
	if m.MultiDimensionMinForRed < 1 {
		return goerr.Wrap(ErrInvalidMatrix, "multiDimensionMinForRed must be at least 1",
			goerr.V("multiDimensionMinForRed", m.MultiDimensionMinForRed))
	}
	if m.VolumeMinIndicatorsForYellow < 1 {
		return goerr.Wrap(ErrInvalidMatrix, "volumeMinIndicatorsForYellow must be at least 1",
			goerr.V("volumeMinIndicatorsForYellow", m.VolumeMinIndicatorsForYellow))
	}
	if !isFinite(m.ProtectiveCapMaxReduction) || m.ProtectiveCapMaxReduction < 0 {
		return goerr.Wrap(ErrInvalidMatrix, "protectiveCapMaxReduction must be a non-negative number",
			goerr.V("protectiveCapMaxReduction", m.ProtectiveCapMaxReduction))
	}
	for dim, mul := range m.DimensionMultiplier {
		if !isFinite(mul) || mul < 0 {
			return goerr.Wrap(ErrInvalidMatrix, "dimension multiplier must be a non-negative number",
				goerr.V(DimensionKey, dim), goerr.V("multiplier", mul))
		}
	}

	seen := make(map[string]bool, len(m.Indicators))
	for i, ind := range m.Indicators {
		if ind.ID == "" {
			return goerr.Wrap(ErrInvalidMatrix, "indicator id is required", goerr.V("index", i))
		}
		if seen[ind.ID] {
			return goerr.Wrap(ErrInvalidMatrix, "duplicate indicator id", goerr.V(IndicatorIDKey, ind.ID))
		}
		seen[ind.ID] = true

		if ind.Dimension == "" {
			return goerr.Wrap(ErrInvalidMatrix, "indicator dimension is required", goerr.V(IndicatorIDKey, ind.ID))
		}
		if !isFinite(ind.Weight) || ind.Weight < 0 {
			return goerr.Wrap(ErrInvalidMatrix, "indicator weight must be a non-negative number",
				goerr.V(IndicatorIDKey, ind.ID), goerr.V("weight", ind.Weight))
		}
		if !types.IsThresholdSeverity(ind.PresentAtSeverity) {
			return goerr.Wrap(ErrInvalidMatrix, "presentAtSeverity must be between 1 and 3",
				goerr.V(IndicatorIDKey, ind.ID), goerr.V("presentAtSeverity", ind.PresentAtSeverity))
		}
		if ind.HardRule != nil {
			if !types.IsThresholdSeverity(ind.HardRule.AtOrAbove) {
				return goerr.Wrap(ErrInvalidMatrix, "hardRule.atOrAbove must be between 1 and 3",
					goerr.V(IndicatorIDKey, ind.ID), goerr.V("atOrAbove", ind.HardRule.AtOrAbove))
			}
			if ind.HardRule.Label == "" {
				return goerr.Wrap(ErrInvalidMatrix, "hardRule.label is required", goerr.V(IndicatorIDKey, ind.ID))
			}
		}
	}

	return nil
}

// Multiplier returns the weighting factor of a dimension, defaulting to 1.0
func (m *RiskMatrix) Multiplier(dimension string) float64 {
	if mul, ok := m.DimensionMultiplier[dimension]; ok {
		return mul
	}
	return DefaultDimensionMultiplier
}

// HasIndicator reports whether id is part of the catalog
func (m *RiskMatrix) HasIndicator(id string) bool {
	for _, ind := range m.Indicators {
		if ind.ID == id {
			return true
		}
	}
	return false
}

// Marshal encodes the matrix into its exchange format
func (m *RiskMatrix) Marshal() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode risk matrix")
	}
	return data, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
