package model

import (
	"encoding/json"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// SerializationFailedMarker replaces a payload that could not be encoded
const SerializationFailedMarker = "__serialization_failed__"

// HardRuleHit records a triggered hard rule
type HardRuleHit struct {
	IndicatorID string `json:"indicatorId"`
	Label       string `json:"label"`
}

// RiskSnapshot is the immutable result of one evaluation of a case
type RiskSnapshot struct {
	ID                  types.SnapshotID
	TenantID            types.TenantID
	CaseID              types.CaseID
	ConfigRef           *types.ConfigID // nil when the built-in default was used
	ConfigVersion       string
	RawScore            float64
	ProtectiveReduction float64
	FinalScore          float64
	TrafficLight        types.TrafficLight
	Rationale           []string
	HardRuleHits        []HardRuleHit
	DimensionsPresent   []string
	UnknownIndicators   []string
	Payload             SnapshotPayload
	CreatedAt           time.Time
	Seq                 int64 // position in the case history, assigned by the store starting at 1
}

// SnapshotPayload is the serialized audit trail persisted with a snapshot
type SnapshotPayload struct {
	Rationale         string
	HardRuleHits      string
	DimensionsPresent string
}

// Encoder serializes one payload section
type Encoder func(v any) ([]byte, error)

// EncodeSnapshotPayload serializes each audit section independently.
// A section that fails is replaced by a placeholder and reported in the returned error;
// the payload itself is always usable.
func EncodeSnapshotPayload(enc Encoder, rationale []string, hits []HardRuleHit, dims []string) (SnapshotPayload, error) {
	if enc == nil {
		enc = json.Marshal
	}

	var failed []string
	encode := func(name string, v any, placeholder string) string {
		data, err := enc(v)
		if err != nil {
			failed = append(failed, name)
			return placeholder
		}
		return string(data)
	}

	payload := SnapshotPayload{
		Rationale:         encode("rationale", nonNilStrings(rationale), `["`+SerializationFailedMarker+`"]`),
		HardRuleHits:      encode("hardRuleHits", nonNilHits(hits), `[{"indicatorId":"`+SerializationFailedMarker+`","label":"`+SerializationFailedMarker+`"}]`),
		DimensionsPresent: encode("dimensionsPresent", nonNilStrings(dims), `["`+SerializationFailedMarker+`"]`),
	}

	if len(failed) > 0 {
		return payload, goerr.New("snapshot payload serialization degraded", goerr.V("sections", failed))
	}
	return payload, nil
}

// Decode restores the typed audit trail from the payload.
// Undecodable sections become a single marker element.
func (p SnapshotPayload) Decode() (rationale []string, hits []HardRuleHit, dims []string) {
	rationale = decodeStrings(p.Rationale)
	dims = decodeStrings(p.DimensionsPresent)

	hits = []HardRuleHit{}
	if p.HardRuleHits != "" {
		if err := json.Unmarshal([]byte(p.HardRuleHits), &hits); err != nil {
			hits = []HardRuleHit{{IndicatorID: SerializationFailedMarker, Label: SerializationFailedMarker}}
		}
	}
	return rationale, hits, dims
}

func decodeStrings(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{SerializationFailedMarker}
	}
	return out
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilHits(h []HardRuleHit) []HardRuleHit {
	if h == nil {
		return []HardRuleHit{}
	}
	return h
}

// Copy returns a deep copy of the snapshot
func (s *RiskSnapshot) Copy() *RiskSnapshot {
	copied := *s
	if s.ConfigRef != nil {
		ref := *s.ConfigRef
		copied.ConfigRef = &ref
	}
	copied.Rationale = append([]string(nil), s.Rationale...)
	copied.HardRuleHits = append([]HardRuleHit(nil), s.HardRuleHits...)
	copied.DimensionsPresent = append([]string(nil), s.DimensionsPresent...)
	copied.UnknownIndicators = append([]string(nil), s.UnknownIndicators...)
	return &copied
}
