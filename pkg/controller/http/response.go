package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/caseguard/riskmatrix/pkg/domain/model"
	"github.com/caseguard/riskmatrix/pkg/usecase"
	"github.com/caseguard/riskmatrix/pkg/utils/errutil"
	"github.com/caseguard/riskmatrix/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

type snapshotResponse struct {
	ID                  string              `json:"id"`
	TenantID            string              `json:"tenantId"`
	CaseID              string              `json:"caseId"`
	ConfigRef           *string             `json:"configRef"`
	ConfigVersion       string              `json:"configVersion"`
	RawScore            float64             `json:"rawScore"`
	ProtectiveReduction float64             `json:"protectiveReduction"`
	FinalScore          float64             `json:"finalScore"`
	TrafficLight        string              `json:"trafficLight"`
	Rationale           []string            `json:"rationale"`
	HardRuleHits        []model.HardRuleHit `json:"hardRuleHits"`
	DimensionsPresent   []string            `json:"dimensionsPresent"`
	UnknownIndicators   []string            `json:"unknownIndicators"`
	CreatedAt           time.Time           `json:"createdAt"`
}

type snapshotListResponse struct {
	Snapshots []snapshotResponse `json:"snapshots"`
}

type configResponse struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenantId"`
	Version     string          `json:"version"`
	Active      bool            `json:"active"`
	Config      json.RawMessage `json:"config"`
	CreatedAt   time.Time       `json:"createdAt"`
	ActivatedAt *time.Time      `json:"activatedAt"`
}

type configListResponse struct {
	Configs []configResponse `json:"configs"`
}

type defaultMatrixResponse struct {
	Version string            `json:"version"`
	Config  *model.RiskMatrix `json:"config"`
}

type createConfigRequest struct {
	Version string          `json:"version"`
	Config  json.RawMessage `json:"config"`
}

func toSnapshotResponse(s *model.RiskSnapshot) snapshotResponse {
	resp := snapshotResponse{
		ID:                  s.ID.String(),
		TenantID:            s.TenantID.String(),
		CaseID:              s.CaseID.String(),
		ConfigVersion:       s.ConfigVersion,
		RawScore:            s.RawScore,
		ProtectiveReduction: s.ProtectiveReduction,
		FinalScore:          s.FinalScore,
		TrafficLight:        s.TrafficLight.String(),
		Rationale:           nonNil(s.Rationale),
		HardRuleHits:        s.HardRuleHits,
		DimensionsPresent:   nonNil(s.DimensionsPresent),
		UnknownIndicators:   nonNil(s.UnknownIndicators),
		CreatedAt:           s.CreatedAt,
	}
	if resp.HardRuleHits == nil {
		resp.HardRuleHits = []model.HardRuleHit{}
	}
	if s.ConfigRef != nil {
		ref := s.ConfigRef.String()
		resp.ConfigRef = &ref
	}
	return resp
}

func toConfigResponse(c *model.MatrixConfig) configResponse {
	return configResponse{
		ID:          c.ID.String(),
		TenantID:    c.TenantID.String(),
		Version:     c.Version,
		Active:      c.Active,
		Config:      json.RawMessage(c.Document),
		CreatedAt:   c.CreatedAt,
		ActivatedAt: c.ActivatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

// handleError maps use case error kinds to HTTP status codes
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrValidationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrAccessDenied):
		status = http.StatusForbidden
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}
