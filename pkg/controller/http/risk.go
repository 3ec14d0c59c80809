package http

import (
	"net/http"

	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/go-chi/chi/v5"
)

func caseIDParam(r *http.Request) types.CaseID {
	return types.CaseID(chi.URLParam(r, "caseID"))
}

func (s *Server) computeRisk(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.uc.Risk.Compute(r.Context(), actorFromContext(r.Context()), caseIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toSnapshotResponse(snapshot))
}

func (s *Server) latestRisk(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.uc.Risk.Latest(r.Context(), actorFromContext(r.Context()), caseIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSnapshotResponse(snapshot))
}

func (s *Server) riskHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.uc.Risk.History(r.Context(), actorFromContext(r.Context()), caseIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := snapshotListResponse{Snapshots: make([]snapshotResponse, len(history))}
	for i, snapshot := range history {
		resp.Snapshots[i] = toSnapshotResponse(snapshot)
	}
	writeJSON(w, r, http.StatusOK, resp)
}
