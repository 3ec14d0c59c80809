package http

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/caseguard/riskmatrix/pkg/domain/types"
	"github.com/caseguard/riskmatrix/pkg/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
)

func configIDParam(r *http.Request) types.ConfigID {
	return types.ConfigID(chi.URLParam(r, "configID"))
}

func (s *Server) createConfig(w http.ResponseWriter, r *http.Request) {
	var req createConfigRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrValidationFailed, "invalid request body", goerr.V("cause", err.Error())))
		return
	}

	document := bytes.TrimSpace(req.Config)
	if len(document) == 0 || bytes.Equal(document, []byte("null")) {
		handleError(w, r, goerr.Wrap(usecase.ErrValidationFailed, "config is required"))
		return
	}

	created, err := s.uc.Matrix.Create(r.Context(), actorFromContext(r.Context()), req.Version, document)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toConfigResponse(created))
}

func (s *Server) activateConfig(w http.ResponseWriter, r *http.Request) {
	activated, err := s.uc.Matrix.Activate(r.Context(), actorFromContext(r.Context()), configIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toConfigResponse(activated))
}

func (s *Server) listConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.uc.Matrix.History(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := configListResponse{Configs: make([]configResponse, len(configs))}
	for i, c := range configs {
		resp.Configs[i] = toConfigResponse(c)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) activeConfig(w http.ResponseWriter, r *http.Request) {
	active, err := s.uc.Matrix.GetActive(r.Context(), actorFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if active == nil {
		handleError(w, r, goerr.Wrap(usecase.ErrNotFound, "no active risk matrix config"))
		return
	}
	writeJSON(w, r, http.StatusOK, toConfigResponse(active))
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.uc.Matrix.Get(r.Context(), actorFromContext(r.Context()), configIDParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toConfigResponse(cfg))
}
