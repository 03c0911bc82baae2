package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mohammed-shakir/biomart-gateway/internal/core/executor"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/mart"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/model"
	"github.com/mohammed-shakir/biomart-gateway/internal/core/resolve"
)

type entryDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func toEntryDTOs(in []model.Entry) []entryDTO {
	out := make([]entryDTO, len(in))
	for i, e := range in {
		out[i] = entryDTO{Name: e.Name, DisplayName: e.DisplayName}
	}
	return out
}

type databaseDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Visible     bool   `json:"visible"`
}

type datasetDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Mart        string `json:"mart,omitempty"`
}

type attributeDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

type optionDTO struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Value       string `json:"value,omitempty"`
}

type filterDTO struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Type        string      `json:"type,omitempty"`
	Kind        string      `json:"kind"`
	Operator    string      `json:"operator,omitempty"`
	Options     []optionDTO `json:"options,omitempty"`
}

type homologyDTO struct {
	Species []entryDTO `json:"species"`
	Fields  []string   `json:"fields"`
}

type errorDTO struct {
	Error      string     `json:"error"`
	Candidates []entryDTO `json:"candidates,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps resolution and upstream failures onto HTTP statuses:
// unknown names 404, ambiguous ones 409 with the candidates attached,
// bad filter values 400 and mart service trouble 502.
func writeError(logger *slog.Logger, w http.ResponseWriter, err error) {
	var nf *resolve.NotFoundError
	var amb *resolve.AmbiguousError
	var inv *mart.InvalidFilterValueError
	var svc *executor.ServiceError
	var tr *executor.TransportError

	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorDTO{Error: nf.Error()})
	case errors.As(err, &amb):
		writeJSON(w, http.StatusConflict, errorDTO{
			Error:      amb.Error(),
			Candidates: toEntryDTOs(amb.Candidates),
		})
	case errors.As(err, &inv):
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: inv.Error()})
	case errors.As(err, &svc):
		logger.Error("mart service rejected request", "err", err)
		writeJSON(w, http.StatusBadGateway, errorDTO{Error: svc.Error()})
	case errors.As(err, &tr):
		logger.Error("mart service unreachable", "err", err)
		writeJSON(w, http.StatusBadGateway, errorDTO{Error: "mart service unavailable"})
	default:
		logger.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorDTO{Error: "internal error"})
	}
}
