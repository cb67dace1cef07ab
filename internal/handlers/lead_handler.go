package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"subliBack/internal/models"
	"subliBack/internal/services"
)

type LeadHandler struct {
	Service *services.LeadService
}

// CreateLead is the public "get notified" form for cities without coverage.
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var lead models.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateLead(r.Context(), lead, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *LeadHandler) GetAllLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Service.GetAllLeads(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid lead id")
		return
	}
	if err := h.Service.DeleteLead(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
