package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"subliBack/internal/models"
	"subliBack/internal/services"
)

type InquiryHandler struct {
	Service *services.InquiryService
}

// CreateInquiry is the public contact form on a listing detail page.
func (h *InquiryHandler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var inquiry models.Inquiry
	if err := json.NewDecoder(r.Body).Decode(&inquiry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if id, ok := idParam(r, "id"); ok {
		inquiry.ListingID = id
	}

	created, err := h.Service.CreateInquiry(r.Context(), inquiry, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetMyInquiries returns the inquiries addressed to the acting lister.
func (h *InquiryHandler) GetMyInquiries(w http.ResponseWriter, r *http.Request) {
	userID, _ := principalFromContext(r)

	inquiries, err := h.Service.GetInquiriesForOwner(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"inquiries": inquiries})
}

func (h *InquiryHandler) GetAllInquiries(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.Service.GetAllInquiries(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"inquiries": inquiries})
}

func (h *InquiryHandler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid inquiry id")
		return
	}
	if err := h.Service.DeleteInquiry(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
