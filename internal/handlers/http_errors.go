package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"subliBack/internal/models"
	"subliBack/internal/repositories"
)

// respondError maps service errors onto the HTTP error taxonomy: 404 for
// missing resources, 403 for ownership/role failures, 400 for validation,
// 401 for bad credentials. Anything unmapped is a 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrListingNotFound),
		errors.Is(err, repositories.ErrInquiryNotFound),
		errors.Is(err, repositories.ErrLeadNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrEmptyAdminNote),
		errors.Is(err, models.ErrNotRejected),
		errors.Is(err, models.ErrListingNotLive),
		errors.Is(err, models.ErrInvalidPaymentOp),
		errors.Is(err, models.ErrInvalidRole),
		errors.Is(err, models.ErrInvalidResetCode),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
