package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"subliBack/internal/models"
	"subliBack/internal/services"
	"subliBack/utils"
)

const maxListingUploadBytes = 32 << 20

type ListingHandler struct {
	Service    *services.ListingService
	Storage    *utils.Storage
	SigningKey string
}

// GetPublicListings serves the anonymous browse query.
func (h *ListingHandler) GetPublicListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	priceFrom, _ := strconv.ParseFloat(q.Get("price_from"), 64)
	priceTo, _ := strconv.ParseFloat(q.Get("price_to"), 64)
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := models.ListingFilterRequest{
		City:      q.Get("city"),
		PriceFrom: priceFrom,
		PriceTo:   priceTo,
		Search:    q.Get("search"),
		Page:      page,
		Limit:     limit,
	}

	resp, err := h.Service.GetPublicListings(r.Context(), filter, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetListingByID serves the detail page. The route is public; a bearer token
// is honored when present so owners and admins can open hidden listings.
func (h *ListingHandler) GetListingByID(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	viewerID, viewerRole := h.viewerFromRequest(r)

	listing, err := h.Service.GetListingByID(r.Context(), id, viewerID, viewerRole, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

// CreateListing accepts a multipart form with listing fields plus optional
// image files, uploads the images and submits the listing for moderation.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := principalFromContext(r)

	if err := r.ParseMultipartForm(maxListingUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	listing, err := listingFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	listing.UserID = userID

	images, err := h.uploadImages(r)
	if err != nil {
		respondError(w, err)
		return
	}
	listing.Images = images

	created, err := h.Service.CreateListing(r.Context(), listing, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateListing is the owner edit; editing a rejected listing resubmits it.
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}
	userID, _ := principalFromContext(r)

	var upd models.ListingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateListing(r.Context(), userID, id, upd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ListingHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}
	userID, _ := principalFromContext(r)

	listing, err := h.Service.Resubmit(r.Context(), userID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}
	userID, role := principalFromContext(r)

	if err := h.Service.DeleteListing(r.Context(), userID, role, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) GetMyListings(w http.ResponseWriter, r *http.Request) {
	userID, _ := principalFromContext(r)

	listings, err := h.Service.GetListingsByOwner(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

// Admin moderation surface.

func (h *ListingHandler) GetAllListings(w http.ResponseWriter, r *http.Request) {
	filter := models.AdminListingFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}

	listings, err := h.Service.GetAllListings(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

func (h *ListingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := h.Service.Approve(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.rejectWithNote(w, r, false)
}

// RequestChanges rejects with a note and emails the owner.
func (h *ListingHandler) RequestChanges(w http.ResponseWriter, r *http.Request) {
	h.rejectWithNote(w, r, true)
}

func (h *ListingHandler) rejectWithNote(w http.ResponseWriter, r *http.Request, notify bool) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var req struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cmd := models.RejectCommand{ListingID: id, Note: req.Note}

	var (
		listing models.Listing
		err     error
	)
	if notify {
		listing, err = h.Service.RequestChanges(r.Context(), cmd)
	} else {
		listing, err = h.Service.Reject(r.Context(), cmd)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) AdminUpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	var upd models.ListingUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.AdminUpdateListing(r.Context(), id, upd)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func listingFromForm(r *http.Request) (models.Listing, error) {
	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price <= 0 {
		return models.Listing{}, fmt.Errorf("invalid price")
	}

	availableFrom, err := time.Parse("2006-01-02", r.FormValue("available_from"))
	if err != nil {
		return models.Listing{}, fmt.Errorf("invalid available_from date")
	}

	listing := models.Listing{
		Title:         r.FormValue("title"),
		City:          r.FormValue("city"),
		Price:         price,
		AvailableFrom: availableFrom,
		Description:   r.FormValue("description"),
	}

	if v := r.FormValue("neighborhood"); v != "" {
		listing.Neighborhood = &v
	}
	if v := r.FormValue("phone"); v != "" {
		listing.Phone = &v
	}
	if v := r.FormValue("available_to"); v != "" {
		availableTo, err := time.Parse("2006-01-02", v)
		if err != nil {
			return models.Listing{}, fmt.Errorf("invalid available_to date")
		}
		listing.AvailableTo = &availableTo
	}
	return listing, nil
}

func (h *ListingHandler) uploadImages(r *http.Request) ([]string, error) {
	images := []string{}
	if r.MultipartForm == nil || h.Storage == nil {
		return images, nil
	}

	for _, header := range r.MultipartForm.File["images"] {
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}

		name := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))
		url, err := h.Storage.UploadFile(data, name, "listings", header.Header.Get("Content-Type"))
		if err != nil {
			return nil, err
		}
		images = append(images, url)
	}
	return images, nil
}

// viewerFromRequest parses an optional bearer token on a public route.
func (h *ListingHandler) viewerFromRequest(r *http.Request) (int, string) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, ""
	}

	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(strings.TrimPrefix(authHeader, "Bearer "), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.SigningKey), nil
	})
	if err != nil || !token.Valid {
		return 0, ""
	}
	return int(claims.UserID), claims.Role
}
