package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/famwell-api/internal/application/mood"
	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// MoodHandler handles mood check-in and wellness-summary endpoints.
type MoodHandler struct {
	svc mood.Service
}

func NewMoodHandler(svc mood.Service) *MoodHandler {
	return &MoodHandler{svc: svc}
}

func (h *MoodHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.MoodCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry, err := h.svc.CheckIn(r.Context(), claims.IdentityID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List returns the subject's recent check-ins; {id} may be "me".
func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	subjectID := chi.URLParam(r, "id")
	if subjectID == "me" {
		subjectID = claims.IdentityID
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.svc.List(r.Context(), claims.IdentityID, subjectID, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *MoodHandler) Summary(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	subjectID := chi.URLParam(r, "id")
	if subjectID == "me" {
		subjectID = claims.IdentityID
	}
	sum, err := h.svc.Summary(r.Context(), claims.IdentityID, subjectID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
