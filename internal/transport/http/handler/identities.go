package handler

import (
	"encoding/json"
	"net/http"

	identityapp "github.com/famwell-api/internal/application/identity"
	"github.com/famwell-api/internal/application/session"
	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

// IdentityHandler handles identity endpoints.
type IdentityHandler struct {
	svc        identityapp.Service
	sessionSvc session.Service
}

func NewIdentityHandler(svc identityapp.Service, sessionSvc session.Service) *IdentityHandler {
	return &IdentityHandler{svc: svc, sessionSvc: sessionSvc}
}

// RegisterParent creates a parent account and logs it straight in.
func (h *IdentityHandler) RegisterParent(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterParentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	parent, err := h.svc.RegisterParent(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	result, err := h.sessionSvc.IssueFor(r.Context(), parent, req.DeviceUUID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		Bearer:       result.Bearer,
		RefreshToken: result.RefreshToken,
		Session:      toSafeSession(result.Session),
		Identity:     toSafeIdentity(parent),
	})
}

func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if targetID == "me" {
		targetID = claims.IdentityID
	}
	i, err := h.svc.Get(r.Context(), targetID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeIdentity(i))
}

func (h *IdentityHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.IdentityID != targetID {
		writeError(w, http.StatusForbidden, "cannot update another identity")
		return
	}
	var req domain.UpdateIdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	i, err := h.svc.Update(r.Context(), targetID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSafeIdentity(i))
}

func (h *IdentityHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ChangePassword(r.Context(), claims.IdentityID, req.CurrentPassword, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}

// ListChildren returns the identities linked to the calling parent.
func (h *IdentityHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	children, err := h.svc.ListChildren(r.Context(), claims.IdentityID)
	if err != nil {
		httpError(w, err)
		return
	}
	safe := make([]*SafeIdentity, len(children))
	for i := range children {
		safe[i] = toSafeIdentity(&children[i])
	}
	writeJSON(w, http.StatusOK, safe)
}

func (h *IdentityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if claims.IdentityID != targetID {
		writeError(w, http.StatusForbidden, "cannot delete another identity")
		return
	}
	if err := h.svc.Delete(r.Context(), targetID); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "identity deleted"})
}

// UploadAvatar accepts a multipart form with a "file" part.
func (h *IdentityHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part required")
		return
	}
	defer file.Close()

	key, err := h.svc.UploadAvatar(r.Context(), claims.IdentityID, header.Filename, file)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (h *IdentityHandler) AvatarURL(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	targetID := chi.URLParam(r, "id")
	if targetID == "me" {
		targetID = claims.IdentityID
	}
	url, err := h.svc.AvatarURL(r.Context(), targetID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
