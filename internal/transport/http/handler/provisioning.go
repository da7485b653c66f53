package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/famwell-api/internal/application/provisioning"
	"github.com/famwell-api/internal/application/session"
	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/transport/http/middleware"
)

// ProvisioningHandler drives the one-time-code endpoints: parents issue and
// reset codes, children redeem them and set their first password.
type ProvisioningHandler struct {
	svc        provisioning.Service
	sessionSvc session.Service
}

func NewProvisioningHandler(svc provisioning.Service, sessionSvc session.Service) *ProvisioningHandler {
	return &ProvisioningHandler{svc: svc, sessionSvc: sessionSvc}
}

func (h *ProvisioningHandler) Generate(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req provisioning.GenerateCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	grant, err := h.svc.GenerateCode(r.Context(), claims.IdentityID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, GrantEnvelope{Code: grant.Code, ExpiresAt: grant.ExpiresAt})
}

func (h *ProvisioningHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		provisioning.RedeemCodeRequest
		DeviceUUID *string `json:"device_uuid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	child, err := h.svc.RedeemCode(r.Context(), req.RedeemCodeRequest)
	if err != nil {
		h.redeemError(w, err)
		return
	}
	result, err := h.sessionSvc.IssueFor(r.Context(), child, req.DeviceUUID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Bearer:       result.Bearer,
		RefreshToken: result.RefreshToken,
		Session:      toSafeSession(result.Session),
		Identity:     toSafeIdentity(child),
	})
}

func (h *ProvisioningHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SetPassword(r.Context(), claims.IdentityID, req.Password); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password set"})
}

func (h *ProvisioningHandler) Reset(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		ChildEmail string `json:"child_email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	grant, err := h.svc.ResetChildCredential(r.Context(), claims.IdentityID, req.ChildEmail)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, GrantEnvelope{Code: grant.Code, ExpiresAt: grant.ExpiresAt})
}

// redeemError collapses the redemption failure modes into one response body;
// the precise reason goes to the log, not to the caller.
func (h *ProvisioningHandler) redeemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOrExpiredCode),
		errors.Is(err, domain.ErrCodeAlreadyConsumed),
		errors.Is(err, domain.ErrCodeEmailMismatch):
		slog.Info("code redemption rejected", "reason", err)
		writeError(w, http.StatusUnauthorized, "invalid or expired code")
	default:
		httpError(w, err)
	}
}
