package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/famwell-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AuthEnvelope wraps login/register/redeem responses.
type AuthEnvelope struct {
	Bearer       string        `json:"bearer,omitempty"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	Session      *SafeSession  `json:"session,omitempty"`
	Identity     *SafeIdentity `json:"identity,omitempty"`
	Message      string        `json:"message,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session  *SafeSession  `json:"session,omitempty"`
	Identity *SafeIdentity `json:"identity,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// GrantEnvelope wraps code-issuance responses. The code is returned to the
// issuing parent so the app can show it even when email delivery lags.
type GrantEnvelope struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SafeIdentity is the wire shape of an identity; it never carries the
// password hash or the raw avatar key.
type SafeIdentity struct {
	ID          string  `json:"id"`
	Role        string  `json:"role"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	DisplayName string  `json:"display_name"`
	Dob         string  `json:"dob,omitempty"`
	Gender      string  `json:"gender,omitempty"`
	PasswordSet bool    `json:"password_set"`
}

// SafeSession is the wire shape of a session; the refresh token travels only
// in the dedicated AuthEnvelope field.
type SafeSession struct {
	ID         string    `json:"id"`
	IdentityID string    `json:"identity_id"`
	DeviceID   string    `json:"device_id"`
	CreatedAt  time.Time `json:"created"`
}

func toSafeIdentity(i *domain.Identity) *SafeIdentity {
	if i == nil {
		return nil
	}
	return &SafeIdentity{
		ID:          i.IdentityID,
		Role:        i.Role,
		Email:       i.Email,
		Phone:       i.Phone,
		DisplayName: i.DisplayName,
		Dob:         i.Dob,
		Gender:      i.Gender,
		PasswordSet: i.PasswordSet,
	}
}

func toSafeSession(s *domain.Session) *SafeSession {
	if s == nil {
		return nil
	}
	return &SafeSession{
		ID:         s.SessionID,
		IdentityID: s.IdentityID,
		DeviceID:   s.DeviceID,
		CreatedAt:  s.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels to HTTP status codes.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
