package session

import (
	"context"
	"fmt"
	"time"

	"github.com/famwell-api/internal/domain"
	pkgdevice "github.com/famwell-api/internal/pkg/device"
	"github.com/famwell-api/internal/pkg/id"
	pkgtoken "github.com/famwell-api/internal/pkg/token"
	"github.com/famwell-api/internal/pkg/validate"
)

type LoginRequest struct {
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required"`
	DeviceUUID *string `json:"device_uuid"`
}

type LoginResult struct {
	Bearer       string
	RefreshToken string
	Session      *domain.Session
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	IssueFor(ctx context.Context, identity *domain.Identity, deviceUUID *string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (bearer, newRefreshToken string, err error)
}

type identityStore interface {
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Update(ctx context.Context, sessionID string, updates map[string]interface{}) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
}

type jwtSigner interface {
	Sign(identityID, deviceID, role, sessionID string) (string, error)
}

type service struct {
	sessionRepo     sessionStore
	identityRepo    identityStore
	deviceRepo      pkgdevice.Store
	jwtProvider     jwtSigner
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	SessionRepo     sessionStore
	IdentityRepo    identityStore
	DeviceRepo      pkgdevice.Store
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		sessionRepo:     deps.SessionRepo,
		identityRepo:    deps.IdentityRepo,
		deviceRepo:      deps.DeviceRepo,
		jwtProvider:     deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
	}
	if s.refreshTokenDur <= 0 {
		s.refreshTokenDur = 30 * 24 * time.Hour
	}
	return s
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	identity, err := s.identityRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same answer as a bad password so callers can't probe which
		// emails exist.
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if !identity.Enable {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrUnauthorized)
	}
	// VerifyPassword refuses identities whose password flag is cleared,
	// so a locked child cannot log in with a stale hash.
	if !identity.VerifyPassword(req.Password) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.IssueFor(ctx, identity, req.DeviceUUID)
}

// IssueFor creates a session and signs a bearer token for an identity that
// has already been authenticated by other means (password login, or a
// just-redeemed onboarding code).
func (s *service) IssueFor(ctx context.Context, identity *domain.Identity, deviceUUID *string) (*LoginResult, error) {
	dev, err := pkgdevice.Resolve(ctx, s.deviceRepo, deviceUUID, identity.IdentityID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		IdentityID:       identity.IdentityID,
		DeviceID:         dev.DeviceID,
		Enable:           true,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessionRepo.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(identity.IdentityID, dev.DeviceID, identity.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	sess.Identity = identity
	return &LoginResult{Bearer: bearer, RefreshToken: refreshToken, Session: sess}, nil
}

func (s *service) Logout(ctx context.Context, sessionID string) error {
	return s.sessionRepo.Update(ctx, sessionID, map[string]interface{}{"enable": false})
}

func (s *service) GetCurrent(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Enable {
		return nil, fmt.Errorf("session revoked: %w", domain.ErrUnauthorized)
	}
	identity, err := s.identityRepo.Get(ctx, sess.IdentityID)
	if err != nil {
		return nil, err
	}
	sess.Identity = identity
	return sess, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sess, err := s.sessionRepo.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	if sess.RefreshExpiresAt < time.Now().Unix() {
		return "", "", fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	newExpiry := time.Now().Add(s.refreshTokenDur).Unix()
	if err := s.sessionRepo.RotateRefreshToken(ctx, sess.SessionID, newToken, newExpiry); err != nil {
		return "", "", err
	}
	identity, err := s.identityRepo.Get(ctx, sess.IdentityID)
	if err != nil {
		return "", "", err
	}
	bearer, err := s.jwtProvider.Sign(identity.IdentityID, sess.DeviceID, identity.Role, sess.SessionID)
	if err != nil {
		return "", "", err
	}
	return bearer, newToken, nil
}
