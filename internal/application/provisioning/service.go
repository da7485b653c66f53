package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/pkg/code"
	"github.com/famwell-api/internal/pkg/id"
	"github.com/famwell-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// maxGenerateAttempts bounds the issuance retry loop, which covers both code
// collisions and races against concurrent issuers for the same email. Ten
// straight rejections at 36^8 codes means the store is misbehaving, not bad
// luck.
const maxGenerateAttempts = 10

type GenerateCodeRequest struct {
	ChildName   string `json:"child_name" validate:"required,max=120"`
	ChildEmail  string `json:"child_email" validate:"required,email"`
	ChildDob    string `json:"child_dob" validate:"required"` // expected format: YYYY-MM-DD
	ChildGender string `json:"child_gender" validate:"omitempty,oneof=female male other unspecified"`
}

type RedeemCodeRequest struct {
	Code  string `json:"code" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// Grant is what a parent gets back after issuance: the code itself (shown
// directly in the app, since email delivery is best-effort) and its expiry.
type Grant struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Service drives the one-time-code onboarding and credential-recovery flow:
// a parent issues a short-lived single-use code bound to a prospective child,
// the child redeems it exactly once to materialise an account, sets a
// password in a separate request, and a parent can later lock the credential
// and reissue.
type Service interface {
	GenerateCode(ctx context.Context, issuerID string, req GenerateCodeRequest) (*Grant, error)
	RedeemCode(ctx context.Context, req RedeemCodeRequest) (*domain.Identity, error)
	SetPassword(ctx context.Context, identityID, newPassword string) error
	ResetChildCredential(ctx context.Context, issuerID, childEmail string) (*Grant, error)
}

type identityStore interface {
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Put(ctx context.Context, i *domain.Identity) error
	SetPasswordHash(ctx context.Context, identityID, hash string) error
	ClearPasswordFlag(ctx context.Context, identityID string) error
}

type codeStore interface {
	Issue(ctx context.Context, c *domain.OneTimeCode) error
	FindPending(ctx context.Context, code string) (*domain.OneTimeCode, error)
	MarkUsed(ctx context.Context, code string) (bool, error)
}

type linkStore interface {
	Put(ctx context.Context, l *domain.FamilyLink) error
	Exists(ctx context.Context, parentID, childID string) (bool, error)
}

type sessionStore interface {
	SoftDeleteByIdentity(ctx context.Context, identityID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

// Mailer delivers the code to the child out-of-band. Failures are logged and
// never propagated; the parent sees the code in-app regardless.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	identities     identityStore
	codes          codeStore
	links          linkStore
	sessions       sessionStore
	notifications  notificationStore
	mailer         Mailer
	smsSender      smsSender
	codeLength     int
	codeTTL        time.Duration
	passwordMinLen int
}

type ServiceDeps struct {
	IdentityRepo     identityStore
	CodeRepo         codeStore
	LinkRepo         linkStore
	SessionRepo      sessionStore      // optional
	NotificationRepo notificationStore // optional
	Mailer           Mailer
	SMSSender        smsSender // optional
	CodeLength       int
	CodeTTL          time.Duration
	PasswordMinLen   int
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		identities:     deps.IdentityRepo,
		codes:          deps.CodeRepo,
		links:          deps.LinkRepo,
		sessions:       deps.SessionRepo,
		notifications:  deps.NotificationRepo,
		mailer:         deps.Mailer,
		smsSender:      deps.SMSSender,
		codeLength:     deps.CodeLength,
		codeTTL:        deps.CodeTTL,
		passwordMinLen: deps.PasswordMinLen,
	}
	if s.codeLength < 1 {
		s.codeLength = code.DefaultLength
	}
	if s.codeTTL <= 0 {
		s.codeTTL = time.Hour
	}
	if s.passwordMinLen < 1 {
		s.passwordMinLen = 8
	}
	return s
}

func (s *service) GenerateCode(ctx context.Context, issuerID string, req GenerateCodeRequest) (*Grant, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if _, err := time.Parse("2006-01-02", req.ChildDob); err != nil {
		return nil, fmt.Errorf("child_dob must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}
	childEmail := strings.ToLower(req.ChildEmail)

	issuer, err := s.identities.Get(ctx, issuerID)
	if err != nil {
		return nil, err
	}
	if issuer.Role != domain.RoleParent {
		return nil, fmt.Errorf("only a parent may issue onboarding codes: %w", domain.ErrForbidden)
	}

	// A target that already holds a live password is a working account;
	// issuing a code for it would be a silent takeover path.
	existing, err := s.identities.GetByEmail(ctx, childEmail)
	if err == nil && existing.PasswordSet {
		return nil, fmt.Errorf("an account with a set password already exists for this email: %w", domain.ErrAlreadyRegistered)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	return s.issueGrant(ctx, issuer, childEmail, req.ChildName, req.ChildDob, req.ChildGender)
}

func (s *service) RedeemCode(ctx context.Context, req RedeemCodeRequest) (*domain.Identity, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	codeStr := strings.ToUpper(strings.TrimSpace(req.Code))
	email := strings.ToLower(req.Email)

	grant, err := s.codes.FindPending(ctx, codeStr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no pending grant for this code: %w", domain.ErrInvalidOrExpiredCode)
		}
		return nil, err
	}

	// The grant is bound to one child identity. A different email is a
	// code-sharing attempt and must not consume the code.
	if !strings.EqualFold(email, grant.TargetEmail) {
		return nil, fmt.Errorf("email does not match the identity this grant was issued for: %w", domain.ErrCodeEmailMismatch)
	}

	won, err := s.codes.MarkUsed(ctx, codeStr)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent redemption won the conditional write, or the code
		// expired between lookup and write.
		return nil, fmt.Errorf("grant was consumed by another request: %w", domain.ErrCodeAlreadyConsumed)
	}

	child, err := s.upsertChild(ctx, grant)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.links.Put(ctx, &domain.FamilyLink{
		ParentID:  grant.IssuerID,
		ChildID:   child.IdentityID,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	s.notify(ctx, grant.IssuerID, "child_joined",
		fmt.Sprintf("%s joined your family", child.DisplayName))
	return child, nil
}

func (s *service) SetPassword(ctx context.Context, identityID, newPassword string) error {
	if len(newPassword) < s.passwordMinLen {
		return fmt.Errorf("password must be at least %d characters: %w", s.passwordMinLen, domain.ErrWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.identities.SetPasswordHash(ctx, identityID, string(hash))
}

func (s *service) ResetChildCredential(ctx context.Context, issuerID, childEmail string) (*Grant, error) {
	childEmail = strings.ToLower(strings.TrimSpace(childEmail))
	if childEmail == "" {
		return nil, fmt.Errorf("child_email required: %w", domain.ErrBadRequest)
	}

	child, err := s.identities.GetByEmail(ctx, childEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same answer as a missing link, so callers can't probe which
			// emails exist.
			return nil, fmt.Errorf("no linked child for this email: %w", domain.ErrForbidden)
		}
		return nil, err
	}
	linked, err := s.links.Exists(ctx, issuerID, child.IdentityID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, fmt.Errorf("issuer is not linked to this child: %w", domain.ErrForbidden)
	}

	// Lock first, then reissue: the old password dies before the new code
	// goes live, so there is no window where both authenticate.
	if err := s.identities.ClearPasswordFlag(ctx, child.IdentityID); err != nil {
		return nil, err
	}
	if s.sessions != nil {
		if err := s.sessions.SoftDeleteByIdentity(ctx, child.IdentityID); err != nil {
			slog.Warn("failed to disable child sessions during reset", "child_id", child.IdentityID, "err", err)
		}
	}

	issuer, err := s.identities.Get(ctx, issuerID)
	if err != nil {
		return nil, err
	}
	grant, err := s.issueGrant(ctx, issuer, child.Email, child.DisplayName, child.Dob, child.Gender)
	if err != nil {
		return nil, err
	}

	if s.smsSender != nil && issuer.Phone != nil {
		if err := s.smsSender.SendSMS(ctx, *issuer.Phone,
			fmt.Sprintf("FamWell: the password for %s was reset. A new onboarding code was issued.", child.DisplayName)); err != nil {
			slog.Warn("failed to send reset SMS notice", "issuer_id", issuerID, "err", err)
		}
	}
	s.notify(ctx, issuerID, "credential_reset",
		fmt.Sprintf("Credential reset for %s; a fresh code was issued", child.DisplayName))
	return grant, nil
}

// issueGrant draws a fresh code and hands it to the store, which retires the
// target's previous grant in the same transaction. ErrConflict covers both a
// code collision and a lost race against a concurrent issuer for the same
// email; either way the loop redraws and retries, so two simultaneous issuers
// can never both leave a live code. Shared by GenerateCode and
// ResetChildCredential.
func (s *service) issueGrant(ctx context.Context, issuer *domain.Identity, email, name, dob, gender string) (*Grant, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.codeTTL)
	var issued string
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := code.New(s.codeLength)
		if err != nil {
			return nil, err
		}
		rec := &domain.OneTimeCode{
			Code:         candidate,
			IssuerID:     issuer.IdentityID,
			TargetEmail:  email,
			TargetName:   name,
			TargetDob:    dob,
			TargetGender: gender,
			Used:         false,
			CreatedAt:    now,
			ExpiresAt:    expiresAt.Unix(),
		}
		err = s.codes.Issue(ctx, rec)
		if err == nil {
			issued = candidate
			break
		}
		if errors.Is(err, domain.ErrConflict) {
			continue // collision or a rival issuance, redraw
		}
		return nil, err
	}
	if issued == "" {
		return nil, fmt.Errorf("could not draw a unique code after %d attempts: %w", maxGenerateAttempts, domain.ErrGenerationExhausted)
	}

	if err := s.mailer.SendEmail(email, "Your FamWell onboarding code",
		fmt.Sprintf("Hi %s,\n\nYour one-time code is %s. It expires in %s.\n", name, issued, s.codeTTL)); err != nil {
		slog.Warn("failed to deliver onboarding code email", "target", email, "err", err)
	}
	s.notify(ctx, issuer.IdentityID, "code_issued",
		fmt.Sprintf("A one-time code was issued for %s", email))

	return &Grant{Code: issued, ExpiresAt: expiresAt}, nil
}

// upsertChild materialises the child identity the grant was issued for,
// reusing an existing row whose password was never (or no longer) set.
func (s *service) upsertChild(ctx context.Context, grant *domain.OneTimeCode) (*domain.Identity, error) {
	existing, err := s.identities.GetByEmail(ctx, grant.TargetEmail)
	if err == nil {
		if existing.PasswordSet {
			return nil, fmt.Errorf("identity already holds a live credential: %w", domain.ErrAlreadyRegistered)
		}
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	child := &domain.Identity{
		IdentityID:  id.New(),
		Role:        domain.RoleChild,
		Email:       grant.TargetEmail,
		DisplayName: grant.TargetName,
		Dob:         grant.TargetDob,
		Gender:      grant.TargetGender,
		PasswordSet: false,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.identities.Put(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *service) notify(ctx context.Context, identityID, kind, message string) {
	if s.notifications == nil {
		return
	}
	now := time.Now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		IdentityID:     identityID,
		Kind:           kind,
		Message:        message,
		Read:           false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		slog.Warn("failed to record notification", "identity_id", identityID, "kind", kind, "err", err)
	}
}
