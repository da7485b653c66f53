package identity

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/pkg/id"
	"github.com/famwell-api/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldPhone        = "phone"
	fieldDisplayName  = "display_name"
	fieldDob          = "dob"
	fieldGender       = "gender"
	fieldAvatarKey    = "avatar_key"
	fieldPasswordHash = "password_hash"
)

const avatarURLTTL = 15 * time.Minute

type Service interface {
	RegisterParent(ctx context.Context, req domain.RegisterParentRequest) (*domain.Identity, error)
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	Update(ctx context.Context, identityID string, req domain.UpdateIdentityRequest) (*domain.Identity, error)
	ChangePassword(ctx context.Context, identityID, currentPassword, newPassword string) error
	ListChildren(ctx context.Context, parentID string) ([]domain.Identity, error)
	UploadAvatar(ctx context.Context, identityID, filename string, r io.Reader) (string, error)
	AvatarURL(ctx context.Context, identityID string) (string, error)
	Delete(ctx context.Context, identityID string) error
}

type identityStore interface {
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	Put(ctx context.Context, i *domain.Identity) error
	Update(ctx context.Context, identityID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, identityID string) error
}

type linkStore interface {
	ListChildren(ctx context.Context, parentID string) ([]domain.FamilyLink, error)
}

type sessionStore interface {
	SoftDeleteByIdentity(ctx context.Context, identityID string) error
}

type avatarStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type contentTypeFunc func(filename string) string

type service struct {
	repo        identityStore
	linkRepo    linkStore
	sessionRepo sessionStore
	avatars     avatarStore
	contentType contentTypeFunc
}

type ServiceDeps struct {
	IdentityRepo identityStore
	LinkRepo     linkStore
	SessionRepo  sessionStore
	AvatarStore  avatarStore // optional
	ContentType  contentTypeFunc
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:        deps.IdentityRepo,
		linkRepo:    deps.LinkRepo,
		sessionRepo: deps.SessionRepo,
		avatars:     deps.AvatarStore,
		contentType: deps.ContentType,
	}
}

func (s *service) RegisterParent(ctx context.Context, req domain.RegisterParentRequest) (*domain.Identity, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	email := strings.ToLower(req.Email)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if req.Dob != "" {
		if _, err := time.Parse("2006-01-02", req.Dob); err != nil {
			return nil, fmt.Errorf("dob must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	parent := &domain.Identity{
		IdentityID:   id.New(),
		Role:         domain.RoleParent,
		Email:        email,
		Phone:        req.Phone,
		DisplayName:  req.DisplayName,
		Dob:          req.Dob,
		PasswordHash: string(hash),
		PasswordSet:  true,
		Enable:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, parent); err != nil {
		return nil, err
	}
	return parent, nil
}

func (s *service) Get(ctx context.Context, identityID string) (*domain.Identity, error) {
	return s.repo.Get(ctx, identityID)
}

func (s *service) Update(ctx context.Context, identityID string, req domain.UpdateIdentityRequest) (*domain.Identity, error) {
	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates[fieldDisplayName] = *req.DisplayName
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.Dob != nil {
		if _, err := time.Parse("2006-01-02", *req.Dob); err != nil {
			return nil, fmt.Errorf("dob must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
		}
		updates[fieldDob] = *req.Dob
	}
	if req.Gender != nil {
		updates[fieldGender] = *req.Gender
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, identityID)
	}
	if err := s.repo.Update(ctx, identityID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, identityID)
}

func (s *service) ChangePassword(ctx context.Context, identityID, currentPassword, newPassword string) error {
	identity, err := s.repo.Get(ctx, identityID)
	if err != nil {
		return err
	}
	if !identity.VerifyPassword(currentPassword) {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", domain.ErrWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, identityID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

func (s *service) ListChildren(ctx context.Context, parentID string) ([]domain.Identity, error) {
	links, err := s.linkRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	children := make([]domain.Identity, 0, len(links))
	for _, l := range links {
		child, err := s.repo.Get(ctx, l.ChildID)
		if err != nil {
			continue // link may outlive a deleted identity
		}
		children = append(children, *child)
	}
	return children, nil
}

func (s *service) UploadAvatar(ctx context.Context, identityID, filename string, r io.Reader) (string, error) {
	if s.avatars == nil {
		return "", fmt.Errorf("avatar storage not configured: %w", domain.ErrBadRequest)
	}
	contentType := "application/octet-stream"
	if s.contentType != nil {
		contentType = s.contentType(filename)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("avatar must be a jpeg, png or webp image: %w", domain.ErrBadRequest)
	}
	key := fmt.Sprintf("avatars/%s/%s", identityID, id.New())
	if err := s.avatars.Upload(ctx, key, r, contentType); err != nil {
		return "", err
	}
	if err := s.repo.Update(ctx, identityID, map[string]interface{}{fieldAvatarKey: key}); err != nil {
		return "", err
	}
	return key, nil
}

func (s *service) AvatarURL(ctx context.Context, identityID string) (string, error) {
	if s.avatars == nil {
		return "", fmt.Errorf("avatar storage not configured: %w", domain.ErrNotFound)
	}
	identity, err := s.repo.Get(ctx, identityID)
	if err != nil {
		return "", err
	}
	if identity.AvatarKey == "" {
		return "", fmt.Errorf("no avatar set: %w", domain.ErrNotFound)
	}
	return s.avatars.PresignedURL(ctx, identity.AvatarKey, avatarURLTTL)
}

func (s *service) Delete(ctx context.Context, identityID string) error {
	if err := s.repo.SoftDelete(ctx, identityID); err != nil {
		return err
	}
	return s.sessionRepo.SoftDeleteByIdentity(ctx, identityID)
}
