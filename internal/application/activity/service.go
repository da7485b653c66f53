package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/pkg/id"
	"github.com/famwell-api/internal/pkg/validate"
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
)

type Service interface {
	Create(ctx context.Context, ownerID string, req domain.ActivityInput) (*domain.Activity, error)
	Get(ctx context.Context, activityID string) (*domain.Activity, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Activity, error)
	Update(ctx context.Context, ownerID, activityID string, req domain.ActivityInput) (*domain.Activity, error)
	Delete(ctx context.Context, ownerID, activityID string) error
}

type activityStore interface {
	Put(ctx context.Context, a *domain.Activity) error
	Get(ctx context.Context, activityID string) (*domain.Activity, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Activity, error)
	Update(ctx context.Context, activityID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, activityID string) error
}

type service struct {
	repo activityStore
}

func NewService(repo activityStore) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, ownerID string, req domain.ActivityInput) (*domain.Activity, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	a := &domain.Activity{
		ActivityID:  id.New(),
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, activityID string) (*domain.Activity, error) {
	return s.repo.Get(ctx, activityID)
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]domain.Activity, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) Update(ctx context.Context, ownerID, activityID string, req domain.ActivityInput) (*domain.Activity, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if err := s.requireOwner(ctx, ownerID, activityID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		fieldTitle:       req.Title,
		fieldDescription: req.Description,
		fieldCategory:    req.Category,
	}
	if err := s.repo.Update(ctx, activityID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, activityID)
}

func (s *service) Delete(ctx context.Context, ownerID, activityID string) error {
	if err := s.requireOwner(ctx, ownerID, activityID); err != nil {
		return err
	}
	return s.repo.HardDelete(ctx, activityID)
}

func (s *service) requireOwner(ctx context.Context, ownerID, activityID string) error {
	a, err := s.repo.Get(ctx, activityID)
	if err != nil {
		return err
	}
	if a.OwnerID != ownerID {
		return fmt.Errorf("activity belongs to another identity: %w", domain.ErrForbidden)
	}
	return nil
}
