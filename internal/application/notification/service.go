package notification

import (
	"context"
	"fmt"

	"github.com/famwell-api/internal/domain"
)

type Service interface {
	ListUnread(ctx context.Context, identityID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, identityID, notificationID string) (*domain.Notification, error)
}

type notificationStore interface {
	ListUnread(ctx context.Context, identityID string) ([]domain.Notification, error)
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

type service struct {
	repo notificationStore
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo}
}

func (s *service) ListUnread(ctx context.Context, identityID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, identityID)
}

func (s *service) MarkAsRead(ctx context.Context, identityID, notificationID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.IdentityID != identityID {
		return nil, fmt.Errorf("notification belongs to another identity: %w", domain.ErrForbidden)
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}
