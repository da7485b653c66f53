package mood

import (
	"context"
	"fmt"
	"time"

	"github.com/famwell-api/internal/domain"
	"github.com/famwell-api/internal/pkg/id"
	"github.com/famwell-api/internal/pkg/validate"
)

const defaultListLimit = 30

type Service interface {
	CheckIn(ctx context.Context, identityID string, req domain.MoodCheckInRequest) (*domain.MoodEntry, error)
	List(ctx context.Context, viewerID, subjectID string, limit int) ([]domain.MoodEntry, error)
	Summary(ctx context.Context, viewerID, subjectID string) (*domain.MoodSummary, error)
}

type moodStore interface {
	Put(ctx context.Context, m *domain.MoodEntry) error
	ListByIdentity(ctx context.Context, identityID string, limit int32) ([]domain.MoodEntry, error)
}

type linkStore interface {
	Exists(ctx context.Context, parentID, childID string) (bool, error)
}

type service struct {
	repo     moodStore
	linkRepo linkStore
}

type ServiceDeps struct {
	MoodRepo moodStore
	LinkRepo linkStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.MoodRepo, linkRepo: deps.LinkRepo}
}

func (s *service) CheckIn(ctx context.Context, identityID string, req domain.MoodCheckInRequest) (*domain.MoodEntry, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	entry := &domain.MoodEntry{
		MoodID:     id.New(),
		IdentityID: identityID,
		Score:      req.Score,
		Emoji:      req.Emoji,
		Note:       req.Note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) List(ctx context.Context, viewerID, subjectID string, limit int) ([]domain.MoodEntry, error) {
	if err := s.authorize(ctx, viewerID, subjectID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	return s.repo.ListByIdentity(ctx, subjectID, int32(limit))
}

func (s *service) Summary(ctx context.Context, viewerID, subjectID string) (*domain.MoodSummary, error) {
	entries, err := s.List(ctx, viewerID, subjectID, defaultListLimit)
	if err != nil {
		return nil, err
	}
	return summarise(subjectID, entries), nil
}

// authorize allows an identity to view its own moods, or a parent to view a
// linked child's.
func (s *service) authorize(ctx context.Context, viewerID, subjectID string) error {
	if viewerID == subjectID {
		return nil
	}
	linked, err := s.linkRepo.Exists(ctx, viewerID, subjectID)
	if err != nil {
		return err
	}
	if !linked {
		return fmt.Errorf("viewer is not linked to this identity: %w", domain.ErrForbidden)
	}
	return nil
}

// summarise reduces recent check-ins (newest first) to an average, a trend
// across the two halves of the window, and a short canned insight.
func summarise(subjectID string, entries []domain.MoodEntry) *domain.MoodSummary {
	sum := &domain.MoodSummary{IdentityID: subjectID, Entries: len(entries), Trend: "steady"}
	if len(entries) == 0 {
		sum.Insight = "No check-ins yet. A first mood entry starts the picture."
		return sum
	}
	var total int
	for _, e := range entries {
		total += e.Score
	}
	sum.Average = float64(total) / float64(len(entries))

	if len(entries) >= 4 {
		half := len(entries) / 2
		recent, earlier := avgScore(entries[:half]), avgScore(entries[half:])
		switch {
		case recent-earlier >= 0.5:
			sum.Trend = "improving"
		case earlier-recent >= 0.5:
			sum.Trend = "declining"
		}
	}

	switch {
	case sum.Trend == "declining":
		sum.Insight = "Mood has dipped recently. A check-in conversation might help."
	case sum.Average >= 4:
		sum.Insight = "Mood has been consistently positive."
	case sum.Average < 2.5:
		sum.Insight = "Mood has been low lately. Consider spending some time together."
	default:
		sum.Insight = "Mood is in a typical range."
	}
	return sum
}

func avgScore(entries []domain.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var total int
	for _, e := range entries {
		total += e.Score
	}
	return float64(total) / float64(len(entries))
}
