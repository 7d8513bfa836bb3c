package destination

import (
	"context"
	"fmt"
	"time"

	"github.com/med-reminder-api/internal/domain"
	"github.com/med-reminder-api/internal/pkg/validate"
)

// Service manages the push destination registry: one address + timezone per
// user, upserted in place whenever the mobile client re-registers.
type Service interface {
	Register(ctx context.Context, req domain.RegisterDestinationRequest) (*domain.Destination, error)
	Get(ctx context.Context, userID string) (*domain.Destination, error)
	Delete(ctx context.Context, userID string) error
}

type destinationStore interface {
	Put(ctx context.Context, d *domain.Destination) error
	Get(ctx context.Context, userID string) (*domain.Destination, error)
	Delete(ctx context.Context, userID string) error
}

type service struct {
	repo destinationStore
}

func NewService(repo destinationStore) Service {
	return &service{repo: repo}
}

// Register upserts the user's destination. The original CreatedAt survives a
// token refresh; the timezone is validated lazily by the dispatcher (bad
// zones fall back to UTC there, registration does not reject them).
func (s *service) Register(ctx context.Context, req domain.RegisterDestinationRequest) (*domain.Destination, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	dest := &domain.Destination{
		UserID:    req.UserID,
		Token:     req.Token,
		Timezone:  req.Timezone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.repo.Get(ctx, req.UserID); err == nil {
		dest.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Put(ctx, dest); err != nil {
		return nil, fmt.Errorf("store destination: %w", err)
	}
	return dest, nil
}

func (s *service) Get(ctx context.Context, userID string) (*domain.Destination, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}
