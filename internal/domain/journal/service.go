package journal

import (
	"context"

	"github.com/rs/zerolog"
)

// Service exposes journal listing and search.
type Service interface {
	List(ctx context.Context, filter Filter) ([]*Entry, int64, error)
}

type service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService creates a journal service.
func NewService(repo Repository, log zerolog.Logger) Service {
	return &service{
		repo: repo,
		log:  log.With().Str("component", "journal-service").Logger(),
	}
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Entry, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.FindByFilter(ctx, filter)
}
