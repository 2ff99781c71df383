package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/stats-service/internal/models"
	"github.com/MIgor26/explore-with-me/stats-service/internal/repository"
)

var ErrValidation = errors.New("validation failed")

type StatsService interface {
	AddHit(ctx context.Context, hit *models.EndpointHit) error
	GetStats(ctx context.Context, start, end *time.Time, uris []string, unique bool) ([]models.ViewStats, error)
}

type statsService struct {
	repo repository.HitRepository
	now  func() time.Time
}

func NewStatsService(repo repository.HitRepository) StatsService {
	return &statsService{repo: repo, now: time.Now}
}

func (s *statsService) AddHit(ctx context.Context, hit *models.EndpointHit) error {
	switch {
	case strings.TrimSpace(hit.App) == "":
		return fmt.Errorf("%w: app is required", ErrValidation)
	case strings.TrimSpace(hit.URI) == "":
		return fmt.Errorf("%w: uri is required", ErrValidation)
	case strings.TrimSpace(hit.IP) == "":
		return fmt.Errorf("%w: ip is required", ErrValidation)
	case hit.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp is required", ErrValidation)
	}

	if err := s.repo.Save(ctx, hit); err != nil {
		return fmt.Errorf("save hit: %w", err)
	}
	return nil
}

// GetStats defaults to [start of today, now] when both bounds are omitted.
func (s *statsService) GetStats(ctx context.Context, start, end *time.Time, uris []string, unique bool) ([]models.ViewStats, error) {
	var from, to time.Time
	switch {
	case start == nil && end == nil:
		to = s.now()
		from = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	case start == nil || end == nil:
		return nil, fmt.Errorf("%w: start and end must be given together", ErrValidation)
	default:
		from, to = *start, *end
	}

	if to.Before(from) {
		return nil, fmt.Errorf("%w: end must not be before start", ErrValidation)
	}

	return s.repo.GetStats(ctx, repository.StatsFilter{
		Start:  from,
		End:    to,
		URIs:   uris,
		Unique: unique,
	})
}
