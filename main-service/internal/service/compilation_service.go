package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"gorm.io/gorm"
)

type CompilationService interface {
	CreateCompilation(ctx context.Context, req dto.NewCompilationRequest) (*dto.CompilationResponse, error)
	UpdateCompilation(ctx context.Context, id uint, req dto.UpdateCompilationRequest) (*dto.CompilationResponse, error)
	DeleteCompilation(ctx context.Context, id uint) error
	GetCompilation(ctx context.Context, id uint) (*dto.CompilationResponse, error)
	ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]dto.CompilationResponse, error)
}

type compilationService struct {
	repo   repository.CompilationRepository
	events repository.EventRepository
	views  *ViewEnricher
}

func NewCompilationService(repo repository.CompilationRepository, events repository.EventRepository, views *ViewEnricher) CompilationService {
	return &compilationService{repo: repo, events: events, views: views}
}

func (s *compilationService) CreateCompilation(ctx context.Context, req dto.NewCompilationRequest) (*dto.CompilationResponse, error) {
	events, err := s.loadEvents(ctx, req.Events)
	if err != nil {
		return nil, err
	}

	compilation := &models.Compilation{Title: strings.TrimSpace(req.Title), Pinned: req.Pinned, Events: events}
	if err := s.repo.Create(ctx, compilation); err != nil {
		return nil, writeErr(err, "create compilation")
	}
	return s.response(ctx, compilation)
}

func (s *compilationService) UpdateCompilation(ctx context.Context, id uint, req dto.UpdateCompilationRequest) (*dto.CompilationResponse, error) {
	compilation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "compilation", id)
	}

	if req.Title != nil {
		compilation.Title = strings.TrimSpace(*req.Title)
	}
	if req.Pinned != nil {
		compilation.Pinned = *req.Pinned
	}
	if req.Events != nil {
		events, err := s.loadEvents(ctx, *req.Events)
		if err != nil {
			return nil, err
		}
		compilation.Events = events
	}

	if err := s.repo.Update(ctx, compilation, req.Events != nil); err != nil {
		return nil, writeErr(err, "update compilation")
	}
	return s.response(ctx, compilation)
}

func (s *compilationService) DeleteCompilation(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lookupErr(err, "compilation", id)
		}
		return fmt.Errorf("delete compilation %d: %w", id, err)
	}
	return nil
}

func (s *compilationService) GetCompilation(ctx context.Context, id uint) (*dto.CompilationResponse, error) {
	compilation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "compilation", id)
	}
	return s.response(ctx, compilation)
}

func (s *compilationService) ListCompilations(ctx context.Context, pinned *bool, from, size int) ([]dto.CompilationResponse, error) {
	compilations, err := s.repo.FindAll(ctx, pinned, from, size)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}

	var all []models.Event
	for _, c := range compilations {
		all = append(all, c.Events...)
	}
	counts, err := s.views.ForEvents(ctx, all)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.CompilationResponse, len(compilations))
	for i := range compilations {
		resp[i] = toCompilationResponse(&compilations[i], counts)
	}
	return resp, nil
}

// loadEvents resolves every id or fails with ErrNotFound naming the first missing one.
func (s *compilationService) loadEvents(ctx context.Context, ids []uint) ([]models.Event, error) {
	ids = uniqueIDs(ids)
	events, err := s.events.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(events) == len(ids) {
		return events, nil
	}

	found := make(map[uint]bool, len(events))
	for _, e := range events {
		found[e.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, notFoundf("event with id=%d was not found", id)
		}
	}
	return events, nil
}

func (s *compilationService) response(ctx context.Context, c *models.Compilation) (*dto.CompilationResponse, error) {
	counts, err := s.views.ForEvents(ctx, c.Events)
	if err != nil {
		return nil, err
	}
	resp := toCompilationResponse(c, counts)
	return &resp, nil
}

func toCompilationResponse(c *models.Compilation, counts map[uint]EventCounts) dto.CompilationResponse {
	events := make([]dto.EventShortResponse, len(c.Events))
	for i := range c.Events {
		n := counts[c.Events[i].ID]
		events[i] = dto.ToEventShortResponse(&c.Events[i], n.Confirmed, n.Views)
	}
	return dto.CompilationResponse{ID: c.ID, Events: events, Pinned: c.Pinned, Title: c.Title}
}
