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

type CategoryService interface {
	CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uint, req dto.CategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uint) error
	GetCategory(ctx context.Context, id uint) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context, from, size int) ([]dto.CategoryResponse, error)
}

type categoryService struct {
	repo   repository.CategoryRepository
	events repository.EventRepository
}

func NewCategoryService(repo repository.CategoryRepository, events repository.EventRepository) CategoryService {
	return &categoryService{repo: repo, events: events}
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category := &models.Category{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, writeErr(err, "create category")
	}
	resp := dto.ToCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "category", id)
	}
	category.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, writeErr(err, "update category")
	}
	resp := dto.ToCategoryResponse(category)
	return &resp, nil
}

// DeleteCategory refuses to remove a category that events still reference.
func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	used, err := s.events.ExistsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("check category usage: %w", err)
	}
	if used {
		return conflictf("category with id=%d is used by events", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lookupErr(err, "category", id)
		}
		return writeErr(err, "delete category")
	}
	return nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "category", id)
	}
	resp := dto.ToCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) ListCategories(ctx context.Context, from, size int) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.FindAll(ctx, from, size)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	resp := make([]dto.CategoryResponse, len(categories))
	for i := range categories {
		resp[i] = dto.ToCategoryResponse(&categories[i])
	}
	return resp, nil
}
