package repository

import (
	"context"

	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	FindByEventID(ctx context.Context, eventID uint, offset, limit int) ([]models.Comment, error)
	UpdateText(ctx context.Context, id uint, text string) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("Author", "Event").Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindByEventID returns the newest comments first.
func (r *commentRepository) FindByEventID(ctx context.Context, eventID uint, offset, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("Author").
		Where("event_id = ?", eventID).
		Order("created DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) UpdateText(ctx context.Context, id uint, text string) error {
	return r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("text", text).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID(ctx, r.db, &models.Comment{}, id)
}
