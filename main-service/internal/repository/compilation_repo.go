package repository

import (
	"context"

	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"gorm.io/gorm"
)

type CompilationRepository interface {
	Create(ctx context.Context, compilation *models.Compilation) error
	FindByID(ctx context.Context, id uint) (*models.Compilation, error)
	FindAll(ctx context.Context, pinned *bool, offset, limit int) ([]models.Compilation, error)
	Update(ctx context.Context, compilation *models.Compilation, replaceEvents bool) error
	Delete(ctx context.Context, id uint) error
}

type compilationRepository struct {
	db *gorm.DB
}

func NewCompilationRepository(db *gorm.DB) CompilationRepository {
	return &compilationRepository{db: db}
}

func withEvents(db *gorm.DB) *gorm.DB {
	return db.Preload("Events", func(db *gorm.DB) *gorm.DB {
		return db.Order("events.id ASC")
	}).Preload("Events.Category").Preload("Events.Initiator")
}

// Create stores the compilation and links its events without touching event rows.
func (r *compilationRepository) Create(ctx context.Context, compilation *models.Compilation) error {
	return r.db.WithContext(ctx).Omit("Events.*").Create(compilation).Error
}

func (r *compilationRepository) FindByID(ctx context.Context, id uint) (*models.Compilation, error) {
	var compilation models.Compilation
	if err := r.db.WithContext(ctx).Scopes(withEvents).First(&compilation, id).Error; err != nil {
		return nil, err
	}
	return &compilation, nil
}

func (r *compilationRepository) FindAll(ctx context.Context, pinned *bool, offset, limit int) ([]models.Compilation, error) {
	db := r.db.WithContext(ctx).Scopes(withEvents)
	if pinned != nil {
		db = db.Where("pinned = ?", *pinned)
	}
	var compilations []models.Compilation
	if err := db.Order("id ASC").Offset(offset).Limit(limit).Find(&compilations).Error; err != nil {
		return nil, err
	}
	return compilations, nil
}

func (r *compilationRepository) Update(ctx context.Context, compilation *models.Compilation, replaceEvents bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(compilation).Select("title", "pinned").Updates(compilation).Error; err != nil {
			return err
		}
		if !replaceEvents {
			return nil
		}
		return tx.Model(compilation).Omit("Events.*").Association("Events").Replace(compilation.Events)
	})
}

func (r *compilationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		compilation := models.Compilation{ID: id}
		if err := tx.Model(&compilation).Association("Events").Clear(); err != nil {
			return err
		}
		return deleteByID(ctx, tx, &models.Compilation{}, id)
	})
}
