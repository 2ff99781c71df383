package repository

import (
	"context"

	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *models.Request) error
	Save(ctx context.Context, tx *gorm.DB, request *models.Request) error
	FindByIDAndRequester(ctx context.Context, tx *gorm.DB, id, requesterID uint) (*models.Request, error)
	FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Request, error)
	FindByEventID(ctx context.Context, eventID uint) ([]models.Request, error)
	FindByRequester(ctx context.Context, requesterID uint) ([]models.Request, error)
	ExistsByRequesterAndEvent(ctx context.Context, tx *gorm.DB, requesterID, eventID uint) (bool, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.RequestStatus) (int64, error)
	CountConfirmedByEventIDs(ctx context.Context, eventIDs []uint) (map[uint]int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uint, status models.RequestStatus) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	return conn(ctx, r.db, tx).Omit("Event").Create(request).Error
}

func (r *requestRepository) Save(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	return conn(ctx, r.db, tx).Omit("Event").Save(request).Error
}

func (r *requestRepository) FindByIDAndRequester(ctx context.Context, tx *gorm.DB, id, requesterID uint) (*models.Request, error) {
	var request models.Request
	err := conn(ctx, r.db, tx).
		Where("id = ? AND requester_id = ?", id, requesterID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Request, error) {
	var requests []models.Request
	if err := conn(ctx, r.db, tx).Where("id IN ?", ids).Order("id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) FindByEventID(ctx context.Context, eventID uint) ([]models.Request, error) {
	var requests []models.Request
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindByRequester skips requests to events the requester initiated.
func (r *requestRepository) FindByRequester(ctx context.Context, requesterID uint) ([]models.Request, error) {
	var requests []models.Request
	err := r.db.WithContext(ctx).
		Joins("JOIN events e ON e.id = requests.event_id").
		Where("requests.requester_id = ? AND e.initiator_id <> ?", requesterID, requesterID).
		Order("requests.id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ExistsByRequesterAndEvent(ctx context.Context, tx *gorm.DB, requesterID, eventID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db, tx).Model(&models.Request{}).
		Where("requester_id = ? AND event_id = ?", requesterID, eventID).
		Count(&count).Error
	return count > 0, err
}

func (r *requestRepository) CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.RequestStatus) (int64, error) {
	var count int64
	err := conn(ctx, r.db, tx).
		Model(&models.Request{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	return count, err
}

// CountConfirmedByEventIDs counts confirmed requests for many events in one query.
// Events without confirmed requests are absent from the map.
func (r *requestRepository) CountConfirmedByEventIDs(ctx context.Context, eventIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		EventID uint
		Cnt     int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Select("event_id, COUNT(*) AS cnt").
		Where("event_id IN ? AND status = ?", eventIDs, models.RequestConfirmed).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.EventID] = row.Cnt
	}
	return counts, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uint, status models.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).
		Model(&models.Request{}).
		Where("id IN ?", ids).
		Update("status", status).Error
}
