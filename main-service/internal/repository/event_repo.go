package repository

import (
	"context"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminEventQuery struct {
	UserIDs     []uint
	States      []models.EventState
	CategoryIDs []uint
	RangeStart  *time.Time
	RangeEnd    *time.Time
	Offset      int
	Limit       int
}

type PublicEventQuery struct {
	Text             string
	CategoryIDs      []uint
	Paid             *bool
	RangeStart       time.Time
	RangeEnd         *time.Time
	OnlyAvailable    bool
	OrderByEventDate bool
	Offset           int
	Limit            int // <= 0 returns every match
}

type EventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.Event) error
	Save(ctx context.Context, tx *gorm.DB, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	FindByIDAndInitiator(ctx context.Context, id, initiatorID uint) (*models.Event, error)
	FindPublishedByID(ctx context.Context, id uint) (*models.Event, error)
	FindByInitiator(ctx context.Context, initiatorID uint, offset, limit int) ([]models.Event, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Event, error)
	SearchAdmin(ctx context.Context, q AdminEventQuery) ([]models.Event, error)
	SearchPublic(ctx context.Context, q PublicEventQuery) ([]models.Event, error)
	ExistsByCategory(ctx context.Context, categoryID uint) (bool, error)
	FindOrCreateLocation(ctx context.Context, tx *gorm.DB, lat, lon float64) (*models.Location, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func withRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Initiator").Preload("Location")
}

func (r *eventRepository) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Create(event).Error
}

func (r *eventRepository) Save(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Save(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Scopes(withRefs).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given transaction.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByIDAndInitiator(ctx context.Context, id, initiatorID uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Scopes(withRefs).
		Where("id = ? AND initiator_id = ?", id, initiatorID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindPublishedByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Scopes(withRefs).
		Where("id = ? AND state = ?", id, models.EventPublished).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindByInitiator(ctx context.Context, initiatorID uint, offset, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).Scopes(withRefs).
		Where("initiator_id = ?", initiatorID).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	var events []models.Event
	if err := r.db.WithContext(ctx).Scopes(withRefs).Where("id IN ?", ids).Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) SearchAdmin(ctx context.Context, q AdminEventQuery) ([]models.Event, error) {
	db := r.db.WithContext(ctx).Scopes(withRefs)
	if len(q.UserIDs) > 0 {
		db = db.Where("initiator_id IN ?", q.UserIDs)
	}
	if len(q.States) > 0 {
		db = db.Where("state IN ?", q.States)
	}
	if len(q.CategoryIDs) > 0 {
		db = db.Where("category_id IN ?", q.CategoryIDs)
	}
	if q.RangeStart != nil {
		db = db.Where("event_date >= ?", *q.RangeStart)
	}
	if q.RangeEnd != nil {
		db = db.Where("event_date <= ?", *q.RangeEnd)
	}

	var events []models.Event
	if err := db.Order("id ASC").Offset(q.Offset).Limit(q.Limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) SearchPublic(ctx context.Context, q PublicEventQuery) ([]models.Event, error) {
	db := r.db.WithContext(ctx).Scopes(withRefs).
		Where("events.state = ?", models.EventPublished).
		Where("events.event_date >= ?", q.RangeStart)

	if q.RangeEnd != nil {
		db = db.Where("events.event_date <= ?", *q.RangeEnd)
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		like := containsPattern(strings.ToLower(text))
		db = db.Where(`(LOWER(events.annotation) LIKE ? ESCAPE '\' OR LOWER(events.description) LIKE ? ESCAPE '\')`, like, like)
	}
	if len(q.CategoryIDs) > 0 {
		db = db.Where("events.category_id IN ?", q.CategoryIDs)
	}
	if q.Paid != nil {
		db = db.Where("events.paid = ?", *q.Paid)
	}
	if q.OnlyAvailable {
		db = db.Where(`(events.participant_limit = 0 OR events.participant_limit >
			(SELECT COUNT(*) FROM requests r WHERE r.event_id = events.id AND r.status = ?))`, models.RequestConfirmed)
	}

	if q.OrderByEventDate {
		db = db.Order("events.event_date ASC").Order("events.id ASC")
	} else {
		db = db.Order("events.id ASC")
	}
	if q.Limit > 0 {
		db = db.Offset(q.Offset).Limit(q.Limit)
	}

	var events []models.Event
	if err := db.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches text literally anywhere in a LIKE ... ESCAPE '\' clause.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

func (r *eventRepository) ExistsByCategory(ctx context.Context, categoryID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("category_id = ?", categoryID).Limit(1).Count(&count).Error
	return count > 0, err
}

// FindOrCreateLocation reuses an existing location with the same coordinates.
func (r *eventRepository) FindOrCreateLocation(ctx context.Context, tx *gorm.DB, lat, lon float64) (*models.Location, error) {
	loc := models.Location{Lat: lat, Lon: lon}
	if err := conn(ctx, r.db, tx).Where("lat = ? AND lon = ?", lat, lon).FirstOrCreate(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}
