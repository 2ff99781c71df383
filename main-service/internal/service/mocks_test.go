package service

import (
	"context"
	"errors"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
	"gorm.io/gorm"
)

// --- Transactor ---

type noTx struct{}

func (noTx) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// --- Mock EventRepository ---

type mockEventRepo struct {
	createFn               func(ctx context.Context, tx *gorm.DB, event *models.Event) error
	saveFn                 func(ctx context.Context, tx *gorm.DB, event *models.Event) error
	findByIDFn             func(ctx context.Context, id uint) (*models.Event, error)
	findByIDForUpdateFn    func(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	findByIDAndInitiatorFn func(ctx context.Context, id, initiatorID uint) (*models.Event, error)
	findPublishedByIDFn    func(ctx context.Context, id uint) (*models.Event, error)
	findByInitiatorFn      func(ctx context.Context, initiatorID uint, offset, limit int) ([]models.Event, error)
	findByIDsFn            func(ctx context.Context, ids []uint) ([]models.Event, error)
	searchAdminFn          func(ctx context.Context, q repository.AdminEventQuery) ([]models.Event, error)
	searchPublicFn         func(ctx context.Context, q repository.PublicEventQuery) ([]models.Event, error)
	existsByCategoryFn     func(ctx context.Context, categoryID uint) (bool, error)
}

func (m *mockEventRepo) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return m.createFn(ctx, tx, event)
}
func (m *mockEventRepo) Save(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	if m.saveFn == nil {
		return nil
	}
	return m.saveFn(ctx, tx, event)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	return m.findByIDForUpdateFn(ctx, tx, id)
}
func (m *mockEventRepo) FindByIDAndInitiator(ctx context.Context, id, initiatorID uint) (*models.Event, error) {
	return m.findByIDAndInitiatorFn(ctx, id, initiatorID)
}
func (m *mockEventRepo) FindPublishedByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findPublishedByIDFn(ctx, id)
}
func (m *mockEventRepo) FindByInitiator(ctx context.Context, initiatorID uint, offset, limit int) ([]models.Event, error) {
	return m.findByInitiatorFn(ctx, initiatorID, offset, limit)
}
func (m *mockEventRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Event, error) {
	return m.findByIDsFn(ctx, ids)
}
func (m *mockEventRepo) SearchAdmin(ctx context.Context, q repository.AdminEventQuery) ([]models.Event, error) {
	return m.searchAdminFn(ctx, q)
}
func (m *mockEventRepo) SearchPublic(ctx context.Context, q repository.PublicEventQuery) ([]models.Event, error) {
	return m.searchPublicFn(ctx, q)
}
func (m *mockEventRepo) ExistsByCategory(ctx context.Context, categoryID uint) (bool, error) {
	return m.existsByCategoryFn(ctx, categoryID)
}
func (m *mockEventRepo) FindOrCreateLocation(ctx context.Context, tx *gorm.DB, lat, lon float64) (*models.Location, error) {
	return &models.Location{ID: 7, Lat: lat, Lon: lon}, nil
}

// --- Mock RequestRepository ---

type mockRequestRepo struct {
	createFn                    func(ctx context.Context, tx *gorm.DB, request *models.Request) error
	saveFn                      func(ctx context.Context, tx *gorm.DB, request *models.Request) error
	findByIDAndRequesterFn      func(ctx context.Context, tx *gorm.DB, id, requesterID uint) (*models.Request, error)
	findByIDsFn                 func(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Request, error)
	findByEventIDFn             func(ctx context.Context, eventID uint) ([]models.Request, error)
	findByRequesterFn           func(ctx context.Context, requesterID uint) ([]models.Request, error)
	existsByRequesterAndEventFn func(ctx context.Context, tx *gorm.DB, requesterID, eventID uint) (bool, error)
	countByStatusFn             func(ctx context.Context, tx *gorm.DB, eventID uint, status models.RequestStatus) (int64, error)
	countConfirmedByEventIDsFn  func(ctx context.Context, eventIDs []uint) (map[uint]int64, error)
	updateStatusFn              func(ctx context.Context, tx *gorm.DB, ids []uint, status models.RequestStatus) error
}

func (m *mockRequestRepo) Create(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	return m.createFn(ctx, tx, request)
}
func (m *mockRequestRepo) Save(ctx context.Context, tx *gorm.DB, request *models.Request) error {
	return m.saveFn(ctx, tx, request)
}
func (m *mockRequestRepo) FindByIDAndRequester(ctx context.Context, tx *gorm.DB, id, requesterID uint) (*models.Request, error) {
	return m.findByIDAndRequesterFn(ctx, tx, id, requesterID)
}
func (m *mockRequestRepo) FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Request, error) {
	return m.findByIDsFn(ctx, tx, ids)
}
func (m *mockRequestRepo) FindByEventID(ctx context.Context, eventID uint) ([]models.Request, error) {
	return m.findByEventIDFn(ctx, eventID)
}
func (m *mockRequestRepo) FindByRequester(ctx context.Context, requesterID uint) ([]models.Request, error) {
	return m.findByRequesterFn(ctx, requesterID)
}
func (m *mockRequestRepo) ExistsByRequesterAndEvent(ctx context.Context, tx *gorm.DB, requesterID, eventID uint) (bool, error) {
	if m.existsByRequesterAndEventFn == nil {
		return false, nil
	}
	return m.existsByRequesterAndEventFn(ctx, tx, requesterID, eventID)
}
func (m *mockRequestRepo) CountByStatus(ctx context.Context, tx *gorm.DB, eventID uint, status models.RequestStatus) (int64, error) {
	if m.countByStatusFn == nil {
		return 0, nil
	}
	return m.countByStatusFn(ctx, tx, eventID, status)
}
func (m *mockRequestRepo) CountConfirmedByEventIDs(ctx context.Context, eventIDs []uint) (map[uint]int64, error) {
	if m.countConfirmedByEventIDsFn == nil {
		return map[uint]int64{}, nil
	}
	return m.countConfirmedByEventIDsFn(ctx, eventIDs)
}
func (m *mockRequestRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, ids []uint, status models.RequestStatus) error {
	if m.updateStatusFn == nil {
		return nil
	}
	return m.updateStatusFn(ctx, tx, ids, status)
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	createFn   func(ctx context.Context, user *models.User) error
	findByIDFn func(ctx context.Context, id uint) (*models.User, error)
	findAllFn  func(ctx context.Context, ids []uint, offset, limit int) ([]models.User, error)
	deleteFn   func(ctx context.Context, id uint) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.createFn(ctx, user)
}
func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.findByIDFn == nil {
		return &models.User{ID: id, Name: "user"}, nil
	}
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindAll(ctx context.Context, ids []uint, offset, limit int) ([]models.User, error) {
	return m.findAllFn(ctx, ids, offset, limit)
}
func (m *mockUserRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := m.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}
func (m *mockUserRepo) Delete(ctx context.Context, id uint) error {
	return m.deleteFn(ctx, id)
}

// --- Mock CategoryRepository ---

type mockCategoryRepo struct {
	createFn   func(ctx context.Context, category *models.Category) error
	findByIDFn func(ctx context.Context, id uint) (*models.Category, error)
	findAllFn  func(ctx context.Context, offset, limit int) ([]models.Category, error)
	updateFn   func(ctx context.Context, category *models.Category) error
	deleteFn   func(ctx context.Context, id uint) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	return m.createFn(ctx, category)
}
func (m *mockCategoryRepo) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	if m.findByIDFn == nil {
		return &models.Category{ID: id, Name: "concerts"}, nil
	}
	return m.findByIDFn(ctx, id)
}
func (m *mockCategoryRepo) FindAll(ctx context.Context, offset, limit int) ([]models.Category, error) {
	return m.findAllFn(ctx, offset, limit)
}
func (m *mockCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	return m.updateFn(ctx, category)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, id uint) error {
	return m.deleteFn(ctx, id)
}

// --- Mock statistics ---

type mockStats struct {
	hits       []statsclient.EndpointHit
	addHitErr  error
	getStatsFn func(ctx context.Context, q statsclient.StatsQuery) ([]statsclient.ViewStats, error)
}

func (m *mockStats) AddHit(ctx context.Context, hit statsclient.EndpointHit) error {
	m.hits = append(m.hits, hit)
	return m.addHitErr
}
func (m *mockStats) GetStats(ctx context.Context, q statsclient.StatsQuery) ([]statsclient.ViewStats, error) {
	if m.getStatsFn == nil {
		return nil, nil
	}
	return m.getStatsFn(ctx, q)
}

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }
