package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"github.com/MIgor26/explore-with-me/pkg/datetime"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestEventService(events *mockEventRepo, requests *mockRequestRepo, stats *mockStats) *eventService {
	var (
		reader   ViewStatsReader
		recorder HitRecorder
	)
	if stats != nil {
		reader, recorder = stats, stats
	}
	views := NewViewEnricher(requests, reader, "ewm-main-service")
	views.now = clock
	svc := NewEventService(noTx{}, events, &mockUserRepo{}, &mockCategoryRepo{}, views, recorder, "ewm-main-service").(*eventService)
	svc.now = clock
	return svc
}

func sampleNewEvent(at time.Time) dto.NewEventRequest {
	return dto.NewEventRequest{
		Annotation:  "An evening of live jazz by the river",
		Category:    3,
		Description: "Bring friends, the quartet plays until midnight.",
		EventDate:   datetime.New(at),
		Location:    &dto.LocationDto{Lat: 55.75, Lon: 37.61},
		Title:       "Jazz night",
	}
}

func sampleEvent(state models.EventState) *models.Event {
	return &models.Event{
		ID:                1,
		Title:             "Jazz night",
		CategoryID:        3,
		InitiatorID:       10,
		EventDate:         fixedNow.Add(48 * time.Hour),
		CreatedOn:         fixedNow.Add(-time.Hour),
		RequestModeration: true,
		State:             state,
	}
}

func TestCreateEvent_Success(t *testing.T) {
	var created *models.Event
	events := &mockEventRepo{
		createFn: func(ctx context.Context, tx *gorm.DB, event *models.Event) error {
			event.ID = 1
			created = event
			return nil
		},
	}

	svc := newTestEventService(events, &mockRequestRepo{}, nil)
	resp, err := svc.CreateEvent(context.Background(), 10, sampleNewEvent(fixedNow.Add(3*time.Hour)))

	require.NoError(t, err)
	assert.Equal(t, uint(1), resp.ID)
	assert.Equal(t, models.EventPending, resp.State)
	assert.True(t, resp.RequestModeration)
	assert.Equal(t, 0, resp.ParticipantLimit)
	assert.Nil(t, resp.PublishedOn)
	assert.Equal(t, uint(7), created.LocationID)
	assert.Equal(t, "concerts", resp.Category.Name)
}

func TestCreateEvent_UnknownCategory(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, &mockRequestRepo{}, nil)
	svc.categories = &mockCategoryRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Category, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	_, err := svc.CreateEvent(context.Background(), 10, sampleNewEvent(fixedNow.Add(3*time.Hour)))

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEvent_UnknownUser(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, &mockRequestRepo{}, nil)
	svc.users = &mockUserRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	_, err := svc.CreateEvent(context.Background(), 10, sampleNewEvent(fixedNow.Add(3*time.Hour)))

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateEvent_DateRuleProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("createEvent fails iff eventDate is earlier than now+2h", prop.ForAll(
		func(offsetMinutes int) bool {
			events := &mockEventRepo{
				createFn: func(ctx context.Context, tx *gorm.DB, event *models.Event) error {
					event.ID = 1
					return nil
				},
			}
			svc := newTestEventService(events, &mockRequestRepo{}, nil)
			at := fixedNow.Add(time.Duration(offsetMinutes) * time.Minute)

			_, err := svc.CreateEvent(context.Background(), 10, sampleNewEvent(at))

			tooSoon := at.Before(fixedNow.Add(2 * time.Hour))
			if tooSoon {
				return errors.Is(err, ErrValidation)
			}
			return err == nil
		},
		gen.IntRange(-600, 600),
	))
	properties.TestingRun(t)
}

func TestAdminStateActionsProperty(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	states := gen.OneConstOf(models.EventPending, models.EventPublished, models.EventCanceled)

	properties.Property("PUBLISH_EVENT succeeds iff the event is pending", prop.ForAll(
		func(state models.EventState) bool {
			err := adminAction(state, dto.PublishEvent)
			if state == models.EventPending {
				return err == nil
			}
			return errors.Is(err, ErrConflict)
		},
		states,
	))
	properties.Property("REJECT_EVENT succeeds iff the event is not published", prop.ForAll(
		func(state models.EventState) bool {
			err := adminAction(state, dto.RejectEvent)
			if state != models.EventPublished {
				return err == nil
			}
			return errors.Is(err, ErrConflict)
		},
		states,
	))
	properties.TestingRun(t)
}

func adminAction(state models.EventState, action dto.AdminStateAction) error {
	stored := sampleEvent(state)
	events := &mockEventRepo{
		findByIDForUpdateFn: func(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
			e := *stored
			return &e, nil
		},
		saveFn: func(ctx context.Context, tx *gorm.DB, event *models.Event) error {
			stored = event
			return nil
		},
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return stored, nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, nil)
	_, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventAdminRequest{StateAction: &action})
	return err
}

func TestUpdateEventByAdmin_PublishSetsPublishedOn(t *testing.T) {
	stored := sampleEvent(models.EventPending)
	events := &mockEventRepo{
		findByIDForUpdateFn: func(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
			return stored, nil
		},
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return stored, nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, nil)
	action := dto.PublishEvent

	resp, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventAdminRequest{StateAction: &action})

	require.NoError(t, err)
	assert.Equal(t, models.EventPublished, resp.State)
	require.NotNil(t, resp.PublishedOn)
	assert.True(t, resp.PublishedOn.Equal(fixedNow))
}

func TestUpdateEventByAdmin_DateTooSoon(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, &mockRequestRepo{}, nil)
	soon := datetime.New(fixedNow.Add(30 * time.Minute))

	_, err := svc.UpdateEventByAdmin(context.Background(), 1, dto.UpdateEventAdminRequest{
		UpdateEventFields: dto.UpdateEventFields{EventDate: &soon},
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateEventByInitiator_PublishedIsConflict(t *testing.T) {
	events := &mockEventRepo{
		findByIDForUpdateFn: func(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
			return sampleEvent(models.EventPublished), nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, nil)
	title := "New title"

	_, err := svc.UpdateEventByInitiator(context.Background(), 10, 1, dto.UpdateEventUserRequest{
		UpdateEventFields: dto.UpdateEventFields{Title: &title},
	})

	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateEventByInitiator_NotOwner(t *testing.T) {
	events := &mockEventRepo{
		findByIDForUpdateFn: func(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
			return sampleEvent(models.EventPending), nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, nil)

	_, err := svc.UpdateEventByInitiator(context.Background(), 99, 1, dto.UpdateEventUserRequest{})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEventByInitiator_CancelAndPatch(t *testing.T) {
	stored := sampleEvent(models.EventPending)
	events := &mockEventRepo{
		findByIDForUpdateFn: func(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
			return stored, nil
		},
		findByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return stored, nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, nil)
	action := dto.CancelReview
	limit := 5

	resp, err := svc.UpdateEventByInitiator(context.Background(), 10, 1, dto.UpdateEventUserRequest{
		UpdateEventFields: dto.UpdateEventFields{ParticipantLimit: &limit},
		StateAction:       &action,
	})

	require.NoError(t, err)
	assert.Equal(t, models.EventCanceled, resp.State)
	assert.Equal(t, 5, resp.ParticipantLimit)
}

func TestGetEventPublic_PendingIsNotFound(t *testing.T) {
	events := &mockEventRepo{
		findPublishedByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	stats := &mockStats{}
	svc := newTestEventService(events, &mockRequestRepo{}, stats)

	_, err := svc.GetEventPublic(context.Background(), 1, "10.0.0.1", "/events/1")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, stats.hits)
}

func TestGetEventPublic_RecordsHitAndEnriches(t *testing.T) {
	published := sampleEvent(models.EventPublished)
	publishedOn := fixedNow.Add(-24 * time.Hour)
	published.PublishedOn = &publishedOn

	var query statsclient.StatsQuery
	stats := &mockStats{
		getStatsFn: func(ctx context.Context, q statsclient.StatsQuery) ([]statsclient.ViewStats, error) {
			query = q
			return []statsclient.ViewStats{{App: "ewm-main-service", URI: "/events/1", Hits: 4}}, nil
		},
	}
	requests := &mockRequestRepo{
		countByStatusFn: func(ctx context.Context, tx *gorm.DB, eventID uint, status models.RequestStatus) (int64, error) {
			return 2, nil
		},
	}
	events := &mockEventRepo{
		findPublishedByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return published, nil
		},
	}
	svc := newTestEventService(events, requests, stats)

	resp, err := svc.GetEventPublic(context.Background(), 1, "10.0.0.1", "/events/1")

	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.Views)
	assert.Equal(t, int64(2), resp.ConfirmedRequests)
	require.Len(t, stats.hits, 1)
	assert.Equal(t, "10.0.0.1", stats.hits[0].IP)
	assert.Equal(t, "/events/1", stats.hits[0].URI)
	assert.Equal(t, "ewm-main-service", stats.hits[0].App)
	assert.True(t, query.Unique)
	assert.Equal(t, publishedOn, query.Start)
	assert.Equal(t, []string{"/events/1"}, query.URIs)
}

func TestGetEventPublic_StatsDownMeansZeroViews(t *testing.T) {
	stats := &mockStats{
		addHitErr: errors.New("connection refused"),
		getStatsFn: func(ctx context.Context, q statsclient.StatsQuery) ([]statsclient.ViewStats, error) {
			return nil, errors.New("connection refused")
		},
	}
	events := &mockEventRepo{
		findPublishedByIDFn: func(ctx context.Context, id uint) (*models.Event, error) {
			return sampleEvent(models.EventPublished), nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, stats)

	resp, err := svc.GetEventPublic(context.Background(), 1, "10.0.0.1", "/events/1")

	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Views)
}

func TestListEventsPublic_SortByViews(t *testing.T) {
	var gotQuery repository.PublicEventQuery
	events := &mockEventRepo{
		searchPublicFn: func(ctx context.Context, q repository.PublicEventQuery) ([]models.Event, error) {
			gotQuery = q
			return []models.Event{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		},
	}
	stats := &mockStats{
		getStatsFn: func(ctx context.Context, q statsclient.StatsQuery) ([]statsclient.ViewStats, error) {
			return []statsclient.ViewStats{
				{App: "ewm-main-service", URI: "/events/1", Hits: 9},
				{App: "ewm-main-service", URI: "/events/2", Hits: 1},
				{App: "ewm-main-service", URI: "/events/3", Hits: 5},
			}, nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, stats)

	resp, err := svc.ListEventsPublic(context.Background(), dto.PublicEventFilter{
		Sort: "VIEWS", From: 0, Size: 2, ClientIP: "10.0.0.1", RequestURI: "/events",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, gotQuery.Limit)
	assert.Equal(t, fixedNow, gotQuery.RangeStart)
	require.Len(t, resp, 2)
	assert.Equal(t, uint(2), resp[0].ID)
	assert.Equal(t, uint(3), resp[1].ID)
	require.Len(t, stats.hits, 1)
	assert.Equal(t, "/events", stats.hits[0].URI)
}

func TestListEventsPublic_HitFailureIsIgnored(t *testing.T) {
	events := &mockEventRepo{
		searchPublicFn: func(ctx context.Context, q repository.PublicEventQuery) ([]models.Event, error) {
			return []models.Event{*sampleEvent(models.EventPublished)}, nil
		},
	}
	stats := &mockStats{addHitErr: errors.New("down")}
	svc := newTestEventService(events, &mockRequestRepo{}, stats)

	resp, err := svc.ListEventsPublic(context.Background(), dto.PublicEventFilter{
		Size: 10, ClientIP: "10.0.0.1", RequestURI: "/events",
	})

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, uint(1), resp[0].ID)
	assert.Len(t, stats.hits, 1)
}

func TestListEventsPublic_SortByEventDate(t *testing.T) {
	var gotQuery repository.PublicEventQuery
	soon, later := fixedNow.Add(24*time.Hour), fixedNow.Add(72*time.Hour)
	events := &mockEventRepo{
		searchPublicFn: func(ctx context.Context, q repository.PublicEventQuery) ([]models.Event, error) {
			gotQuery = q
			return []models.Event{{ID: 4, EventDate: soon}, {ID: 2, EventDate: later}}, nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, nil)

	resp, err := svc.ListEventsPublic(context.Background(), dto.PublicEventFilter{
		Sort: "event_date", From: 20, Size: 5,
	})

	require.NoError(t, err)
	assert.True(t, gotQuery.OrderByEventDate)
	assert.Equal(t, 20, gotQuery.Offset)
	assert.Equal(t, 5, gotQuery.Limit)
	require.Len(t, resp, 2)
	assert.Equal(t, uint(4), resp[0].ID)
	assert.Equal(t, uint(2), resp[1].ID)
}

func TestListEventsPublic_DefaultSortKeepsSQLOrder(t *testing.T) {
	var gotQuery repository.PublicEventQuery
	events := &mockEventRepo{
		searchPublicFn: func(ctx context.Context, q repository.PublicEventQuery) ([]models.Event, error) {
			gotQuery = q
			return nil, nil
		},
	}
	svc := newTestEventService(events, &mockRequestRepo{}, nil)

	_, err := svc.ListEventsPublic(context.Background(), dto.PublicEventFilter{From: 0, Size: 10})

	require.NoError(t, err)
	assert.False(t, gotQuery.OrderByEventDate)
	assert.Equal(t, 10, gotQuery.Limit)
}

func TestListEventsPublic_InvalidRange(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, &mockRequestRepo{}, nil)
	start, end := fixedNow.Add(48*time.Hour), fixedNow.Add(24*time.Hour)

	_, err := svc.ListEventsPublic(context.Background(), dto.PublicEventFilter{RangeStart: &start, RangeEnd: &end})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestListEventsPublic_UnknownSort(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, &mockRequestRepo{}, nil)

	_, err := svc.ListEventsPublic(context.Background(), dto.PublicEventFilter{Sort: "RANDOM"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestListEventsByAdmin_UnknownState(t *testing.T) {
	svc := newTestEventService(&mockEventRepo{}, &mockRequestRepo{}, nil)

	_, err := svc.ListEventsByAdmin(context.Background(), dto.AdminEventFilter{States: []string{"ARCHIVED"}})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestListEventsByAdmin_PassesFilters(t *testing.T) {
	var gotQuery repository.AdminEventQuery
	events := &mockEventRepo{
		searchAdminFn: func(ctx context.Context, q repository.AdminEventQuery) ([]models.Event, error) {
			gotQuery = q
			return []models.Event{*sampleEvent(models.EventPublished)}, nil
		},
	}
	requests := &mockRequestRepo{
		countConfirmedByEventIDsFn: func(ctx context.Context, eventIDs []uint) (map[uint]int64, error) {
			return map[uint]int64{1: 3}, nil
		},
	}
	svc := newTestEventService(events, requests, nil)

	resp, err := svc.ListEventsByAdmin(context.Background(), dto.AdminEventFilter{
		Users: []uint{10}, States: []string{"published"}, From: 5, Size: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, []models.EventState{models.EventPublished}, gotQuery.States)
	assert.Equal(t, 5, gotQuery.Offset)
	assert.Equal(t, 10, gotQuery.Limit)
	require.Len(t, resp, 1)
	assert.Equal(t, int64(3), resp[0].ConfirmedRequests)
}
