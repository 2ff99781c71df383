package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"github.com/MIgor26/explore-with-me/pkg/datetime"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
	"gorm.io/gorm"
)

const (
	initiatorLeadTime = 2 * time.Hour
	adminLeadTime     = time.Hour

	sortByEventDate = "EVENT_DATE"
	sortByViews     = "VIEWS"
)

type EventService interface {
	CreateEvent(ctx context.Context, userID uint, req dto.NewEventRequest) (*dto.EventFullResponse, error)
	GetEventByInitiator(ctx context.Context, userID, eventID uint) (*dto.EventFullResponse, error)
	ListEventsByInitiator(ctx context.Context, userID uint, from, size int) ([]dto.EventShortResponse, error)
	UpdateEventByInitiator(ctx context.Context, userID, eventID uint, req dto.UpdateEventUserRequest) (*dto.EventFullResponse, error)
	UpdateEventByAdmin(ctx context.Context, eventID uint, req dto.UpdateEventAdminRequest) (*dto.EventFullResponse, error)
	ListEventsByAdmin(ctx context.Context, f dto.AdminEventFilter) ([]dto.EventFullResponse, error)
	ListEventsPublic(ctx context.Context, f dto.PublicEventFilter) ([]dto.EventShortResponse, error)
	GetEventPublic(ctx context.Context, eventID uint, clientIP, requestURI string) (*dto.EventFullResponse, error)
}

type eventService struct {
	tx         repository.Transactor
	events     repository.EventRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	views      *ViewEnricher
	hits       HitRecorder
	appName    string
	now        func() time.Time
}

func NewEventService(
	tx repository.Transactor,
	events repository.EventRepository,
	users repository.UserRepository,
	categories repository.CategoryRepository,
	views *ViewEnricher,
	hits HitRecorder,
	appName string,
) EventService {
	return &eventService{
		tx:         tx,
		events:     events,
		users:      users,
		categories: categories,
		views:      views,
		hits:       hits,
		appName:    appName,
		now:        time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, userID uint, req dto.NewEventRequest) (*dto.EventFullResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupErr(err, "user", userID)
	}

	now := s.now()
	if req.EventDate.Before(now.Add(initiatorLeadTime)) {
		return nil, validationf("eventDate must be at least %s after now, got %s", initiatorLeadTime, datetime.Format(req.EventDate.Time))
	}

	category, err := s.categories.FindByID(ctx, req.Category)
	if err != nil {
		return nil, lookupErr(err, "category", req.Category)
	}

	event := &models.Event{
		Annotation:        req.Annotation,
		Description:       req.Description,
		Title:             req.Title,
		CategoryID:        category.ID,
		InitiatorID:       user.ID,
		EventDate:         req.EventDate.Time,
		CreatedOn:         now,
		Paid:              valueOr(req.Paid, false),
		ParticipantLimit:  valueOr(req.ParticipantLimit, 0),
		RequestModeration: valueOr(req.RequestModeration, true),
		State:             models.EventPending,
		Category:          category,
		Initiator:         user,
	}

	err = s.tx.InTx(ctx, func(tx *gorm.DB) error {
		loc, err := s.events.FindOrCreateLocation(ctx, tx, req.Location.Lat, req.Location.Lon)
		if err != nil {
			return fmt.Errorf("resolve location: %w", err)
		}
		event.LocationID = loc.ID
		event.Location = loc
		if err := s.events.Create(ctx, tx, event); err != nil {
			return writeErr(err, "create event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[EventService] event %d created by user %d", event.ID, userID)
	return s.fullResponse(ctx, event)
}

func (s *eventService) GetEventByInitiator(ctx context.Context, userID, eventID uint) (*dto.EventFullResponse, error) {
	event, err := s.events.FindByIDAndInitiator(ctx, eventID, userID)
	if err != nil {
		return nil, lookupErr(err, "event", eventID)
	}
	return s.fullResponse(ctx, event)
}

func (s *eventService) ListEventsByInitiator(ctx context.Context, userID uint, from, size int) ([]dto.EventShortResponse, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return nil, notFoundf("user with id=%d was not found", userID)
	}

	events, err := s.events.FindByInitiator(ctx, userID, from, size)
	if err != nil {
		return nil, fmt.Errorf("list events of user %d: %w", userID, err)
	}
	return s.shortResponses(ctx, events)
}

func (s *eventService) UpdateEventByInitiator(ctx context.Context, userID, eventID uint, req dto.UpdateEventUserRequest) (*dto.EventFullResponse, error) {
	now := s.now()
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.events.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return lookupErr(err, "event", eventID)
		}
		if event.InitiatorID != userID {
			return notFoundf("event with id=%d was not found", eventID)
		}
		if event.State != models.EventPending && event.State != models.EventCanceled {
			return conflictf("only pending or canceled events can be changed, event %d is %s", eventID, event.State)
		}
		if req.EventDate != nil && req.EventDate.Before(now.Add(initiatorLeadTime)) {
			return validationf("eventDate must be at least %s after now, got %s", initiatorLeadTime, datetime.Format(req.EventDate.Time))
		}

		if req.StateAction != nil {
			switch *req.StateAction {
			case dto.SendToReview:
				event.State = models.EventPending
			case dto.CancelReview:
				event.State = models.EventCanceled
			}
		}

		if err := s.applyPatch(ctx, tx, event, req.UpdateEventFields); err != nil {
			return err
		}
		if err := s.events.Save(ctx, tx, event); err != nil {
			return writeErr(err, "update event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, eventID)
}

func (s *eventService) UpdateEventByAdmin(ctx context.Context, eventID uint, req dto.UpdateEventAdminRequest) (*dto.EventFullResponse, error) {
	now := s.now()
	if req.EventDate != nil && req.EventDate.Before(now.Add(adminLeadTime)) {
		return nil, validationf("eventDate must be at least %s after now, got %s", adminLeadTime, datetime.Format(req.EventDate.Time))
	}

	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.events.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return lookupErr(err, "event", eventID)
		}

		if req.StateAction != nil {
			switch *req.StateAction {
			case dto.PublishEvent:
				if event.State != models.EventPending {
					return conflictf("cannot publish event %d in state %s", eventID, event.State)
				}
				event.State = models.EventPublished
				event.PublishedOn = &now
			case dto.RejectEvent:
				if event.State == models.EventPublished {
					return conflictf("cannot reject published event %d", eventID)
				}
				event.State = models.EventCanceled
			}
		}

		if err := s.applyPatch(ctx, tx, event, req.UpdateEventFields); err != nil {
			return err
		}
		if err := s.events.Save(ctx, tx, event); err != nil {
			return writeErr(err, "update event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.StateAction != nil {
		log.Printf("[EventService] admin applied %s to event %d", *req.StateAction, eventID)
	}
	return s.reload(ctx, eventID)
}

func (s *eventService) ListEventsByAdmin(ctx context.Context, f dto.AdminEventFilter) ([]dto.EventFullResponse, error) {
	q := repository.AdminEventQuery{
		UserIDs:     f.Users,
		CategoryIDs: f.Categories,
		RangeStart:  f.RangeStart,
		RangeEnd:    f.RangeEnd,
		Offset:      f.From,
		Limit:       f.Size,
	}
	for _, raw := range f.States {
		state, ok := models.ParseEventState(strings.ToUpper(raw))
		if !ok {
			return nil, validationf("unknown event state %q", raw)
		}
		q.States = append(q.States, state)
	}
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeStart.After(*f.RangeEnd) {
		return nil, validationf("rangeStart must not be after rangeEnd")
	}

	events, err := s.events.SearchAdmin(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	counts, err := s.views.ForEvents(ctx, events)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.EventFullResponse, len(events))
	for i := range events {
		c := counts[events[i].ID]
		resp[i] = dto.ToEventFullResponse(&events[i], c.Confirmed, c.Views)
	}
	return resp, nil
}

func (s *eventService) ListEventsPublic(ctx context.Context, f dto.PublicEventFilter) ([]dto.EventShortResponse, error) {
	order := strings.ToUpper(strings.TrimSpace(f.Sort))
	if order != "" && order != sortByEventDate && order != sortByViews {
		return nil, validationf("unknown sort %q", f.Sort)
	}
	if f.RangeStart != nil && f.RangeEnd != nil && f.RangeStart.After(*f.RangeEnd) {
		return nil, validationf("rangeStart must not be after rangeEnd")
	}

	s.recordHit(ctx, f.ClientIP, f.RequestURI)

	q := repository.PublicEventQuery{
		Text:             f.Text,
		CategoryIDs:      f.Categories,
		Paid:             f.Paid,
		RangeStart:       s.now(),
		RangeEnd:         f.RangeEnd,
		OnlyAvailable:    f.OnlyAvailable,
		OrderByEventDate: order == sortByEventDate,
	}
	if f.RangeStart != nil {
		q.RangeStart = *f.RangeStart
	}
	// views live in another service, so that ordering pages in memory
	if order != sortByViews {
		q.Offset, q.Limit = f.From, f.Size
	}

	events, err := s.events.SearchPublic(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	resp, err := s.shortResponses(ctx, events)
	if err != nil {
		return nil, err
	}

	if order == sortByViews {
		sort.SliceStable(resp, func(i, j int) bool { return resp[i].Views < resp[j].Views })
		resp = page(resp, f.From, f.Size)
	}
	return resp, nil
}

func (s *eventService) GetEventPublic(ctx context.Context, eventID uint, clientIP, requestURI string) (*dto.EventFullResponse, error) {
	event, err := s.events.FindPublishedByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, "event", eventID)
	}

	s.recordHit(ctx, clientIP, requestURI)
	return s.fullResponse(ctx, event)
}

// applyPatch copies every non-nil field of the update onto the event.
func (s *eventService) applyPatch(ctx context.Context, tx *gorm.DB, event *models.Event, p dto.UpdateEventFields) error {
	if p.Annotation != nil {
		event.Annotation = *p.Annotation
	}
	if p.Category != nil {
		category, err := s.categories.FindByID(ctx, *p.Category)
		if err != nil {
			return lookupErr(err, "category", *p.Category)
		}
		event.CategoryID = category.ID
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	if p.EventDate != nil {
		event.EventDate = p.EventDate.Time
	}
	if p.Location != nil {
		loc, err := s.events.FindOrCreateLocation(ctx, tx, p.Location.Lat, p.Location.Lon)
		if err != nil {
			return fmt.Errorf("resolve location: %w", err)
		}
		event.LocationID = loc.ID
	}
	if p.Paid != nil {
		event.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		event.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		event.RequestModeration = *p.RequestModeration
	}
	if p.Title != nil {
		event.Title = *p.Title
	}
	return nil
}

func (s *eventService) recordHit(ctx context.Context, ip, uri string) {
	if s.hits == nil {
		return
	}
	hit := statsclient.EndpointHit{App: s.appName, URI: uri, IP: ip, Timestamp: datetime.New(s.now())}
	if err := s.hits.AddHit(ctx, hit); err != nil {
		log.Printf("[EventService] failed to record hit for %s: %v", uri, err)
	}
}

func (s *eventService) reload(ctx context.Context, eventID uint) (*dto.EventFullResponse, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, "event", eventID)
	}
	return s.fullResponse(ctx, event)
}

func (s *eventService) fullResponse(ctx context.Context, event *models.Event) (*dto.EventFullResponse, error) {
	counts, err := s.views.ForEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	resp := dto.ToEventFullResponse(event, counts.Confirmed, counts.Views)
	return &resp, nil
}

func (s *eventService) shortResponses(ctx context.Context, events []models.Event) ([]dto.EventShortResponse, error) {
	counts, err := s.views.ForEvents(ctx, events)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.EventShortResponse, len(events))
	for i := range events {
		c := counts[events[i].ID]
		resp[i] = dto.ToEventShortResponse(&events[i], c.Confirmed, c.Views)
	}
	return resp, nil
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

func page[T any](items []T, from, size int) []T {
	if from >= len(items) {
		return []T{}
	}
	end := len(items)
	if size > 0 && from+size < end {
		end = from + size
	}
	return items[from:end]
}
