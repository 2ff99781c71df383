package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/internal/dto"
	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"gorm.io/gorm"
)

type RequestService interface {
	ListUserRequests(ctx context.Context, userID uint) ([]dto.ParticipationRequestResponse, error)
	AddRequest(ctx context.Context, userID, eventID uint) (*dto.ParticipationRequestResponse, error)
	CancelRequest(ctx context.Context, userID, requestID uint) (*dto.ParticipationRequestResponse, error)
	ListEventRequests(ctx context.Context, userID, eventID uint) ([]dto.ParticipationRequestResponse, error)
	UpdateRequestStatuses(ctx context.Context, userID, eventID uint, req dto.EventRequestStatusUpdateRequest) (*dto.EventRequestStatusUpdateResult, error)
}

type requestService struct {
	tx       repository.Transactor
	requests repository.RequestRepository
	events   repository.EventRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewRequestService(
	tx repository.Transactor,
	requests repository.RequestRepository,
	events repository.EventRepository,
	users repository.UserRepository,
) RequestService {
	return &requestService{
		tx:       tx,
		requests: requests,
		events:   events,
		users:    users,
		now:      time.Now,
	}
}

func (s *requestService) ListUserRequests(ctx context.Context, userID uint) ([]dto.ParticipationRequestResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.requests.FindByRequester(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list requests of user %d: %w", userID, err)
	}
	return dto.ToParticipationRequestResponses(requests), nil
}

// AddRequest holds the event row lock while checking capacity, so concurrent
// requests for the same event cannot overbook it.
func (s *requestService) AddRequest(ctx context.Context, userID, eventID uint) (*dto.ParticipationRequestResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	var result *models.Request
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.events.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return lookupErr(err, "event", eventID)
		}

		exists, err := s.requests.ExistsByRequesterAndEvent(ctx, tx, userID, eventID)
		if err != nil {
			return fmt.Errorf("check existing request: %w", err)
		}
		if exists {
			return conflictf("user %d already requested participation in event %d", userID, eventID)
		}
		if event.InitiatorID == userID {
			return conflictf("initiator cannot request participation in own event %d", eventID)
		}
		if event.State != models.EventPublished {
			return conflictf("event %d is not published", eventID)
		}

		confirmed, err := s.requests.CountByStatus(ctx, tx, eventID, models.RequestConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed requests: %w", err)
		}
		if !event.HasFreeSlot(confirmed) {
			return conflictf("participant limit of event %d has been reached", eventID)
		}

		request := &models.Request{
			Created:     s.now(),
			EventID:     eventID,
			RequesterID: userID,
			Status:      models.RequestPending,
		}
		if event.AutoConfirms() {
			request.Status = models.RequestConfirmed
		}
		if err := s.requests.Create(ctx, tx, request); err != nil {
			return writeErr(err, "create request")
		}
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[RequestService] request %d by user %d for event %d is %s", result.ID, userID, eventID, result.Status)
	resp := dto.ToParticipationRequestResponse(result)
	return &resp, nil
}

func (s *requestService) CancelRequest(ctx context.Context, userID, requestID uint) (*dto.ParticipationRequestResponse, error) {
	var result *models.Request
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		request, err := s.requests.FindByIDAndRequester(ctx, tx, requestID, userID)
		if err != nil {
			return lookupErr(err, "request", requestID)
		}
		request.Status = models.RequestCanceled
		if err := s.requests.Save(ctx, tx, request); err != nil {
			return fmt.Errorf("cancel request %d: %w", requestID, err)
		}
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.ToParticipationRequestResponse(result)
	return &resp, nil
}

func (s *requestService) ListEventRequests(ctx context.Context, userID, eventID uint) ([]dto.ParticipationRequestResponse, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, lookupErr(err, "event", eventID)
	}
	if event.InitiatorID != userID {
		return nil, validationf("user %d is not the initiator of event %d", userID, eventID)
	}

	requests, err := s.requests.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list requests of event %d: %w", eventID, err)
	}
	return dto.ToParticipationRequestResponses(requests), nil
}

func (s *requestService) UpdateRequestStatuses(ctx context.Context, userID, eventID uint, req dto.EventRequestStatusUpdateRequest) (*dto.EventRequestStatusUpdateResult, error) {
	if req.Status != models.RequestConfirmed && req.Status != models.RequestRejected {
		return nil, validationf("status must be %s or %s, got %q", models.RequestConfirmed, models.RequestRejected, req.Status)
	}
	ids := uniqueIDs(req.RequestIDs)
	if len(ids) == 0 {
		return nil, validationf("requestIds must not be empty")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	result := &dto.EventRequestStatusUpdateResult{
		ConfirmedRequests: []dto.ParticipationRequestResponse{},
		RejectedRequests:  []dto.ParticipationRequestResponse{},
	}
	err := s.tx.InTx(ctx, func(tx *gorm.DB) error {
		event, err := s.events.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return lookupErr(err, "event", eventID)
		}
		if event.InitiatorID != userID {
			return conflictf("user %d is not the initiator of event %d", userID, eventID)
		}
		if event.Unlimited() && !event.RequestModeration {
			return validationf("event %d does not require request moderation", eventID)
		}

		confirmed, err := s.requests.CountByStatus(ctx, tx, eventID, models.RequestConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed requests: %w", err)
		}
		if req.Status == models.RequestConfirmed && !event.HasFreeSlot(confirmed) {
			return conflictf("participant limit of event %d has been reached", eventID)
		}

		requests, err := s.requests.FindByIDs(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("load requests: %w", err)
		}
		if err := requireAllFor(eventID, ids, requests); err != nil {
			return err
		}

		toConfirm, toReject := moderate(event, confirmed, requests, req.Status)
		if err := s.requests.UpdateStatus(ctx, tx, requestIDs(toConfirm), models.RequestConfirmed); err != nil {
			return fmt.Errorf("confirm requests: %w", err)
		}
		if err := s.requests.UpdateStatus(ctx, tx, requestIDs(toReject), models.RequestRejected); err != nil {
			return fmt.Errorf("reject requests: %w", err)
		}

		result.ConfirmedRequests = append(result.ConfirmedRequests, dto.ToParticipationRequestResponses(toConfirm)...)
		result.RejectedRequests = append(result.RejectedRequests, dto.ToParticipationRequestResponses(toReject)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[RequestService] event %d: %d confirmed, %d rejected", eventID, len(result.ConfirmedRequests), len(result.RejectedRequests))
	return result, nil
}

// moderate walks pending requests in order and gives each exactly one final
// status. Confirmation stops once the event is full and the rest are rejected.
// Requests that are no longer pending are left untouched.
func moderate(event *models.Event, confirmed int64, requests []models.Request, target models.RequestStatus) (toConfirm, toReject []models.Request) {
	for _, r := range requests {
		if r.Status != models.RequestPending {
			continue
		}
		if target == models.RequestConfirmed && event.HasFreeSlot(confirmed) {
			r.Status = models.RequestConfirmed
			confirmed++
			toConfirm = append(toConfirm, r)
			continue
		}
		r.Status = models.RequestRejected
		toReject = append(toReject, r)
	}
	return toConfirm, toReject
}

func requireAllFor(eventID uint, ids []uint, requests []models.Request) error {
	found := make(map[uint]bool, len(requests))
	for _, r := range requests {
		if r.EventID != eventID {
			return notFoundf("request with id=%d does not belong to event %d", r.ID, eventID)
		}
		found[r.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return notFoundf("request with id=%d was not found", id)
		}
	}
	return nil
}

func (s *requestService) requireUser(ctx context.Context, userID uint) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", userID, err)
	}
	if !exists {
		return notFoundf("user with id=%d was not found", userID)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func requestIDs(requests []models.Request) []uint {
	ids := make([]uint, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	return ids
}
