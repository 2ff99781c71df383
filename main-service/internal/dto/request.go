package dto

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/pkg/datetime"
)

type UserStateAction string

const (
	SendToReview UserStateAction = "SEND_TO_REVIEW"
	CancelReview UserStateAction = "CANCEL_REVIEW"
)

type AdminStateAction string

const (
	PublishEvent AdminStateAction = "PUBLISH_EVENT"
	RejectEvent  AdminStateAction = "REJECT_EVENT"
)

type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r NewUserRequest) Validate() error {
	if err := textLength("name", r.Name, 2, 250); err != nil {
		return err
	}
	if err := textLength("email", r.Email, 6, 254); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("email %q is not a valid address", r.Email)
	}
	return nil
}

type CategoryRequest struct {
	Name string `json:"name"`
}

func (r CategoryRequest) Validate() error {
	return textLength("name", r.Name, 1, 50)
}

type LocationDto struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type NewEventRequest struct {
	Annotation        string            `json:"annotation"`
	Category          uint              `json:"category"`
	Description       string            `json:"description"`
	EventDate         datetime.DateTime `json:"eventDate"`
	Location          *LocationDto      `json:"location"`
	Paid              *bool             `json:"paid"`
	ParticipantLimit  *int              `json:"participantLimit"`
	RequestModeration *bool             `json:"requestModeration"`
	Title             string            `json:"title"`
}

func (r NewEventRequest) Validate() error {
	switch {
	case r.Category == 0:
		return errors.New("category is required")
	case r.EventDate.IsZero():
		return errors.New("eventDate is required")
	case r.Location == nil:
		return errors.New("location is required")
	case r.ParticipantLimit != nil && *r.ParticipantLimit < 0:
		return errors.New("participantLimit must not be negative")
	}
	if err := textLength("annotation", r.Annotation, 20, 2000); err != nil {
		return err
	}
	if err := textLength("description", r.Description, 20, 7000); err != nil {
		return err
	}
	return textLength("title", r.Title, 3, 120)
}

// UpdateEventFields is a partial update: nil fields keep the current value.
type UpdateEventFields struct {
	Annotation        *string            `json:"annotation"`
	Category          *uint              `json:"category"`
	Description       *string            `json:"description"`
	EventDate         *datetime.DateTime `json:"eventDate"`
	Location          *LocationDto       `json:"location"`
	Paid              *bool              `json:"paid"`
	ParticipantLimit  *int               `json:"participantLimit"`
	RequestModeration *bool              `json:"requestModeration"`
	Title             *string            `json:"title"`
}

func (f UpdateEventFields) Validate() error {
	if f.Annotation != nil {
		if err := textLength("annotation", *f.Annotation, 20, 2000); err != nil {
			return err
		}
	}
	if f.Description != nil {
		if err := textLength("description", *f.Description, 20, 7000); err != nil {
			return err
		}
	}
	if f.Title != nil {
		if err := textLength("title", *f.Title, 3, 120); err != nil {
			return err
		}
	}
	if f.ParticipantLimit != nil && *f.ParticipantLimit < 0 {
		return errors.New("participantLimit must not be negative")
	}
	if f.EventDate != nil && f.EventDate.IsZero() {
		return errors.New("eventDate must not be empty")
	}
	return nil
}

type UpdateEventUserRequest struct {
	UpdateEventFields
	StateAction *UserStateAction `json:"stateAction"`
}

func (r UpdateEventUserRequest) Validate() error {
	if r.StateAction != nil && *r.StateAction != SendToReview && *r.StateAction != CancelReview {
		return fmt.Errorf("unknown stateAction %q", *r.StateAction)
	}
	return r.UpdateEventFields.Validate()
}

type UpdateEventAdminRequest struct {
	UpdateEventFields
	StateAction *AdminStateAction `json:"stateAction"`
}

func (r UpdateEventAdminRequest) Validate() error {
	if r.StateAction != nil && *r.StateAction != PublishEvent && *r.StateAction != RejectEvent {
		return fmt.Errorf("unknown stateAction %q", *r.StateAction)
	}
	return r.UpdateEventFields.Validate()
}

type EventRequestStatusUpdateRequest struct {
	RequestIDs []uint               `json:"requestIds"`
	Status     models.RequestStatus `json:"status"`
}

func (r EventRequestStatusUpdateRequest) Validate() error {
	if len(r.RequestIDs) == 0 {
		return errors.New("requestIds must not be empty")
	}
	if r.Status == "" {
		return errors.New("status is required")
	}
	return nil
}

type NewCompilationRequest struct {
	Events []uint `json:"events"`
	Pinned bool   `json:"pinned"`
	Title  string `json:"title"`
}

func (r NewCompilationRequest) Validate() error {
	return textLength("title", r.Title, 1, 50)
}

type UpdateCompilationRequest struct {
	Events *[]uint `json:"events"`
	Pinned *bool   `json:"pinned"`
	Title  *string `json:"title"`
}

func (r UpdateCompilationRequest) Validate() error {
	if r.Title != nil {
		return textLength("title", *r.Title, 1, 50)
	}
	return nil
}

type CommentRequest struct {
	Text string `json:"text"`
}

func (r CommentRequest) Validate() error {
	return textLength("text", r.Text, 1, 2000)
}

type AdminEventFilter struct {
	Users      []uint
	States     []string
	Categories []uint
	RangeStart *time.Time
	RangeEnd   *time.Time
	From       int
	Size       int
}

type PublicEventFilter struct {
	Text          string
	Categories    []uint
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          string
	From          int
	Size          int
	ClientIP      string
	RequestURI    string
}

func textLength(field, value string, min, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be blank", field)
	}
	if n := utf8.RuneCountInString(value); n < min || n > max {
		return fmt.Errorf("%s length must be between %d and %d, got %d", field, min, max, n)
	}
	return nil
}
