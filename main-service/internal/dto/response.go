package dto

import (
	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/pkg/datetime"
)

type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserShortResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type CategoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type EventFullResponse struct {
	ID                uint               `json:"id"`
	Annotation        string             `json:"annotation"`
	Category          CategoryResponse   `json:"category"`
	ConfirmedRequests int64              `json:"confirmedRequests"`
	CreatedOn         datetime.DateTime  `json:"createdOn"`
	Description       string             `json:"description"`
	EventDate         datetime.DateTime  `json:"eventDate"`
	Initiator         UserShortResponse  `json:"initiator"`
	Location          LocationDto        `json:"location"`
	Paid              bool               `json:"paid"`
	ParticipantLimit  int                `json:"participantLimit"`
	PublishedOn       *datetime.DateTime `json:"publishedOn"`
	RequestModeration bool               `json:"requestModeration"`
	State             models.EventState  `json:"state"`
	Title             string             `json:"title"`
	Views             int64              `json:"views"`
}

type EventShortResponse struct {
	ID                uint              `json:"id"`
	Annotation        string            `json:"annotation"`
	Category          CategoryResponse  `json:"category"`
	ConfirmedRequests int64             `json:"confirmedRequests"`
	EventDate         datetime.DateTime `json:"eventDate"`
	Initiator         UserShortResponse `json:"initiator"`
	Paid              bool              `json:"paid"`
	Title             string            `json:"title"`
	Views             int64             `json:"views"`
}

type ParticipationRequestResponse struct {
	ID        uint                 `json:"id"`
	Created   datetime.DateTime    `json:"created"`
	Event     uint                 `json:"event"`
	Requester uint                 `json:"requester"`
	Status    models.RequestStatus `json:"status"`
}

type EventRequestStatusUpdateResult struct {
	ConfirmedRequests []ParticipationRequestResponse `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequestResponse `json:"rejectedRequests"`
}

type CompilationResponse struct {
	ID     uint                 `json:"id"`
	Events []EventShortResponse `json:"events"`
	Pinned bool                 `json:"pinned"`
	Title  string               `json:"title"`
}

type CommentResponse struct {
	ID      uint              `json:"id"`
	Text    string            `json:"text"`
	EventID uint              `json:"eventId"`
	Author  UserShortResponse `json:"author"`
	Created datetime.DateTime `json:"created"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func ToCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

func categoryOf(e *models.Event) CategoryResponse {
	if e.Category == nil {
		return CategoryResponse{ID: e.CategoryID}
	}
	return ToCategoryResponse(e.Category)
}

func initiatorOf(e *models.Event) UserShortResponse {
	if e.Initiator == nil {
		return UserShortResponse{ID: e.InitiatorID}
	}
	return UserShortResponse{ID: e.Initiator.ID, Name: e.Initiator.Name}
}

func ToEventFullResponse(e *models.Event, confirmed, views int64) EventFullResponse {
	resp := EventFullResponse{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          categoryOf(e),
		ConfirmedRequests: confirmed,
		CreatedOn:         datetime.New(e.CreatedOn),
		Description:       e.Description,
		EventDate:         datetime.New(e.EventDate),
		Initiator:         initiatorOf(e),
		Paid:              e.Paid,
		ParticipantLimit:  e.ParticipantLimit,
		PublishedOn:       datetime.Ptr(e.PublishedOn),
		RequestModeration: e.RequestModeration,
		State:             e.State,
		Title:             e.Title,
		Views:             views,
	}
	if e.Location != nil {
		resp.Location = LocationDto{Lat: e.Location.Lat, Lon: e.Location.Lon}
	}
	return resp
}

func ToEventShortResponse(e *models.Event, confirmed, views int64) EventShortResponse {
	return EventShortResponse{
		ID:                e.ID,
		Annotation:        e.Annotation,
		Category:          categoryOf(e),
		ConfirmedRequests: confirmed,
		EventDate:         datetime.New(e.EventDate),
		Initiator:         initiatorOf(e),
		Paid:              e.Paid,
		Title:             e.Title,
		Views:             views,
	}
}

func ToParticipationRequestResponse(r *models.Request) ParticipationRequestResponse {
	return ParticipationRequestResponse{
		ID:        r.ID,
		Created:   datetime.New(r.Created),
		Event:     r.EventID,
		Requester: r.RequesterID,
		Status:    r.Status,
	}
}

func ToParticipationRequestResponses(requests []models.Request) []ParticipationRequestResponse {
	resp := make([]ParticipationRequestResponse, len(requests))
	for i := range requests {
		resp[i] = ToParticipationRequestResponse(&requests[i])
	}
	return resp
}

func ToCommentResponse(c *models.Comment) CommentResponse {
	resp := CommentResponse{
		ID:      c.ID,
		Text:    c.Text,
		EventID: c.EventID,
		Author:  UserShortResponse{ID: c.AuthorID},
		Created: datetime.New(c.Created),
	}
	if c.Author != nil {
		resp.Author.Name = c.Author.Name
	}
	return resp
}
