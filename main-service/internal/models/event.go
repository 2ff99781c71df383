package models

import "time"

type EventState string

const (
	EventPending   EventState = "PENDING"
	EventPublished EventState = "PUBLISHED"
	EventCanceled  EventState = "CANCELED"
)

func ParseEventState(s string) (EventState, bool) {
	switch st := EventState(s); st {
	case EventPending, EventPublished, EventCanceled:
		return st, true
	}
	return "", false
}

type Event struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Annotation        string     `gorm:"type:varchar(2000);not null" json:"annotation"`
	Description       string     `gorm:"type:varchar(7000);not null" json:"description"`
	Title             string     `gorm:"type:varchar(120);not null" json:"title"`
	CategoryID        uint       `gorm:"not null;index" json:"category_id"`
	InitiatorID       uint       `gorm:"not null;index" json:"initiator_id"`
	LocationID        uint       `gorm:"not null" json:"location_id"`
	EventDate         time.Time  `gorm:"not null;index" json:"event_date"`
	CreatedOn         time.Time  `gorm:"not null" json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	Paid              bool       `gorm:"not null;default:false" json:"paid"`
	ParticipantLimit  int        `gorm:"not null;default:0" json:"participant_limit"`
	RequestModeration bool       `gorm:"not null" json:"request_moderation"`
	State             EventState `gorm:"type:varchar(20);not null;index" json:"state"`

	Category  *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Initiator *User     `gorm:"foreignKey:InitiatorID" json:"initiator,omitempty"`
	Location  *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

// Unlimited reports whether any number of participants may be confirmed.
func (e *Event) Unlimited() bool {
	return e.ParticipantLimit == 0
}

// AutoConfirms reports whether new requests skip the PENDING state.
func (e *Event) AutoConfirms() bool {
	return e.Unlimited() || !e.RequestModeration
}

// HasFreeSlot reports whether one more request can be confirmed.
func (e *Event) HasFreeSlot(confirmed int64) bool {
	return e.Unlimited() || confirmed < int64(e.ParticipantLimit)
}
