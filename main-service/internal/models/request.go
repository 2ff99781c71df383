package models

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// Request is a participation request. (RequesterID, EventID) is unique.
type Request struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Created     time.Time     `gorm:"not null" json:"created"`
	EventID     uint          `gorm:"not null;uniqueIndex:idx_request_requester_event;index" json:"event_id"`
	RequesterID uint          `gorm:"not null;uniqueIndex:idx_request_requester_event" json:"requester_id"`
	Status      RequestStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`

	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}
