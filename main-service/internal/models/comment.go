package models

import "time"

type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:varchar(2000);not null" json:"text"`
	EventID  uint      `gorm:"not null;index" json:"event_id"`
	AuthorID uint      `gorm:"not null;index" json:"author_id"`
	Created  time.Time `gorm:"not null" json:"created"`

	Author *User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Event  *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}
