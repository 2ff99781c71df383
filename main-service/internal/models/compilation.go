package models

type Compilation struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Title  string  `gorm:"type:varchar(50);not null" json:"title"`
	Pinned bool    `gorm:"not null;default:false" json:"pinned"`
	Events []Event `gorm:"many2many:compilation_events;constraint:OnDelete:CASCADE" json:"events"`
}
