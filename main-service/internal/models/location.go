package models

type Location struct {
	ID  uint    `gorm:"primaryKey" json:"id"`
	Lat float64 `gorm:"not null;uniqueIndex:idx_location_lat_lon" json:"lat"`
	Lon float64 `gorm:"not null;uniqueIndex:idx_location_lat_lon" json:"lon"`
}
