package models

import "time"

// EndpointHit is append-only; rows are never updated or deleted.
type EndpointHit struct {
	ID        int64
	App       string
	URI       string
	IP        string
	Timestamp time.Time
}

type ViewStats struct {
	App  string
	URI  string
	Hits int64
}
