package service

import (
	"context"

	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
)

// HitRecorder stores one endpoint hit in the statistics service.
type HitRecorder interface {
	AddHit(ctx context.Context, hit statsclient.EndpointHit) error
}

// ViewStatsReader reads aggregated hits from the statistics service.
type ViewStatsReader interface {
	GetStats(ctx context.Context, q statsclient.StatsQuery) ([]statsclient.ViewStats, error)
}
