package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/main-service/internal/models"
	"github.com/MIgor26/explore-with-me/main-service/internal/repository"
	"github.com/MIgor26/explore-with-me/stats-service/pkg/statsclient"
)

const eventURIPrefix = "/events/"

// EventCounts holds the derived figures shown next to an event.
type EventCounts struct {
	Confirmed int64
	Views     int64
}

// ViewEnricher computes confirmed request counts and unique views for events.
// A failing statistics service yields zero views instead of an error.
// Only hits recorded under app are counted.
type ViewEnricher struct {
	requests repository.RequestRepository
	stats    ViewStatsReader
	app      string
	now      func() time.Time
}

func NewViewEnricher(requests repository.RequestRepository, stats ViewStatsReader, app string) *ViewEnricher {
	return &ViewEnricher{requests: requests, stats: stats, app: app, now: time.Now}
}

func EventURI(id uint) string {
	return eventURIPrefix + strconv.FormatUint(uint64(id), 10)
}

func parseEventURI(uri string) (uint, bool) {
	raw, ok := strings.CutPrefix(uri, eventURIPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// ForEvent counts views since publication, or over the last century for
// events that were never published.
func (v *ViewEnricher) ForEvent(ctx context.Context, e *models.Event) (EventCounts, error) {
	confirmed, err := v.requests.CountByStatus(ctx, nil, e.ID, models.RequestConfirmed)
	if err != nil {
		return EventCounts{}, fmt.Errorf("count confirmed requests: %w", err)
	}

	now := v.now()
	start := now.AddDate(-100, 0, 0)
	if e.PublishedOn != nil {
		start = *e.PublishedOn
	}
	views := v.views(ctx, start, now, []uint{e.ID})
	return EventCounts{Confirmed: confirmed, Views: views[e.ID]}, nil
}

func (v *ViewEnricher) ForEvents(ctx context.Context, events []models.Event) (map[uint]EventCounts, error) {
	counts := make(map[uint]EventCounts, len(events))
	if len(events) == 0 {
		return counts, nil
	}

	ids := make([]uint, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}

	confirmed, err := v.requests.CountConfirmedByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count confirmed requests: %w", err)
	}

	now := v.now()
	views := v.views(ctx, now.AddDate(-100, 0, 0), now, ids)
	for _, id := range ids {
		counts[id] = EventCounts{Confirmed: confirmed[id], Views: views[id]}
	}
	return counts, nil
}

func (v *ViewEnricher) views(ctx context.Context, start, end time.Time, ids []uint) map[uint]int64 {
	views := make(map[uint]int64, len(ids))
	if v.stats == nil || len(ids) == 0 {
		return views
	}

	uris := make([]string, len(ids))
	for i, id := range ids {
		uris[i] = EventURI(id)
	}

	stats, err := v.stats.GetStats(ctx, statsclient.StatsQuery{Start: start, End: end, URIs: uris, Unique: true})
	if err != nil {
		log.Printf("[ViewEnricher] stats unavailable, reporting zero views: %v", err)
		return views
	}
	for _, s := range stats {
		if s.App != v.app {
			continue
		}
		if id, ok := parseEventURI(s.URI); ok {
			views[id] = s.Hits
		}
	}
	return views
}
