package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MIgor26/explore-with-me/stats-service/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type StatsFilter struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

type HitRepository interface {
	Save(ctx context.Context, hit *models.EndpointHit) error
	GetStats(ctx context.Context, filter StatsFilter) ([]models.ViewStats, error)
}

type hitRepository struct {
	db DB
}

func NewHitRepository(db DB) HitRepository {
	return &hitRepository{db: db}
}

func (r *hitRepository) Save(ctx context.Context, hit *models.EndpointHit) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO endpoint_hits (app, uri, ip, timestamp) VALUES ($1, $2, $3, $4) RETURNING id`,
		hit.App, hit.URI, hit.IP, hit.Timestamp,
	).Scan(&hit.ID)
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

func (r *hitRepository) GetStats(ctx context.Context, filter StatsFilter) ([]models.ViewStats, error) {
	sql, args := buildStatsQuery(filter)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make([]models.ViewStats, 0)
	for rows.Next() {
		var s models.ViewStats
		if err := rows.Scan(&s.App, &s.URI, &s.Hits); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

func buildStatsQuery(filter StatsFilter) (string, []any) {
	count := "COUNT(id)"
	if filter.Unique {
		count = "COUNT(DISTINCT ip)"
	}

	var b strings.Builder
	b.WriteString("SELECT app, uri, ")
	b.WriteString(count)
	b.WriteString(" AS hits FROM endpoint_hits WHERE timestamp BETWEEN $1 AND $2")
	args := []any{filter.Start, filter.End}

	if len(filter.URIs) > 0 {
		b.WriteString(" AND uri = ANY($3)")
		args = append(args, filter.URIs)
	}
	b.WriteString(" GROUP BY app, uri ORDER BY hits DESC, app, uri")

	return b.String(), args
}
