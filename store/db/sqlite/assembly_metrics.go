package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hrygo/emocontext/store"
)

const assemblyMetricsColumns = "id, hour_bucket, goal, request_count, success_count, cache_hits, token_sum, latency_sum_ms, latency_p50_ms, latency_p95_ms"

func (d *DB) UpsertAssemblyMetrics(ctx context.Context, upsert *store.UpsertAssemblyMetrics) (*store.AssemblyMetrics, error) {
	if upsert == nil {
		return nil, fmt.Errorf("upsert parameter cannot be nil")
	}

	query := `
		INSERT INTO assembly_metrics (hour_bucket, goal, request_count, success_count, cache_hits, token_sum, latency_sum_ms, latency_p50_ms, latency_p95_ms)
		VALUES (` + placeholders(9) + `)
		ON CONFLICT (hour_bucket, goal) DO UPDATE SET
			request_count = request_count + excluded.request_count,
			success_count = success_count + excluded.success_count,
			cache_hits = cache_hits + excluded.cache_hits,
			token_sum = token_sum + excluded.token_sum,
			latency_sum_ms = latency_sum_ms + excluded.latency_sum_ms,
			latency_p50_ms = excluded.latency_p50_ms,
			latency_p95_ms = excluded.latency_p95_ms
		RETURNING ` + assemblyMetricsColumns

	row := d.db.QueryRowContext(ctx, query,
		upsert.HourBucket.UTC().Format(timestampLayout), upsert.Goal, upsert.RequestCount, upsert.SuccessCount,
		upsert.CacheHits, upsert.TokenSum, upsert.LatencySumMs, upsert.LatencyP50Ms, upsert.LatencyP95Ms,
	)
	m, err := scanAssemblyMetrics(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert assembly metrics: %w", err)
	}
	return m, nil
}

func (d *DB) ListAssemblyMetrics(ctx context.Context, find *store.FindAssemblyMetrics) ([]*store.AssemblyMetrics, error) {
	if find == nil {
		return nil, fmt.Errorf("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}
	if find.Goal != nil {
		where, args = append(where, "goal = "+placeholder(len(args)+1)), append(args, *find.Goal)
	}
	if find.StartTime != nil {
		where, args = append(where, "hour_bucket >= "+placeholder(len(args)+1)), append(args, find.StartTime.UTC().Format(timestampLayout))
	}
	if find.EndTime != nil {
		where, args = append(where, "hour_bucket <= "+placeholder(len(args)+1)), append(args, find.EndTime.UTC().Format(timestampLayout))
	}

	query := `SELECT ` + assemblyMetricsColumns + ` FROM assembly_metrics WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY hour_bucket DESC, goal ASC`
	if find.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assembly metrics: %w", err)
	}
	defer rows.Close()

	var list []*store.AssemblyMetrics
	for rows.Next() {
		m, err := scanAssemblyMetrics(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assembly metrics: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (d *DB) DeleteAssemblyMetrics(ctx context.Context, delete *store.DeleteAssemblyMetrics) error {
	if delete == nil || delete.BeforeTime == nil {
		return fmt.Errorf("before_time is required for deletion")
	}
	stmt := `DELETE FROM assembly_metrics WHERE hour_bucket < ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.BeforeTime.UTC().Format(timestampLayout)); err != nil {
		return fmt.Errorf("failed to delete assembly metrics: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssemblyMetrics(row rowScanner) (*store.AssemblyMetrics, error) {
	var m store.AssemblyMetrics
	var hour string
	if err := row.Scan(
		&m.ID, &hour, &m.Goal, &m.RequestCount, &m.SuccessCount, &m.CacheHits,
		&m.TokenSum, &m.LatencySumMs, &m.LatencyP50Ms, &m.LatencyP95Ms,
	); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(timestampLayout, hour)
	if err != nil {
		return nil, err
	}
	m.HourBucket = parsed
	return &m, nil
}
