package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"PairPulse/internal/domain/models"
	"PairPulse/internal/domain/repository"
)

// ClickHouseTickStore persists ticks in a ReplacingMergeTree table keyed by
// (symbol, ts). Re-inserting an existing key replaces the row at merge time,
// which gives InsertBatch its upsert semantics; reads query FINAL so
// not-yet-merged duplicates collapse to the latest version.
type ClickHouseTickStore struct {
	db    *sql.DB
	table string
}

func NewClickHouseTickStore(db *sql.DB, table string) repository.TickStore {
	if table == "" {
		table = "ticks"
	}
	return &ClickHouseTickStore{db: db, table: table}
}

func (s *ClickHouseTickStore) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			symbol LowCardinality(String),
			ts     DateTime64(3, 'UTC'),
			price  Float64,
			size   Float64
		) ENGINE = ReplacingMergeTree
		ORDER BY (symbol, ts)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("init tick table: %w", err)
	}
	return nil
}

func (s *ClickHouseTickStore) InsertBatch(ctx context.Context, ticks []*models.Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(ticks); start += chunkSize {
		end := start + chunkSize
		if end > len(ticks) {
			end = len(ticks)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, t := range ticks[start:end] {
			if t == nil || t.Symbol == "" || t.Ts.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, t.Symbol, t.Ts, t.Price, t.Size)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, ts, price, size) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert tick batch: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseTickStore) RecentTicks(ctx context.Context, symbol string, limit int) ([]*models.Tick, error) {
	if limit <= 0 {
		limit = 1000
	}
	q := fmt.Sprintf(
		"SELECT symbol, ts, price, size FROM %s FINAL WHERE symbol = ? ORDER BY ts DESC LIMIT ?",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent ticks: %w", err)
	}
	defer rows.Close()

	var ticks []*models.Tick
	for rows.Next() {
		var t models.Tick
		if err := rows.Scan(&t.Symbol, &t.Ts, &t.Price, &t.Size); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		ticks = append(ticks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// the query returns newest first; callers expect ascending order
	for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
		ticks[i], ticks[j] = ticks[j], ticks[i]
	}
	return ticks, nil
}

func (s *ClickHouseTickStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTickStore) Close() error {
	return nil // pool lifecycle is owned by pkg/clickhouse
}
