package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ChartCast/internal/domain/models"
	domrepo "ChartCast/internal/domain/repository"
	pkgch "ChartCast/pkg/clickhouse"
	applogger "ChartCast/pkg/logger"
)

// CHHistoryStore implements HistoryStore backed by ClickHouse.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client, table string) *CHHistoryStore {
	return &CHHistoryStore{
		db:    ch.DB(),
		table: ch.Database() + "." + table,
		l:     applogger.NewNop(),
	}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

// Schema returns the DDL for the observations table.
func Schema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
            entity String,
            t      DateTime,
            value  Float64
        ) ENGINE = MergeTree ORDER BY (entity, t)`, database, table),
	}
}

func (s *CHHistoryStore) PeriodTotals(ctx context.Context, entity string, period domrepo.Period, n int) ([]models.PeriodTotal, error) {
	start := time.Now()
	q, err := periodTotalsQuery(s.table, period)
	if err != nil {
		return nil, err
	}
	fields := []applogger.Field{
		applogger.String("entity", entity),
		applogger.String("period", string(period)),
		applogger.Int("limit", n),
	}

	rows, err := s.db.QueryContext(ctx, q, entity, n)
	if err != nil {
		s.l.Error("clickhouse period_totals query error", append(fields, applogger.Error(err))...)
		return nil, fmt.Errorf("period totals: %w", err)
	}
	defer rows.Close()

	out := make([]models.PeriodTotal, 0, n)
	for rows.Next() {
		pt := models.PeriodTotal{Entity: entity}
		if err := rows.Scan(&pt.Bucket, &pt.Total); err != nil {
			s.l.Error("clickhouse period_totals scan error", append(fields, applogger.Error(err))...)
			return nil, fmt.Errorf("scan period total: %w", err)
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		s.l.Error("clickhouse period_totals rows error", append(fields, applogger.Error(err))...)
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse period_totals ok", append(fields,
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)...)
	return out, nil
}

func (s *CHHistoryStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// periodTotalsQuery selects the latest n buckets and returns them ascending.
func periodTotalsQuery(table string, period domrepo.Period) (string, error) {
	bucket, err := bucketExpr(period)
	if err != nil {
		return "", err
	}
	const qtpl = `
        SELECT bucket, total FROM (
            SELECT %s AS bucket, sum(value) AS total
            FROM %s
            WHERE entity = ?
            GROUP BY bucket
            ORDER BY bucket DESC
            LIMIT ?
        )
        ORDER BY bucket ASC
    `
	return fmt.Sprintf(qtpl, bucket, table), nil
}

func bucketExpr(period domrepo.Period) (string, error) {
	switch period {
	case domrepo.PeriodDay:
		return "toDateTime(toStartOfDay(t))", nil
	case domrepo.PeriodWeek:
		return "toDateTime(toMonday(t))", nil
	case domrepo.PeriodMonth:
		return "toDateTime(toStartOfMonth(t))", nil
	default:
		return "", fmt.Errorf("%w: %s", domrepo.ErrUnsupportedPeriod, period)
	}
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)
