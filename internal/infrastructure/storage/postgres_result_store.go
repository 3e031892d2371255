package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"mine-guard/internal/domain/entity"
	"mine-guard/internal/domain/port"
)

const schemaFrameAnalyses = `
create table if not exists frame_analyses (
    id           bigserial primary key,
    processed_at timestamptz not null default now(),
    source       text not null default '',
    risk_level   text not null,
    detections   jsonb not null default '[]'::jsonb
);
create index if not exists frame_analyses_processed_at_idx on frame_analyses (processed_at desc);`

// PostgresResultStore история кадров в Postgres
type PostgresResultStore struct{ DB *sql.DB }

// OpenPostgres открывает пул соединений через драйвер pgx и проверяет доступность базы.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func NewPostgresResultStore(db *sql.DB) *PostgresResultStore { return &PostgresResultStore{DB: db} }

// EnsureSchema создаёт таблицу истории, если её ещё нет.
func (s *PostgresResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schemaFrameAnalyses); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresResultStore) Save(ctx context.Context, record *entity.AnalysisRecord) error {
	detections := record.Detections
	if detections == nil {
		detections = []entity.Detection{}
	}
	js, err := json.Marshal(detections)
	if err != nil {
		return fmt.Errorf("marshal detections: %w", err)
	}

	const q = `
insert into frame_analyses (processed_at, source, risk_level, detections)
values ($1, $2, $3, $4)
returning id`
	return s.DB.QueryRowContext(ctx, q, record.ProcessedAt, record.Source, string(record.RiskLevel), js).Scan(&record.ID)
}

func (s *PostgresResultStore) Latest(ctx context.Context) (*entity.AnalysisRecord, error) {
	records, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, port.ErrNoResults
	}
	return &records[0], nil
}

func (s *PostgresResultStore) Recent(ctx context.Context, limit int) ([]entity.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
select id, processed_at, source, risk_level, detections
from frame_analyses
order by processed_at desc, id desc
limit $1`
	rows, err := s.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.AnalysisRecord
	for rows.Next() {
		var (
			rec  entity.AnalysisRecord
			risk string
			js   []byte
		)
		if err := rows.Scan(&rec.ID, &rec.ProcessedAt, &rec.Source, &risk, &js); err != nil {
			return nil, err
		}
		rec.RiskLevel = entity.RiskLevel(risk)
		if err := json.Unmarshal(js, &rec.Detections); err != nil {
			return nil, fmt.Errorf("record %d: bad detections json: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return out, nil
}

// Проверка реализации интерфейса
var _ port.ResultStore = (*PostgresResultStore)(nil)
