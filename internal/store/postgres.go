package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/db"
	"github.com/sells-group/visibility-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection
// for the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_scan":        `INSERT INTO scans (id, profile, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_scan_status": `UPDATE scans SET status = $1, updated_at = $2 WHERE id = $3`,
	"update_scan_result": `UPDATE scans SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"get_scan":           `SELECT id, profile, status, result, created_at, updated_at FROM scans WHERE id = $1`,
	"list_usage":         `SELECT id, scan_id, provider, model, query_index, input_tokens, output_tokens, cost_usd, recorded_at FROM usage_records WHERE scan_id = $1 ORDER BY query_index, provider`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS scans (
	id         TEXT PRIMARY KEY,
	profile    JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS usage_records (
	id            TEXT PRIMARY KEY,
	scan_id       TEXT NOT NULL REFERENCES scans(id),
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	query_index   INT NOT NULL,
	input_tokens  INT NOT NULL,
	output_tokens INT NOT NULL,
	cost_usd      DOUBLE PRECISION NOT NULL,
	recorded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);
CREATE INDEX IF NOT EXISTS idx_scans_domain ON scans((profile->>'domain'));
CREATE INDEX IF NOT EXISTS idx_usage_records_scan_id ON usage_records(scan_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateScan(ctx context.Context, profile model.BusinessProfile) (*model.Scan, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal profile")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO scans (id, profile, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, profileJSON, string(model.ScanStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert scan")
	}

	return &model.Scan{
		ID:        id,
		Profile:   profile,
		Status:    model.ScanStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) UpdateScanStatus(ctx context.Context, scanID string, status model.ScanStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scans SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update scan status %s", scanID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("scan not found: %s", scanID)
	}
	return nil
}

func (s *PostgresStore) UpdateScanResult(ctx context.Context, scanID string, result *model.ScanResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	status := model.ScanStatusComplete
	if result.Error != "" {
		status = model.ScanStatusFailed
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE scans SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(status), time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update scan result %s", scanID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("scan not found: %s", scanID)
	}
	return nil
}

func (s *PostgresStore) GetScan(ctx context.Context, scanID string) (*model.Scan, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, profile, status, result, created_at, updated_at FROM scans WHERE id = $1`,
		scanID,
	)

	sc, err := scanPgRow(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get scan %s", scanID)
	}
	return sc, nil
}

func (s *PostgresStore) ListScans(ctx context.Context, filter ScanFilter) ([]model.Scan, error) {
	query := `SELECT id, profile, status, result, created_at, updated_at FROM scans WHERE 1=1`
	var args []any
	next := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, next)
		args = append(args, string(filter.Status))
		next++
	}
	if filter.Domain != "" {
		query += fmt.Sprintf(` AND profile->>'domain' = $%d`, next)
		args = append(args, filter.Domain)
		next++
	}
	if !filter.CreatedAfter.IsZero() {
		query += fmt.Sprintf(` AND created_at >= $%d`, next)
		args = append(args, filter.CreatedAfter)
		next++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, next)
	args = append(args, limit)
	next++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, next)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scans")
	}
	defer rows.Close()

	var scans []model.Scan
	for rows.Next() {
		sc, err := scanPgRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list scans scan")
		}
		scans = append(scans, *sc)
	}
	return scans, eris.Wrap(rows.Err(), "postgres: list scans iterate")
}

func (s *PostgresStore) SaveUsage(ctx context.Context, records []model.UsageRecord) error {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{
			rec.ID, rec.ScanID, rec.Provider, rec.Model, rec.QueryIndex,
			rec.Usage.InputTokens, rec.Usage.OutputTokens, rec.CostUSD, rec.RecordedAt,
		}
	}

	_, err := db.CopyFrom(ctx, s.pool, "usage_records",
		[]string{"id", "scan_id", "provider", "model", "query_index", "input_tokens", "output_tokens", "cost_usd", "recorded_at"},
		rows,
	)
	return eris.Wrap(err, "postgres: save usage")
}

func (s *PostgresStore) ListUsage(ctx context.Context, scanID string) ([]model.UsageRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, scan_id, provider, model, query_index, input_tokens, output_tokens, cost_usd, recorded_at FROM usage_records WHERE scan_id = $1 ORDER BY query_index, provider`,
		scanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list usage")
	}
	defer rows.Close()

	var records []model.UsageRecord
	for rows.Next() {
		var rec model.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.ScanID, &rec.Provider, &rec.Model, &rec.QueryIndex,
			&rec.Usage.InputTokens, &rec.Usage.OutputTokens, &rec.CostUSD, &rec.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan usage record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list usage iterate")
}

// scanPgRow scans one scans row from either QueryRow or Query rows.
func scanPgRow(row pgx.Row) (*model.Scan, error) {
	var sc model.Scan
	var profileJSON []byte
	var resultJSON []byte

	err := row.Scan(&sc.ID, &profileJSON, &sc.Status, &resultJSON, &sc.CreatedAt, &sc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("scan not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan row")
	}

	if err := json.Unmarshal(profileJSON, &sc.Profile); err != nil {
		return nil, eris.Wrap(err, "unmarshal profile")
	}
	if len(resultJSON) > 0 {
		sc.Result = &model.ScanResult{}
		if err := json.Unmarshal(resultJSON, sc.Result); err != nil {
			return nil, eris.Wrap(err, "unmarshal result")
		}
	}
	return &sc, nil
}
