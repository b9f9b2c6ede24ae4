package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/visibility-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures
// WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scans (
	id         TEXT PRIMARY KEY,
	profile    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'queued',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS usage_records (
	id          TEXT PRIMARY KEY,
	scan_id     TEXT NOT NULL REFERENCES scans(id),
	provider    TEXT NOT NULL,
	model       TEXT NOT NULL,
	query_index INTEGER NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	cost_usd    REAL NOT NULL,
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_scans_status ON scans(status);
CREATE INDEX IF NOT EXISTS idx_scans_profile ON scans(profile);
CREATE INDEX IF NOT EXISTS idx_usage_records_scan_id ON usage_records(scan_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateScan(ctx context.Context, profile model.BusinessProfile) (*model.Scan, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal profile")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, profile, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(profileJSON), string(model.ScanStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert scan")
	}

	return &model.Scan{
		ID:        id,
		Profile:   profile,
		Status:    model.ScanStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) UpdateScanStatus(ctx context.Context, scanID string, status model.ScanStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update scan status %s", scanID)
	}
	return checkRowsAffected(res, "scan", scanID)
}

func (s *SQLiteStore) UpdateScanResult(ctx context.Context, scanID string, result *model.ScanResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	status := model.ScanStatusComplete
	if result.Error != "" {
		status = model.ScanStatusFailed
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE scans SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(status), time.Now().UTC(), scanID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update scan result %s", scanID)
	}
	return checkRowsAffected(res, "scan", scanID)
}

func (s *SQLiteStore) GetScan(ctx context.Context, scanID string) (*model.Scan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, profile, status, result, created_at, updated_at FROM scans WHERE id = ?`,
		scanID,
	)
	return scanScan(row)
}

func (s *SQLiteStore) ListScans(ctx context.Context, filter ScanFilter) ([]model.Scan, error) {
	query := `SELECT id, profile, status, result, created_at, updated_at FROM scans WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Domain != "" {
		query += ` AND json_extract(profile, '$.domain') = ?`
		args = append(args, filter.Domain)
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.CreatedAfter)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scans")
	}
	defer rows.Close()

	var scans []model.Scan
	for rows.Next() {
		sc, err := scanScan(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, *sc)
	}
	return scans, eris.Wrap(rows.Err(), "sqlite: list scans iterate")
}

func (s *SQLiteStore) SaveUsage(ctx context.Context, records []model.UsageRecord) error {
	for _, rec := range records {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO usage_records (id, scan_id, provider, model, query_index, input_tokens, output_tokens, cost_usd, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.ScanID, rec.Provider, rec.Model, rec.QueryIndex,
			rec.Usage.InputTokens, rec.Usage.OutputTokens, rec.CostUSD, rec.RecordedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert usage record %s", rec.ID)
		}
	}
	return nil
}

func (s *SQLiteStore) ListUsage(ctx context.Context, scanID string) ([]model.UsageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scan_id, provider, model, query_index, input_tokens, output_tokens, cost_usd, recorded_at
		 FROM usage_records WHERE scan_id = ? ORDER BY query_index, provider`,
		scanID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list usage")
	}
	defer rows.Close()

	var records []model.UsageRecord
	for rows.Next() {
		var rec model.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.ScanID, &rec.Provider, &rec.Model, &rec.QueryIndex,
			&rec.Usage.InputTokens, &rec.Usage.OutputTokens, &rec.CostUSD, &rec.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan usage record")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list usage iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanScan(row scannable) (*model.Scan, error) {
	var sc model.Scan
	var profileJSON string
	var resultJSON sql.NullString

	err := row.Scan(&sc.ID, &profileJSON, &sc.Status, &resultJSON, &sc.CreatedAt, &sc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("scan not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan row")
	}

	if err := json.Unmarshal([]byte(profileJSON), &sc.Profile); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal profile")
	}
	if resultJSON.Valid {
		sc.Result = &model.ScanResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), sc.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &sc, nil
}
