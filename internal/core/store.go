package core

// store.go persists parse runs in PostgreSQL.
//
// A run is one row in parse_runs plus one row per record in parse_records.
// Records are stored as json rather than jsonb because jsonb does not keep
// key order, and record keys must follow header order.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JonMunkholm/csvrecords/internal/csvparse"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrRunNotFound is returned when no run has the requested ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrPersistenceDisabled is returned by run queries when no database is configured.
	ErrPersistenceDisabled = errors.New("persistence disabled: no database configured")
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS parse_runs (
		id           UUID PRIMARY KEY,
		name         TEXT,
		coercion     TEXT NOT NULL,
		encoding     TEXT NOT NULL,
		headers      TEXT[] NOT NULL,
		record_count INTEGER NOT NULL,
		input_bytes  BIGINT NOT NULL,
		ip_address   TEXT,
		user_agent   TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS parse_records (
		run_id  UUID NOT NULL REFERENCES parse_runs(id) ON DELETE CASCADE,
		row_num INTEGER NOT NULL,
		data    JSON NOT NULL,
		PRIMARY KEY (run_id, row_num)
	)`,
	`CREATE INDEX IF NOT EXISTS parse_runs_created_at_idx ON parse_runs (created_at DESC)`,
}

const runColumns = `id, name, coercion, encoding, headers, record_count, input_bytes, ip_address, user_agent, created_at`

// Store is the PostgreSQL run store.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores run and its records in one transaction. Records are
// written with the COPY protocol.
func (s *Store) SaveRun(ctx context.Context, run RunInfo, records []csvparse.Record) error {
	id := ToPgUUID(run.ID)
	if !id.Valid {
		return fmt.Errorf("save run: invalid run id %q", run.ID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op once committed

	_, err = tx.Exec(ctx,
		`INSERT INTO parse_runs (`+runColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))`,
		id,
		ToPgText(run.Name),
		string(run.Coercion),
		run.Encoding,
		run.Headers,
		int32(run.RecordCount),
		run.InputBytes,
		ToPgText(run.IPAddress),
		ToPgText(run.UserAgent),
		pgtype.Timestamptz{Time: run.CreatedAt, Valid: !run.CreatedAt.IsZero()},
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(records) > 0 {
		rows := make([][]any, len(records))
		for i, rec := range records {
			data, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encode record %d: %w", i+1, err)
			}
			rows[i] = []any{id, int32(i + 1), string(data)}
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"parse_records"},
			[]string{"run_id", "row_num", "data"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("copy records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (RunInfo, error) {
	id := ToPgUUID(runID)
	if !id.Valid {
		return RunInfo{}, ErrRunNotFound
	}

	row := s.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM parse_runs WHERE id = $1`, id)
	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return RunInfo{}, ErrRunNotFound
	}
	if err != nil {
		return RunInfo{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+runColumns+` FROM parse_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRecords returns a page of a run's records in row order.
func (s *Store) ListRecords(ctx context.Context, runID string, offset, limit int) ([]csvparse.Record, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT data FROM parse_records WHERE run_id = $1 ORDER BY row_num OFFSET $2 LIMIT $3`,
		ToPgUUID(run.ID), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []csvparse.Record{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := DecodeRecord(run.Headers, data)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRun removes a run and, by cascade, its records.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	id := ToPgUUID(runID)
	if !id.Valid {
		return ErrRunNotFound
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM parse_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// scanRun reads one parse_runs row selected with runColumns.
func scanRun(row pgx.Row) (RunInfo, error) {
	var (
		id          pgtype.UUID
		name        pgtype.Text
		coercion    string
		encoding    string
		headers     []string
		recordCount int32
		inputBytes  int64
		ip          pgtype.Text
		ua          pgtype.Text
		createdAt   pgtype.Timestamptz
	)
	if err := row.Scan(&id, &name, &coercion, &encoding, &headers, &recordCount,
		&inputBytes, &ip, &ua, &createdAt); err != nil {
		return RunInfo{}, err
	}

	return RunInfo{
		ID:          PgUUIDToString(id),
		Name:        PgTextToString(name),
		Coercion:    csvparse.Coercion(coercion),
		Encoding:    encoding,
		Headers:     headers,
		RecordCount: int(recordCount),
		InputBytes:  inputBytes,
		IPAddress:   PgTextToString(ip),
		UserAgent:   PgTextToString(ua),
		CreatedAt:   createdAt.Time,
	}, nil
}

// DecodeRecord rebuilds a record from its stored JSON object. Keys follow
// headers; JSON numbers become numeric values and everything else is kept
// as a string.
func DecodeRecord(headers []string, data []byte) (csvparse.Record, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return csvparse.Record{}, fmt.Errorf("decode record: %w", err)
	}

	values := make([]csvparse.Value, len(headers))
	for i, h := range headers {
		switch v := fields[h].(type) {
		case float64:
			values[i] = csvparse.NumberValue(v)
		case string:
			values[i] = csvparse.StringValue(v)
		case nil:
			values[i] = csvparse.StringValue("")
		default:
			values[i] = csvparse.StringValue(fmt.Sprint(v))
		}
	}
	return csvparse.NewRecord(headers, values), nil
}
