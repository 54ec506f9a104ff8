package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/focusnest/prep-service/internal/progress"
)

// Dialect selects the SQL flavour a sqlStore speaks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const recordsSchema = `
	CREATE TABLE IF NOT EXISTS prep_records (
		user_id TEXT NOT NULL,
		record_key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, record_key)
	)`

type sqlStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// OpenSQLite opens (creating when needed) a SQLite database file and returns a store backed by it.
func OpenSQLite(path string) (Store, *sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	store, err := NewSQLStore(db, DialectSQLite)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

// OpenPostgres connects to PostgreSQL using a lib/pq connection string.
func OpenPostgres(ctx context.Context, dsn string) (Store, *sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	store, err := NewSQLStore(db, DialectPostgres)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

// NewSQLStore stores journeys as JSON values in a key-value table, creating it when missing.
func NewSQLStore(db *sql.DB, dialect Dialect) (Store, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", dialect)
	}
	if _, err := db.Exec(recordsSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &sqlStore{db: db, dialect: dialect, now: time.Now}, nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *sqlStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) Load(ctx context.Context, userID string) (Journey, bool, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT record_key, value FROM prep_records WHERE user_id = ?`), userID)
	if err != nil {
		return Journey{}, false, err
	}
	defer rows.Close()

	records := make(map[string][]byte)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Journey{}, false, err
		}
		records[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return Journey{}, false, err
	}
	if len(records) == 0 {
		return Journey{}, false, nil
	}

	j, err := decodeRecords(records)
	if err != nil {
		return Journey{}, false, err
	}
	return j, true, nil
}

func (s *sqlStore) Save(ctx context.Context, userID string, journey Journey) (err error) {
	records, err := encodeRecords(journey)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	upsert := s.rebind(`
		INSERT INTO prep_records (user_id, record_key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, record_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	now := s.now().UTC()
	for _, key := range RecordKeys {
		value, ok := records[key]
		if !ok {
			if _, err = tx.ExecContext(ctx, s.rebind(`DELETE FROM prep_records WHERE user_id = ? AND record_key = ?`), userID, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			continue
		}
		if _, err = tx.ExecContext(ctx, upsert, userID, key, string(value), now); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *sqlStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM prep_records WHERE user_id = ?`), userID)
	return err
}

// encodeRecords splits a journey into its keyed JSON values. A nil goal set has no record.
func encodeRecords(j Journey) (map[string][]byte, error) {
	values := map[string]any{
		KeyStartDate:  j.StartedAt.UTC(),
		KeyTasks:      j.Tasks,
		KeyProgress:   j.Progress,
		KeyMilestones: j.Milestones,
	}
	if j.Goals != nil {
		values[KeyGoals] = j.Goals
	}

	out := make(map[string][]byte, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		out[key] = raw
	}
	return out, nil
}

func decodeRecords(records map[string][]byte) (Journey, error) {
	j := Journey{Progress: progress.NewProgress()}
	targets := map[string]any{
		KeyStartDate:  &j.StartedAt,
		KeyTasks:      &j.Tasks,
		KeyProgress:   &j.Progress,
		KeyMilestones: &j.Milestones,
	}
	for key, target := range targets {
		raw, ok := records[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return Journey{}, fmt.Errorf("decode %s: %w", key, err)
		}
	}
	if raw, ok := records[KeyGoals]; ok {
		var g progress.Goals
		if err := json.Unmarshal(raw, &g); err != nil {
			return Journey{}, fmt.Errorf("decode %s: %w", KeyGoals, err)
		}
		j.Goals = &g
	}
	if _, ok := records[KeyStartDate]; !ok {
		return Journey{}, errors.New("journey has no start date record")
	}
	return j, nil
}
