// Package auditlog records tool invocations in a local SQLite database.
// The log is diagnostic only: the submit pipeline itself keeps no state
// across invocations, and the store is disabled unless a path is configured.
package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Record is one logged tool invocation.
type Record struct {
	ID         string          `json:"id"`
	Tool       string          `json:"tool"`
	Action     string          `json:"action,omitempty"`
	Status     string          `json:"status"`
	Input      json.RawMessage `json:"input,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	InvokedAt  time.Time       `json:"invoked_at"`
}

// Store is a SQLite-backed invocation log.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the audit database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}
	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit tables: %w", err)
	}
	return s, nil
}

func (s *Store) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tool_invocations (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		action TEXT,
		status TEXT NOT NULL,
		input TEXT,
		result TEXT,
		duration_ms INTEGER,
		invoked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tool_invocations_tool ON tool_invocations(tool);
	CREATE INDEX IF NOT EXISTS idx_tool_invocations_status ON tool_invocations(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Log records one invocation. input and result are stored as JSON; marshal
// failures degrade to empty columns rather than failing the invocation.
func (s *Store) Log(ctx context.Context, tool, action, status string, input, result any, duration time.Duration) error {
	if s == nil || s.db == nil {
		return nil
	}

	inputJSON, _ := json.Marshal(input)
	resultJSON, _ := json.Marshal(result)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_invocations (id, tool, action, status, input, result, duration_ms, invoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), tool, action, status, string(inputJSON), string(resultJSON),
		duration.Milliseconds(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert invocation: %w", err)
	}
	return nil
}

// Recent returns up to limit invocations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool, action, status, input, result, duration_ms, invoked_at
		FROM tool_invocations
		ORDER BY invoked_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var action sql.NullString
		var input, result sql.NullString
		var durationMS sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Tool, &action, &r.Status, &input, &result, &durationMS, &r.InvokedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		r.Action = action.String
		if input.Valid {
			r.Input = json.RawMessage(input.String)
		}
		if result.Valid {
			r.Result = json.RawMessage(result.String)
		}
		r.DurationMS = durationMS.Int64
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}
