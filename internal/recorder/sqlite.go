package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists cycle history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so operator tooling can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycles (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			cycle_number  INTEGER NOT NULL,
			started_at    INTEGER,
			next_start_at INTEGER,
			processed     INTEGER,
			skipped       INTEGER,
			failed        INTEGER,
			fatal_err     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS account_outcomes (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			cycle_number INTEGER NOT NULL,
			account_id   TEXT,
			city         TEXT,
			status       TEXT,
			reason       TEXT,
			sub_reason   TEXT,
			detail       TEXT,
			processed    INTEGER,
			success      INTEGER,
			matches      INTEGER,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_cycle ON account_outcomes(cycle_number)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_account ON account_outcomes(account_id)`,

		`CREATE TABLE IF NOT EXISTS username_assignments (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			username   TEXT NOT NULL,
			account_id TEXT,
			city       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_username ON username_assignments(username)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO cycles
		(timestamp, cycle_number, started_at, next_start_at, processed, skipped, failed, fatal_err)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Number, evt.StartedAt.Unix(), evt.NextStartAt.Unix(),
		evt.Processed, evt.Skipped, evt.Failed, evt.FatalErr,
	)
	return err
}

func (r *SQLiteRecorder) RecordOutcome(evt *OutcomeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO account_outcomes
		(timestamp, cycle_number, account_id, city, status, reason, sub_reason, detail,
		 processed, success, matches, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.CycleNumber, evt.AccountID, evt.City,
		evt.Status, evt.Reason, evt.SubReason, evt.Detail,
		evt.Processed, evt.Success, evt.Matches, evt.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordAssignment(evt *AssignmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO username_assignments
		(timestamp, username, account_id, city)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.Username, evt.AccountID, evt.City,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
