package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists market ticks and recommended bet snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// Tick is one accepted quote observation: a single book's price for one side
// of one market key at one moment.
type Tick struct {
	RunID   string
	EventID string
	Matchup string
	Subject string
	Market  string
	Line    float64
	Side    string
	Book    string
	Price   int
	Implied float64
	At      time.Time
}

// BetRecord is a snapshot of one recommended bet at scan time.
type BetRecord struct {
	RunID      string
	EventID    string
	Matchup    string
	Subject    string
	Market     string
	Line       float64
	Side       string
	Book       string
	Price      int
	MarketProb float64 // vig-free consensus before the model blend
	TrueProb   float64
	EVPct      float64
	Confidence int
	Badge      string
	StakePct   float64
	At         time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	event_id TEXT NOT NULL,
	matchup TEXT NOT NULL,
	subject TEXT NOT NULL,
	market TEXT NOT NULL,
	line REAL NOT NULL,
	side TEXT NOT NULL,
	book TEXT NOT NULL,
	price INTEGER NOT NULL,
	implied REAL NOT NULL,
	at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ticks_key ON ticks(event_id, subject, market, line, side, at);

CREATE TABLE IF NOT EXISTS bets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	event_id TEXT NOT NULL,
	matchup TEXT NOT NULL,
	subject TEXT NOT NULL,
	market TEXT NOT NULL,
	line REAL NOT NULL,
	side TEXT NOT NULL,
	book TEXT NOT NULL,
	price INTEGER NOT NULL,
	market_prob REAL NOT NULL,
	true_prob REAL NOT NULL,
	ev_pct REAL NOT NULL,
	confidence INTEGER NOT NULL,
	badge TEXT NOT NULL,
	stake_pct REAL NOT NULL,
	at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bets_run ON bets(run_id, at);
`

// Open opens (or creates) the tick database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const writeAttempts = 4

// retryWrite runs fn with bounded retries and exponential backoff, absorbing
// transient lock contention from concurrent scan workers.
func retryWrite(fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < writeAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err
			backoff := time.Duration(80*pow16(attempt)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		return nil
	}
	return lastErr
}

// pow16 returns 1.6^n scaled into the integer domain used by retryWrite.
func pow16(n int) float64 {
	f := 1.0
	for i := 0; i < n; i++ {
		f *= 1.6
	}
	return f
}

// AppendTicks inserts a batch of ticks in one transaction. The write is
// retried on failure; callers treat a final error as log-and-drop, never fatal.
func (s *Store) AppendTicks(ticks []Tick) error {
	if len(ticks) == 0 {
		return nil
	}
	return retryWrite(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning tick transaction: %w", err)
		}
		stmt, err := tx.Prepare(`INSERT INTO ticks
			(run_id, event_id, matchup, subject, market, line, side, book, price, implied, at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("preparing tick insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range ticks {
			if _, err := stmt.Exec(t.RunID, t.EventID, t.Matchup, t.Subject, t.Market,
				t.Line, t.Side, t.Book, t.Price, t.Implied, t.At); err != nil {
				tx.Rollback()
				return fmt.Errorf("inserting tick: %w", err)
			}
		}
		return tx.Commit()
	})
}

// AppendBets inserts a batch of bet snapshots in one transaction.
func (s *Store) AppendBets(bets []BetRecord) error {
	if len(bets) == 0 {
		return nil
	}
	return retryWrite(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning bet transaction: %w", err)
		}
		stmt, err := tx.Prepare(`INSERT INTO bets
			(run_id, event_id, matchup, subject, market, line, side, book, price,
			 market_prob, true_prob, ev_pct, confidence, badge, stake_pct, at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("preparing bet insert: %w", err)
		}
		defer stmt.Close()

		for _, b := range bets {
			if _, err := stmt.Exec(b.RunID, b.EventID, b.Matchup, b.Subject, b.Market,
				b.Line, b.Side, b.Book, b.Price, b.MarketProb, b.TrueProb, b.EVPct,
				b.Confidence, b.Badge, b.StakePct, b.At); err != nil {
				tx.Rollback()
				return fmt.Errorf("inserting bet: %w", err)
			}
		}
		return tx.Commit()
	})
}

// TicksSince returns ticks for one (event, subject, market, line, side) key at
// or after since, ordered oldest first. This is the steam-detection query.
func (s *Store) TicksSince(eventID, subject, market string, line float64, side string, since time.Time) ([]Tick, error) {
	rows, err := s.db.Query(`SELECT run_id, event_id, matchup, subject, market, line, side, book, price, implied, at
		FROM ticks
		WHERE event_id = ? AND subject = ? AND market = ? AND line = ? AND side = ? AND at >= ?
		ORDER BY at ASC`,
		eventID, subject, market, line, side, since)
	if err != nil {
		return nil, fmt.Errorf("querying ticks: %w", err)
	}
	defer rows.Close()

	var ticks []Tick
	for rows.Next() {
		var t Tick
		if err := rows.Scan(&t.RunID, &t.EventID, &t.Matchup, &t.Subject, &t.Market,
			&t.Line, &t.Side, &t.Book, &t.Price, &t.Implied, &t.At); err != nil {
			return nil, fmt.Errorf("scanning tick row: %w", err)
		}
		ticks = append(ticks, t)
	}
	return ticks, rows.Err()
}
