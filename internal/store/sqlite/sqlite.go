package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/hypertac-server/internal/store"
)

// Schema creates the match archive tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS matches (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id         TEXT     NOT NULL,
	dimension_count INTEGER  NOT NULL,
	side_length     INTEGER  NOT NULL,
	reason          TEXT     NOT NULL,
	winner          TEXT     NOT NULL DEFAULT '',
	line_start      TEXT,
	line_direction  TEXT,
	moves           INTEGER  NOT NULL,
	board           TEXT     NOT NULL,
	ended_at        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS match_players (
	match_id INTEGER NOT NULL,
	slot     INTEGER NOT NULL,
	name     TEXT    NOT NULL,
	PRIMARY KEY (match_id, slot),
	FOREIGN KEY (match_id) REFERENCES matches(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_matches_ended ON matches(ended_at DESC);
CREATE INDEX IF NOT EXISTS idx_match_players_name ON match_players(name);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the SQLite database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, ApplySchema)
}

// ApplySchema creates the archive tables if they are missing.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema or seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: on one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== MatchStore implementation ====

// SaveMatch inserts a finished match together with its roster.
func (s *SQLiteStore) SaveMatch(ctx context.Context, m *store.Match) (int64, error) {
	boardJSON, err := json.Marshal(m.Board)
	if err != nil {
		return 0, fmt.Errorf("encode board: %w", err)
	}
	lineStart, err := encodeVector(m.LineStart)
	if err != nil {
		return 0, fmt.Errorf("encode line start: %w", err)
	}
	lineDirection, err := encodeVector(m.LineDirection)
	if err != nil {
		return 0, fmt.Errorf("encode line direction: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO matches (room_id, dimension_count, side_length, reason, winner,
			line_start, line_direction, moves, board, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.RoomID, m.DimensionCount, m.SideLength, m.Reason, m.Winner,
		lineStart, lineDirection, m.Moves, string(boardJSON), m.EndedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	for slot, name := range m.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_players (match_id, slot, name) VALUES (?, ?, ?)`,
			id, slot, name,
		); err != nil {
			return 0, fmt.Errorf("insert match player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit match: %w", err)
	}
	m.ID = id
	return id, nil
}

const matchColumns = `id, room_id, dimension_count, side_length, reason, winner,
	line_start, line_direction, moves, board, ended_at`

// GetMatch retrieves a match by ID.
func (s *SQLiteStore) GetMatch(ctx context.Context, id int64) (*store.Match, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("match %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query match: %w", err)
	}

	if m.Players, err = s.matchPlayers(ctx, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMatches returns the most recent matches, optionally only those a player took part in.
func (s *SQLiteStore) ListMatches(ctx context.Context, filter store.MatchFilter) ([]*store.Match, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = store.DefaultMatchLimit
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + matchColumns + ` FROM matches m`)
	if filter.Player != "" {
		query.WriteString(` WHERE EXISTS (SELECT 1 FROM match_players p WHERE p.match_id = m.id AND p.name = ?)`)
		args = append(args, filter.Player)
	}
	query.WriteString(` ORDER BY m.ended_at DESC, m.id DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}

	var matches []*store.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	// Close before the roster queries: the pool holds a single connection.
	rows.Close()

	for _, m := range matches {
		if m.Players, err = s.matchPlayers(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (s *SQLiteStore) matchPlayers(ctx context.Context, matchID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM match_players WHERE match_id = ? ORDER BY slot`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query match players: %w", err)
	}
	defer rows.Close()

	var players []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan match player: %w", err)
		}
		players = append(players, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match players: %w", err)
	}
	return players, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (*store.Match, error) {
	var (
		m                        store.Match
		lineStart, lineDirection sql.NullString
		boardJSON                string
	)
	if err := row.Scan(
		&m.ID,
		&m.RoomID,
		&m.DimensionCount,
		&m.SideLength,
		&m.Reason,
		&m.Winner,
		&lineStart,
		&lineDirection,
		&m.Moves,
		&boardJSON,
		&m.EndedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(boardJSON), &m.Board); err != nil {
		return nil, fmt.Errorf("decode board: %w", err)
	}
	var err error
	if m.LineStart, err = decodeVector(lineStart); err != nil {
		return nil, fmt.Errorf("decode line start: %w", err)
	}
	if m.LineDirection, err = decodeVector(lineDirection); err != nil {
		return nil, fmt.Errorf("decode line direction: %w", err)
	}
	return &m, nil
}

func encodeVector(v []int) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeVector(s sql.NullString) ([]int, error) {
	if !s.Valid {
		return nil, nil
	}
	var v []int
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, err
	}
	return v, nil
}
