package automatic

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/domino14/othello/board"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          TEXT PRIMARY KEY,
	black       TEXT NOT NULL,
	white       TEXT NOT NULL,
	moves       TEXT NOT NULL,
	black_discs INTEGER NOT NULL,
	white_discs INTEGER NOT NULL,
	winner      TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS games_started_at ON games (started_at);
`

// Store is a sqlite log of finished games.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the game log at path. ":memory:"
// gives a private in-memory log.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; an in-memory database also lives and dies
	// with its single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveGame(ctx context.Context, g *GameRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, black, white, moves, black_discs, white_discs, winner, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Black, g.White, strings.Join(g.Moves, " "),
		g.BlackDiscs, g.WhiteDiscs, g.Winner.String(),
		g.Started.UTC().Format(time.RFC3339Nano), g.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to save game %s: %w", g.ID, err)
	}
	return nil
}

// Games returns every logged game, oldest first.
func (s *Store) Games(ctx context.Context) ([]*GameRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, black, white, moves, black_discs, white_discs, winner, started_at, duration_ms
		 FROM games ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*GameRecord
	for rows.Next() {
		var (
			g                 GameRecord
			moves, winner, ts string
			ms                int64
		)
		if err := rows.Scan(&g.ID, &g.Black, &g.White, &moves, &g.BlackDiscs, &g.WhiteDiscs,
			&winner, &ts, &ms); err != nil {
			return nil, err
		}
		if moves != "" {
			g.Moves = strings.Fields(moves)
		}
		if winner != board.NoPlayer.String() {
			if g.Winner, err = board.PlayerFromString(winner); err != nil {
				return nil, err
			}
		}
		if g.Started, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, err
		}
		g.Duration = time.Duration(ms) * time.Millisecond
		games = append(games, &g)
	}
	return games, rows.Err()
}
