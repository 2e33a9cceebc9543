// Package automatic plays Othello games between computer players and
// records the results.
package automatic

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/bot"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
)

const (
	EnginePlayer = "engine"
	RandomPlayer = "random"

	// A game has at most 60 moves; passes only come singly until the end.
	maxTurns = 130
)

// RandomSearcher plays a uniformly random legal move.
type RandomSearcher struct {
	rng *frand.RNG
}

// NewRandomSearcher returns a player whose choices are fixed by seed.
func NewRandomSearcher(seed [32]byte) *RandomSearcher {
	return &RandomSearcher{rng: frand.NewCustom(seed[:], 1024, 12)}
}

func (r *RandomSearcher) Search(ctx context.Context, b *board.Board, p board.Player) (move.Move, error) {
	moves := rules.LegalMoves(b, p)
	if len(moves) == 0 {
		return move.Pass, nil
	}
	return moves[r.rng.Intn(len(moves))], nil
}

// GameRecord is one finished game.
type GameRecord struct {
	ID         string
	Black      string
	White      string
	Moves      []string
	BlackDiscs int
	WhiteDiscs int
	// Winner is NoPlayer for a draw.
	Winner   board.Player
	Started  time.Time
	Duration time.Duration
}

// Margin is p's disc lead at the end of the game.
func (g *GameRecord) Margin(p board.Player) int {
	m := g.BlackDiscs - g.WhiteDiscs
	if p == board.Second {
		return -m
	}
	return m
}

// GameRunner plays games between two fixed players.
type GameRunner struct {
	names   [2]string
	players [2]bot.Searcher
}

// NewGameRunner instantiates a runner; black moves first.
func NewGameRunner(black, white bot.Searcher, blackName, whiteName string) *GameRunner {
	return &GameRunner{
		names:   [2]string{blackName, whiteName},
		players: [2]bot.Searcher{black, white},
	}
}

// PlayGame plays one game to the end. Each side keeps its own board, as
// it would against a referee, and the two must agree after every move.
func (r *GameRunner) PlayGame(ctx context.Context, id string) (*GameRecord, error) {
	bots := [2]*bot.Bot{
		bot.NewBot(r.players[0], board.First),
		bot.NewBot(r.players[1], board.Second),
	}
	rec := &GameRecord{ID: id, Black: r.names[0], White: r.names[1], Started: time.Now()}

	passes := 0
	for turn := 0; passes < 2; turn++ {
		if turn >= maxTurns {
			return nil, fmt.Errorf("game %s did not finish in %d turns", id, maxTurns)
		}
		mover, other := bots[turn%2], bots[(turn+1)%2]
		mv, err := mover.GenMove(ctx)
		if err != nil {
			return nil, fmt.Errorf("game %s turn %d: %w", id, turn, err)
		}
		if err := other.ApplyOpponentMove(mv); err != nil {
			return nil, fmt.Errorf("game %s turn %d: %w", id, turn, err)
		}
		rec.Moves = append(rec.Moves, mv)
		if mv == move.PassString {
			passes++
		} else {
			passes = 0
		}
	}
	// Two passes in a row end the game; drop them from the record.
	rec.Moves = rec.Moves[:len(rec.Moves)-2]

	final := bots[0].Board()
	if !final.Equals(bots[1].Board()) {
		return nil, fmt.Errorf("game %s: boards diverged", id)
	}
	for _, b := range bots {
		b.GameOver()
	}
	rec.BlackDiscs = final.Count(board.First)
	rec.WhiteDiscs = final.Count(board.Second)
	switch {
	case rec.BlackDiscs > rec.WhiteDiscs:
		rec.Winner = board.First
	case rec.WhiteDiscs > rec.BlackDiscs:
		rec.Winner = board.Second
	}
	rec.Duration = time.Since(rec.Started)
	log.Debug().
		Str("game", id).
		Int("black", rec.BlackDiscs).
		Int("white", rec.WhiteDiscs).
		Int("moves", len(rec.Moves)).
		Msg("game-finished")
	return rec, nil
}
