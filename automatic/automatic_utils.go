package automatic

// Data collection for automatic games: engine vs random, or engine vs
// itself, with results logged to sqlite.

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/bot"
	"github.com/domino14/othello/stats"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

// playing guards PlayGames; IsPlaying only mirrors it for expvar.
var playing atomic.Bool

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

type Options struct {
	Games   int
	Threads int
	// Opponent is RandomPlayer or EnginePlayer.
	Opponent string
	// Seeds fixes the random opponent, one seed per game. Missing seeds
	// are generated.
	Seeds [][32]byte
}

// Summary aggregates results from the engine's point of view.
type Summary struct {
	Opponent string
	Games    int
	Wins     int
	Losses   int
	Draws    int
	// Score counts a win as 1 and a draw as 0.5.
	Score stats.Statistic
	// Margin is the engine's final disc lead.
	Margin stats.Statistic
}

func (s *Summary) add(g *GameRecord, engine board.Player) {
	s.Games++
	switch g.Winner {
	case engine:
		s.Wins++
		s.Score.Push(1)
	case board.NoPlayer:
		s.Draws++
		s.Score.Push(0.5)
	default:
		s.Losses++
		s.Score.Push(0)
	}
	s.Margin.Push(float64(g.Margin(engine)))
}

// Fprint writes a report with a 95% confidence interval on the score and a
// histogram of disc margins.
func (s *Summary) Fprint(w io.Writer) error {
	lo, hi := stats.Interval(&s.Score, 95)
	_, err := fmt.Fprintf(w,
		"Engine vs %s: %d games, %d wins, %d losses, %d draws\n"+
			"Score: %.3f (95%% CI %.3f to %.3f)\n"+
			"Disc margin: %.2f ± %.2f\n",
		s.Opponent, s.Games, s.Wins, s.Losses, s.Draws,
		s.Score.Mean(), lo, hi,
		s.Margin.Mean(), s.Margin.Stdev())
	if err != nil {
		return err
	}
	return stats.Fhistogram(w, &s.Margin, 10, 40)
}

// PlayGames plays opts.Games games of engine against opts.Opponent, the
// engine taking black in even-numbered games. Finished games are saved to
// store if it is not nil.
func PlayGames(ctx context.Context, engine bot.Searcher, store *Store, opts Options) (*Summary, error) {
	if !playing.CompareAndSwap(false, true) {
		return nil, ErrAlreadyPlaying
	}
	defer playing.Store(false)
	IsPlaying.Add(1)
	defer IsPlaying.Add(-1)
	CVCCounter.Set(0)

	switch opts.Opponent {
	case RandomPlayer, EnginePlayer:
	default:
		return nil, fmt.Errorf("unknown opponent %q", opts.Opponent)
	}
	threads := max(opts.Threads, 1)
	seeds := opts.Seeds
	if len(seeds) < opts.Games {
		seeds = append(append([][32]byte(nil), seeds...), GenerateSeeds(opts.Games-len(seeds))...)
	}
	log.Info().Int("games", opts.Games).Int("threads", threads).Str("opponent", opts.Opponent).
		Msg("starting-games")

	summary := &Summary{Opponent: opts.Opponent}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i := 0; i < opts.Games; i++ {
		if gctx.Err() != nil {
			log.Info().Msg("Got stop signal, exiting soon...")
			break
		}
		g.Go(func() error {
			var opp bot.Searcher = engine
			if opts.Opponent == RandomPlayer {
				opp = NewRandomSearcher(seeds[i])
			}
			engineColour := board.First
			r := NewGameRunner(engine, opp, EnginePlayer, opts.Opponent)
			if i%2 == 1 {
				engineColour = board.Second
				r = NewGameRunner(opp, engine, opts.Opponent, EnginePlayer)
			}
			rec, err := r.PlayGame(gctx, fmt.Sprintf("g%05d-%x", i, seeds[i][:4]))
			if err != nil {
				return err
			}
			if store != nil {
				if err := store.SaveGame(gctx, rec); err != nil {
					return err
				}
			}
			mu.Lock()
			summary.add(rec, engineColour)
			mu.Unlock()
			CVCCounter.Add(1)
			if n := CVCCounter.Value(); n%100 == 0 {
				log.Info().Int64("played", n).Msg("games-progress")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	log.Info().Int("games", summary.Games).Int("wins", summary.Wins).Msg("all-games-finished")
	return summary, nil
}
