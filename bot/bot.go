package bot

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
)

const (
	CmdGenMove  = "gen_move"
	CmdPlayMove = "play_move"
	CmdGameOver = "game_over"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

// Searcher picks a move for p on b without modifying b.
type Searcher interface {
	Search(ctx context.Context, b *board.Board, p board.Player) (move.Move, error)
}

// Bot owns the authoritative board of one game and plays one colour in
// it. Searchers only ever see copies of the board.
type Bot struct {
	mu       sync.Mutex
	searcher Searcher
	colour   board.Player
	board    *board.Board
	over     bool
}

func NewBot(searcher Searcher, colour board.Player) *Bot {
	if !colour.Valid() {
		panic(fmt.Errorf("%w: %d", board.ErrInvalidPlayer, colour))
	}
	return &Bot{searcher: searcher, colour: colour, board: board.NewBoard()}
}

// NewGame resets the board to the opening position.
func (bot *Bot) NewGame() {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	bot.board = board.NewBoard()
	bot.over = false
}

func (bot *Bot) Colour() board.Player {
	return bot.colour
}

// Board returns a copy of the current position.
func (bot *Bot) Board() *board.Board {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	return bot.board.Copy()
}

// GenMove searches for our move, plays it on the board and returns it as
// a move string, "pass" if we have no move.
func (bot *Bot) GenMove(ctx context.Context) (string, error) {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	if bot.over {
		return "", ErrGameOver
	}
	m, err := bot.searcher.Search(ctx, bot.board, bot.colour)
	if err != nil {
		return "", err
	}
	if !m.IsPass() {
		if !rules.IsLegal(bot.board, m, bot.colour) {
			// The searcher only returns root moves; this is a bug.
			return "", fmt.Errorf("%w: searcher returned %s", ErrIllegalMove, m)
		}
		rules.ApplyMove(bot.board, m, bot.colour)
	}
	log.Info().Str("move", m.String()).Str("colour", bot.colour.String()).Msg("generated-move")
	log.Debug().Msg("\n" + bot.board.ToDisplayText())
	return m.String(), nil
}

// ApplyOpponentMove plays the opponent's move on the board. Malformed or
// illegal moves are rejected and leave the board untouched.
func (bot *Bot) ApplyOpponentMove(s string) error {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	if bot.over {
		return ErrGameOver
	}
	m, err := move.FromString(s)
	if err != nil {
		return err
	}
	opp := bot.colour.Opponent()
	if !m.IsPass() {
		if !rules.IsLegal(bot.board, m, opp) {
			return fmt.Errorf("%w: %s for %s", ErrIllegalMove, m, opp)
		}
		rules.ApplyMove(bot.board, m, opp)
	}
	log.Info().Str("move", m.String()).Str("colour", opp.String()).Msg("opponent-move")
	log.Debug().Msg("\n" + bot.board.ToDisplayText())
	return nil
}

// GameOver marks the game finished and logs the final score.
func (bot *Bot) GameOver() {
	bot.mu.Lock()
	defer bot.mu.Unlock()
	bot.over = true
	log.Info().
		Int("black", bot.board.Count(board.First)).
		Int("white", bot.board.Count(board.Second)).
		Msg("game-over")
}

// handle runs one referee command and returns the reply line, if any.
func (bot *Bot) handle(ctx context.Context, line string) (string, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false, nil
	}
	switch fields[0] {
	case CmdGenMove:
		m, err := bot.GenMove(ctx)
		if err != nil {
			return "", false, err
		}
		return m, true, nil
	case CmdPlayMove:
		if len(fields) != 2 {
			return "", false, fmt.Errorf("%w: %q", move.ErrMalformedMove, line)
		}
		return "", false, bot.ApplyOpponentMove(fields[1])
	case CmdGameOver:
		bot.GameOver()
		return "", false, nil
	default:
		log.Warn().Str("cmd", line).Msg("unknown-command")
		return "", false, nil
	}
}

// Serve reads newline-delimited referee commands from r until game_over,
// EOF or ctx ends. Moves we generate are written to w, one per line. An
// opponent move we cannot apply ends the session, since our board can no
// longer be trusted.
func (bot *Bot) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		log.Debug().Str("cmd", line).Msg("referee-command")
		reply, ok, err := bot.handle(ctx, line)
		if err != nil {
			return err
		}
		if ok {
			if _, err := fmt.Fprintln(w, reply); err != nil {
				return err
			}
		}
		if strings.TrimSpace(line) == CmdGameOver {
			return nil
		}
	}
	return scanner.Err()
}

// Main answers referee commands sent as NATS requests on subject until
// ctx ends. Errors are returned to the requester as "error: ...".
func Main(ctx context.Context, nc *nats.Conn, subject string, bot *Bot) error {
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		reply, _, err := bot.handle(ctx, string(m.Data))
		if err != nil {
			log.Err(err).Msg("bot-command-failed")
			reply = "error: " + err.Error()
		}
		m.Respond([]byte(reply))
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Msgf("Listening on [%s]", subject)
	<-ctx.Done()
	return nil
}
