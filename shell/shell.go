package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/master"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
)

var errExit = errors.New("exit")

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	ctx  context.Context
	cfg  *config.Config
	eval equity.Evaluator

	board  *board.Board
	toMove board.Player
	// moves from the last `gen`, best first
	curGenMoves []scoredMove

	// started on first use, since it may have to wait for NATS workers
	pool master.Pool
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController builds a controller without a terminal. Call
// AttachReadline before Loop.
func NewShellController(ctx context.Context, cfg *config.Config) (*ShellController, error) {
	eval, err := equity.New(cfg.GetString(config.ConfigEvaluator), cfg.GetString(config.ConfigWeightsFile))
	if err != nil {
		return nil, err
	}
	return &ShellController{
		out:    os.Stdout,
		ctx:    ctx,
		cfg:    cfg,
		eval:   eval,
		board:  board.NewBoard(),
		toMove: board.First,
	}, nil
}

func (sc *ShellController) AttachReadline() error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mothello>\033[0m ",
		HistoryFile:     "/tmp/othello-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return err
	}
	sc.l = l
	sc.out = l.Stdout()
	return nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// searchPool returns the worker pool, starting it if needed.
func (sc *ShellController) searchPool() (master.Pool, error) {
	if sc.pool != nil {
		return sc.pool, nil
	}
	p, err := master.NewPool(sc.ctx, sc.cfg, sc.eval)
	if err != nil {
		return nil, err
	}
	sc.pool = p
	return p, nil
}

func (sc *ShellController) play(m move.Move) error {
	if m.IsPass() {
		if rules.HasLegalMoves(sc.board, sc.toMove) {
			return fmt.Errorf("%s has a legal move and cannot pass", sc.toMove)
		}
	} else {
		if !rules.IsLegal(sc.board, m, sc.toMove) {
			return fmt.Errorf("%s is not legal for %s", m, sc.toMove)
		}
		rules.ApplyMove(sc.board, m, sc.toMove)
	}
	log.Debug().Str("move", m.String()).Str("player", sc.toMove.String()).Msg("played")
	sc.toMove = sc.toMove.Opponent()
	sc.curGenMoves = nil
	return nil
}

func (sc *ShellController) boardText() string {
	var sb strings.Builder
	sb.WriteString(sc.board.ToDisplayText())
	fmt.Fprintf(&sb, "Black %d, White %d. ", sc.board.Count(board.First), sc.board.Count(board.Second))
	if rules.IsTerminal(sc.board) {
		sb.WriteString("Game over.")
	} else {
		fmt.Fprintf(&sb, "%s to move.", sc.toMove)
	}
	return sb.String()
}

// Execute runs one command line and prints its result. It returns errExit
// when the user asks to quit.
func (sc *ShellController) Execute(line string) error {
	cmd, err := extractFields(line)
	if err == errNoData {
		return nil
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	resp, err := sc.dispatch(cmd)
	if err == errExit {
		return err
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

// Close stops the worker pool, if one was started.
func (sc *ShellController) Close() error {
	if sc.pool == nil {
		return nil
	}
	err := sc.pool.Close()
	sc.pool = nil
	return err
}

func (sc *ShellController) Loop(sig chan os.Signal) {

	defer sc.l.Close()
	defer sc.Close()

	for {

		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)

		if err := sc.Execute(line); err == errExit {
			sig <- syscall.SIGINT
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
