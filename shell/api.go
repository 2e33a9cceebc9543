package shell

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/automatic"
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
	"github.com/domino14/othello/search"
)

var (
	errNoData            = errors.New("no data in command")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a command line into the command, its positional
// arguments and its -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type scoredMove struct {
	mv    move.Move
	flips int
	score int
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit":
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "new":
		return sc.newGame(cmd)
	case "board", "s":
		return msg(sc.boardText()), nil
	case "gen":
		return sc.generate(cmd)
	case "play":
		return sc.playMove(cmd)
	case "pass":
		return sc.pass(cmd)
	case "search":
		return sc.search(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	default:
		log.Warn().Str("cmd", cmd.cmd).Msg("unknown-command")
		return nil, fmt.Errorf("command %q not found; try help", cmd.cmd)
	}
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage()), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	toMove := board.First
	if len(cmd.args) > 0 {
		p, err := board.PlayerFromString(cmd.args[0])
		if err != nil {
			return nil, err
		}
		toMove = p
	}
	sc.board = board.NewBoard()
	sc.toMove = toMove
	sc.curGenMoves = nil
	return msg(sc.boardText()), nil
}

func moveTableHeader() string {
	return "     Move  Flips  Score\n"
}

func moveTableRow(idx int, m scoredMove) string {
	return fmt.Sprintf("%3d: %-6s%-7d%d", idx+1, m.mv, m.flips, m.score)
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	depth := 1
	if len(cmd.args) > 0 {
		d, err := strconv.Atoi(cmd.args[0])
		if err != nil || d < 1 {
			return nil, fmt.Errorf("depth must be a positive integer, got %q", cmd.args[0])
		}
		depth = d
	}
	moves := rules.LegalMoves(sc.board, sc.toMove)
	if len(moves) == 0 {
		sc.curGenMoves = nil
		return msg(fmt.Sprintf("%s has no legal move and must pass.", sc.toMove)), nil
	}
	solver := search.NewSolver(sc.eval, sc.toMove)
	scored := make([]scoredMove, len(moves))
	for i, m := range moves {
		scored[i] = scoredMove{
			mv:    m,
			flips: rules.Flips(sc.board, m, sc.toMove),
			score: solver.ScoreMove(sc.board, m, depth-1),
		}
	}
	// Stable, so ties keep board order, as in a search.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	sc.curGenMoves = scored

	var sb strings.Builder
	sb.WriteString(moveTableHeader())
	for i, m := range scored {
		sb.WriteString(moveTableRow(i, m))
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "%d nodes searched.", solver.Nodes())
	return msg(sb.String()), nil
}

func (sc *ShellController) playMove(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("play needs exactly one move, e.g. play 23 or play #1")
	}
	var m move.Move
	if idxStr, ok := strings.CutPrefix(cmd.args[0], "#"); ok {
		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(sc.curGenMoves) {
			return nil, fmt.Errorf("no generated move #%d; run gen first", idx)
		}
		m = sc.curGenMoves[idx-1].mv
	} else {
		var err error
		m, err = move.FromString(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	if err := sc.play(m); err != nil {
		return nil, err
	}
	return msg(sc.boardText()), nil
}

func (sc *ShellController) pass(cmd *shellcmd) (*Response, error) {
	if err := sc.play(move.Pass); err != nil {
		return nil, err
	}
	return msg(sc.boardText()), nil
}

func (sc *ShellController) search(cmd *shellcmd) (*Response, error) {
	pool, err := sc.searchPool()
	if err != nil {
		return nil, err
	}
	player := sc.toMove
	m, err := pool.Search(sc.ctx, sc.board, player)
	if err != nil {
		return nil, err
	}
	if err := sc.play(m); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("%s plays %s\n%s", player, m, sc.boardText())), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("autoplay needs the number of games")
	}
	games, err := strconv.Atoi(cmd.args[0])
	if err != nil || games < 1 {
		return nil, fmt.Errorf("number of games must be a positive integer, got %q", cmd.args[0])
	}
	opts := automatic.Options{Games: games, Threads: 1, Opponent: automatic.RandomPlayer}
	if opp, ok := cmd.options["opponent"]; ok {
		opts.Opponent = opp
	}
	if t, ok := cmd.options["threads"]; ok {
		opts.Threads, err = strconv.Atoi(t)
		if err != nil {
			return nil, err
		}
	}
	if path, ok := cmd.options["seeds"]; ok {
		opts.Seeds, err = automatic.LoadSeeds(path)
		if err != nil {
			return nil, err
		}
	}
	pool, err := sc.searchPool()
	if err != nil {
		return nil, err
	}
	var store *automatic.Store
	if path := sc.cfg.GetString(config.ConfigAutoplayDB); path != "" {
		store, err = automatic.OpenStore(sc.ctx, path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
	}
	summary, err := automatic.PlayGames(sc.ctx, pool, store, opts)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := summary.Fprint(&sb); err != nil {
		return nil, err
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}
