package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/othello/move"
	"github.com/domino14/othello/rules"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Args: []string{"black", "white"},
	},
	"autoplay": {
		Options: []string{"-opponent", "-threads", "-seeds"},
	},
	"help": {
		Args: []string{"gen", "search", "autoplay"},
	},
}

var commandNames = []string{
	"help", "new", "board", "s", "gen", "play", "pass", "search", "autoplay", "exit",
}

var opponentValues = []string{"random", "engine"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		switch {
		case lastCompleteField == "-opponent":
			completions = opponentValues
		case cmdName == "play":
			completions = c.legalMoves()
		case strings.HasPrefix(prefix, "-"):
			completions = commandMetadata[cmdName].Options
		default:
			completions = commandMetadata[cmdName].Args
		}
	}

	var suggestions [][]rune
	for _, comp := range completions {
		if strings.HasPrefix(comp, prefix) {
			suggestions = append(suggestions, []rune(comp[len(prefix):]))
		}
	}
	return suggestions, len(prefix)
}

func (c *ShellCompleter) legalMoves() []string {
	return lo.Map(rules.LegalMoves(c.sc.board, c.sc.toMove), func(m move.Move, _ int) string {
		return m.String()
	})
}
