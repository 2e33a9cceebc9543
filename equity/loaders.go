package equity

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	ErrBadWeights       = errors.New("weights table must be 8x8")
	ErrUnknownEvaluator = errors.New("unknown evaluator")
)

type weightsFile struct {
	Weights [][]int `yaml:"weights"`
}

// ParseWeights reads a YAML document of the form
//
//	weights:
//	  - [5, -3, 2, 2, 2, 2, -3, 5]
//	  ...
func ParseWeights(data []byte) (Weights, error) {
	var wf weightsFile
	var w Weights
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return w, err
	}
	if len(wf.Weights) != len(w) {
		return w, fmt.Errorf("%w: got %d rows", ErrBadWeights, len(wf.Weights))
	}
	for r, row := range wf.Weights {
		if len(row) != len(w[r]) {
			return w, fmt.Errorf("%w: row %d has %d columns", ErrBadWeights, r+1, len(row))
		}
		copy(w[r][:], row)
	}
	return w, nil
}

func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, err
	}
	return ParseWeights(data)
}

// New returns the named evaluator. weightsPath is only consulted for the
// positional evaluator; an empty path means DefaultWeights.
func New(name, weightsPath string) (Evaluator, error) {
	switch name {
	case PositionalName, "":
		w := DefaultWeights
		if weightsPath != "" {
			var err error
			w, err = LoadWeights(weightsPath)
			if err != nil {
				return nil, err
			}
			log.Info().Str("path", weightsPath).Msg("loaded-weights")
		}
		return NewPositional(w), nil
	case DiscCountName:
		return DiscCount{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvaluator, name)
}
