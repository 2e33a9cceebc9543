// Package master drives distributed searches: it splits the root moves of
// a position across a pool of workers, collects their best candidates and
// re-ranks them.
package master

import (
	"github.com/domino14/othello/move"
)

// Partition splits moves into one chunk per worker. With fewer moves than
// workers every worker gets the whole list. Otherwise chunks are contiguous
// and len(moves)/workers long, with the remainder added to the last chunk.
// Chunks may be empty but are never nil, and never share backing storage
// with moves or each other.
func Partition(moves []move.Move, workers int) [][]move.Move {
	if workers < 1 {
		return nil
	}
	chunks := make([][]move.Move, workers)
	if len(moves) < workers {
		for i := range chunks {
			chunks[i] = append([]move.Move{}, moves...)
		}
		return chunks
	}
	size := len(moves) / workers
	for i := range chunks {
		start := i * size
		end := start + size
		if i == workers-1 {
			end = len(moves)
		}
		chunks[i] = append([]move.Move{}, moves[start:end]...)
	}
	return chunks
}
