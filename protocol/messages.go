// Package protocol defines the messages exchanged between the master and
// its workers, and the transports that carry them.
//
// A round looks like this:
//
//	master                         worker i
//	  Broadcast(Snapshot)    --->    RecvBroadcast
//	  Send(i, Assignment)    --->    RecvDirect
//	  Recv(i)                <---    Send(Report)
//
// The master ends the session by broadcasting Shutdown.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

var (
	// ErrProtocol marks malformed or out-of-order traffic. It is fatal for
	// the round it occurs in.
	ErrProtocol = errors.New("protocol error")
)

type Kind string

const (
	KindSnapshot   Kind = "snapshot"
	KindAssignment Kind = "assignment"
	KindReport     Kind = "report"
	KindShutdown   Kind = "shutdown"
)

// Snapshot is the position every worker searches in a round.
type Snapshot struct {
	Round    uint64       `json:"round"`
	Board    *board.Board `json:"board"`
	Player   board.Player `json:"player"`
	Checksum uint64       `json:"checksum"`
}

// Assignment is the slice of root moves one worker owns for a round. An
// empty Moves list is sent explicitly, never omitted.
type Assignment struct {
	Round  uint64      `json:"round"`
	Worker int         `json:"worker"`
	Moves  []move.Move `json:"moves"`
}

// Report is a worker's answer: its best candidate or a pass.
type Report struct {
	Round  uint64    `json:"round"`
	Worker int       `json:"worker"`
	Move   move.Move `json:"move"`
	Score  int       `json:"score"`
	Nodes  uint64    `json:"nodes"`
	Error  string    `json:"error,omitempty"`
}

// Message is the envelope every transport carries. Exactly one payload is
// set, matching Kind.
type Message struct {
	Kind       Kind        `json:"kind"`
	Snapshot   *Snapshot   `json:"snapshot,omitempty"`
	Assignment *Assignment `json:"assignment,omitempty"`
	Report     *Report     `json:"report,omitempty"`
}

func NewSnapshot(round uint64, b *board.Board, p board.Player) Message {
	c := b.Copy()
	return Message{Kind: KindSnapshot, Snapshot: &Snapshot{
		Round: round, Board: c, Player: p, Checksum: c.Checksum(),
	}}
}

func NewAssignment(round uint64, worker int, moves []move.Move) Message {
	ms := make([]move.Move, len(moves))
	copy(ms, moves)
	return Message{Kind: KindAssignment, Assignment: &Assignment{
		Round: round, Worker: worker, Moves: ms,
	}}
}

func NewReport(r Report) Message {
	return Message{Kind: KindReport, Report: &r}
}

func Shutdown() Message {
	return Message{Kind: KindShutdown}
}

// Validate checks that the payload matches the kind.
func (m Message) Validate() error {
	ok := false
	switch m.Kind {
	case KindSnapshot:
		ok = m.Snapshot != nil && m.Snapshot.Board != nil
	case KindAssignment:
		ok = m.Assignment != nil
	case KindReport:
		ok = m.Report != nil
	case KindShutdown:
		ok = true
	}
	if !ok {
		return fmt.Errorf("%w: bad %q message", ErrProtocol, m.Kind)
	}
	return nil
}

// clone deep-copies the payload so no board or move slice is shared
// between the sender and a receiver.
func (m Message) clone() Message {
	c := Message{Kind: m.Kind}
	if m.Snapshot != nil {
		s := *m.Snapshot
		if s.Board != nil {
			s.Board = s.Board.Copy()
		}
		c.Snapshot = &s
	}
	if m.Assignment != nil {
		a := *m.Assignment
		a.Moves = append([]move.Move(nil), a.Moves...)
		c.Assignment = &a
	}
	if m.Report != nil {
		r := *m.Report
		c.Report = &r
	}
	return c
}

// Encode serialises m for the wire.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses and validates a wire message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
