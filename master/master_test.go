package master

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/move"
	"github.com/domino14/othello/protocol"
	"github.com/domino14/othello/rules"
	"github.com/domino14/othello/search"
	"github.com/domino14/othello/testhelpers"
	"github.com/domino14/othello/worker"
)

var positional = equity.NewPositional(equity.DefaultWeights)

func moveRange(n int) []move.Move {
	ms := make([]move.Move, n)
	for i := range ms {
		ms[i] = move.Move(11 + i)
	}
	return ms
}

func TestPartition(t *testing.T) {
	cases := []struct {
		moves   int
		workers int
		sizes   []int
	}{
		{10, 3, []int{3, 3, 4}},
		{9, 3, []int{3, 3, 3}},
		{4, 4, []int{1, 1, 1, 1}},
		{7, 1, []int{7}},
		{11, 4, []int{2, 2, 2, 5}},
		{2, 3, []int{2, 2, 2}},
		{0, 2, []int{0, 0}},
	}
	for _, c := range cases {
		moves := moveRange(c.moves)
		chunks := Partition(moves, c.workers)
		sizes := make([]int, len(chunks))
		for i, ch := range chunks {
			sizes[i] = len(ch)
			assert.NotNil(t, ch)
		}
		assert.Equal(t, c.sizes, sizes, "%d moves over %d workers", c.moves, c.workers)
	}
}

func TestPartitionCoversEveryMoveOnce(t *testing.T) {
	is := is.New(t)
	moves := moveRange(13)
	chunks := Partition(moves, 4)
	var joined []move.Move
	for _, ch := range chunks {
		joined = append(joined, ch...)
	}
	is.Equal(joined, moves)

	// Chunks are copies.
	chunks[0][0] = move.Pass
	is.Equal(moves[0], move.Move(11))
}

func TestPartitionFewerMovesThanWorkers(t *testing.T) {
	is := is.New(t)
	moves := moveRange(2)
	for _, ch := range Partition(moves, 5) {
		is.Equal(ch, moves)
	}
}

func localPool(t *testing.T, workers, depth int) *LocalPool {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigWorkers, workers)
	cfg.Set(config.ConfigWorkerDepth, depth)
	// The workers live as long as this context.
	p, err := NewLocalPool(context.Background(), cfg, positional)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Error(err)
		}
	})
	return p
}

func TestOpeningWithFourWorkers(t *testing.T) {
	is := is.New(t)
	p := localPool(t, 4, 4)
	b := board.NewBoard()
	before := b.Copy()

	m, err := p.Search(context.Background(), b, board.First)
	is.NoErr(err)
	is.True(b.Equals(before))
	assert.Contains(t, []string{"23", "32", "45", "54"}, m.String())
}

func TestDistributedMatchesSequential(t *testing.T) {
	is := is.New(t)
	p := localPool(t, 3, 3)
	for i := 0; i < 8; i++ {
		b, toMove := testhelpers.RandomPosition(6 + i*3)
		moves := rules.LegalMoves(b, toMove)
		if len(moves) == 0 {
			continue
		}
		got, err := p.Search(context.Background(), b, toMove)
		is.NoErr(err)

		// Redo the round by hand.
		s := search.NewSolver(positional, toMove)
		var candidates []move.Move
		for _, chunk := range Partition(moves, 3) {
			if best, _ := s.BestOf(b, chunk, 2); !best.IsPass() {
				candidates = append(candidates, best)
			}
		}
		want, _ := s.BestOf(b, candidates, 1)
		is.Equal(got, want)
	}
}

// fakeConn is a scripted master connection.
type fakeConn struct {
	workers int
	calls   int
	reply   func(round uint64, worker int) protocol.Message
	round   uint64
}

func (f *fakeConn) Workers() int                        { return f.workers }
func (f *fakeConn) WaitReady(ctx context.Context) error { return nil }
func (f *fakeConn) Close() error                        { return nil }

func (f *fakeConn) Broadcast(ctx context.Context, msg protocol.Message) error {
	f.calls++
	if msg.Kind == protocol.KindSnapshot {
		f.round = msg.Snapshot.Round
	}
	return nil
}

func (f *fakeConn) Send(ctx context.Context, worker int, msg protocol.Message) error {
	f.calls++
	return nil
}

func (f *fakeConn) Recv(ctx context.Context, worker int) (protocol.Message, error) {
	f.calls++
	return f.reply(f.round, worker), nil
}

func TestNoMovesPassesWithoutTraffic(t *testing.T) {
	is := is.New(t)
	conn := &fakeConn{workers: 3}
	c := NewCoordinator(conn, positional, 1)

	for _, rows := range [][]string{testhelpers.FirstStuck, testhelpers.FullBoard} {
		m, err := c.Search(context.Background(), testhelpers.MustBoard(rows), board.First)
		is.NoErr(err)
		is.True(m.IsPass())
	}
	is.Equal(conn.calls, 0)
}

func TestBadReportsAreProtocolErrors(t *testing.T) {
	b := board.NewBoard()
	cases := []struct {
		name  string
		reply func(round uint64, worker int) protocol.Message
	}{
		{"round", func(round uint64, worker int) protocol.Message {
			return protocol.NewReport(protocol.Report{Round: round + 1, Worker: worker, Move: move.Pass})
		}},
		{"worker", func(round uint64, worker int) protocol.Message {
			return protocol.NewReport(protocol.Report{Round: round, Worker: worker + 1, Move: move.Pass})
		}},
		{"kind", func(round uint64, worker int) protocol.Message {
			return protocol.NewAssignment(round, worker, nil)
		}},
		{"foreign-move", func(round uint64, worker int) protocol.Message {
			return protocol.NewReport(protocol.Report{Round: round, Worker: worker, Move: 11})
		}},
	}
	for _, tc := range cases {
		conn := &fakeConn{workers: 2, reply: tc.reply}
		c := NewCoordinator(conn, positional, 1)
		m, err := c.Search(context.Background(), b, board.First)
		assert.ErrorIs(t, err, protocol.ErrProtocol, tc.name)
		assert.True(t, m.IsPass(), tc.name)
	}
}

func TestWorkerErrorsCountAsPasses(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard()
	opening := rules.LegalMoves(b, board.First)

	conn := &fakeConn{workers: 2, reply: func(round uint64, worker int) protocol.Message {
		if worker == 0 {
			return protocol.NewReport(protocol.Report{
				Round: round, Worker: worker, Move: opening[0], Error: "checksum mismatch"})
		}
		return protocol.NewReport(protocol.Report{Round: round, Worker: worker, Move: opening[3]})
	}}
	c := NewCoordinator(conn, positional, 1)
	m, err := c.Search(context.Background(), b, board.First)
	is.NoErr(err)
	is.Equal(m, opening[3])

	conn.reply = func(round uint64, worker int) protocol.Message {
		return protocol.NewReport(protocol.Report{Round: round, Worker: worker, Move: move.Pass})
	}
	m, err = c.Search(context.Background(), b, board.First)
	is.NoErr(err)
	is.True(m.IsPass())
}

func TestRecvErrorEndsRound(t *testing.T) {
	is := is.New(t)
	m, _, err := protocol.NewLocalCluster(2)
	is.NoErr(err)
	c := NewCoordinator(m, positional, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	// Nobody is listening: the broadcast fits in the buffers but no report
	// ever comes back.
	_, err = c.Search(ctx, board.NewBoard(), board.First)
	is.True(errors.Is(err, context.DeadlineExceeded))
}

func TestStaleReportsAreSkipped(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard()
	opening := rules.LegalMoves(b, board.First)

	// Each worker first replays a report from the previous round.
	stale := map[int]bool{}
	conn := &fakeConn{workers: 2}
	conn.reply = func(round uint64, worker int) protocol.Message {
		if !stale[worker] {
			stale[worker] = true
			return protocol.NewReport(protocol.Report{Round: round - 1, Worker: worker, Move: opening[0]})
		}
		return protocol.NewReport(protocol.Report{Round: round, Worker: worker, Move: opening[worker+1]})
	}
	c := NewCoordinator(conn, positional, 1)
	m, err := c.Search(context.Background(), b, board.First)
	is.NoErr(err)
	is.True(m == opening[1] || m == opening[2])
}

func TestLateReportDoesNotBreakNextRound(t *testing.T) {
	is := is.New(t)
	m, ws, err := protocol.NewLocalCluster(1)
	is.NoErr(err)
	c := NewCoordinator(m, positional, 1)
	b := board.NewBoard()
	opening := rules.LegalMoves(b, board.First)

	// The worker is not running yet, so the first round times out with its
	// snapshot and assignment still queued.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Search(ctx, b, board.First)
	is.True(errors.Is(err, context.DeadlineExceeded))

	// Now it answers the abandoned round late, then serves the rest.
	done := make(chan error, 1)
	go func() {
		done <- worker.NewSearchWorker(ws[0], positional, 2).Run(context.Background())
	}()

	for round := 2; round <= 5; round++ {
		got, err := c.Search(context.Background(), b, board.First)
		is.NoErr(err)
		assert.Contains(t, opening, got, "round %d", round)
	}
	is.NoErr(c.Shutdown(context.Background()))
	is.NoErr(<-done)
}
