package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/move"
)

func TestEncodeDecode(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard()
	msg := NewSnapshot(3, b, board.Second)
	data, err := Encode(msg)
	is.NoErr(err)

	got, err := Decode(data)
	is.NoErr(err)
	is.Equal(got.Kind, KindSnapshot)
	is.Equal(got.Snapshot.Round, uint64(3))
	is.Equal(got.Snapshot.Player, board.Second)
	is.True(got.Snapshot.Board.Equals(b))
	is.Equal(got.Snapshot.Checksum, b.Checksum())

	data, err = Encode(NewAssignment(3, 1, []move.Move{}))
	is.NoErr(err)
	got, err = Decode(data)
	is.NoErr(err)
	is.Equal(got.Assignment.Worker, 1)
	is.Equal(len(got.Assignment.Moves), 0)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		`not json`,
		`{"kind":"snapshot"}`,
		`{"kind":"report"}`,
		`{"kind":"teleport"}`,
		`{"kind":"snapshot","snapshot":{"board":"bbbb"}}`,
	} {
		_, err := Decode([]byte(data))
		assert.ErrorIs(t, err, ErrProtocol, data)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	is := is.New(t)
	b := board.NewBoard()
	msg := NewSnapshot(1, b, board.First)
	b.Set(board.Loc(11), board.FirstDisc)
	is.Equal(msg.Snapshot.Board.At(board.Loc(11)), board.Empty)
	is.Equal(msg.Snapshot.Checksum, msg.Snapshot.Board.Checksum())
}

func TestLocalCluster(t *testing.T) {
	is := is.New(t)
	_, _, err := NewLocalCluster(0)
	is.True(errors.Is(err, ErrNoWorkers))

	m, ws, err := NewLocalCluster(3)
	is.NoErr(err)
	is.Equal(m.Workers(), 3)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, w := range ws {
		is.NoErr(w.Announce(ctx))
		is.NoErr(w.Announce(ctx))
	}
	is.NoErr(m.WaitReady(ctx))

	b := board.NewBoard()
	is.NoErr(m.Broadcast(ctx, NewSnapshot(1, b, board.First)))
	moves := []move.Move{34, 43}
	for i := range ws {
		is.NoErr(m.Send(ctx, i, NewAssignment(1, i, moves)))
	}

	var wg sync.WaitGroup
	for _, w := range ws {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := w.RecvBroadcast(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			// Scribbling on our copy must not reach anyone else's.
			snap.Snapshot.Board.Set(board.Loc(11), board.SecondDisc)
			asg, err := w.RecvDirect(ctx)
			if err != nil {
				t.Error(err)
				return
			}
			asg.Assignment.Moves[0] = move.Pass
			w.Send(ctx, NewReport(Report{Round: 1, Worker: w.Index(), Move: 34}))
		}()
	}
	wg.Wait()
	is.Equal(moves[0], move.Move(34))
	is.Equal(b.At(board.Loc(11)), board.Empty)

	for i := range ws {
		rep, err := m.Recv(ctx, i)
		is.NoErr(err)
		is.Equal(rep.Report.Worker, i)
	}

	_, err = m.Recv(ctx, 3)
	is.True(errors.Is(err, ErrProtocol))
}

func TestLocalRecvHonoursContext(t *testing.T) {
	is := is.New(t)
	m, _, err := NewLocalCluster(1)
	is.NoErr(err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Recv(ctx, 0)
	is.True(errors.Is(err, context.DeadlineExceeded))
	is.True(errors.Is(m.WaitReady(ctx), context.DeadlineExceeded))
}

func TestSubjects(t *testing.T) {
	is := is.New(t)
	is.Equal(broadcastSubject("othello"), "othello.broadcast")
	is.Equal(helloSubject("othello"), "othello.hello")
	is.Equal(assignSubject("othello", 2), "othello.worker.2.assign")
	is.Equal(reportSubject("othello", 2), "othello.worker.2.report")
}

// Needs a running server, e.g. OTHELLO_TEST_NATS_URL=nats://127.0.0.1:4222
func TestNatsRoundTrip(t *testing.T) {
	url := os.Getenv("OTHELLO_TEST_NATS_URL")
	if url == "" {
		t.Skip("OTHELLO_TEST_NATS_URL not set")
	}
	is := is.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	prefix := fmt.Sprintf("othello-test-%d", time.Now().UnixNano())

	mnc, err := Connect(ctx, url, "test-master", 3)
	is.NoErr(err)
	defer mnc.Close()
	wnc, err := Connect(ctx, url, "test-worker", 3)
	is.NoErr(err)
	defer wnc.Close()

	w, err := NewNatsWorker(wnc, prefix, 0)
	is.NoErr(err)
	defer w.Close()
	m, err := NewNatsMaster(mnc, prefix, 1)
	is.NoErr(err)
	defer m.Close()

	is.NoErr(w.Announce(ctx))
	is.NoErr(m.WaitReady(ctx))

	b := board.NewBoard()
	is.NoErr(m.Broadcast(ctx, NewSnapshot(1, b, board.First)))
	is.NoErr(m.Send(ctx, 0, NewAssignment(1, 0, []move.Move{34})))

	snap, err := w.RecvBroadcast(ctx)
	is.NoErr(err)
	is.True(snap.Snapshot.Board.Equals(b))
	asg, err := w.RecvDirect(ctx)
	is.NoErr(err)
	is.Equal(asg.Assignment.Moves, []move.Move{34})

	is.NoErr(w.Send(ctx, NewReport(Report{Round: 1, Worker: 0, Move: 34, Score: 2})))
	rep, err := m.Recv(ctx, 0)
	is.NoErr(err)
	is.Equal(rep.Report.Score, 2)
}
