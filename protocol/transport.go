package protocol

import (
	"context"
	"errors"
)

var ErrNoWorkers = errors.New("cluster needs at least one worker")

// MasterConn is the master's end of a cluster. Workers are numbered
// 0..Workers()-1.
type MasterConn interface {
	Workers() int
	// WaitReady blocks until every worker has announced itself.
	WaitReady(ctx context.Context) error
	// Broadcast delivers a copy of msg to every worker.
	Broadcast(ctx context.Context, msg Message) error
	// Send delivers msg to one worker.
	Send(ctx context.Context, worker int, msg Message) error
	// Recv blocks for the next message from one worker.
	Recv(ctx context.Context, worker int) (Message, error)
	Close() error
}

// WorkerConn is one worker's end of a cluster.
type WorkerConn interface {
	Index() int
	// Announce tells the master this worker is listening.
	Announce(ctx context.Context) error
	// RecvBroadcast blocks for the next broadcast message.
	RecvBroadcast(ctx context.Context) (Message, error)
	// RecvDirect blocks for the next message addressed to this worker.
	RecvDirect(ctx context.Context) (Message, error)
	Send(ctx context.Context, msg Message) error
	Close() error
}
