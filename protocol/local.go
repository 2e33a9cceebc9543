package protocol

import (
	"context"
	"fmt"
	"sync"
)

// localLink holds the three channels between the master and one worker.
type localLink struct {
	bcast   chan Message
	direct  chan Message
	reports chan Message
	ready   chan struct{}
	once    sync.Once
}

// LocalMaster is the master end of an in-process cluster.
type LocalMaster struct {
	links []*localLink
}

// LocalWorker is a worker end of an in-process cluster.
type LocalWorker struct {
	idx  int
	link *localLink
}

// NewLocalCluster wires a master to n workers with Go channels. Every
// message is deep-copied on send so goroutines never share a board.
func NewLocalCluster(n int) (*LocalMaster, []*LocalWorker, error) {
	if n < 1 {
		return nil, nil, ErrNoWorkers
	}
	m := &LocalMaster{links: make([]*localLink, n)}
	ws := make([]*LocalWorker, n)
	for i := range n {
		l := &localLink{
			bcast:   make(chan Message, 1),
			direct:  make(chan Message, 1),
			reports: make(chan Message, 1),
			ready:   make(chan struct{}),
		}
		m.links[i] = l
		ws[i] = &LocalWorker{idx: i, link: l}
	}
	return m, ws, nil
}

func send(ctx context.Context, ch chan Message, msg Message) error {
	select {
	case ch <- msg.clone():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func recv(ctx context.Context, ch chan Message) (Message, error) {
	select {
	case msg := <-ch:
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (m *LocalMaster) Workers() int {
	return len(m.links)
}

func (m *LocalMaster) WaitReady(ctx context.Context) error {
	for _, l := range m.links {
		select {
		case <-l.ready:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *LocalMaster) Broadcast(ctx context.Context, msg Message) error {
	for _, l := range m.links {
		if err := send(ctx, l.bcast, msg); err != nil {
			return err
		}
	}
	return nil
}

func (m *LocalMaster) Send(ctx context.Context, worker int, msg Message) error {
	if worker < 0 || worker >= len(m.links) {
		return fmt.Errorf("%w: no worker %d", ErrProtocol, worker)
	}
	return send(ctx, m.links[worker].direct, msg)
}

func (m *LocalMaster) Recv(ctx context.Context, worker int) (Message, error) {
	if worker < 0 || worker >= len(m.links) {
		return Message{}, fmt.Errorf("%w: no worker %d", ErrProtocol, worker)
	}
	return recv(ctx, m.links[worker].reports)
}

func (m *LocalMaster) Close() error {
	return nil
}

func (w *LocalWorker) Index() int {
	return w.idx
}

func (w *LocalWorker) Announce(ctx context.Context) error {
	w.link.once.Do(func() { close(w.link.ready) })
	return nil
}

func (w *LocalWorker) RecvBroadcast(ctx context.Context) (Message, error) {
	return recv(ctx, w.link.bcast)
}

func (w *LocalWorker) RecvDirect(ctx context.Context) (Message, error) {
	return recv(ctx, w.link.direct)
}

func (w *LocalWorker) Send(ctx context.Context, msg Message) error {
	return send(ctx, w.link.reports, msg)
}

func (w *LocalWorker) Close() error {
	return nil
}
