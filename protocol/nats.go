package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSubjectPrefix = "othello"

	helloTimeout = 2 * time.Second
)

func broadcastSubject(prefix string) string {
	return prefix + ".broadcast"
}

func helloSubject(prefix string) string {
	return prefix + ".hello"
}

func assignSubject(prefix string, worker int) string {
	return fmt.Sprintf("%s.worker.%d.assign", prefix, worker)
}

func reportSubject(prefix string, worker int) string {
	return fmt.Sprintf("%s.worker.%d.report", prefix, worker)
}

type hello struct {
	Worker int `json:"worker"`
}

// Connect dials NATS, retrying with backoff until attempts run out or ctx
// ends.
func Connect(ctx context.Context, url, name string, attempts uint) (*nats.Conn, error) {
	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(url, nats.Name(name))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("url", url).Msg("nats-connect-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return nil, err
	}
	return nc, nil
}

func nextMessage(ctx context.Context, sub *nats.Subscription) (Message, error) {
	msg, err := sub.NextMsgWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Message{}, ctx.Err()
		}
		return Message{}, err
	}
	return Decode(msg.Data)
}

func publish(ctx context.Context, nc *nats.Conn, subject string, msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}
	if err := nc.Publish(subject, data); err != nil {
		return err
	}
	return nc.FlushWithContext(ctx)
}

// NatsMaster is the master end of a cluster whose workers live in other
// processes.
type NatsMaster struct {
	nc       *nats.Conn
	prefix   string
	reports  []*nats.Subscription
	helloSub *nats.Subscription

	mu    sync.Mutex
	seen  map[int]bool
	ready chan struct{}
}

// NewNatsMaster subscribes to the report subjects of workers 0..n-1 and
// starts answering worker hellos.
func NewNatsMaster(nc *nats.Conn, prefix string, n int) (*NatsMaster, error) {
	if n < 1 {
		return nil, ErrNoWorkers
	}
	m := &NatsMaster{
		nc:      nc,
		prefix:  prefix,
		reports: make([]*nats.Subscription, n),
		seen:    map[int]bool{},
		ready:   make(chan struct{}),
	}
	for i := range n {
		sub, err := nc.SubscribeSync(reportSubject(prefix, i))
		if err != nil {
			m.Close()
			return nil, err
		}
		m.reports[i] = sub
	}
	sub, err := nc.Subscribe(helloSubject(prefix), m.onHello)
	if err != nil {
		m.Close()
		return nil, err
	}
	m.helloSub = sub
	if err := nc.Flush(); err != nil {
		m.Close()
		return nil, err
	}
	return m, nil
}

func (m *NatsMaster) onHello(msg *nats.Msg) {
	var h hello
	if err := json.Unmarshal(msg.Data, &h); err != nil || h.Worker < 0 || h.Worker >= len(m.reports) {
		log.Warn().Str("data", string(msg.Data)).Msg("bad-worker-hello")
		return
	}
	m.mu.Lock()
	m.seen[h.Worker] = true
	if len(m.seen) == len(m.reports) {
		select {
		case <-m.ready:
		default:
			close(m.ready)
		}
	}
	m.mu.Unlock()
	log.Info().Int("worker", h.Worker).Msg("worker-ready")
	msg.Respond([]byte("ok"))
}

func (m *NatsMaster) Workers() int {
	return len(m.reports)
}

func (m *NatsMaster) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *NatsMaster) Broadcast(ctx context.Context, msg Message) error {
	return publish(ctx, m.nc, broadcastSubject(m.prefix), msg)
}

func (m *NatsMaster) Send(ctx context.Context, worker int, msg Message) error {
	if worker < 0 || worker >= len(m.reports) {
		return fmt.Errorf("%w: no worker %d", ErrProtocol, worker)
	}
	return publish(ctx, m.nc, assignSubject(m.prefix, worker), msg)
}

func (m *NatsMaster) Recv(ctx context.Context, worker int) (Message, error) {
	if worker < 0 || worker >= len(m.reports) {
		return Message{}, fmt.Errorf("%w: no worker %d", ErrProtocol, worker)
	}
	return nextMessage(ctx, m.reports[worker])
}

func (m *NatsMaster) Close() error {
	for _, sub := range m.reports {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	if m.helloSub != nil {
		m.helloSub.Unsubscribe()
	}
	return nil
}

// NatsWorker is one worker's end of a NATS cluster.
type NatsWorker struct {
	nc     *nats.Conn
	prefix string
	idx    int

	bcast  *nats.Subscription
	direct *nats.Subscription
}

func NewNatsWorker(nc *nats.Conn, prefix string, idx int) (*NatsWorker, error) {
	w := &NatsWorker{nc: nc, prefix: prefix, idx: idx}
	var err error
	w.bcast, err = nc.SubscribeSync(broadcastSubject(prefix))
	if err != nil {
		return nil, err
	}
	w.direct, err = nc.SubscribeSync(assignSubject(prefix, idx))
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := nc.Flush(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *NatsWorker) Index() int {
	return w.idx
}

// Announce keeps saying hello until the master acknowledges it. The master
// may start after its workers.
func (w *NatsWorker) Announce(ctx context.Context) error {
	data, err := json.Marshal(hello{Worker: w.idx})
	if err != nil {
		return err
	}
	return retry.Do(
		func() error {
			rctx, cancel := context.WithTimeout(ctx, helloTimeout)
			defer cancel()
			_, err := w.nc.RequestWithContext(rctx, helloSubject(w.prefix), data)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.MaxDelay(helloTimeout),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Debug().Err(err).Uint("n", n).Int("worker", w.idx).Msg("no-hello-ack-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

func (w *NatsWorker) RecvBroadcast(ctx context.Context) (Message, error) {
	return nextMessage(ctx, w.bcast)
}

func (w *NatsWorker) RecvDirect(ctx context.Context) (Message, error) {
	return nextMessage(ctx, w.direct)
}

func (w *NatsWorker) Send(ctx context.Context, msg Message) error {
	return publish(ctx, w.nc, reportSubject(w.prefix, w.idx), msg)
}

func (w *NatsWorker) Close() error {
	if w.bcast != nil {
		w.bcast.Unsubscribe()
	}
	if w.direct != nil {
		w.direct.Unsubscribe()
	}
	return nil
}
