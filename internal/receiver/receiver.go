// Package receiver implements the per-kind message queues and the cooperative
// loop that drains them.
package receiver

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/callback"
	"github.com/ayusman/handlink/internal/logging"
	"github.com/ayusman/handlink/internal/metric"
)

// Resolver handles one drained message.
type Resolver func(action.Message) callback.Result

// Acceptor is what the connection manager needs to route a message.
type Acceptor interface {
	Name() string
	Accepts(code action.Code) bool
	Enqueue(msg action.Message) bool
}

// Drainer is what the loop needs to make progress on a queue.
type Drainer interface {
	Name() string
	Drain() (callback.Result, bool)
}

// Config holds receiver options. Log and Metrics may be nil.
type Config struct {
	Name    string
	Codes   []action.Code
	Resolve Resolver
	Log     *logrus.Entry
	Metrics *metric.Metrics
}

// Receiver owns an unbounded FIFO of messages whose codes it accepts. One
// goroutine enqueues and one drains; each Drain resolves exactly one message.
type Receiver struct {
	name    string
	accepts map[action.Code]struct{}
	resolve Resolver
	log     *logrus.Entry
	metrics *metric.Metrics

	mu     sync.Mutex
	queue  []action.Message
	active bool
}

// New creates a Receiver.
func New(cfg Config) *Receiver {
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.New()
	}

	accepts := make(map[action.Code]struct{}, len(cfg.Codes))
	for _, c := range cfg.Codes {
		accepts[c] = struct{}{}
	}

	return &Receiver{
		name:    cfg.Name,
		accepts: accepts,
		resolve: cfg.Resolve,
		log:     cfg.Log.WithField("receiver", cfg.Name),
		metrics: cfg.Metrics,
	}
}

// ForRegistry creates a Receiver that resolves against reg.
func ForRegistry(name string, reg *callback.Registry, log *logrus.Entry, m *metric.Metrics, codes ...action.Code) *Receiver {
	return New(Config{
		Name:    name,
		Codes:   codes,
		Resolve: reg.Resolve,
		Log:     log,
		Metrics: m,
	})
}

// Name returns the receiver name.
func (r *Receiver) Name() string { return r.name }

// Accepts reports whether code is in the receiver's accepted set.
func (r *Receiver) Accepts(code action.Code) bool {
	_, ok := r.accepts[code]
	return ok
}

// Codes returns the accepted set in code order.
func (r *Receiver) Codes() []action.Code {
	var out []action.Code
	for _, c := range action.AllCodes() {
		if r.Accepts(c) {
			out = append(out, c)
		}
	}
	return out
}

// Enqueue appends msg to the queue. A message whose code is not accepted is
// dropped with a warning; the connection manager should never route one here.
func (r *Receiver) Enqueue(msg action.Message) bool {
	if !r.Accepts(msg.Code()) {
		r.log.WithField("action", msg.Code()).Warn("Dropping message with unaccepted action")
		r.metrics.Rejected.WithLabelValues(r.name, msg.Code().String()).Inc()
		return false
	}

	r.mu.Lock()
	r.queue = append(r.queue, msg)
	depth := len(r.queue)
	r.mu.Unlock()

	r.metrics.Enqueued.WithLabelValues(r.name).Inc()
	r.metrics.QueueDepth.WithLabelValues(r.name).Set(float64(depth))
	return true
}

// Drain removes the head message and resolves it. It returns false when the
// queue was empty. The message is gone after Drain whatever the result.
func (r *Receiver) Drain() (callback.Result, bool) {
	r.mu.Lock()
	if len(r.queue) == 0 {
		r.mu.Unlock()
		return callback.NoCallbacksFound, false
	}
	msg := r.queue[0]
	r.queue[0] = action.Message{}
	r.queue = r.queue[1:]
	depth := len(r.queue)
	r.active = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	r.metrics.QueueDepth.WithLabelValues(r.name).Set(float64(depth))

	result := r.resolve(msg)
	r.metrics.Resolved.WithLabelValues(r.name, result.String()).Inc()

	if result == callback.NoCallbacksFound {
		r.log.WithFields(logrus.Fields{
			"action":    msg.Code(),
			"requestID": msg.RequestID(),
		}).Warn("No callbacks found for message")
	}
	return result, true
}

// Len returns the number of queued messages.
func (r *Receiver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Active reports whether a drained message is being resolved right now.
func (r *Receiver) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}
