// Package analytics records what a session delivered: input action counts and
// state transitions, persisted per analytics session.
package analytics

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/callback"
	"github.com/ayusman/handlink/internal/logging"
	"github.com/ayusman/handlink/internal/store"
)

// ErrNoSession is returned by Stop when no session is running.
var ErrNoSession = errors.New("no analytics session running")

// Request types of ANALYTICS_SESSION_REQUEST.
const (
	RequestStart = "START"
	RequestStop  = "STOP"
)

// Requester sends correlated requests to the service.
type Requester interface {
	Request(code action.Code, content any, fn callback.Func) (callback.Handle, error)
}

// SessionRequest is the content of ANALYTICS_SESSION_REQUEST.
type SessionRequest struct {
	SessionID   string `json:"sessionID"`
	RequestType string `json:"requestType"`
	Application string `json:"application,omitempty"`
}

// Config holds Recorder options. Store is required.
type Config struct {
	Store *store.Store
	// Requester announces sessions to the service; nil keeps sessions local.
	Requester   Requester
	Application string
	// Plugins reports the active plugin chain when a session starts.
	Plugins func() []string
	Log     *logrus.Entry
}

type countKey struct {
	interaction action.InteractionType
	input       action.InputType
}

// Recorder accumulates counts and transitions in memory and writes them to
// the store on Flush. Record methods are cheap and safe from any goroutine.
type Recorder struct {
	cfg Config
	log *logrus.Entry
	now func() time.Time

	mu          sync.Mutex
	session     *store.Session
	counts      map[countKey]int64
	transitions []store.Transition
}

// New creates a Recorder.
func New(cfg Config) *Recorder {
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	return &Recorder{
		cfg:    cfg,
		log:    cfg.Log,
		now:    time.Now,
		counts: make(map[countKey]int64),
	}
}

// Start begins a new session, ending any running one first. The service is
// told about it when a Requester is configured; a failed announcement is
// logged and the session is still recorded locally.
func (r *Recorder) Start(serviceVersion string) (string, error) {
	if _, ok := r.Active(); ok {
		if err := r.Stop(); err != nil {
			return "", err
		}
	}

	sess := &store.Session{
		ID:             uuid.NewString(),
		StartedAt:      r.now(),
		ServiceVersion: serviceVersion,
	}
	if r.cfg.Plugins != nil {
		sess.Plugins = strings.Join(r.cfg.Plugins(), ",")
	}
	if err := r.cfg.Store.Sessions().Create(sess); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.session = sess
	r.mu.Unlock()

	r.log.WithField("session", sess.ID).Info("Analytics session started")
	r.announce(sess.ID, RequestStart)
	return sess.ID, nil
}

// Stop flushes and ends the running session.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	sess := r.session
	r.mu.Unlock()

	if sess == nil {
		return ErrNoSession
	}
	if err := r.Flush(); err != nil {
		return err
	}

	r.mu.Lock()
	r.session = nil
	r.mu.Unlock()

	if err := r.cfg.Store.Sessions().End(sess.ID, r.now()); err != nil {
		return err
	}

	r.log.WithField("session", sess.ID).Info("Analytics session ended")
	r.announce(sess.ID, RequestStop)
	return nil
}

// Active returns the running session id.
func (r *Recorder) Active() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return "", false
	}
	return r.session.ID, true
}

func (r *Recorder) announce(sessionID, requestType string) {
	if r.cfg.Requester == nil {
		return
	}

	req := SessionRequest{SessionID: sessionID, RequestType: requestType, Application: r.cfg.Application}
	_, err := r.cfg.Requester.Request(action.CodeAnalyticsSessionRequest, req, func(msg action.Message) {
		var resp action.ResponseContent
		if err := msg.Decode(&resp); err != nil || !resp.OK() {
			r.log.WithField("session", sessionID).WithField("status", resp.Status).
				Warn("Service did not accept analytics session request")
		}
	})
	if err != nil {
		r.log.WithError(err).WithField("session", sessionID).Debug("Analytics session not announced")
	}
}

// RecordAction counts a delivered input action. Ignored outside a session.
func (r *Recorder) RecordAction(a action.InputAction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return
	}
	r.counts[countKey{a.InteractionType, a.InputType}]++
}

// RecordTracking records a tracking service transition.
func (r *Recorder) RecordTracking(s action.TrackingServiceState) {
	r.record("tracking", string(s))
}

// RecordPresence records a hand presence transition.
func (r *Recorder) RecordPresence(s action.HandPresenceState) {
	r.record("presence", string(s))
}

// RecordZone records an interaction zone transition.
func (r *Recorder) RecordZone(s action.InteractionZoneState) {
	r.record("zone", string(s))
}

func (r *Recorder) record(category, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return
	}
	r.transitions = append(r.transitions, store.Transition{
		SessionID: r.session.ID,
		Category:  category,
		State:     state,
		At:        r.now(),
	})
}

// Counts returns the unflushed counts of the running session.
func (r *Recorder) Counts() []store.Count {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countsLocked()
}

func (r *Recorder) countsLocked() []store.Count {
	counts := make([]store.Count, 0, len(r.counts))
	for k, n := range r.counts {
		counts = append(counts, store.Count{
			InteractionType: string(k.interaction),
			InputType:       string(k.input),
			Count:           n,
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].InteractionType != counts[j].InteractionType {
			return counts[i].InteractionType < counts[j].InteractionType
		}
		return counts[i].InputType < counts[j].InputType
	})
	return counts
}

// Flush writes pending counts and transitions. On failure they are kept for
// the next attempt.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	if r.session == nil {
		r.mu.Unlock()
		return nil
	}
	id := r.session.ID
	counts := r.countsLocked()
	transitions := r.transitions
	r.counts = make(map[countKey]int64)
	r.transitions = nil
	r.mu.Unlock()

	err := r.cfg.Store.Transitions().Add(id, transitions)
	if err == nil {
		transitions = nil
		err = r.cfg.Store.Counts().Add(id, counts)
	}
	if err != nil {
		r.restore(counts, transitions)
		return err
	}
	return nil
}

func (r *Recorder) restore(counts []store.Count, transitions []store.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range counts {
		r.counts[countKey{action.InteractionType(c.InteractionType), action.InputType(c.InputType)}] += c.Count
	}
	r.transitions = append(transitions, r.transitions...)
}

// Run flushes every interval until ctx is done, then flushes once more.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := r.Flush(); err != nil {
				r.log.WithError(err).Warn("Final analytics flush failed")
			}
			return
		case <-ticker.C:
			if err := r.Flush(); err != nil {
				r.log.WithError(err).Warn("Analytics flush failed")
			}
		}
	}
}
