package callback

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/logging"
)

// Result is the outcome of resolving one message.
type Result int

const (
	// Success means at least one callback was invoked.
	Success Result = iota
	// NoCallbacksFound means neither a broadcast nor a matching one-shot
	// callback existed. It is logged, never treated as a fault.
	NoCallbacksFound
)

// String returns the result name used in logs.
func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case NoCallbacksFound:
		return "NoCallbacksFound"
	default:
		return "Unknown"
	}
}

// Func receives a resolved message.
type Func func(action.Message)

type oneShotEntry struct {
	token string
	fn    Func
}

type family struct {
	broadcast List[action.Message]
	oneShot   map[string]oneShotEntry
}

// Registry maps each message family to its broadcast subscriptions and
// its outstanding one-shot callbacks keyed by correlation id.
type Registry struct {
	mu       sync.Mutex
	families map[action.Family]*family
	log      *logrus.Entry
}

// NewRegistry creates an empty Registry. log may be nil.
func NewRegistry(log *logrus.Entry) *Registry {
	if log == nil {
		log = logging.Discard()
	}
	return &Registry{
		families: make(map[action.Family]*family),
		log:      log,
	}
}

// Register adds fn to the family. An empty id registers a broadcast callback
// that sees every message of the family until unregistered; a non-empty id
// registers a one-shot callback consumed by the first message carrying that id.
func (r *Registry) Register(fam action.Family, id string, fn Func) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.familyLocked(fam)
	if id == "" {
		return f.broadcast.Add(fn)
	}

	if _, exists := f.oneShot[id]; exists {
		r.log.WithFields(logrus.Fields{"family": fam, "requestID": id}).
			Warn("Replacing pending callback with the same request id")
	}
	token := uuid.NewString()
	f.oneShot[id] = oneShotEntry{token: token, fn: fn}

	return Handle{key: id, remove: func(key string) { r.removeOneShot(fam, key, token) }}
}

// Resolve invokes the callbacks matching msg: every broadcast callback of its
// family, then the one-shot registered under its request id, which is removed
// before being called.
func (r *Registry) Resolve(msg action.Message) Result {
	r.mu.Lock()
	f, ok := r.families[msg.Family()]
	var oneShot Func
	if ok && msg.RequestID() != "" {
		if entry, found := f.oneShot[msg.RequestID()]; found {
			oneShot = entry.fn
			delete(f.oneShot, msg.RequestID())
		}
	}
	r.mu.Unlock()

	if !ok {
		return NoCallbacksFound
	}

	invoked := f.broadcast.Emit(msg)
	if oneShot != nil {
		oneShot(msg)
		invoked++
	}

	if invoked == 0 {
		return NoCallbacksFound
	}
	return Success
}

// Pending returns the number of one-shot callbacks still waiting for a
// response in the family.
func (r *Registry) Pending(fam action.Family) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.families[fam]; ok {
		return len(f.oneShot)
	}
	return 0
}

// Subscribers returns the number of broadcast callbacks in the family.
func (r *Registry) Subscribers(fam action.Family) int {
	r.mu.Lock()
	f, ok := r.families[fam]
	r.mu.Unlock()

	if !ok {
		return 0
	}
	return f.broadcast.Len()
}

func (r *Registry) familyLocked(fam action.Family) *family {
	f, ok := r.families[fam]
	if !ok {
		f = &family{oneShot: make(map[string]oneShotEntry)}
		r.families[fam] = f
	}
	return f
}

// removeOneShot deletes id only if it still belongs to the registration that
// issued token; a later registration reusing the id is left alone.
func (r *Registry) removeOneShot(fam action.Family, id, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.families[fam]; ok {
		if entry, found := f.oneShot[id]; found && entry.token == token {
			delete(f.oneShot, id)
		}
	}
}
