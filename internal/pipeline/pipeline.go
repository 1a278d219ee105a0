// Package pipeline delivers INPUT_ACTION messages to consumers after running
// them through the configured plugin chain.
package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/callback"
	"github.com/ayusman/handlink/internal/logging"
	"github.com/ayusman/handlink/internal/metric"
	"github.com/ayusman/handlink/internal/plugin"
	"github.com/ayusman/handlink/internal/receiver"
)

// Name is the receiver name of the pipeline.
const Name = "input-action"

// Config holds Pipeline options. All fields are optional.
type Config struct {
	Log     *logrus.Entry
	Metrics *metric.Metrics
	// OnFault is called on the loop for every plugin fault.
	OnFault func(*plugin.FaultError)
}

// Pipeline is the receiver for input actions. Each drained action is decoded,
// transformed by the plugin chain and handed to consumers in registration
// order.
type Pipeline struct {
	*receiver.Receiver

	log     *logrus.Entry
	metrics *metric.Metrics
	onFault func(*plugin.FaultError)

	chainMu sync.RWMutex
	chain   plugin.Chain

	enabled   atomic.Bool
	consumers callback.List[action.InputAction]
}

// New creates an enabled Pipeline with an empty plugin chain.
func New(cfg Config) *Pipeline {
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.New()
	}

	p := &Pipeline{
		log:     cfg.Log,
		metrics: cfg.Metrics,
		onFault: cfg.OnFault,
	}
	p.enabled.Store(true)
	p.Receiver = receiver.New(receiver.Config{
		Name:    Name,
		Codes:   []action.Code{action.CodeInputAction},
		Resolve: p.resolve,
		Log:     cfg.Log,
		Metrics: cfg.Metrics,
	})
	return p
}

// SetPlugins replaces the plugin sequence. Actions drained after the call use
// the new sequence; an action being processed keeps the old one.
func (p *Pipeline) SetPlugins(plugins []plugin.Plugin) {
	chain := make(plugin.Chain, len(plugins))
	copy(chain, plugins)

	p.chainMu.Lock()
	p.chain = chain
	p.chainMu.Unlock()

	p.log.WithField("plugins", chain.Names()).Info("Plugin chain updated")
}

// Plugins returns the names of the current plugin sequence.
func (p *Pipeline) Plugins() []string {
	p.chainMu.RLock()
	defer p.chainMu.RUnlock()
	return p.chain.Names()
}

// OnInputAction registers a consumer.
func (p *Pipeline) OnInputAction(fn func(action.InputAction)) callback.Handle {
	return p.consumers.Add(fn)
}

// SetEnabled turns delivery on or off. Disabled actions are still drained and
// discarded.
func (p *Pipeline) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled reports whether actions are delivered.
func (p *Pipeline) IsEnabled() bool {
	return p.enabled.Load()
}

func (p *Pipeline) resolve(msg action.Message) callback.Result {
	if p.consumers.Len() == 0 {
		return callback.NoCallbacksFound
	}
	if !p.IsEnabled() {
		return callback.Success
	}

	a, err := action.DecodeInputAction(msg)
	if err != nil {
		p.metrics.ActionsMalformed.Inc()
		p.log.WithError(err).Warn("Dropping undecodable input action")
		return callback.Success
	}

	p.chainMu.RLock()
	chain := p.chain
	p.chainMu.RUnlock()

	res := chain.Run(a)
	switch res.Outcome {
	case plugin.Suppressed:
		p.metrics.ActionsSuppressed.WithLabelValues(res.Plugin).Inc()
		return callback.Success
	case plugin.Faulted:
		p.metrics.PluginFaults.WithLabelValues(res.Plugin).Inc()
		p.log.WithError(res.Err).WithField("plugin", res.Plugin).Error("Plugin fault, dropping input action")
		if p.onFault != nil {
			if fe, ok := res.Err.(*plugin.FaultError); ok {
				p.onFault(fe)
			}
		}
		return callback.Success
	}

	p.consumers.Emit(res.Action)
	p.metrics.ActionsDelivered.Inc()
	return callback.Success
}
