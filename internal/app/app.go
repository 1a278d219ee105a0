// Package app wires the connection, receivers, pipeline and consumers into a
// Session, the object applications talk to.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/analytics"
	"github.com/ayusman/handlink/internal/callback"
	"github.com/ayusman/handlink/internal/connection"
	"github.com/ayusman/handlink/internal/hand"
	"github.com/ayusman/handlink/internal/logging"
	"github.com/ayusman/handlink/internal/metric"
	"github.com/ayusman/handlink/internal/pipeline"
	"github.com/ayusman/handlink/internal/plugin"
	"github.com/ayusman/handlink/internal/receiver"
	"github.com/ayusman/handlink/internal/store"
)

// stopDrainTicks bounds the final drain in Stop while frames may still arrive.
const stopDrainTicks = 1000

// ErrRunning is returned by Start when the session is already running.
var ErrRunning = errors.New("session already running")

// Config holds configuration options for a Session.
type Config struct {
	ServiceURL       string
	HandshakeTimeout time.Duration
	APIVersion       string
	TickInterval     time.Duration
	PluginDir        string
	// Store enables analytics when set.
	Store         *store.Store
	FlushInterval time.Duration
	Application   string
	Metrics       *metric.Metrics
}

// receiverDefs lists the registry-backed receivers and the inbound codes
// each one accepts.
var receiverDefs = []struct {
	name  string
	codes []action.Code
}{
	{"handshake", []action.Code{action.CodeVersionHandshakeResponse}},
	{"service-status", []action.Code{action.CodeServiceStatus, action.CodeServiceStatusResponse}},
	{"config", []action.Code{action.CodeConfigurationState, action.CodeConfigurationResponse}},
	{"config-file", []action.Code{action.CodeConfigurationFileState, action.CodeConfigurationFileResponse}},
	{"quick-setup", []action.Code{action.CodeQuickSetupConfig, action.CodeQuickSetupResponse}},
	{"hand-presence", []action.Code{action.CodeHandPresenceEvent}},
	{"interaction-zone", []action.Code{action.CodeInteractionZoneEvent}},
	{"tracking-state", []action.Code{action.CodeTrackingState}},
	{"hand-data-stream", []action.Code{action.CodeHandDataStreamState}},
	{"analytics", []action.Code{action.CodeAnalyticsSessionRequest}},
}

// Session is one client of the tracking service. It owns the registry, the
// drain loop, the connection and every receiver; all callbacks run on the
// loop goroutine.
type Session struct {
	config   Config
	log      *logrus.Entry
	metrics  *metric.Metrics
	registry *callback.Registry
	loop     *receiver.Loop
	conn     *connection.Manager
	pipeline *pipeline.Pipeline
	handData *receiver.Receiver

	receivers []*receiver.Receiver
	pluginMgr *plugin.Manager
	recorder  *analytics.Recorder

	frames callback.List[hand.Frame]
	faults callback.List[*plugin.FaultError]

	versionMu      sync.RWMutex
	serviceVersion string

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Session. Nothing connects until Start.
func New(config Config) *Session {
	if config.Metrics == nil {
		config.Metrics = metric.New()
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = 30 * time.Second
	}

	s := &Session{
		config:    config,
		log:       logging.NewLogger("session"),
		metrics:   config.Metrics,
		registry:  callback.NewRegistry(logging.NewLogger("callback")),
		loop:      receiver.NewLoop(config.TickInterval),
		pluginMgr: plugin.NewManager(config.PluginDir),
	}
	// Registered before the connection's own state callback so the version is
	// known when a CONNECTED transition starts an analytics session.
	s.registry.Register(action.FamilyServiceStatus, "", s.trackServiceVersion)

	s.conn = connection.New(connection.Config{
		URL:              config.ServiceURL,
		HandshakeTimeout: config.HandshakeTimeout,
		APIVersion:       config.APIVersion,
		Registry:         s.registry,
		Loop:             s.loop,
		Log:              logging.NewLogger("connection"),
		Metrics:          s.metrics,
	})

	receiverLog := logging.NewLogger("receiver")
	for _, def := range receiverDefs {
		r := receiver.ForRegistry(def.name, s.registry, receiverLog, s.metrics, def.codes...)
		s.receivers = append(s.receivers, r)
	}

	s.handData = receiver.New(receiver.Config{
		Name:    "hand-data",
		Codes:   []action.Code{action.CodeHandData},
		Resolve: s.resolveHandData,
		Log:     receiverLog,
		Metrics: s.metrics,
	})
	s.receivers = append(s.receivers, s.handData)

	s.pipeline = pipeline.New(pipeline.Config{
		Log:     logging.NewLogger("pipeline"),
		Metrics: s.metrics,
		OnFault: func(fe *plugin.FaultError) { s.faults.Emit(fe) },
	})

	for _, r := range s.receivers {
		s.conn.AddReceiver(r)
		s.loop.Add(r)
	}
	s.conn.AddReceiver(s.pipeline)
	s.loop.Add(s.pipeline)

	if config.Store != nil {
		s.recorder = analytics.New(analytics.Config{
			Store:       config.Store,
			Requester:   s.conn,
			Application: config.Application,
			Plugins:     s.pipeline.Plugins,
			Log:         logging.NewLogger("analytics"),
		})
		s.wireRecorder()
	}

	return s
}

func (s *Session) wireRecorder() {
	s.pipeline.OnInputAction(s.recorder.RecordAction)
	s.conn.OnHandPresenceChange(s.recorder.RecordPresence)
	s.conn.OnInteractionZoneChange(s.recorder.RecordZone)
	s.conn.OnTrackingServiceChange(func(st action.TrackingServiceState) {
		if _, ok := s.recorder.Active(); !ok && st == action.TrackingConnected {
			if _, err := s.recorder.Start(s.ServiceVersion()); err != nil {
				s.log.WithError(err).Warn("Failed to start analytics session")
			}
		}
		s.recorder.RecordTracking(st)
	})
}

func (s *Session) trackServiceVersion(msg action.Message) {
	var status action.ServiceStatusContent
	if err := msg.Decode(&status); err != nil || status.ServiceVersion == "" {
		return
	}
	s.versionMu.Lock()
	s.serviceVersion = status.ServiceVersion
	s.versionMu.Unlock()
}

func (s *Session) resolveHandData(msg action.Message) callback.Result {
	if s.frames.Len() == 0 {
		return callback.NoCallbacksFound
	}
	f, err := hand.DecodeFrame(msg)
	if err != nil {
		s.log.WithError(err).Warn("Dropping invalid hand frame")
		return callback.Success
	}
	s.frames.Emit(f)
	return callback.Success
}

// Start begins draining and connects to the service. The loop keeps running
// when the connection fails so that later state changes are still
// delivered; Stop ends it.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return ErrRunning
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop.Run(runCtx)
	}()

	if s.recorder != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.recorder.Run(runCtx, s.config.FlushInterval)
		}()
	}

	if err := s.conn.Connect(ctx); err != nil {
		return err
	}
	s.log.Info("Session started")
	return nil
}

// Stop ends the analytics session while the service can still hear about it,
// then disconnects and stops the loop.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	s.wg.Wait()

	// The loop is stopped; deliver what was already queued so it is counted.
	for i := 0; i < stopDrainTicks && s.loop.Tick() > 0; i++ {
	}

	if s.recorder != nil {
		if _, ok := s.recorder.Active(); ok {
			if err := s.recorder.Stop(); err != nil {
				s.log.WithError(err).Warn("Failed to end analytics session")
			}
		}
	}

	if err := s.conn.Disconnect(); err != nil {
		s.log.WithError(err).Debug("Error closing connection")
	}
	// Runs the UNAVAILABLE transition posted by the disconnect.
	s.loop.Tick()
	s.log.Info("Session stopped")
}

// Run starts the session and blocks until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		s.Stop()
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// Running reports whether Start has been called without Stop.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// ServiceVersion returns the version reported in the last service status.
func (s *Session) ServiceVersion() string {
	s.versionMu.RLock()
	defer s.versionMu.RUnlock()
	return s.serviceVersion
}

// Loop returns the drain loop.
func (s *Session) Loop() *receiver.Loop {
	return s.loop
}

// Connection returns the connection manager.
func (s *Session) Connection() *connection.Manager {
	return s.conn
}

// Pipeline returns the input action pipeline.
func (s *Session) Pipeline() *pipeline.Pipeline {
	return s.pipeline
}

// Registry returns the callback registry.
func (s *Session) Registry() *callback.Registry {
	return s.registry
}

// PluginManager returns the plugin manager.
func (s *Session) PluginManager() *plugin.Manager {
	return s.pluginMgr
}

// Recorder returns the analytics recorder, or nil when analytics is off.
func (s *Session) Recorder() *analytics.Recorder {
	return s.recorder
}

// Metrics returns the session's collectors.
func (s *Session) Metrics() *metric.Metrics {
	return s.metrics
}

// Store returns the analytics store, or nil.
func (s *Session) Store() *store.Store {
	return s.config.Store
}
