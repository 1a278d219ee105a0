// Package connection owns the link to the tracking service: it decodes inbound
// frames, routes them to receivers and tracks the service state they carry.
package connection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
	"github.com/ayusman/handlink/internal/callback"
	"github.com/ayusman/handlink/internal/logging"
	"github.com/ayusman/handlink/internal/metric"
	"github.com/ayusman/handlink/internal/receiver"
)

// APIVersion is the client API version sent in the version handshake.
const APIVersion = "1.4.0"

var (
	// ErrNotConnected is returned when sending without a live connection.
	ErrNotConnected = errors.New("not connected to tracking service")
	// ErrAlreadyConnected is returned by Connect while a connection is live.
	ErrAlreadyConnected = errors.New("already connected to tracking service")
	// ErrHandshakeRejected is surfaced on Errors when the service refuses the
	// client API version.
	ErrHandshakeRejected = errors.New("version handshake rejected")
)

// Conn is the transport. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Config holds Manager options. Registry and Loop are required.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	APIVersion       string
	Registry         *callback.Registry
	Loop             *receiver.Loop
	Log              *logrus.Entry
	Metrics          *metric.Metrics
	// ErrorBuffer is the capacity of the Errors channel.
	ErrorBuffer int
}

// Manager connects to the service and dispatches what it sends.
type Manager struct {
	cfg      Config
	log      *logrus.Entry
	metrics  *metric.Metrics
	registry *callback.Registry
	loop     *receiver.Loop

	routesMu  sync.RWMutex
	receivers []receiver.Acceptor
	routes    map[action.Code][]receiver.Acceptor

	connMu sync.Mutex
	conn   Conn
	done   chan struct{}

	stateMu  sync.RWMutex
	tracking action.TrackingServiceState
	presence action.HandPresenceState
	zone     action.InteractionZoneState

	onTracking callback.List[action.TrackingServiceState]
	onPresence callback.List[action.HandPresenceState]
	onZone     callback.List[action.InteractionZoneState]

	internal []callback.Handle
	errs     chan error
}

// New creates a Manager and registers its state callbacks with cfg.Registry.
func New(cfg Config) *Manager {
	if cfg.Log == nil {
		cfg.Log = logging.Discard()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metric.New()
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = APIVersion
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.ErrorBuffer <= 0 {
		cfg.ErrorBuffer = 16
	}

	m := &Manager{
		cfg:      cfg,
		log:      cfg.Log,
		metrics:  cfg.Metrics,
		registry: cfg.Registry,
		loop:     cfg.Loop,
		routes:   make(map[action.Code][]receiver.Acceptor),
		tracking: action.TrackingUnavailable,
		presence: action.HandPresenceIdle,
		zone:     action.HandExited,
		errs:     make(chan error, cfg.ErrorBuffer),
	}

	m.internal = []callback.Handle{
		m.registry.Register(action.FamilyServiceStatus, "", m.handleServiceStatus),
		m.registry.Register(action.FamilyHandPresence, "", m.handleHandPresence),
		m.registry.Register(action.FamilyInteractionZone, "", m.handleInteractionZone),
	}
	return m
}

// AddReceiver adds r to the routing table for every code it accepts.
func (m *Manager) AddReceiver(r receiver.Acceptor) {
	m.routesMu.Lock()
	defer m.routesMu.Unlock()

	m.receivers = append(m.receivers, r)
	for _, c := range action.AllCodes() {
		if r.Accepts(c) {
			m.routes[c] = append(m.routes[c], r)
		}
	}
}

// Routes returns the names of the receivers code is routed to.
func (m *Manager) Routes(code action.Code) []string {
	m.routesMu.RLock()
	defer m.routesMu.RUnlock()

	var names []string
	for _, r := range m.routes[code] {
		names = append(names, r.Name())
	}
	return names
}

// Connect dials the service, starts reading and sends the version handshake.
// A successful handshake response triggers a service status request. There
// is no automatic reconnection.
func (m *Manager) Connect(ctx context.Context) error {
	dialer := &websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, m.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", m.cfg.URL, err)
	}

	if err := m.Attach(conn); err != nil {
		conn.Close()
		return err
	}
	m.log.WithField("url", m.cfg.URL).Info("Connected to tracking service")

	if _, err := m.Request(action.CodeVersionHandshake, map[string]string{"apiVersion": m.cfg.APIVersion}, m.handleHandshake); err != nil {
		return fmt.Errorf("failed to send version handshake: %w", err)
	}
	return nil
}

// Attach starts reading from an established transport.
func (m *Manager) Attach(conn Conn) error {
	m.connMu.Lock()
	defer m.connMu.Unlock()

	if m.conn != nil {
		return ErrAlreadyConnected
	}
	m.conn = conn
	m.done = make(chan struct{})
	m.metrics.Connected.Set(1)

	go m.readLoop(conn, m.done)
	return nil
}

// Disconnect sends a normal closure frame, closes the connection and waits
// for the read goroutine to exit.
// The tracking service state becomes UNAVAILABLE on the next loop tick.
func (m *Manager) Disconnect() error {
	m.connMu.Lock()
	conn, done := m.conn, m.done
	m.conn = nil
	if conn != nil {
		closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteMessage(websocket.CloseMessage, closing); err != nil {
			m.log.WithError(err).Debug("Failed to send close frame")
		}
	}
	m.connMu.Unlock()

	if conn == nil {
		return nil
	}
	err := conn.Close()
	<-done
	return err
}

// Close disconnects and removes the Manager's callbacks from the registry.
func (m *Manager) Close() error {
	err := m.Disconnect()
	for _, h := range m.internal {
		h.Unregister()
	}
	return err
}

// Connected reports whether a transport is attached.
func (m *Manager) Connected() bool {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	return m.conn != nil
}

// Errors returns decode failures and handshake rejections. Errors are
// dropped when nobody reads the channel and it is full.
func (m *Manager) Errors() <-chan error {
	return m.errs
}

func (m *Manager) readLoop(conn Conn, done chan struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleDisconnect(conn, err)
			return
		}
		_ = m.HandleFrame(data)
	}
}

func (m *Manager) handleDisconnect(conn Conn, err error) {
	m.connMu.Lock()
	if m.conn == conn {
		m.conn = nil
		conn.Close()
	}
	m.connMu.Unlock()

	m.metrics.Connected.Set(0)
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		m.log.WithError(err).Warn("Connection to tracking service lost")
	} else {
		m.log.Info("Disconnected from tracking service")
	}

	m.loop.Post(func() { m.setTracking(action.TrackingUnavailable) })
}

// HandleFrame decodes one inbound frame and queues it on every receiver that
// accepts its code. A frame nobody accepts is logged and dropped. A malformed
// frame is returned and also sent on Errors.
func (m *Manager) HandleFrame(data []byte) error {
	msg, err := action.Decode(data)
	if err != nil {
		m.metrics.FramesMalformed.Inc()
		m.log.WithError(err).Warn("Dropping malformed frame")
		m.report(err)
		return err
	}
	m.metrics.FramesReceived.WithLabelValues(msg.Code().String()).Inc()

	m.routesMu.RLock()
	targets := m.routes[msg.Code()]
	m.routesMu.RUnlock()

	if len(targets) == 0 {
		m.metrics.FramesUnroutable.WithLabelValues(msg.Code().String()).Inc()
		m.log.WithField("action", msg.Code()).Warn("No receiver accepts action, dropping")
		return nil
	}

	for _, r := range targets {
		r.Enqueue(msg)
	}
	return nil
}

func (m *Manager) report(err error) {
	select {
	case m.errs <- err:
	default:
	}
}

// Send writes one frame. content is sent as-is.
func (m *Manager) Send(code action.Code, content any) error {
	frame, err := action.Encode(code, content)
	if err != nil {
		return err
	}

	m.connMu.Lock()
	defer m.connMu.Unlock()

	if m.conn == nil {
		return ErrNotConnected
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send %s: %w", code, err)
	}
	m.metrics.FramesSent.WithLabelValues(code.String()).Inc()
	return nil
}

// Request sends code with a fresh request id merged into content. When fn is
// not nil it is registered as the one-shot callback for the response before
// the frame is written. content must marshal to a JSON object or be nil.
func (m *Manager) Request(code action.Code, content any, fn callback.Func) (callback.Handle, error) {
	id := uuid.NewString()

	body, err := withRequestID(content, id)
	if err != nil {
		return callback.Handle{}, fmt.Errorf("failed to build %s: %w", code, err)
	}

	var h callback.Handle
	if fn != nil {
		h = m.registry.Register(code.Family(), id, fn)
	}
	if err := m.Send(code, body); err != nil {
		h.Unregister()
		return callback.Handle{}, err
	}
	return h, nil
}

func withRequestID(content any, id string) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if content != nil {
		raw, err := json.Marshal(content)
		if err != nil {
			return nil, err
		}
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("content must be a JSON object: %w", err)
			}
		}
	}

	idJSON, _ := json.Marshal(id)
	fields["requestID"] = idJSON
	return fields, nil
}

func (m *Manager) handleHandshake(msg action.Message) {
	var resp action.ResponseContent
	if err := msg.Decode(&resp); err != nil {
		m.log.WithError(err).Warn("Invalid handshake response")
		m.report(err)
		return
	}
	if !resp.OK() {
		err := fmt.Errorf("%w: %s", ErrHandshakeRejected, resp.Message)
		m.log.WithError(err).Error("Tracking service refused client version")
		m.report(err)
		return
	}

	m.log.WithField("apiVersion", m.cfg.APIVersion).Debug("Version handshake complete")
	if _, err := m.Request(action.CodeRequestServiceStatus, nil, nil); err != nil {
		m.log.WithError(err).Warn("Failed to request service status")
	}
}
