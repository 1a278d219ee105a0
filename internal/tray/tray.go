// Package tray provides a system tray menu for a running handlink session.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handlink/internal/action"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onStatus func()
	onQuit   func()
	enabled  bool

	tracking action.TrackingServiceState
	presence action.HandPresenceState
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuTracking *systray.MenuItem
	menuPresence *systray.MenuItem
	menuLast     *systray.MenuItem
}

// New creates a new Tray with delivery enabled and the service unavailable.
func New() *Tray {
	return &Tray{
		enabled:  true,
		tracking: action.TrackingUnavailable,
		presence: action.HandPresenceIdle,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnStatus sets the callback for the "Open Status..." menu item.
func (t *Tray) OnStatus(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStatus = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Handlink")
	systray.SetTooltip("Handlink hand tracking client")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle input action delivery")
	systray.AddSeparator()

	t.menuTracking = systray.AddMenuItem(trackingTitle(t.tracking), "Tracking service state")
	t.menuTracking.Disable()
	t.menuPresence = systray.AddMenuItem(presenceTitle(t.presence), "Hand presence")
	t.menuPresence.Disable()
	t.menuLast = systray.AddMenuItem(lastTitle(t.last), "Last input action")
	t.menuLast.Disable()
	systray.AddSeparator()
	t.mu.Unlock()

	menuStatus := systray.AddMenuItem("Open Status...", "Open the status page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Handlink")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuStatus.ClickedCh:
				t.handleStatus()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the enabled state and reports it.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	setTitle(t.menuToggle, toggleTitle(enabled))
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleStatus() {
	t.mu.RLock()
	callback := t.onStatus
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetEnabled updates the toggle without firing OnToggle.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	setTitle(t.menuToggle, toggleTitle(enabled))
}

// SetTrackingState updates the tracking service line.
func (t *Tray) SetTrackingState(s action.TrackingServiceState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracking = s
	setTitle(t.menuTracking, trackingTitle(s))
}

// SetHandPresence updates the hand presence line.
func (t *Tray) SetHandPresence(s action.HandPresenceState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.presence = s
	setTitle(t.menuPresence, presenceTitle(s))
}

// SetLastAction shows the interaction and phase of the last delivered action.
func (t *Tray) SetLastAction(a action.InputAction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = fmt.Sprintf("%s %s", a.InteractionType, a.InputType)
	setTitle(t.menuLast, lastTitle(t.last))
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Status returns the tracking and presence states the tray shows.
func (t *Tray) Status() (action.TrackingServiceState, action.HandPresenceState) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracking, t.presence
}

// setTitle is a no-op before the menu exists.
func setTitle(item *systray.MenuItem, title string) {
	if item != nil {
		item.SetTitle(title)
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func trackingTitle(s action.TrackingServiceState) string {
	switch s {
	case action.TrackingConnected:
		return "Service: connected"
	case action.TrackingNoCamera:
		return "Service: no camera"
	default:
		return "Service: unavailable"
	}
}

func presenceTitle(s action.HandPresenceState) string {
	switch s {
	case action.HandFound:
		return "Hand: found"
	case action.HandsLost:
		return "Hand: lost"
	default:
		return "Hand: none yet"
	}
}

func lastTitle(last string) string {
	if last == "" {
		return "Last: none"
	}
	return "Last: " + last
}
