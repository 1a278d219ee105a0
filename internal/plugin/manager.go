package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrPluginNotFound is returned when a requested plugin cannot be found.
var ErrPluginNotFound = errors.New("plugin not found")

// ErrUnknownType is returned when a manifest names a plugin type with no factory.
var ErrUnknownType = errors.New("unknown plugin type")

// ManifestFile is the manifest name looked up in each plugin directory.
const ManifestFile = "plugin.json"

// Factory builds a plugin from its manifest.
type Factory func(Manifest) (Plugin, error)

// Manager discovers plugin manifests and builds plugin chains from them.
type Manager struct {
	pluginDir string
	factories map[string]Factory
	plugins   map[string]*Discovered
	mu        sync.RWMutex
}

// NewManager creates a Manager for pluginDir with the built-in plugin types
// registered: "noop", "snap" and "filter".
func NewManager(pluginDir string) *Manager {
	m := &Manager{
		pluginDir: pluginDir,
		factories: make(map[string]Factory),
		plugins:   make(map[string]*Discovered),
	}
	m.RegisterType("noop", func(man Manifest) (Plugin, error) { return NewNoop(man.Name), nil })
	m.RegisterType("snap", newSnapFromManifest)
	m.RegisterType("filter", newFilterFromManifest)
	return m
}

// RegisterType adds or replaces the factory for a plugin type.
func (m *Manager) RegisterType(typ string, f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[typ] = f
}

// Discover scans the plugin directory for plugin.json files and loads them.
// Each subdirectory is expected to hold one manifest. Unreadable or invalid
// manifests are skipped.
func (m *Manager) Discover() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plugins = make(map[string]*Discovered)

	info, err := os.Stat(m.pluginDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}

	entries, err := os.ReadDir(m.pluginDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(m.pluginDir, entry.Name())
		data, err := os.ReadFile(filepath.Join(pluginPath, ManifestFile))
		if err != nil {
			continue
		}

		var manifest Manifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			continue
		}
		if manifest.Name == "" {
			manifest.Name = entry.Name()
		}

		m.plugins[manifest.Name] = &Discovered{Manifest: manifest, Path: pluginPath}
	}

	return nil
}

// Get returns a discovered plugin by name.
func (m *Manager) Get(name string) (*Discovered, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound
	}
	return d, nil
}

// List returns the discovered plugins in chain order: by Order, then by name.
func (m *Manager) List() []*Discovered {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Discovered, 0, len(m.plugins))
	for _, d := range m.plugins {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].Manifest, list[j].Manifest
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	return list
}

// Build instantiates every enabled discovered plugin in chain order.
func (m *Manager) Build() (Chain, error) {
	var chain Chain
	for _, d := range m.List() {
		if d.Manifest.Disabled {
			continue
		}
		p, err := m.build(d.Manifest)
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
	}
	return chain, nil
}

func (m *Manager) build(man Manifest) (Plugin, error) {
	m.mu.RLock()
	factory, ok := m.factories[man.Type]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q in plugin %s", ErrUnknownType, man.Type, man.Name)
	}
	return factory(man)
}

// PluginDir returns the plugin directory path.
func (m *Manager) PluginDir() string {
	return m.pluginDir
}
