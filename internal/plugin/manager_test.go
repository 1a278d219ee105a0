package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeManifest creates <dir>/<subdir>/plugin.json.
func writeManifest(t *testing.T, dir, subdir string, manifest Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(dir, subdir)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()

	pluginDir := writeManifest(t, tmpDir, "snap-buttons", Manifest{
		Name:        "snap-buttons",
		Type:        "snap",
		Description: "Snap to buttons",
		Order:       1,
		Config:      json.RawMessage(`{"mode":"center","distance":25,"softness":0.3}`),
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	d := plugins[0]
	if d.Manifest.Name != "snap-buttons" {
		t.Errorf("expected plugin name 'snap-buttons', got %q", d.Manifest.Name)
	}
	if d.Manifest.Type != "snap" {
		t.Errorf("expected type 'snap', got %q", d.Manifest.Type)
	}
	if d.Manifest.Description != "Snap to buttons" {
		t.Errorf("expected description 'Snap to buttons', got %q", d.Manifest.Description)
	}
	if d.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, d.Path)
	}
}

func TestManager_Discover_NameDefaultsToDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "passthrough", Manifest{Type: "noop"})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if _, err := manager.Get("passthrough"); err != nil {
		t.Errorf("expected plugin named after its directory, got %v", err)
	}
}

func TestManager_Discover_EmptyDir(t *testing.T) {
	manager := NewManager(t.TempDir())
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on empty dir: %v", err)
	}

	if plugins := manager.List(); len(plugins) != 0 {
		t.Fatalf("expected 0 plugins, got %d", len(plugins))
	}
}

func TestManager_Discover_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()

	pluginDir := filepath.Join(tmpDir, "bad-plugin")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), []byte("not valid json"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}

	if plugins := manager.List(); len(plugins) != 0 {
		t.Fatalf("expected 0 plugins (invalid JSON should be skipped), got %d", len(plugins))
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist")

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if plugins := manager.List(); len(plugins) != 0 {
		t.Fatalf("expected 0 plugins, got %d", len(plugins))
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	manager := NewManager(t.TempDir())

	_, err := manager.Get("nonexistent-plugin")
	if err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_PluginDir(t *testing.T) {
	pluginDir := "/path/to/plugins"
	manager := NewManager(pluginDir)

	if manager.PluginDir() != pluginDir {
		t.Errorf("expected plugin dir %q, got %q", pluginDir, manager.PluginDir())
	}
}

func TestManager_Build(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "b", Manifest{Name: "second", Type: "snap", Order: 2,
		Config: json.RawMessage(`{"distance":25,"softness":0.3}`)})
	writeManifest(t, tmpDir, "a", Manifest{Name: "first", Type: "noop", Order: 1})
	writeManifest(t, tmpDir, "c", Manifest{Name: "off", Type: "noop", Order: 0, Disabled: true})
	writeManifest(t, tmpDir, "d", Manifest{Name: "drop-cancel", Type: "filter", Order: 3,
		Config: json.RawMessage(`{"inputTypes":["CANCEL"]}`)})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	chain, err := manager.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	want := []string{"first", "second", "drop-cancel"}
	got := chain.Names()
	if len(got) != len(want) {
		t.Fatalf("expected chain %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chain[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestManager_Build_Errors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeManifest(t, tmpDir, "x", Manifest{Name: "x", Type: "teleport"})

		manager := NewManager(tmpDir)
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover() failed: %v", err)
		}

		if _, err := manager.Build(); !errors.Is(err, ErrUnknownType) {
			t.Errorf("expected ErrUnknownType, got %v", err)
		}
	})

	t.Run("invalid snap config", func(t *testing.T) {
		tmpDir := t.TempDir()
		writeManifest(t, tmpDir, "s", Manifest{Name: "s", Type: "snap",
			Config: json.RawMessage(`{"softness":3}`)})

		manager := NewManager(tmpDir)
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover() failed: %v", err)
		}

		if _, err := manager.Build(); err == nil {
			t.Error("expected error for softness outside [0, 1]")
		}
	})
}

func TestManager_RegisterType(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, "custom", Manifest{Name: "custom", Type: "custom"})

	manager := NewManager(tmpDir)
	manager.RegisterType("custom", func(m Manifest) (Plugin, error) { return NewNoop(m.Name), nil })
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	chain, err := manager.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if len(chain) != 1 || chain[0].Name() != "custom" {
		t.Errorf("expected custom plugin in chain, got %v", chain.Names())
	}
}
