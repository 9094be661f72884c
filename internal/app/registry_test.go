package app

import (
	"testing"
)

// stubModule is a test double for Module
type stubModule struct {
	name          string
	eventHandlers []EventHandler
	initErr       error
	shutErr       error

	calls *[]string
}

func (m *stubModule) Name() string                  { return m.name }
func (m *stubModule) EventHandlers() []EventHandler { return m.eventHandlers }

func (m *stubModule) Init(ModuleDependencies) error {
	m.record("init")
	return m.initErr
}

func (m *stubModule) Shutdown() error {
	m.record("shutdown")
	return m.shutErr
}

func (m *stubModule) record(call string) {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name+":"+call)
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	mod := &stubModule{name: "test-module"}
	reg.Register(mod)

	modules := reg.Modules()
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}

	if modules[0].Name() != "test-module" {
		t.Errorf("expected module name %q, got %q", "test-module", modules[0].Name())
	}
}

func TestRegistry_RegisterMultiple(t *testing.T) {
	reg := NewRegistry()

	reg.Register(&stubModule{name: "module-1"})
	reg.Register(&stubModule{name: "module-2"})

	modules := reg.Modules()
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	if modules[0].Name() != "module-1" || modules[1].Name() != "module-2" {
		t.Errorf("expected registration order, got %q, %q", modules[0].Name(), modules[1].Name())
	}
}

func TestRegistry_IgnoresDuplicateNames(t *testing.T) {
	reg := NewRegistry()

	first := &stubModule{name: "music_player"}
	reg.Register(first)
	reg.Register(&stubModule{name: "music_player"})

	modules := reg.Modules()
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}
	if modules[0] != first {
		t.Error("expected the first registration to win")
	}
}

func TestRegistry_ModulesReturnsSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubModule{name: "module-1"})

	modules := reg.Modules()

	// Register another module after getting snapshot
	reg.Register(&stubModule{name: "module-2"})

	if len(modules) != 1 {
		t.Errorf("expected snapshot to have 1 module, got %d", len(modules))
	}
}

func TestGlobalRegistry(t *testing.T) {
	ResetGlobalRegistry()
	t.Cleanup(ResetGlobalRegistry)

	Register(&stubModule{name: "global-test"})

	modules := Modules()
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}

	if modules[0].Name() != "global-test" {
		t.Errorf("expected module name %q, got %q", "global-test", modules[0].Name())
	}
}
