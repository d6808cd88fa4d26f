// Package plugin loads shared-object plugins and fires their hooks around
// the request/response pipeline.
package plugin

import (
	"fmt"
	"log/slog"

	"github.com/tjfontaine/resthook/pkg/domain"
	"github.com/tjfontaine/resthook/pkg/ports"
)

// loadedPlugin pairs a hook with the library that produced it. The library
// reference must be released strictly after the hook reference: the hook's
// code lives in the library's mapped memory.
type loadedPlugin struct {
	lib  *Library
	hook ports.Hook
	name string
}

// Manager owns the set of loaded plugins and fires their hooks.
//
// Registration order is firing order, for PreSend and PostReceive alike.
// The manager is confined to a single goroutine, matching the synchronous
// pipeline; it performs no internal locking.
type Manager struct {
	logger  *slog.Logger
	plugins []loadedPlugin
}

// NewManager creates an empty manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Count returns the number of loaded plugins.
func (m *Manager) Count() int {
	return len(m.plugins)
}

// Names returns the loaded plugin names in registration order.
func (m *Manager) Names() []string {
	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.name
	}
	return names
}

// LoadPlugin opens the shared object at path, constructs its hook, appends
// it to the firing order, and invokes OnLoad. Any step failing aborts the
// whole operation: no partial state is retained.
func (m *Manager) LoadPlugin(path string) error {
	lib, hook, err := Open(path)
	if err != nil {
		return domain.ErrPluginLoad(err.Error()).WithCause(err)
	}

	if err := m.install(lib, hook); err != nil {
		return err
	}

	m.logger.Info("plugin loaded",
		slog.String("plugin", hook.Name()),
		slog.String("path", path),
	)
	return nil
}

// Register installs an in-process hook, bypassing the loader. Used for
// built-in hooks and tests; it follows the same OnLoad protocol as
// LoadPlugin.
func (m *Manager) Register(hook ports.Hook) error {
	if hook == nil {
		return domain.ErrPluginLoad("nil hook")
	}
	return m.install(nil, hook)
}

func (m *Manager) install(lib *Library, hook ports.Hook) error {
	name := m.safeName(hook)

	if err := m.call(name, "on_load", hook.OnLoad); err != nil {
		// The entry was never appended, so there is nothing to roll back
		// beyond our local references.
		return domain.ErrPluginLoad(fmt.Sprintf("plugin %s: on_load: %v", name, err)).WithCause(err)
	}

	m.plugins = append(m.plugins, loadedPlugin{lib: lib, hook: hook, name: name})
	return nil
}

// PreSend fires every plugin's PreSend hook in registration order. A hook
// failure is logged and swallowed; the remaining plugins still fire.
func (m *Manager) PreSend(req *domain.Request) {
	for _, p := range m.plugins {
		if err := m.call(p.name, "pre_send", func() error { return p.hook.PreSend(req) }); err != nil {
			m.logger.Error("pre_send hook failed",
				slog.String("plugin", p.name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// PostReceive fires every plugin's PostReceive hook in registration order,
// the same order as PreSend.
func (m *Manager) PostReceive(resp *domain.Response) {
	for _, p := range m.plugins {
		if err := m.call(p.name, "post_receive", func() error { return p.hook.PostReceive(resp) }); err != nil {
			m.logger.Error("post_receive hook failed",
				slog.String("plugin", p.name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Unload tears down every plugin in two full passes: first OnUnload on every
// hook, then release of every library reference. The passes are not
// interleaved, so no hook's code is ever invoked after any library reference
// has been dropped. Unload is idempotent; a second call is a no-op.
func (m *Manager) Unload() {
	if len(m.plugins) == 0 {
		return
	}

	for _, p := range m.plugins {
		if err := m.call(p.name, "on_unload", p.hook.OnUnload); err != nil {
			m.logger.Error("on_unload hook failed",
				slog.String("plugin", p.name),
				slog.String("error", err.Error()),
			)
		}
	}

	// Phase 2: drop hook references before library references.
	for i := range m.plugins {
		m.plugins[i].hook = nil
	}
	for i := range m.plugins {
		m.plugins[i].lib = nil
	}
	m.plugins = nil
}

// Close performs the implicit unload at teardown. It must never panic, even
// if the process is already unwinding: a secondary panic out of Unload is
// suppressed rather than escalated.
func (m *Manager) Close() {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic suppressed during plugin teardown",
				slog.Any("panic", r),
			)
		}
	}()
	m.Unload()
}

// call invokes fn with panic containment, converting an escaping panic into
// an ordinary error.
func (m *Manager) call(plugin, hook string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.ErrInternalPanic(fmt.Sprintf("plugin %s: %s panicked: %v", plugin, hook, r))
		}
	}()
	return fn()
}

// safeName fetches the hook's name without letting a misbehaving Name
// implementation take down the load.
func (m *Manager) safeName(hook ports.Hook) (name string) {
	name = "<unknown>"
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("plugin name() panicked", slog.Any("panic", r))
		}
	}()
	if n := hook.Name(); n != "" {
		name = n
	}
	return name
}
