// Package ports defines the core interfaces of the client: the plugin hook
// contract and the transport collaborator.
//
// Together with pkg/domain this is the public surface plugins compile
// against; out-of-tree plugin modules import these two packages and nothing
// else.
package ports

import "github.com/tjfontaine/resthook/pkg/domain"

// FactorySymbol is the single exported symbol a loadable plugin must provide.
// Calling it must return a non-nil Hook or the load is treated as failed.
const FactorySymbol = "NewPlugin"

// HookFactory is the signature of the exported factory symbol.
type HookFactory func() Hook

// Hook is the capability set a loaded plugin exposes to the pipeline.
//
// PreSend and PostReceive receive mutable access to the in-flight request and
// response; rewriting content (header injection, stripping, body edits) is
// the entire point of the contract. A hook failure, returned or panicked,
// never aborts the pipeline: the manager contains it and continues with the
// remaining plugins.
type Hook interface {
	// Name returns the plugin's human-readable name.
	Name() string

	// OnLoad is invoked once, immediately after the plugin is registered.
	OnLoad() error

	// OnUnload is invoked once during unload, before any library handle
	// is released.
	OnUnload() error

	// PreSend fires before the request is handed to the transport.
	PreSend(req *domain.Request) error

	// PostReceive fires after a response has been received.
	PostReceive(resp *domain.Response) error
}

// BaseHook provides safe no-op defaults for every hook except Name.
// Plugin implementations embed it and override what they need.
type BaseHook struct{}

func (BaseHook) OnLoad() error { return nil }

func (BaseHook) OnUnload() error { return nil }

func (BaseHook) PreSend(*domain.Request) error { return nil }

func (BaseHook) PostReceive(*domain.Response) error { return nil }
