package plugin

import "errors"

var (
	// ErrNotFound indicates the plugin path could not be mapped.
	ErrNotFound = errors.New("plugin not found")

	// ErrSymbolMissing indicates the factory symbol is absent from the
	// shared object.
	ErrSymbolMissing = errors.New("factory symbol missing")

	// ErrBadFactory indicates the factory symbol has the wrong type or
	// produced no hook.
	ErrBadFactory = errors.New("invalid plugin factory")
)
