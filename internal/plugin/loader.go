//go:build linux || darwin || freebsd

package plugin

import (
	"fmt"
	"os"
	goplugin "plugin"

	"github.com/tjfontaine/resthook/pkg/ports"
)

// Library is an opened shared object. The Go runtime keeps the mapping alive
// for the life of the process; dropping a Library only releases our
// reference to it.
type Library struct {
	Path string
	p    *goplugin.Plugin
}

// Open maps the shared object at path and resolves the factory symbol.
// Either both the library and a constructed hook are returned, or nothing is
// retained and an error describes which step failed.
func Open(path string) (*Library, ports.Hook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	p, err := goplugin.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	sym, err := p.Lookup(ports.FactorySymbol)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s in %s", ErrSymbolMissing, ports.FactorySymbol, path)
	}

	factory, ok := sym.(func() ports.Hook)
	if !ok {
		if pf, ok := sym.(*ports.HookFactory); ok {
			factory = *pf
		} else {
			return nil, nil, fmt.Errorf("%w: %s in %s has type %T", ErrBadFactory, ports.FactorySymbol, path, sym)
		}
	}

	hook := factory()
	if hook == nil {
		return nil, nil, fmt.Errorf("%w: factory in %s returned nil", ErrBadFactory, path)
	}

	return &Library{Path: path, p: p}, hook, nil
}
