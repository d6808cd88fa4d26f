//go:build !linux && !darwin && !freebsd

package plugin

import (
	"fmt"
	"runtime"

	"github.com/tjfontaine/resthook/pkg/ports"
)

// Library is an opened shared object. Unsupported on this platform.
type Library struct {
	Path string
}

// Open always fails: the Go plugin mechanism is unavailable on this platform.
func Open(path string) (*Library, ports.Hook, error) {
	return nil, nil, fmt.Errorf("shared object loading is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
}
