package platform

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrUnsupported is returned when no host is registered for a backend kind.
var ErrUnsupported = fmt.Errorf("uia-provider backend not supported on %s/%s", runtime.GOOS, runtime.GOARCH)

// HostOptions configures host construction.
type HostOptions struct {
	Fixture string // Fixture file for the simulated host
	Display string // X display name (empty = $DISPLAY)
	Logger  zerolog.Logger
}

// HostFactory builds a Host.
type HostFactory func(opts HostOptions) (Host, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]HostFactory{}
)

// RegisterHost is called by backend packages from init() to make a host
// kind available. See internal/platform/sim and internal/platform/x11.
func RegisterHost(kind string, f HostFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[strings.ToLower(kind)] = f
}

// NewHost returns a Host of the given kind.
func NewHost(kind string, opts HostOptions) (Host, error) {
	factoriesMu.RLock()
	f, ok := factories[strings.ToLower(kind)]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("backend %q: %w (available: %s)", kind, ErrUnsupported, strings.Join(Kinds(), ", "))
	}
	return f(opts)
}

// Kinds lists the registered host kinds in sorted order.
func Kinds() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
