package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Host is an interface implementation that exposes its functions by WIT name.
type Host interface {
	// Namespace returns the versioned interface name (e.g., "wasi:io/poll@0.2.3").
	Namespace() string
	// Register maps WIT function names (e.g., "[method]descriptor.stat") to handlers.
	Register() map[string]any
}

type HostRegistry struct {
	funcs map[string]map[string]any
	mu    sync.RWMutex
}

func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs: make(map[string]map[string]any),
	}
}

// RegisterHost adds every function of h. Registering the same namespace
// twice replaces functions with the same name.
func (r *HostRegistry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if ns == "" {
		return fmt.Errorf("register host: namespace cannot be empty")
	}
	funcs := h.Register()
	if len(funcs) == 0 {
		return fmt.Errorf("register host %s: no functions", ns)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.funcs[ns]
	if !ok {
		m = make(map[string]any, len(funcs))
		r.funcs[ns] = m
	}
	for name, fn := range funcs {
		if fn == nil {
			return fmt.Errorf("register host %s: nil handler for %q", ns, name)
		}
		m[name] = fn
	}
	Logger().Debug("registered host", zap.String("namespace", ns), zap.Int("functions", len(funcs)))
	return nil
}

// Lookup returns the handler for name in namespace.
// Version matching: X.Y.Z satisfies imports at X.Y.W where W <= Z.
func (r *HostRegistry) Lookup(namespace, name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if funcs, ok := r.funcs[namespace]; ok {
		fn, ok := funcs[name]
		return fn, ok
	}
	for ns, funcs := range r.funcs {
		if !versionSatisfies(ns, namespace) {
			continue
		}
		if fn, ok := funcs[name]; ok {
			return fn, true
		}
	}
	return nil, false
}

// Namespaces returns the registered namespaces in sorted order.
func (r *HostRegistry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Functions returns the function names of namespace in sorted order.
func (r *HostRegistry) Functions(namespace string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	funcs := r.funcs[namespace]
	out := make([]string, 0, len(funcs))
	for name := range funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Count returns the total number of registered functions.
func (r *HostRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, funcs := range r.funcs {
		n += len(funcs)
	}
	return n
}

// versionSatisfies reports whether the registered namespace can serve the
// requested one.
func versionSatisfies(registered, requested string) bool {
	regBase, regVer, ok := strings.Cut(registered, "@")
	if !ok {
		return false
	}
	reqBase, reqVer, ok := strings.Cut(requested, "@")
	if !ok || regBase != reqBase {
		return false
	}
	reg, ok := parseVersion(regVer)
	if !ok {
		return false
	}
	req, ok := parseVersion(reqVer)
	if !ok {
		return false
	}
	return reg[0] == req[0] && reg[1] == req[1] && req[2] <= reg[2]
}

func parseVersion(v string) ([3]int, bool) {
	var out [3]int
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return out, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
