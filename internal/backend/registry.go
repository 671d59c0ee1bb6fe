package backend

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/agentteams/teamctl/internal/apperr"
	"github.com/agentteams/teamctl/internal/model"
)

// extensions holds adapter factories registered by out-of-tree code before
// the first registry load. Names already taken by a built-in are skipped.
var (
	extensionsMu sync.Mutex
	extensions   = map[string]func() Backend{}
)

// RegisterExtension makes an out-of-tree backend factory discoverable by
// every Registry loaded afterwards. A built-in with the same name wins.
func RegisterExtension(name string, factory func() Backend) {
	extensionsMu.Lock()
	defer extensionsMu.Unlock()
	extensions[name] = factory
}

// Registry discovers and holds the available backends. Loading is lazy and
// one-time: built-ins whose binary is on PATH first, then extension
// factories for names not already taken. A factory that fails never
// prevents the others from registering.
type Registry struct {
	mu       sync.Mutex
	loaded   bool
	backends map[string]Backend
}

// NewRegistry returns an empty, not-yet-loaded Registry.
func NewRegistry() *Registry {
	return &Registry{backends: map[string]Backend{}}
}

func (r *Registry) ensureLoaded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return
	}
	r.loaded = true

	for name, factory := range builtinVendors {
		b := newBase(factory())
		if b.IsAvailable() {
			r.backends[name] = b
		}
	}

	extensionsMu.Lock()
	defer extensionsMu.Unlock()
	for name, factory := range extensions {
		if _, taken := r.backends[name]; taken {
			continue
		}
		b := func() (b Backend) {
			defer func() {
				if p := recover(); p != nil {
					fmt.Fprintf(os.Stderr, "backend: extension %s failed to load: %v\n", name, p)
					b = nil
				}
			}()
			return factory()
		}()
		if b != nil && b.IsAvailable() {
			r.backends[name] = b
		}
	}
}

// Register adds a backend instance directly, bypassing discovery.
func (r *Registry) Register(name string, b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = true
	r.backends[name] = b
}

// Get returns the backend registered under name.
func (r *Registry) Get(name string) (Backend, error) {
	r.ensureLoaded()
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.backends[name]
	if !ok {
		names := make([]string, 0, len(r.backends))
		for n := range r.backends {
			names = append(names, n)
		}
		sort.Strings(names)
		avail := "(none)"
		if len(names) > 0 {
			avail = fmt.Sprintf("%v", names)
		}
		return nil, apperr.NotFound("backend %q not found; available: %s", name, avail)
	}
	return b, nil
}

// ListAvailable returns the sorted names of every registered backend.
func (r *Registry) ListAvailable() []string {
	r.ensureLoaded()
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.backends))
	for n := range r.backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultBackend returns the interactive backend if available, else the
// first available name in sorted order.
func (r *Registry) DefaultBackend() (string, error) {
	r.ensureLoaded()
	r.mu.Lock()
	_, hasInteractive := r.backends["claude-code"]
	r.mu.Unlock()
	if hasInteractive {
		return "claude-code", nil
	}
	names := r.ListAvailable()
	if len(names) > 0 {
		return names[0], nil
	}
	return "", apperr.ExternalUnavailable("no backends available; install at least one agent CLI")
}

// Infos describes every registered backend, sorted by name, for the
// list_backends tool and the backends CLI command.
func (r *Registry) Infos() []model.BackendInfo {
	var infos []model.BackendInfo
	for _, name := range r.ListAvailable() {
		b, err := r.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, model.BackendInfo{
			Name:            name,
			Binary:          b.BinaryName(),
			Available:       true,
			DefaultModel:    b.DefaultModel(),
			SupportedModels: b.SupportedModels(),
		})
	}
	return infos
}
