package sovereign

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Traqueur-dev/Sovereign/types"
)

// BackendFactory constructs a coordination store from the election
// configuration. Implementations own client creation and connectivity; the
// factory never imports backend packages itself, keeping backend
// dependencies opt-in for the caller.
type BackendFactory func(ctx context.Context, cfg *Config) (types.Store, error)

// Factory creates Election instances from configuration, resolving the
// configured backend name against caller-registered store constructors.
//
// Example:
//
//	factory := sovereign.NewFactory()
//	factory.Register("redis", func(ctx context.Context, cfg *sovereign.Config) (sovereign.Store, error) {
//	    client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	    return redisstore.New(client), nil
//	})
//
//	cfg := sovereign.DefaultConfig()
//	cfg.Backend = "redis"
//	election, err := factory.New(ctx, "api-1", &cfg)
type Factory struct {
	mu       sync.RWMutex
	backends map[string]BackendFactory
}

// NewFactory creates an empty factory with no backends registered.
func NewFactory() *Factory {
	return &Factory{
		backends: make(map[string]BackendFactory),
	}
}

// Register associates a backend name with a store constructor. Registering
// the same name twice replaces the earlier constructor.
func (f *Factory) Register(name string, factory BackendFactory) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.backends[name] = factory
}

// Backends returns the registered backend names in sorted order.
func (f *Factory) Backends() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.backends))
	for name := range f.backends {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// New creates an Election whose store is built by the backend named in
// cfg.Backend.
//
// Parameters:
//   - ctx: Context bounding store construction
//   - instanceID: Opaque identity, unique across the cluster
//   - cfg: Election configuration; Backend must name a registered backend
//   - opts: Optional configuration forwarded to the Election
//
// Returns:
//   - *Election: Initialized election instance
//   - error: ErrBackendRequired when cfg.Backend is empty, ErrUnknownBackend
//     when no constructor is registered under that name, or a construction
//     or validation error
func (f *Factory) New(ctx context.Context, instanceID string, cfg *Config, opts ...Option) (*Election, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	if cfg.Backend == "" {
		return nil, ErrBackendRequired
	}

	f.mu.RLock()
	factory, exists := f.backends[cfg.Backend]
	f.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create %q store: %w", cfg.Backend, err)
	}

	return New(instanceID, store, cfg, opts...)
}
