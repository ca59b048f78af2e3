package feature

import (
	"fmt"
	"sync"
)

// registryImpl is the implementation of the Registry interface.
type registryImpl struct {
	mu *sync.Mutex

	features []Definition
	byID     map[string]int
}

// Registry holds every registered feature in registration order. Order is
// significant only in that later features append code after earlier ones;
// features must not depend on sibling ordering for correctness. There is one
// registry per engine instance, never a process-global one.
type Registry interface {
	// Register adds a feature.
	//
	// Parameters:
	//   - def: the feature to add
	//
	// Returns:
	//   - error: if the ID is already registered or the definition is incomplete
	Register(def Definition) error

	// All returns every feature in registration order.
	//
	// Returns:
	//   - []Definition: the features, freshly copied
	All() []Definition

	// Get finds a feature by ID.
	//
	// Parameters:
	//   - id: the feature ID
	//
	// Returns:
	//   - Definition: the feature, if found
	//   - bool: true if registered
	Get(id string) (Definition, bool)

	// DefaultConfig builds a config populated with every feature's declared
	// parameter defaults, in Direct mode. Missing optional keys in external
	// input are resolved against this.
	//
	// Returns:
	//   - Config: the fully populated default config
	DefaultConfig() Config
}

var _ Registry = &registryImpl{}

// NewRegistry creates a feature Registry.
//
// Parameters:
//   - options: functional options to configure the registry
//
// Returns:
//   - Registry: the newly created registry
func NewRegistry(options ...RegistryBuilderOption) Registry {
	r := &registryImpl{
		mu:   &sync.Mutex{},
		byID: map[string]int{},
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *registryImpl) Register(def Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(def)
}

// register assumes the caller holds the mutex (or has exclusive access during
// construction).
func (r *registryImpl) register(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("feature has no ID")
	}
	if def.Inject == nil {
		return fmt.Errorf("feature %q has no inject callback", def.ID)
	}
	if _, exists := r.byID[def.ID]; exists {
		return fmt.Errorf("feature %q already registered", def.ID)
	}
	for _, p := range def.Params {
		if p.Default.Kind() != p.Kind {
			return fmt.Errorf("feature %q param %q default kind %s does not match declared kind %s",
				def.ID, p.Key, p.Default.Kind(), p.Kind)
		}
	}
	r.byID[def.ID] = len(r.features)
	r.features = append(r.features, def)
	return nil
}

func (r *registryImpl) All() []Definition {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Definition, len(r.features))
	copy(out, r.features)
	return out
}

func (r *registryImpl) Get(id string) (Definition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.byID[id]
	if !ok {
		return Definition{}, false
	}
	return r.features[i], true
}

func (r *registryImpl) DefaultConfig() Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := Config{Mode: RenderModeDirect, HasMode: true}
	for _, def := range r.features {
		for _, p := range def.Params {
			cfg.Set(def.ID, p.Key, p.Default)
		}
	}
	return cfg
}
