package material

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/composer"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// compiledMaterial is one render-mode slot: the composed fragment source, its
// content hash, and the flags the renderer uses to decide whether the GPU
// module must be rebuilt.
type compiledMaterial struct {
	mode        feature.RenderMode
	source      string
	contentHash uint64
	dirty       bool
	// generation increments every time new source is assigned; it never moves
	// on a hash match, which is what lets the renderer skip GPU uploads.
	generation uint64
}

// CompiledMaterial is the read surface of one mode slot.
type CompiledMaterial interface {
	// Mode returns which render mode this slot belongs to.
	//
	// Returns:
	//   - feature.RenderMode: the slot's mode
	Mode() feature.RenderMode

	// Source returns the currently assigned fragment source. Empty until the
	// slot has compiled at least once.
	//
	// Returns:
	//   - string: the WGSL fragment source
	Source() string

	// ContentHash returns the FNV-1a hash of the assigned source.
	//
	// Returns:
	//   - uint64: the content hash
	ContentHash() uint64

	// Generation returns a counter that increments only when new source is
	// assigned. A renderer holding the last generation it uploaded can tell
	// whether its GPU module is stale.
	//
	// Returns:
	//   - uint64: the source generation
	Generation() uint64
}

func (m *compiledMaterial) Mode() feature.RenderMode {
	return m.mode
}

func (m *compiledMaterial) Source() string {
	return m.source
}

func (m *compiledMaterial) ContentHash() uint64 {
	return m.contentHash
}

func (m *compiledMaterial) Generation() uint64 {
	return m.generation
}

// cacheImpl is the implementation of the Cache interface.
type cacheImpl struct {
	mu *sync.Mutex

	comp     composer.Composer
	uniforms uniform.Set

	slots  [2]*compiledMaterial
	config feature.Config
	// hasConfig distinguishes "no UpdateConfig yet" from an empty config, so
	// lazy compiles never run against a config that was never supplied.
	hasConfig bool
}

// Cache owns exactly two live fragment programs, one per render mode, and
// keeps at most one of them hot. UpdateConfig compiles only the active mode
// and marks the other slot dirty; the first Material call for the dirty mode
// compiles it on demand. Both slots share one uniform set by reference, so a
// single uniform write is visible to whichever mode is selected later.
type Cache interface {
	// UpdateConfig stores the config, compiles the active mode's slot
	// immediately and marks the other slot dirty without compiling it.
	//
	// Parameters:
	//   - cfg: the new composition config
	//
	// Returns:
	//   - error: if composition for the active mode fails; the slot keeps its
	//     previous source in that case
	UpdateConfig(cfg feature.Config) error

	// Material returns the slot for the requested mode, lazily compiling it
	// first when it is dirty and a config has been stored. On a content-hash
	// match the slot's source and generation are left untouched.
	//
	// Parameters:
	//   - mode: the render mode to fetch
	//
	// Returns:
	//   - CompiledMaterial: the live slot
	//   - error: if a lazy compile was needed and failed
	Material(mode feature.RenderMode) (CompiledMaterial, error)

	// ActiveMode returns the mode selected by the last stored config.
	//
	// Returns:
	//   - feature.RenderMode: the active mode
	ActiveMode() feature.RenderMode

	// ActiveSource returns the assigned source of the active mode's slot, for
	// diagnostic introspection of the currently linked program.
	//
	// Returns:
	//   - string: the active fragment source
	ActiveSource() string

	// UniformSet returns the uniform set shared by both slots.
	//
	// Returns:
	//   - uniform.Set: the shared set
	UniformSet() uniform.Set
}

var _ Cache = &cacheImpl{}

// NewCache creates a material Cache. Both slots start with no source assigned;
// the first UpdateConfig call populates the active one.
//
// Parameters:
//   - options: functional options to configure the cache
//
// Returns:
//   - Cache: the newly created cache
func NewCache(options ...CacheBuilderOption) Cache {
	c := &cacheImpl{
		mu: &sync.Mutex{},
		slots: [2]*compiledMaterial{
			{mode: feature.RenderModeDirect},
			{mode: feature.RenderModePathTracing},
		},
	}
	for _, option := range options {
		option(c)
	}
	if c.comp == nil {
		c.comp = composer.NewComposer()
	}
	if c.uniforms == nil {
		c.uniforms = uniform.NewSchema().NewSet()
	}
	return c
}

func (c *cacheImpl) slot(mode feature.RenderMode) *compiledMaterial {
	if mode == feature.RenderModePathTracing {
		return c.slots[1]
	}
	return c.slots[0]
}

// compile assumes the caller holds the mutex. It resolves the slot's dirty
// flag regardless of outcome: a hash match means the content was already
// current, a mismatch assigns new source and bumps the generation.
func (c *cacheImpl) compile(slot *compiledMaterial) error {
	cfg := c.config.Clone()
	cfg.Mode = slot.mode
	src, err := c.comp.Build(feature.VariantMain, cfg)
	if err != nil {
		return fmt.Errorf("compose %s material: %w", slot.mode, err)
	}

	h := fnv.New64a()
	h.Write([]byte(src))
	hash := h.Sum64()

	if hash != slot.contentHash || slot.source == "" {
		slot.source = src
		slot.contentHash = hash
		slot.generation++
	}
	slot.dirty = false
	return nil
}

func (c *cacheImpl) UpdateConfig(cfg feature.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.config = cfg.Clone()
	c.hasConfig = true

	active := c.slot(cfg.Mode)
	for _, s := range c.slots {
		if s != active {
			s.dirty = true
		}
	}
	return c.compile(active)
}

func (c *cacheImpl) Material(mode feature.RenderMode) (CompiledMaterial, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot := c.slot(mode)
	if slot.dirty && c.hasConfig {
		if err := c.compile(slot); err != nil {
			return slot, err
		}
	}
	return slot, nil
}

func (c *cacheImpl) ActiveMode() feature.RenderMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.Mode
}

func (c *cacheImpl) ActiveSource() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot(c.config.Mode).source
}

func (c *cacheImpl) UniformSet() uniform.Set {
	return c.uniforms
}
