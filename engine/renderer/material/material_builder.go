package material

import (
	"github.com/gamazama/GMT-fractals-sub005/engine/renderer/composer"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// CacheBuilderOption is a functional option for configuring a Cache.
type CacheBuilderOption func(*cacheImpl)

// WithComposer sets the composer used to render fragment sources.
//
// Parameters:
//   - comp: the composer
//
// Returns:
//   - CacheBuilderOption: the option to apply
func WithComposer(comp composer.Composer) CacheBuilderOption {
	return func(c *cacheImpl) {
		if comp != nil {
			c.comp = comp
		}
	}
}

// WithUniformSet sets the uniform set both mode slots share by reference.
//
// Parameters:
//   - set: the shared uniform set
//
// Returns:
//   - CacheBuilderOption: the option to apply
func WithUniformSet(set uniform.Set) CacheBuilderOption {
	return func(c *cacheImpl) {
		if set != nil {
			c.uniforms = set
		}
	}
}
