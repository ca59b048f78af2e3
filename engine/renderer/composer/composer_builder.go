package composer

import (
	"github.com/gamazama/GMT-fractals-sub005/engine/feature"
	"github.com/gamazama/GMT-fractals-sub005/engine/uniform"
)

// ComposerBuilderOption is a functional option for configuring a Composer.
type ComposerBuilderOption func(*composerImpl)

// WithRegistry sets the feature registry compositions draw from.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - ComposerBuilderOption: the option to apply
func WithRegistry(r feature.Registry) ComposerBuilderOption {
	return func(c *composerImpl) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithSchema sets the uniform schema whose generated declarations are emitted
// into every composed shader.
//
// Parameters:
//   - s: the schema
//
// Returns:
//   - ComposerBuilderOption: the option to apply
func WithSchema(s uniform.Schema) ComposerBuilderOption {
	return func(c *composerImpl) {
		if s != nil {
			c.schema = s
		}
	}
}

// WithUniformBinding sets the bind group and binding indices for the generated
// uniform declarations. Defaults to group 0, binding 0.
//
// Parameters:
//   - group: the bind group index
//   - binding: the binding index within the group
//
// Returns:
//   - ComposerBuilderOption: the option to apply
func WithUniformBinding(group, binding int) ComposerBuilderOption {
	return func(c *composerImpl) {
		c.group = group
		c.binding = binding
	}
}

// WithGlobalDefine appends one config-derived compile-time constant. Defines
// are emitted in the order they were added.
//
// Parameters:
//   - gd: the define to add
//
// Returns:
//   - ComposerBuilderOption: the option to apply
func WithGlobalDefine(gd GlobalDefine) ComposerBuilderOption {
	return func(c *composerImpl) {
		if gd.Name != "" && gd.Derive != nil {
			c.globalDefines = append(c.globalDefines, gd)
		}
	}
}

// WithGlobalDefines appends multiple config-derived constants in order.
//
// Parameters:
//   - gds: the defines to add
//
// Returns:
//   - ComposerBuilderOption: the option to apply
func WithGlobalDefines(gds ...GlobalDefine) ComposerBuilderOption {
	return func(c *composerImpl) {
		for _, gd := range gds {
			if gd.Name != "" && gd.Derive != nil {
				c.globalDefines = append(c.globalDefines, gd)
			}
		}
	}
}
