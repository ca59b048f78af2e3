package feature

import (
	"sort"
	"strings"
)

// Config is the full composition input: the render mode plus one parameter
// tree per feature. All mutable data a feature reads during injection lives
// here; features themselves stay stateless.
type Config struct {
	// Mode selects which of the two live GPU programs this config describes.
	Mode RenderMode

	// HasMode records whether Mode was set explicitly. A partial config used
	// as a merge patch carries HasMode=false unless the patch author called
	// SetMode, so params-only patches never flip the render mode.
	HasMode bool

	// Params maps feature ID to that feature's parameter values.
	Params map[string]map[string]ParamValue
}

// SetMode selects the render mode explicitly, marking the config as carrying
// a mode so Merge propagates it.
//
// Parameters:
//   - m: the render mode
func (c *Config) SetMode(m RenderMode) {
	c.Mode = m
	c.HasMode = true
}

// Clone returns a deep copy of the config. Parameter trees are never shared
// between the returned config and the receiver.
//
// Returns:
//   - Config: the copy
func (c Config) Clone() Config {
	out := Config{Mode: c.Mode, HasMode: c.HasMode, Params: make(map[string]map[string]ParamValue, len(c.Params))}
	for id, tree := range c.Params {
		cp := make(map[string]ParamValue, len(tree))
		for k, v := range tree {
			cp[k] = v
		}
		out.Params[id] = cp
	}
	return out
}

// Param looks up one parameter value.
//
// Parameters:
//   - featureID: the owning feature
//   - key: the parameter key
//
// Returns:
//   - ParamValue: the value, if present
//   - bool: true if the feature and key exist
func (c Config) Param(featureID, key string) (ParamValue, bool) {
	tree, ok := c.Params[featureID]
	if !ok {
		return ParamValue{}, false
	}
	v, ok := tree[key]
	return v, ok
}

// ParamOr looks up one parameter value, falling back to a default when absent.
//
// Parameters:
//   - featureID: the owning feature
//   - key: the parameter key
//   - fallback: the value to return when the parameter is missing
//
// Returns:
//   - ParamValue: the stored value or the fallback
func (c Config) ParamOr(featureID, key string, fallback ParamValue) ParamValue {
	if v, ok := c.Param(featureID, key); ok && v.Kind() == fallback.Kind() {
		return v
	}
	return fallback
}

// Set stores one parameter value, creating the feature's tree if needed.
//
// Parameters:
//   - featureID: the owning feature
//   - key: the parameter key
//   - v: the value to store
func (c *Config) Set(featureID, key string, v ParamValue) {
	if c.Params == nil {
		c.Params = map[string]map[string]ParamValue{}
	}
	tree, ok := c.Params[featureID]
	if !ok {
		tree = map[string]ParamValue{}
		c.Params[featureID] = tree
	}
	tree[key] = v
}

// Merge applies a partial config on top of the receiver and returns the
// result. Parameters present in the patch win; everything else is kept. The
// receiver is not mutated.
//
// Parameters:
//   - patch: the partial config to apply
//
// Returns:
//   - Config: the merged config
func (c Config) Merge(patch Config) Config {
	out := c.Clone()
	if patch.HasMode {
		out.Mode = patch.Mode
		out.HasMode = true
	}
	for id, tree := range patch.Params {
		for k, v := range tree {
			out.Set(id, k, v)
		}
	}
	return out
}

// Fingerprint renders the config into a deterministic string: equal configs
// always produce identical fingerprints regardless of map iteration order.
// Used for structural equality checks and change coalescing.
//
// Returns:
//   - string: the canonical rendering
func (c Config) Fingerprint() string {
	var b strings.Builder
	b.WriteString("mode=")
	b.WriteString(c.Mode.String())

	ids := make([]string, 0, len(c.Params))
	for id := range c.Params {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		tree := c.Params[id]
		keys := make([]string, 0, len(tree))
		for k := range tree {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(";")
			b.WriteString(id)
			b.WriteString(".")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(tree[k].String())
		}
	}
	return b.String()
}
