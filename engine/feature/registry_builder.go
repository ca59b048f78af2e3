package feature

// RegistryBuilderOption is a functional option for configuring a Registry.
type RegistryBuilderOption func(*registryImpl)

// WithFeature registers a feature at construction time. Registration errors
// panic here because a misdeclared builtin feature is a programming error, not
// a runtime condition.
//
// Parameters:
//   - def: the feature to register
//
// Returns:
//   - RegistryBuilderOption: the option to apply
func WithFeature(def Definition) RegistryBuilderOption {
	return func(r *registryImpl) {
		if err := r.register(def); err != nil {
			panic(err)
		}
	}
}

// WithFeatures registers multiple features in order.
//
// Parameters:
//   - defs: the features to register
//
// Returns:
//   - RegistryBuilderOption: the option to apply
func WithFeatures(defs ...Definition) RegistryBuilderOption {
	return func(r *registryImpl) {
		for _, def := range defs {
			if err := r.register(def); err != nil {
				panic(err)
			}
		}
	}
}
