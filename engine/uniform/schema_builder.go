package uniform

// SchemaBuilderOption is a functional option for configuring a Schema.
type SchemaBuilderOption func(*schemaImpl)

// WithDefinition appends one uniform definition. Declaration order is
// preserved in the emitted WGSL struct and the packed buffer layout.
//
// Parameters:
//   - def: the definition to add
//
// Returns:
//   - SchemaBuilderOption: the option to apply
func WithDefinition(def Definition) SchemaBuilderOption {
	return func(s *schemaImpl) {
		s.add(def)
	}
}

// WithDefinitions appends multiple uniform definitions in order.
//
// Parameters:
//   - defs: the definitions to add
//
// Returns:
//   - SchemaBuilderOption: the option to apply
func WithDefinitions(defs ...Definition) SchemaBuilderOption {
	return func(s *schemaImpl) {
		for _, def := range defs {
			s.add(def)
		}
	}
}
