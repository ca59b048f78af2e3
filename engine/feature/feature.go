package feature

// Builder is the sink a feature injects shader text into during composition.
// The composer owns the concrete builder; features only append through this
// interface and must never assume another feature has already injected.
type Builder interface {
	// AddHeader appends text to the top of the shader, before defines.
	//
	// Parameters:
	//   - text: the header text
	AddHeader(text string)

	// AddDefine appends one compile-time constant declaration.
	//
	// Parameters:
	//   - name: the constant name
	//   - value: the constant's literal value
	AddDefine(name, value string)

	// AddFunction appends one function (or group of functions) to the shader
	// body, after defines and uniform declarations.
	//
	// Parameters:
	//   - source: the function source text
	AddFunction(source string)

	// SetEntryPoint installs the variant-specific entry point. The last caller
	// wins; exactly one feature per composition is expected to call it.
	//
	// Parameters:
	//   - source: the entry point source text
	SetEntryPoint(source string)
}

// Definition is one self-contained shader feature: an identifier, the
// parameters it exposes, and an injection callback contributing code for a
// given variant. Features are stateless with respect to the composer; all
// mutable data lives in the caller-supplied Config.
type Definition struct {
	// ID is the feature's unique identifier and parameter namespace.
	ID string

	// Params declares every parameter the feature exposes.
	Params []ParamSpec

	// Inject contributes the feature's shader code. A feature decides
	// internally whether it contributes for this variant; when its logic does
	// not apply it must still define every symbol other code might reference,
	// as a constant or no-op stub, so cross-calls never fail to resolve.
	Inject func(b Builder, cfg Config, v Variant)
}
