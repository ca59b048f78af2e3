package uniform

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// setImpl is the implementation of the Set interface.
type setImpl struct {
	mu *sync.Mutex

	schema *schemaImpl
	// values holds one slice of Values per definition, length elementCount.
	values  map[string][]Value
	version uint64
}

// Set is one live uniform value store created from a Schema. It is shared
// read-many/write-few: a single writer (the engine façade) mutates it and both
// compiled materials read it by reference, so one write is visible to
// whichever render mode is later selected. Every value entering or leaving the
// set is deep-cloned.
type Set interface {
	// Write stores a value under key, after checking the value against the
	// schema's declared type.
	//
	// Parameters:
	//   - key: the uniform name
	//   - v: the value to store
	//
	// Returns:
	//   - error: if the key is undeclared or the value's type does not match
	Write(key string, v Value) error

	// WriteElement stores one element of an array uniform.
	//
	// Parameters:
	//   - key: the uniform name
	//   - index: the element index
	//   - v: the value to store
	//
	// Returns:
	//   - error: if the key is undeclared, not an array, out of range, or mistyped
	WriteElement(key string, index int, v Value) error

	// Get returns a deep clone of the stored value (element 0 for arrays).
	//
	// Parameters:
	//   - key: the uniform name
	//
	// Returns:
	//   - Value: the cloned value
	//   - bool: true if the key is declared
	Get(key string) (Value, bool)

	// GetElement returns a deep clone of one array element.
	//
	// Parameters:
	//   - key: the uniform name
	//   - index: the element index
	//
	// Returns:
	//   - Value: the cloned value
	//   - bool: true if the key is declared and the index in range
	GetElement(key string, index int) (Value, bool)

	// Bytes packs every value into the schema's uniform-buffer layout, ready
	// for a queue write. The returned slice is freshly allocated.
	//
	// Returns:
	//   - []byte: the packed buffer contents
	Bytes() []byte

	// Version returns a counter that increments on every successful write,
	// letting the renderer skip redundant buffer uploads.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64

	// Schema returns the schema this set was created from.
	//
	// Returns:
	//   - Schema: the owning schema
	Schema() Schema
}

var _ Set = &setImpl{}

// newSet initializes every entry from its definition's default. Array entries
// get one clone of the default per element.
func newSet(schema *schemaImpl) *setImpl {
	s := &setImpl{
		mu:     &sync.Mutex{},
		schema: schema,
		values: make(map[string][]Value, len(schema.defs)),
	}
	for _, def := range schema.defs {
		elems := make([]Value, def.elementCount())
		for i := range elems {
			elems[i] = def.Default.Clone()
		}
		s.values[def.Name] = elems
	}
	return s
}

func (s *setImpl) Write(key string, v Value) error {
	return s.WriteElement(key, 0, v)
}

func (s *setImpl) WriteElement(key string, index int, v Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.schema.Lookup(key)
	if !ok {
		return fmt.Errorf("unknown uniform %q", key)
	}
	if index < 0 || index >= def.elementCount() {
		return fmt.Errorf("uniform %q index %d out of range [0,%d)", key, index, def.elementCount())
	}
	if err := v.validFor(def); err != nil {
		return err
	}
	s.values[key][index] = v.Clone()
	s.version++
	return nil
}

func (s *setImpl) Get(key string) (Value, bool) {
	return s.GetElement(key, 0)
}

func (s *setImpl) GetElement(key string, index int) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elems, ok := s.values[key]
	if !ok || index < 0 || index >= len(elems) {
		return Value{}, false
	}
	return elems[index].Clone(), true
}

func (s *setImpl) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]byte, s.schema.byteLen)
	for _, fl := range s.schema.layout {
		elems := s.values[fl.def.Name]
		for i, v := range elems {
			base := fl.offset + i*fl.stride
			for c, comp := range v.data {
				var bits uint32
				switch v.typ {
				case TypeInt:
					bits = uint32(int32(comp))
				case TypeUInt:
					bits = uint32(comp)
				default:
					bits = math.Float32bits(float32(comp))
				}
				binary.LittleEndian.PutUint32(out[base+c*4:], bits)
			}
		}
	}
	return out
}

func (s *setImpl) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *setImpl) Schema() Schema {
	return s.schema
}
