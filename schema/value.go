package schema

// Value is a decoded value. The set of implementations is closed and mirrors
// the descriptors: one type per primitive, Array for arrays, Dict for fixed
// dictionaries and Empty for a value that is absent or failed to decode.
type Value interface {
	isValue()
}

type (
	Empty   struct{}
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	// String holds both String and UnicodeString payloads.
	String string
	Blob   []byte
	Array  []Value
	Dict   map[string]Value
)

type Vector2 struct {
	X, Y float32
}

type Vector3 struct {
	X, Y, Z float32
}

func (Empty) isValue()   {}
func (Uint8) isValue()   {}
func (Uint16) isValue()  {}
func (Uint32) isValue()  {}
func (Uint64) isValue()  {}
func (Int8) isValue()    {}
func (Int16) isValue()   {}
func (Int32) isValue()   {}
func (Int64) isValue()   {}
func (Float32) isValue() {}
func (Float64) isValue() {}
func (String) isValue()  {}
func (Blob) isValue()    {}
func (Vector2) isValue() {}
func (Vector3) isValue() {}
func (Array) isValue()   {}
func (Dict) isValue()    {}

// IsEmpty reports whether v is Empty (or nil).
func IsEmpty(v Value) bool {
	switch v.(type) {
	case nil, Empty:
		return true
	}
	return false
}

// AsInt64 converts any integer value to int64.
func AsInt64(v Value) (int64, bool) {
	switch v := v.(type) {
	case Uint8:
		return int64(v), true
	case Uint16:
		return int64(v), true
	case Uint32:
		return int64(v), true
	case Uint64:
		return int64(v), true
	case Int8:
		return int64(v), true
	case Int16:
		return int64(v), true
	case Int32:
		return int64(v), true
	case Int64:
		return int64(v), true
	}
	return 0, false
}

// AsFloat64 converts any numeric value to float64.
func AsFloat64(v Value) (float64, bool) {
	switch v := v.(type) {
	case Float32:
		return float64(v), true
	case Float64:
		return float64(v), true
	}
	if i, ok := AsInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
