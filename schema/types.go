package schema

import (
	"fmt"
	"strings"
)

// Kind identifies a primitive type.
type Kind uint8

const (
	KindUint8 Kind = iota
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindUnicodeString
	KindVector2
	KindVector3
	KindBlob
)

func (k Kind) String() string {
	switch k {
	case KindUint8:
		return "Uint8"
	case KindUint16:
		return "Uint16"
	case KindUint32:
		return "Uint32"
	case KindUint64:
		return "Uint64"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindUnicodeString:
		return "UnicodeString"
	case KindVector2:
		return "Vector2"
	case KindVector3:
		return "Vector3"
	case KindBlob:
		return "Blob"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// primitiveNames maps definition type names to primitives. Read-only.
var primitiveNames = map[string]Kind{
	"UINT8":          KindUint8,
	"UINT16":         KindUint16,
	"UINT32":         KindUint32,
	"UINT64":         KindUint64,
	"INT8":           KindInt8,
	"INT16":          KindInt16,
	"INT32":          KindInt32,
	"INT64":          KindInt64,
	"FLOAT32":        KindFloat32,
	"FLOAT":          KindFloat32,
	"FLOAT64":        KindFloat64,
	"STRING":         KindString,
	"UNICODE_STRING": KindUnicodeString,
	"VECTOR2":        KindVector2,
	"VECTOR3":        KindVector3,
	"BLOB":           KindBlob,

	// kept opaque
	"MAILBOX": KindBlob,
	"PYTHON":  KindBlob,
}

// LookupPrimitive returns the primitive registered under name. The lookup is
// exact: callers normalize the name when they need to.
func LookupPrimitive(name string) (Kind, bool) {
	k, ok := primitiveNames[name]
	return k, ok
}

// ArgType is a compiled type descriptor. The set of implementations is closed:
// *Primitive, *ArrayType, *FixedDict, *Tuple, *User and *Unknown. Descriptors are
// immutable once compiled and may be shared between aliases.
type ArgType interface {
	isArgType()
}

// Primitive is a leaf type.
type Primitive struct {
	Kind Kind
}

// ArrayType is a sequence of Elem. When Fixed is false the element count is read
// from the stream.
type ArrayType struct {
	Elem  ArgType
	Size  int
	Fixed bool
}

// Property is one named member of a FixedDict.
type Property struct {
	Name string
	Type ArgType
}

// FixedDict is an ordered set of named properties. With AllowNone the whole
// dictionary is preceded by a presence flag.
type FixedDict struct {
	AllowNone  bool
	Properties []Property
}

// Tuple is Size values of Elem.
type Tuple struct {
	Elem ArgType
	Size int
}

// User wraps another descriptor.
type User struct {
	Inner ArgType
}

// Unknown is the descriptor of a type name that could not be resolved.
type Unknown struct{}

func (*Primitive) isArgType() {}
func (*ArrayType) isArgType() {}
func (*FixedDict) isArgType() {}
func (*Tuple) isArgType()     {}
func (*User) isArgType()      {}
func (*Unknown) isArgType()   {}

// Aliases maps alias names to compiled descriptors. Built once per schema
// version, read-only afterwards.
type Aliases map[string]ArgType

// Clone returns a shallow copy that can be extended without touching a.
func (a Aliases) Clone() Aliases {
	out := make(Aliases, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// IsBlob reports whether t is the Blob primitive.
func IsBlob(t ArgType) bool {
	p, ok := t.(*Primitive)
	return ok && p.Kind == KindBlob
}

// TypeString renders t for diagnostics, e.g. "Array<3, Uint8>".
func TypeString(t ArgType) string {
	switch t := t.(type) {
	case nil:
		return "<nil>"
	case *Primitive:
		return t.Kind.String()
	case *ArrayType:
		if t.Fixed {
			return fmt.Sprintf("Array<%d, %s>", t.Size, TypeString(t.Elem))
		}
		return fmt.Sprintf("Array<-1, %s>", TypeString(t.Elem))
	case *FixedDict:
		props := make([]string, 0, len(t.Properties))
		for _, p := range t.Properties {
			props = append(props, fmt.Sprintf("%s: %s", p.Name, TypeString(p.Type)))
		}
		return fmt.Sprintf("FixedDict<%t, [%s]>", t.AllowNone, strings.Join(props, ", "))
	case *Tuple:
		return fmt.Sprintf("Tuple<%d, %s>", t.Size, TypeString(t.Elem))
	case *User:
		return fmt.Sprintf("User<%s>", TypeString(t.Inner))
	case *Unknown:
		return "Unknown"
	default:
		return fmt.Sprintf("%T", t)
	}
}
