package schema

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotEncodable is returned for descriptors that have no wire form:
	// Tuple, Unknown and nil.
	ErrNotEncodable = errors.New("schema: type cannot be encoded")
	// ErrValueMismatch is returned when a value does not match its descriptor.
	ErrValueMismatch = errors.New("schema: value does not match type")
)

// maxVarLength is the largest payload the long form can describe.
const maxVarLength = math.MaxUint16

// Encode appends the wire form of v, of type t, to buf. It is the inverse of
// Decode for every shape Decode understands.
func Encode(buf *bytes.Buffer, t ArgType, v Value) error {
	switch t := t.(type) {
	case *Primitive:
		return encodePrimitive(buf, t.Kind, v)

	case *ArrayType:
		values, ok := v.(Array)
		if !ok {
			return fmt.Errorf("%w: %T for %s", ErrValueMismatch, v, TypeString(t))
		}
		if t.Fixed {
			if len(values) != t.Size {
				return fmt.Errorf("%w: %d elements for %s", ErrValueMismatch, len(values), TypeString(t))
			}
		} else {
			if len(values) > math.MaxUint8 {
				return fmt.Errorf("%w: %d elements exceed the count byte", ErrValueMismatch, len(values))
			}
			buf.WriteByte(byte(len(values)))
		}
		for i, elem := range values {
			if err := Encode(buf, t.Elem, elem); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil

	case *FixedDict:
		dict, ok := v.(Dict)
		if !ok && !IsEmpty(v) {
			return fmt.Errorf("%w: %T for %s", ErrValueMismatch, v, TypeString(t))
		}
		if t.AllowNone {
			if len(dict) == 0 {
				buf.WriteByte(0)
				return nil
			}
			buf.WriteByte(1)
		}
		for _, p := range t.Properties {
			pv, ok := dict[p.Name]
			if !ok {
				pv = DefaultValue(p.Type)
			}
			if err := Encode(buf, p.Type, pv); err != nil {
				return fmt.Errorf("property %s: %w", p.Name, err)
			}
		}
		return nil

	case *User:
		if !IsBlob(t.Inner) {
			buf.WriteByte(0)
		}
		return Encode(buf, t.Inner, v)
	}

	return fmt.Errorf("%w: %s", ErrNotEncodable, TypeString(t))
}

func encodePrimitive(buf *bytes.Buffer, k Kind, v Value) error {
	var scratch [12]byte
	le := binary.LittleEndian

	switch k {
	case KindUint8:
		if x, ok := v.(Uint8); ok {
			buf.WriteByte(byte(x))
			return nil
		}
	case KindUint16:
		if x, ok := v.(Uint16); ok {
			le.PutUint16(scratch[:], uint16(x))
			buf.Write(scratch[:2])
			return nil
		}
	case KindUint32:
		if x, ok := v.(Uint32); ok {
			le.PutUint32(scratch[:], uint32(x))
			buf.Write(scratch[:4])
			return nil
		}
	case KindUint64:
		if x, ok := v.(Uint64); ok {
			le.PutUint64(scratch[:], uint64(x))
			buf.Write(scratch[:8])
			return nil
		}
	case KindInt8:
		if x, ok := v.(Int8); ok {
			buf.WriteByte(byte(x))
			return nil
		}
	case KindInt16:
		if x, ok := v.(Int16); ok {
			le.PutUint16(scratch[:], uint16(x))
			buf.Write(scratch[:2])
			return nil
		}
	case KindInt32:
		if x, ok := v.(Int32); ok {
			le.PutUint32(scratch[:], uint32(x))
			buf.Write(scratch[:4])
			return nil
		}
	case KindInt64:
		if x, ok := v.(Int64); ok {
			le.PutUint64(scratch[:], uint64(x))
			buf.Write(scratch[:8])
			return nil
		}
	case KindFloat32:
		if x, ok := v.(Float32); ok {
			le.PutUint32(scratch[:], math.Float32bits(float32(x)))
			buf.Write(scratch[:4])
			return nil
		}
	case KindFloat64:
		if x, ok := v.(Float64); ok {
			le.PutUint64(scratch[:], math.Float64bits(float64(x)))
			buf.Write(scratch[:8])
			return nil
		}
	case KindVector2:
		if x, ok := v.(Vector2); ok {
			le.PutUint32(scratch[0:], math.Float32bits(x.X))
			le.PutUint32(scratch[4:], math.Float32bits(x.Y))
			buf.Write(scratch[:8])
			return nil
		}
	case KindVector3:
		if x, ok := v.(Vector3); ok {
			le.PutUint32(scratch[0:], math.Float32bits(x.X))
			le.PutUint32(scratch[4:], math.Float32bits(x.Y))
			le.PutUint32(scratch[8:], math.Float32bits(x.Z))
			buf.Write(scratch[:12])
			return nil
		}
	case KindString, KindUnicodeString:
		if x, ok := v.(String); ok {
			return WriteVarBytes(buf, []byte(x))
		}
	case KindBlob:
		if x, ok := v.(Blob); ok {
			return WriteVarBytes(buf, x)
		}
	}
	return fmt.Errorf("%w: %T for %s", ErrValueMismatch, v, k)
}

// WriteVarBytes writes b with a short form length when it is shorter than
// 0xFF bytes, and with the 0xFF long form otherwise.
func WriteVarBytes(buf *bytes.Buffer, b []byte) error {
	if len(b) > maxVarLength {
		return fmt.Errorf("%w: %d bytes exceed the long form", ErrValueMismatch, len(b))
	}
	if len(b) < math.MaxUint8 {
		buf.WriteByte(byte(len(b)))
	} else {
		var hdr [4]byte
		hdr[0] = math.MaxUint8
		binary.LittleEndian.PutUint16(hdr[1:3], uint16(len(b)))
		// hdr[3] reserved
		buf.Write(hdr[:])
	}
	buf.Write(b)
	return nil
}
