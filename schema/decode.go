package schema

import (
	"encoding/hex"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/wows-replay-go/internal/metrics"
)

// maxDumpBytes bounds the hex dump attached to decode failure logs.
const maxDumpBytes = 32

// Decode reads one value of type t from c. It returns Empty when c is
// exhausted, when the bytes do not fit t, or when t cannot be decoded.
// Failures are logged and never abort the caller.
func Decode(c *Cursor, t ArgType) Value {
	if c.Remaining() == 0 {
		return Empty{}
	}

	switch t := t.(type) {
	case *Primitive:
		return decodePrimitive(c, t.Kind)

	case *ArrayType:
		var n int
		if t.Fixed {
			n = t.Size
		} else {
			size, ok := c.Uint8()
			if !ok {
				return Empty{}
			}
			n = int(size)
		}
		// n may come from a definition file, not from the stream
		values := make(Array, 0, min(n, c.Remaining()))
		for i := 0; i < n; i++ {
			values = append(values, Decode(c, t.Elem))
		}
		return values

	case *FixedDict:
		if t.AllowNone {
			flag, ok := c.Uint8()
			if !ok {
				return Empty{}
			}
			switch flag {
			case 0:
				return Dict{}
			case 1:
			default:
				decodeFailed("FixedDict", c).WithField("flag", flag).Warn("unexpected FIXED_DICT presence flag")
				return Empty{}
			}
		}
		dict := make(Dict, len(t.Properties))
		for _, p := range t.Properties {
			dict[p.Name] = Decode(c, p.Type)
		}
		return dict

	case *Tuple:
		decodeFailed("Tuple", c).Error("TUPLE values are not decoded")
		return Empty{}

	case *User:
		if IsBlob(t.Inner) {
			return Decode(c, t.Inner)
		}
		// leading byte, value unused
		c.Skip(1)
		return Decode(c, t.Inner)
	}

	// *Unknown and nil consume nothing
	return Empty{}
}

func decodePrimitive(c *Cursor, k Kind) Value {
	switch k {
	case KindUint8:
		if v, ok := c.Uint8(); ok {
			return Uint8(v)
		}
	case KindUint16:
		if v, ok := c.Uint16(); ok {
			return Uint16(v)
		}
	case KindUint32:
		if v, ok := c.Uint32(); ok {
			return Uint32(v)
		}
	case KindUint64:
		if v, ok := c.Uint64(); ok {
			return Uint64(v)
		}
	case KindInt8:
		if v, ok := c.Uint8(); ok {
			return Int8(int8(v))
		}
	case KindInt16:
		if v, ok := c.Uint16(); ok {
			return Int16(int16(v))
		}
	case KindInt32:
		if v, ok := c.Uint32(); ok {
			return Int32(int32(v))
		}
	case KindInt64:
		if v, ok := c.Uint64(); ok {
			return Int64(int64(v))
		}
	case KindFloat32:
		if v, ok := c.Float32(); ok {
			return Float32(v)
		}
	case KindFloat64:
		if v, ok := c.Float64(); ok {
			return Float64(v)
		}
	case KindVector2:
		if v, ok := c.Vector2(); ok {
			return v
		}
	case KindVector3:
		if v, ok := c.Vector3(); ok {
			return v
		}
	case KindString, KindUnicodeString:
		if b, ok := c.VarBytes(); ok {
			return String(b)
		}
	case KindBlob:
		if b, ok := c.VarBytes(); ok {
			// the cursor buffer may be reused once decoding is done
			out := make(Blob, len(b))
			copy(out, b)
			return out
		}
	}

	decodeFailed(k.String(), c).Warn("not enough bytes for primitive")
	return Empty{}
}

func decodeFailed(shape string, c *Cursor) *logrus.Entry {
	metrics.ValueDecodeFailures.WithLabelValues(shape).Inc()
	rest := c.Rest()
	if len(rest) > maxDumpBytes {
		rest = rest[:maxDumpBytes]
	}
	return log.WithFields(logrus.Fields{
		"shape":     shape,
		"remaining": c.Remaining(),
		"bytes":     hex.EncodeToString(rest),
	})
}
