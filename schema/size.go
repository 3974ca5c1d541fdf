package schema

// PrimitiveSize returns the wire width of k. String, UnicodeString and Blob
// are unbounded.
func PrimitiveSize(k Kind) (int, bool) {
	switch k {
	case KindUint8, KindInt8:
		return 1, true
	case KindUint16, KindInt16:
		return 2, true
	case KindUint32, KindInt32, KindFloat32:
		return 4, true
	case KindUint64, KindInt64, KindFloat64, KindVector2:
		return 8, true
	case KindVector3:
		return 12, true
	}
	return 0, false
}

// StaticSize returns the number of bytes t always occupies on the wire.
// bounded is false when the size depends on the stream.
func StaticSize(t ArgType) (size int, bounded bool) {
	switch t := t.(type) {
	case *Primitive:
		return PrimitiveSize(t.Kind)

	case *ArrayType:
		if !t.Fixed {
			return 0, false
		}
		elem, ok := StaticSize(t.Elem)
		if !ok {
			return 0, false
		}
		return elem * t.Size, true

	case *FixedDict:
		if t.AllowNone {
			return 0, false
		}
		total := 0
		for _, p := range t.Properties {
			n, ok := StaticSize(p.Type)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true

	case *Tuple:
		elem, ok := StaticSize(t.Elem)
		if !ok {
			return 0, false
		}
		return elem * t.Size, true

	case *User:
		// always unbounded, Inner is not consulted
		return 0, false
	}
	// *Unknown and nil
	return 0, false
}
