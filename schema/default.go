package schema

// DefaultValue returns the zero value of t. Arrays default to an empty
// sequence and fixed dictionaries to an empty dictionary; declared
// properties are not filled in.
func DefaultValue(t ArgType) Value {
	switch t := t.(type) {
	case *Primitive:
		switch t.Kind {
		case KindUint8:
			return Uint8(0)
		case KindUint16:
			return Uint16(0)
		case KindUint32:
			return Uint32(0)
		case KindUint64:
			return Uint64(0)
		case KindInt8:
			return Int8(0)
		case KindInt16:
			return Int16(0)
		case KindInt32:
			return Int32(0)
		case KindInt64:
			return Int64(0)
		case KindFloat32:
			return Float32(0)
		case KindFloat64:
			return Float64(0)
		case KindVector2:
			return Vector2{}
		case KindVector3:
			return Vector3{}
		case KindString, KindUnicodeString:
			return String("")
		case KindBlob:
			return Blob{}
		}
	case *ArrayType:
		return Array{}
	case *FixedDict:
		return Dict{}
	case *Tuple:
		log.Error("TUPLE has no default value")
		return Empty{}
	case *User:
		return DefaultValue(t.Inner)
	}
	return Empty{}
}
