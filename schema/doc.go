// Package schema compiles entity definition types into descriptors and decodes
// replay bytes against them.
//
// A descriptor (ArgType) is one of:
//   - Primitive: fixed width integers, floats and vectors, or a variable length
//     String, UnicodeString or Blob
//   - ArrayType: element descriptor plus an optional fixed count
//   - FixedDict: ordered named properties, optionally absent on the wire
//   - Tuple: element descriptor plus a mandatory count
//   - User: a wrapper around another descriptor
//   - Unknown: a type name that could not be resolved
//
// All integers and floats are little-endian. Variable length fields use a one
// byte length; 0xFF announces the long form:
//
//	[len:u8] [payload]                         len < 0xFF
//	[0xFF] [len:u16] [reserved:u8] [payload]   otherwise
//
// Decoding never fails hard. A value that does not fit the remaining bytes is
// logged and replaced by Empty.
package schema
