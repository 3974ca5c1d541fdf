package schema

import (
	"encoding/binary"
	"math"
)

// Cursor reads from an immutable byte slice. Every read is all-or-nothing: a
// read that does not fit the remaining bytes consumes nothing.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor positioned at the start of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{buf: b}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int {
	return c.off
}

// Rest returns the unread bytes without consuming them.
func (c *Cursor) Rest() []byte {
	return c.buf[c.off:]
}

// Take consumes n bytes. The returned slice aliases the underlying buffer.
func (c *Cursor) Take(n int) ([]byte, bool) {
	if n < 0 || c.Remaining() < n {
		return nil, false
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, true
}

// Skip consumes n bytes.
func (c *Cursor) Skip(n int) bool {
	_, ok := c.Take(n)
	return ok
}

func (c *Cursor) Uint8() (uint8, bool) {
	b, ok := c.Take(1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (c *Cursor) Uint16() (uint16, bool) {
	b, ok := c.Take(2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (c *Cursor) Uint32() (uint32, bool) {
	b, ok := c.Take(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (c *Cursor) Uint64() (uint64, bool) {
	b, ok := c.Take(8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func (c *Cursor) Float32() (float32, bool) {
	v, ok := c.Uint32()
	return math.Float32frombits(v), ok
}

func (c *Cursor) Float64() (float64, bool) {
	v, ok := c.Uint64()
	return math.Float64frombits(v), ok
}

func (c *Cursor) Vector2() (Vector2, bool) {
	b, ok := c.Take(8)
	if !ok {
		return Vector2{}, false
	}
	return Vector2{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
	}, true
}

func (c *Cursor) Vector3() (Vector3, bool) {
	b, ok := c.Take(12)
	if !ok {
		return Vector3{}, false
	}
	return Vector3{
		X: math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Y: math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		Z: math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	}, true
}

// VarBytes reads a variable length payload in the short/long form described
// in the package documentation. On failure the cursor is left where the
// failing step started.
func (c *Cursor) VarBytes() ([]byte, bool) {
	size, ok := c.Uint8()
	if !ok {
		return nil, false
	}
	if size != math.MaxUint8 {
		return c.Take(int(size))
	}
	long, ok := c.Uint16()
	if !ok {
		return nil, false
	}
	// reserved
	if !c.Skip(1) {
		return nil, false
	}
	return c.Take(int(long))
}
