package wowsr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/reallyoldfogie/wows-replay-go/entitydef"
	"github.com/reallyoldfogie/wows-replay-go/schema"
)

// PacketType is the type word of a packet header.
type PacketType uint32

const (
	TypeBasePlayerCreate PacketType = 0x00
	TypeEntityCreate     PacketType = 0x05
	TypeEntityProperty   PacketType = 0x07
	TypeEntityMethod     PacketType = 0x08
	TypeVersion          PacketType = 0x16
)

func (t PacketType) String() string {
	switch t {
	case TypeBasePlayerCreate:
		return "BasePlayerCreate"
	case TypeEntityCreate:
		return "EntityCreate"
	case TypeEntityProperty:
		return "EntityProperty"
	case TypeEntityMethod:
		return "EntityMethod"
	case TypeVersion:
		return "Version"
	default:
		return fmt.Sprintf("0x%02x", uint32(t))
	}
}

// packetHeaderSize is payloadSize, type and clock.
const packetHeaderSize = 12

// Packet is one decoded packet of the stream.
type Packet struct {
	// Clock is the game time in seconds.
	Clock   float32
	Type    PacketType
	Payload Payload
}

// Payload is the decoded body of a packet: *BasePlayerCreate, *EntityCreate,
// *EntityProperty, *EntityMethod, *Version or *Raw.
type Payload interface {
	isPayload()
}

// BasePlayerCreate creates the entity of the recording player.
type BasePlayerCreate struct {
	EntityID   uint32
	EntityType uint16
	State      []byte
}

// EntityCreate creates an entity in the space. State holds every internal
// client property of the entity type: the values sent with the packet and
// DefaultValue for the rest. State is nil when the entity type is unknown.
type EntityCreate struct {
	EntityID   uint32
	EntityType uint16
	VehicleID  uint32
	SpaceID    uint32
	Position   schema.Vector3
	Direction  schema.Vector3
	State      map[string]schema.Value
}

// EntityProperty sets one client property. Name is empty and Value is
// schema.Empty when the property could not be resolved.
type EntityProperty struct {
	EntityID   uint32
	EntityType uint16
	PropertyID uint32
	Name       string
	Value      schema.Value
}

// EntityMethod calls a client method. Args is a schema.Array with one value
// per declared argument, or schema.Empty when the method could not be
// resolved.
type EntityMethod struct {
	EntityID   uint32
	EntityType uint16
	MethodID   uint32
	Name       string
	Args       schema.Value
}

// Arg returns argument i, or schema.Empty.
func (m *EntityMethod) Arg(i int) schema.Value {
	args, ok := m.Args.(schema.Array)
	if !ok || i < 0 || i >= len(args) {
		return schema.Empty{}
	}
	return args[i]
}

// Version carries the client version string.
type Version struct {
	Version string
}

// Raw is a packet this package does not interpret.
type Raw struct {
	Data []byte
}

func (*BasePlayerCreate) isPayload() {}
func (*EntityCreate) isPayload()     {}
func (*EntityProperty) isPayload()   {}
func (*EntityMethod) isPayload()     {}
func (*Version) isPayload()          {}
func (*Raw) isPayload()              {}

// rawPacket is a framed packet before its payload is decoded.
type rawPacket struct {
	Type    PacketType
	Clock   float32
	Payload []byte
}

// splitPackets frames the packet stream. On a truncated packet it returns
// the packets framed so far together with an error.
func splitPackets(stream []byte) ([]rawPacket, error) {
	var packets []rawPacket
	c := schema.NewCursor(stream)
	for c.Remaining() > 0 {
		offset := c.Offset()
		header, ok := c.Take(packetHeaderSize)
		if !ok {
			return packets, fmt.Errorf("%w: packet header at offset %d", ErrTruncated, offset)
		}
		size := binary.LittleEndian.Uint32(header[0:4])
		payload, ok := c.Take(int(size))
		if !ok {
			return packets, fmt.Errorf("%w: packet at offset %d wants %d bytes, %d left", ErrTruncated, offset, size, c.Remaining())
		}
		packets = append(packets, rawPacket{
			Type:    PacketType(binary.LittleEndian.Uint32(header[4:8])),
			Clock:   math.Float32frombits(binary.LittleEndian.Uint32(header[8:12])),
			Payload: payload,
		})
	}
	return packets, nil
}

func appendPacket(buf *bytes.Buffer, clock float32, typ PacketType, payload []byte) {
	var hdr [packetHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(payload)))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(typ))
	binary.LittleEndian.PutUint32(hdr[8:12], math.Float32bits(clock))
	buf.Write(hdr[:])
	buf.Write(payload)
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putVector3(buf *bytes.Buffer, v schema.Vector3) {
	putUint32(buf, math.Float32bits(v.X))
	putUint32(buf, math.Float32bits(v.Y))
	putUint32(buf, math.Float32bits(v.Z))
}

// BasePlayerCreatePayload builds the payload of a BasePlayerCreate packet.
func BasePlayerCreatePayload(entityID uint32, entityType uint16, state []byte) []byte {
	var buf bytes.Buffer
	putUint32(&buf, entityID)
	putUint16(&buf, entityType)
	buf.Write(state)
	return buf.Bytes()
}

// EntityCreatePayload builds the payload of an EntityCreate packet. state is
// the output of EncodeEntityState.
func EntityCreatePayload(entityID uint32, entityType uint16, vehicleID, spaceID uint32, position, direction schema.Vector3, state []byte) []byte {
	var buf bytes.Buffer
	putUint32(&buf, entityID)
	putUint16(&buf, entityType)
	putUint32(&buf, vehicleID)
	putUint32(&buf, spaceID)
	putVector3(&buf, position)
	putVector3(&buf, direction)
	putUint32(&buf, uint32(len(state)))
	buf.Write(state)
	return buf.Bytes()
}

// EntityPropertyPayload builds the payload of an EntityProperty packet.
func EntityPropertyPayload(entityID, propertyID uint32, value []byte) []byte {
	var buf bytes.Buffer
	putUint32(&buf, entityID)
	putUint32(&buf, propertyID)
	putUint32(&buf, uint32(len(value)))
	buf.Write(value)
	return buf.Bytes()
}

// EntityMethodPayload builds the payload of an EntityMethod packet.
func EntityMethodPayload(entityID, methodID uint32, args []byte) []byte {
	var buf bytes.Buffer
	putUint32(&buf, entityID)
	putUint32(&buf, methodID)
	putUint32(&buf, uint32(len(args)))
	buf.Write(args)
	return buf.Bytes()
}

// VersionPayload builds the payload of a Version packet.
func VersionPayload(version string) []byte {
	var buf bytes.Buffer
	putUint32(&buf, uint32(len(version)))
	buf.WriteString(version)
	return buf.Bytes()
}

// EncodeMethodArgs encodes args for method m.
func EncodeMethodArgs(m *entitydef.Method, args ...schema.Value) ([]byte, error) {
	if len(args) != len(m.Args) {
		return nil, fmt.Errorf("%s: %d arguments, want %d", m.Name, len(args), len(m.Args))
	}
	var buf bytes.Buffer
	for i, a := range m.Args {
		if err := schema.Encode(&buf, a.Type, args[i]); err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", m.Name, i, err)
		}
	}
	return buf.Bytes(), nil
}

// EncodeEntityState encodes the create state of an entity of type spec from
// property values keyed by name. Properties are written in index order.
func EncodeEntityState(spec *entitydef.EntitySpec, values map[string]schema.Value) ([]byte, error) {
	if len(values) > math.MaxUint8 {
		return nil, fmt.Errorf("%s: %d properties exceed the count byte", spec.Name, len(values))
	}
	type indexed struct {
		index int
		prop  *entitydef.Property
		value schema.Value
	}
	props := make([]indexed, 0, len(values))
	for name, v := range values {
		i, p, ok := spec.ClientProperty(name)
		if !ok {
			return nil, fmt.Errorf("%s: no client property %q", spec.Name, name)
		}
		props = append(props, indexed{index: i, prop: p, value: v})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].index < props[j].index })

	var buf bytes.Buffer
	buf.WriteByte(byte(len(props)))
	for _, p := range props {
		buf.WriteByte(byte(p.index))
		if err := schema.Encode(&buf, p.prop.Type, p.value); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", spec.Name, p.prop.Name, err)
		}
	}
	return buf.Bytes(), nil
}

// MethodCallPayload builds the EntityMethod payload calling the client
// method name of spec on entityID.
func MethodCallPayload(spec *entitydef.EntitySpec, entityID uint32, name string, args ...schema.Value) ([]byte, error) {
	index, m, ok := spec.ClientMethod(name)
	if !ok {
		return nil, fmt.Errorf("%s: no client method %q", spec.Name, name)
	}
	data, err := EncodeMethodArgs(m, args...)
	if err != nil {
		return nil, err
	}
	return EntityMethodPayload(entityID, uint32(index), data), nil
}

// PropertyUpdatePayload builds the EntityProperty payload setting the client
// property name of spec on entityID.
func PropertyUpdatePayload(spec *entitydef.EntitySpec, entityID uint32, name string, value schema.Value) ([]byte, error) {
	index, p, ok := spec.ClientProperty(name)
	if !ok {
		return nil, fmt.Errorf("%s: no client property %q", spec.Name, name)
	}
	var buf bytes.Buffer
	if err := schema.Encode(&buf, p.Type, value); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", spec.Name, name, err)
	}
	return EntityPropertyPayload(entityID, uint32(index), buf.Bytes()), nil
}
