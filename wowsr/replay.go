package wowsr

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/wows-replay-go/entitydef"
	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
	"github.com/reallyoldfogie/wows-replay-go/internal/metrics"
	"github.com/reallyoldfogie/wows-replay-go/schema"
)

var log = logging.WithComponent("wowsr")

// ErrUnknownVersion is returned when the game version of a replay cannot be
// parsed or has no entity definitions.
var ErrUnknownVersion = errors.New("wowsr: unknown game version")

// defaultCache is shared by every Parser created with NewParser.
var defaultCache = entitydef.NewCache()

// Replay is one parsed replay. It is not modified after Open returns.
type Replay struct {
	// ID identifies this parse in log lines.
	ID      uuid.UUID
	Meta    Meta
	Version entitydef.Version
	// Specs is the entity catalog of Version, shared with other replays of
	// the same version.
	Specs   []entitydef.EntitySpec
	Packets []Packet
}

// Spec returns the specification of a 1-based entity type id.
func (r *Replay) Spec(entityType uint16) (*entitydef.EntitySpec, bool) {
	return specByType(r.Specs, entityType)
}

// Unresolved returns the number of method calls and property updates that
// could not be matched against the catalog.
func (r *Replay) Unresolved() int {
	n := 0
	for _, p := range r.Packets {
		switch pl := p.Payload.(type) {
		case *EntityMethod:
			if pl.Name == "" {
				n++
			}
		case *EntityProperty:
			if pl.Name == "" {
				n++
			}
		}
	}
	return n
}

func specByType(specs []entitydef.EntitySpec, entityType uint16) (*entitydef.EntitySpec, bool) {
	i := int(entityType) - 1
	if i < 0 || i >= len(specs) {
		return nil, false
	}
	return &specs[i], true
}

// Parser opens replays against a definitions root.
type Parser struct {
	root  string
	cache *entitydef.Cache
}

// NewParser returns a parser reading entity definitions below root. Parsers
// share one process-wide catalog cache.
func NewParser(root string) *Parser {
	return NewParserWithCache(root, defaultCache)
}

// NewParserWithCache returns a parser using cache for entity catalogs.
func NewParserWithCache(root string, cache *entitydef.Cache) *Parser {
	return &Parser{root: root, cache: cache}
}

// Open parses the replay file at path with the process-wide catalog cache.
func Open(path, definitionsRoot string) (*Replay, error) {
	return NewParser(definitionsRoot).Open(path)
}

// Open parses the replay file at path.
func (p *Parser) Open(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		metrics.ReplaysOpened.WithLabelValues(metrics.Result(err)).Inc()
		return nil, err
	}
	defer f.Close()

	r, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse reads a replay from r. Container and version errors fail the parse;
// payloads that do not match the catalog decode to schema.Empty.
func (p *Parser) Parse(r io.Reader) (*Replay, error) {
	replay, err := p.parse(r)
	metrics.ReplaysOpened.WithLabelValues(metrics.Result(err)).Inc()
	return replay, err
}

func (p *Parser) parse(r io.Reader) (*Replay, error) {
	id := uuid.New()
	rlog := log.WithField("replay", id.String())

	c, err := ReadContainer(r)
	if err != nil {
		return nil, err
	}

	version, err := c.Meta.GameVersion()
	if err != nil {
		return nil, err
	}
	specs, err := p.cache.Get(version, p.root)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnknownVersion, version, err)
	}

	rlog.WithFields(logrus.Fields{
		"version": version.String(),
		"player":  c.Meta.PlayerName,
		"map":     c.Meta.MapDisplayName,
	}).Debug("opening replay")

	raw, err := splitPackets(c.Stream)
	if err != nil {
		rlog.WithError(err).Warn("packet stream ends inside a packet")
	}

	d := &decoder{specs: specs, entities: make(map[uint32]uint16), log: rlog}
	packets := make([]Packet, 0, len(raw))
	for _, rp := range raw {
		packets = append(packets, Packet{
			Clock:   rp.Clock,
			Type:    rp.Type,
			Payload: d.decode(rp),
		})
		metrics.PacketsDecoded.WithLabelValues(rp.Type.String()).Inc()
	}

	rlog.WithFields(logrus.Fields{
		"packets":    len(packets),
		"unresolved": d.unresolved,
	}).Info("replay decoded")

	return &Replay{
		ID:      id,
		Meta:    c.Meta,
		Version: version,
		Specs:   specs,
		Packets: packets,
	}, nil
}

// decoder holds the state of one pass over a packet stream.
type decoder struct {
	specs []entitydef.EntitySpec
	// entity id to 1-based entity type
	entities   map[uint32]uint16
	unresolved int
	log        *logrus.Entry
}

func (d *decoder) decode(rp rawPacket) Payload {
	c := schema.NewCursor(rp.Payload)
	switch rp.Type {
	case TypeBasePlayerCreate:
		return d.basePlayerCreate(c, rp)
	case TypeEntityCreate:
		return d.entityCreate(c, rp)
	case TypeEntityProperty:
		return d.entityProperty(c, rp)
	case TypeEntityMethod:
		return d.entityMethod(c, rp)
	case TypeVersion:
		if size, ok := c.Uint32(); ok {
			if b, ok := c.Take(int(size)); ok {
				return &Version{Version: string(b)}
			}
		}
	}
	return &Raw{Data: rp.Payload}
}

func (d *decoder) miss(rp rawPacket, fields logrus.Fields, msg string) {
	d.unresolved++
	metrics.UnresolvedPayloads.Inc()
	d.log.WithFields(fields).WithField("clock", rp.Clock).Debug(msg)
}

func (d *decoder) basePlayerCreate(c *schema.Cursor, rp rawPacket) Payload {
	id, ok1 := c.Uint32()
	typ, ok2 := c.Uint16()
	if !ok1 || !ok2 {
		d.log.WithField("clock", rp.Clock).Warn("short BasePlayerCreate packet")
		return &Raw{Data: rp.Payload}
	}
	d.entities[id] = typ
	return &BasePlayerCreate{
		EntityID:   id,
		EntityType: typ,
		State:      append([]byte(nil), c.Rest()...),
	}
}

func (d *decoder) entityCreate(c *schema.Cursor, rp rawPacket) Payload {
	p := &EntityCreate{}
	var ok [7]bool
	p.EntityID, ok[0] = c.Uint32()
	p.EntityType, ok[1] = c.Uint16()
	p.VehicleID, ok[2] = c.Uint32()
	p.SpaceID, ok[3] = c.Uint32()
	p.Position, ok[4] = c.Vector3()
	p.Direction, ok[5] = c.Vector3()
	var stateSize uint32
	stateSize, ok[6] = c.Uint32()
	for _, v := range ok {
		if !v {
			d.log.WithField("clock", rp.Clock).Warn("short EntityCreate packet")
			return &Raw{Data: rp.Payload}
		}
	}
	d.entities[p.EntityID] = p.EntityType

	spec, found := specByType(d.specs, p.EntityType)
	if !found {
		d.miss(rp, logrus.Fields{"entityType": p.EntityType}, "unknown entity type")
		return p
	}

	p.State = make(map[string]schema.Value, len(spec.ClientPropertiesInternal))
	for _, prop := range spec.ClientPropertiesInternal {
		p.State[prop.Name] = schema.DefaultValue(prop.Type)
	}

	state, okState := c.Take(int(stateSize))
	if !okState {
		d.log.WithFields(logrus.Fields{"clock": rp.Clock, "stateSize": stateSize}).Warn("EntityCreate state exceeds packet")
		return p
	}
	sc := schema.NewCursor(state)
	count, _ := sc.Uint8()
	for i := 0; i < int(count); i++ {
		index, okIndex := sc.Uint8()
		if !okIndex {
			break
		}
		prop, found := spec.ClientPropertyByIndex(int(index))
		if !found {
			d.miss(rp, logrus.Fields{"entity": spec.Name, "index": index}, "unknown property in entity state")
			// the remaining values cannot be framed without the type
			break
		}
		p.State[prop.Name] = schema.Decode(sc, prop.Type)
	}
	return p
}

func (d *decoder) entityProperty(c *schema.Cursor, rp rawPacket) Payload {
	p := &EntityProperty{Value: schema.Empty{}}
	id, ok1 := c.Uint32()
	propID, ok2 := c.Uint32()
	size, ok3 := c.Uint32()
	if !ok1 || !ok2 || !ok3 {
		d.log.WithField("clock", rp.Clock).Warn("short EntityProperty packet")
		return &Raw{Data: rp.Payload}
	}
	p.EntityID, p.PropertyID = id, propID

	data, ok := c.Take(int(size))
	if !ok {
		data = c.Rest()
	}

	typ, known := d.entities[id]
	if !known {
		d.miss(rp, logrus.Fields{"entity": id}, "property of unknown entity")
		return p
	}
	p.EntityType = typ
	spec, found := specByType(d.specs, typ)
	if !found {
		d.miss(rp, logrus.Fields{"entityType": typ}, "unknown entity type")
		return p
	}
	prop, found := spec.ClientPropertyByIndex(int(propID))
	if !found {
		d.miss(rp, logrus.Fields{"entity": spec.Name, "property": propID}, "unknown property")
		return p
	}
	p.Name = prop.Name
	p.Value = schema.Decode(schema.NewCursor(data), prop.Type)
	return p
}

func (d *decoder) entityMethod(c *schema.Cursor, rp rawPacket) Payload {
	p := &EntityMethod{Args: schema.Empty{}}
	id, ok1 := c.Uint32()
	methodID, ok2 := c.Uint32()
	size, ok3 := c.Uint32()
	if !ok1 || !ok2 || !ok3 {
		d.log.WithField("clock", rp.Clock).Warn("short EntityMethod packet")
		return &Raw{Data: rp.Payload}
	}
	p.EntityID, p.MethodID = id, methodID

	data, ok := c.Take(int(size))
	if !ok {
		data = c.Rest()
	}

	typ, known := d.entities[id]
	if !known {
		d.miss(rp, logrus.Fields{"entity": id}, "method of unknown entity")
		return p
	}
	p.EntityType = typ
	spec, found := specByType(d.specs, typ)
	if !found {
		d.miss(rp, logrus.Fields{"entityType": typ}, "unknown entity type")
		return p
	}
	method, found := spec.ClientMethodByIndex(int(methodID))
	if !found {
		d.miss(rp, logrus.Fields{"entity": spec.Name, "method": methodID}, "unknown method")
		return p
	}
	p.Name = method.Name

	ac := schema.NewCursor(data)
	args := make(schema.Array, 0, len(method.Args))
	for _, a := range method.Args {
		args = append(args, schema.Decode(ac, a.Type))
	}
	p.Args = args
	return p
}
