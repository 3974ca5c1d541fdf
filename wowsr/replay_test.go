package wowsr

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reallyoldfogie/wows-replay-go/entitydef"
	"github.com/reallyoldfogie/wows-replay-go/schema"
)

func TestParseReplay(t *testing.T) {
	specs := testSpecs(t)
	avatar, vehicle := &specs[0], &specs[1]

	state, err := EncodeEntityState(vehicle, map[string]schema.Value{
		"teamId": schema.Int8(1),
		"health": schema.Float32(52300),
	})
	require.NoError(t, err)

	data := writeReplay(t, testMeta(),
		testPacket{0, TypeVersion, VersionPayload("0.10.8")},
		testPacket{0, TypeBasePlayerCreate, BasePlayerCreatePayload(avatarID, avatarType, []byte{9, 9})},
		testPacket{1, TypeEntityCreate, EntityCreatePayload(vehicleID, vehicleType, 5, 1,
			schema.Vector3{X: 10, Y: 0, Z: -3}, schema.Vector3{Z: 1}, state)},
		testPacket{2, TypeEntityProperty, propertyUpdate(t, avatar, avatarID, "teamId", schema.Int8(1))},
		testPacket{3, TypeEntityMethod, methodCall(t, avatar, avatarID, "onRibbon", schema.Int8(4))},
		testPacket{4, TypeEntityMethod, methodCall(t, avatar, avatarID, "onChatMessage", schema.Int32(200), schema.String("gl hf"))},
		testPacket{5, 0x22, []byte{0xCA, 0xFE}},
	)

	r, err := NewParser(testDefsRoot).Parse(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, entitydef.Version{Major: 0, Minor: 10, Patch: 8, Build: 4157125}, r.Version)
	assert.Equal(t, "captain", r.Meta.PlayerName)
	assert.Len(t, r.Specs, 3)
	require.Len(t, r.Packets, 7)

	assert.Equal(t, &Version{Version: "0.10.8"}, r.Packets[0].Payload)
	assert.Equal(t, &BasePlayerCreate{EntityID: avatarID, EntityType: avatarType, State: []byte{9, 9}}, r.Packets[1].Payload)

	create, ok := r.Packets[2].Payload.(*EntityCreate)
	require.True(t, ok)
	assert.Equal(t, vehicleID, create.EntityID)
	assert.Equal(t, uint32(5), create.VehicleID)
	assert.Equal(t, schema.Vector3{X: 10, Y: 0, Z: -3}, create.Position)
	assert.Equal(t, map[string]schema.Value{
		"teamId":          schema.Int8(1),
		"isAlive":         schema.Uint8(0),
		"visibilityFlags": schema.Uint8(0),
		"serverSpeedRaw":  schema.Uint16(0),
		"health":          schema.Float32(52300),
		"shipConfig":      schema.Blob{},
	}, create.State)

	assert.Equal(t, &EntityProperty{
		EntityID: avatarID, EntityType: avatarType, PropertyID: 0, Name: "teamId", Value: schema.Int8(1),
	}, r.Packets[3].Payload)

	ribbon, ok := r.Packets[4].Payload.(*EntityMethod)
	require.True(t, ok)
	assert.Equal(t, "onRibbon", ribbon.Name)
	assert.Equal(t, schema.Array{schema.Int8(4)}, ribbon.Args)

	chat := r.Packets[5].Payload.(*EntityMethod)
	assert.Equal(t, schema.String("gl hf"), chat.Arg(1))
	assert.Equal(t, schema.Empty{}, chat.Arg(2))

	assert.Equal(t, &Raw{Data: []byte{0xCA, 0xFE}}, r.Packets[6].Payload)
	assert.Equal(t, float32(5), r.Packets[6].Clock)
	assert.Zero(t, r.Unresolved())
}

func TestParseUnresolvedPayloads(t *testing.T) {
	specs := testSpecs(t)
	avatar := &specs[0]

	data := writeReplay(t, testMeta(),
		testPacket{0, TypeBasePlayerCreate, BasePlayerCreatePayload(avatarID, avatarType, nil)},
		// entity never created
		testPacket{1, TypeEntityMethod, methodCall(t, avatar, 999, "onRibbon", schema.Int8(1))},
		// method index out of range
		testPacket{2, TypeEntityMethod, EntityMethodPayload(avatarID, 77, []byte{1})},
		testPacket{3, TypeEntityProperty, EntityPropertyPayload(avatarID, 77, []byte{1})},
		// entity type outside the catalog
		testPacket{4, TypeEntityCreate, EntityCreatePayload(300, 42, 0, 1, schema.Vector3{}, schema.Vector3{}, nil)},
		testPacket{5, TypeEntityMethod, EntityMethodPayload(300, 0, nil)},
		// packet too short for its header
		testPacket{6, TypeEntityMethod, []byte{1, 2}},
	)

	r, err := NewParser(testDefsRoot).Parse(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, r.Packets, 7)

	for _, i := range []int{1, 2, 5} {
		m, ok := r.Packets[i].Payload.(*EntityMethod)
		require.True(t, ok, "packet %d", i)
		assert.Equal(t, "", m.Name)
		assert.Equal(t, schema.Empty{}, m.Args, "packet %d", i)
	}

	prop := r.Packets[3].Payload.(*EntityProperty)
	assert.Equal(t, schema.Empty{}, prop.Value)

	create := r.Packets[4].Payload.(*EntityCreate)
	assert.Equal(t, uint16(42), create.EntityType)
	assert.Nil(t, create.State)

	assert.IsType(t, &Raw{}, r.Packets[6].Payload)
	assert.Equal(t, 4, r.Unresolved())
}

func TestParseMalformedArguments(t *testing.T) {
	specs := testSpecs(t)
	avatar := &specs[0]
	index, _, ok := avatar.ClientMethod("onBattleEnd")
	require.True(t, ok)

	data := writeReplay(t, testMeta(),
		testPacket{0, TypeBasePlayerCreate, BasePlayerCreatePayload(avatarID, avatarType, nil)},
		// second argument missing
		testPacket{1, TypeEntityMethod, EntityMethodPayload(avatarID, uint32(index), []byte{0xFF})},
	)

	r, err := NewParser(testDefsRoot).Parse(bytes.NewReader(data))
	require.NoError(t, err)
	m := r.Packets[1].Payload.(*EntityMethod)
	assert.Equal(t, "onBattleEnd", m.Name)
	assert.Equal(t, schema.Array{schema.Int8(-1), schema.Empty{}}, m.Args)
}

func TestOpenUnknownVersion(t *testing.T) {
	meta := testMeta()
	meta.ClientVersionFromExe = "0,99,1,1"
	path := writeReplayFile(t, meta)

	_, err := Open(path, testDefsRoot)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVersion))
	assert.True(t, errors.Is(err, entitydef.ErrMissingDefinitions))

	meta.ClientVersionFromExe = "not a version"
	_, err = Open(writeReplayFile(t, meta), testDefsRoot)
	assert.True(t, errors.Is(err, ErrUnknownVersion))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.wowsreplay"), testDefsRoot)
	assert.Error(t, err)
}

func TestOpenSharesCatalog(t *testing.T) {
	cache := entitydef.NewCache()
	p := NewParserWithCache(testDefsRoot, cache)

	a, err := p.Open(writeReplayFile(t, testMeta()))
	require.NoError(t, err)
	b, err := p.Open(writeReplayFile(t, testMeta()))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, &a.Specs[0], &b.Specs[0])
	assert.Equal(t, 1, cache.Len())

	spec, ok := a.Spec(vehicleType)
	require.True(t, ok)
	assert.Equal(t, "Vehicle", spec.Name)
	_, ok = a.Spec(0)
	assert.False(t, ok)
}
