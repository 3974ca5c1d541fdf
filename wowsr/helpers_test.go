package wowsr

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reallyoldfogie/wows-replay-go/entitydef"
	"github.com/reallyoldfogie/wows-replay-go/schema"
)

const (
	testDefsRoot      = "../entitydef/testdata/defs"
	testClientVersion = "0,10,8,4157125"

	avatarType uint16 = 1
	vehicleType uint16 = 2

	avatarID  uint32 = 100
	vehicleID uint32 = 200
)

func testMeta() Meta {
	return Meta{
		ClientVersionFromExe: testClientVersion,
		DateTime:             "18.10.2026 20:15:00",
		MapDisplayName:       "Hotspot",
		PlayerName:           "captain",
		PlayerVehicle:        "PASB017-Montana-1945",
	}
}

func testSpecs(t *testing.T) []entitydef.EntitySpec {
	t.Helper()
	specs, err := entitydef.LoadCatalog(entitydef.Version{Major: 0, Minor: 10, Patch: 8}, testDefsRoot)
	require.NoError(t, err)
	return specs
}

type testPacket struct {
	clock   float32
	typ     PacketType
	payload []byte
}

func writeReplay(t *testing.T, meta Meta, packets ...testPacket) []byte {
	t.Helper()
	var out bytes.Buffer
	w, err := NewWriter(&out, meta)
	require.NoError(t, err)
	for _, p := range packets {
		require.NoError(t, w.WritePacket(p.clock, p.typ, p.payload))
	}
	require.NoError(t, w.Close())
	return out.Bytes()
}

func writeReplayFile(t *testing.T, meta Meta, packets ...testPacket) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wowsreplay")
	require.NoError(t, os.WriteFile(path, writeReplay(t, meta, packets...), 0o644))
	return path
}

func methodCall(t *testing.T, spec *entitydef.EntitySpec, entityID uint32, name string, args ...schema.Value) []byte {
	t.Helper()
	p, err := MethodCallPayload(spec, entityID, name, args...)
	require.NoError(t, err)
	return p
}

func propertyUpdate(t *testing.T, spec *entitydef.EntitySpec, entityID uint32, name string, v schema.Value) []byte {
	t.Helper()
	p, err := PropertyUpdatePayload(spec, entityID, name, v)
	require.NoError(t, err)
	return p
}
