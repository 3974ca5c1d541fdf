package wowsr

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeRawReplay assembles a replay around an arbitrary packet stream.
func writeRawReplay(t *testing.T, meta Meta, stream []byte) string {
	t.Helper()
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write(stream)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	metaJSON, err := json.Marshal(meta)
	require.NoError(t, err)

	var out bytes.Buffer
	le := binary.LittleEndian
	require.NoError(t, binary.Write(&out, le, Magic))
	require.NoError(t, binary.Write(&out, le, uint32(1)))
	require.NoError(t, binary.Write(&out, le, uint32(len(metaJSON))))
	out.Write(metaJSON)
	require.NoError(t, binary.Write(&out, le, uint32(len(stream))))
	require.NoError(t, binary.Write(&out, le, uint32(compressed.Len())))
	out.Write(encryptStream(compressed.Bytes()))

	path := filepath.Join(t.TempDir(), "raw.wowsreplay")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
	return path
}

func TestValidateFile(t *testing.T) {
	path := writeReplayFile(t, testMeta(),
		testPacket{0, TypeBasePlayerCreate, BasePlayerCreatePayload(avatarID, avatarType, nil)},
		testPacket{30, 0x22, nil},
	)
	assert.NoError(t, ValidateFileQuiet(path))
}

func TestInspect(t *testing.T) {
	path := writeReplayFile(t, testMeta(),
		testPacket{0, TypeVersion, VersionPayload("0.10.8")},
		testPacket{0, TypeBasePlayerCreate, BasePlayerCreatePayload(avatarID, avatarType, nil)},
		testPacket{12.5, 0x22, nil},
		testPacket{29.2, 0x22, []byte{1}},
	)

	rep, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, "0.10.8.4157125", rep.Version.String())
	assert.Equal(t, 30, rep.Duration)
	assert.Equal(t, 4, rep.Packets)
	assert.Equal(t, map[PacketType]int{
		TypeVersion:          1,
		TypeBasePlayerCreate: 1,
		PacketType(0x22):     2,
	}, rep.Types)
	assert.Equal(t, []string{"metadata lists no vehicles"}, rep.Warnings)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), rep.Bytes)
}

func TestValidateFileErrors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.wowsreplay")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.Error(t, ValidateFileQuiet(empty))

	assert.Error(t, ValidateFileQuiet(filepath.Join(dir, "missing.wowsreplay")))

	garbage := filepath.Join(dir, "garbage.wowsreplay")
	require.NoError(t, os.WriteFile(garbage, []byte("PK\x03\x04 not a replay"), 0o644))
	assert.ErrorIs(t, ValidateFileQuiet(garbage), ErrBadMagic)

	var stream bytes.Buffer
	appendPacket(&stream, 1, TypeVersion, VersionPayload("0.10.8"))
	truncated := writeRawReplay(t, testMeta(), stream.Bytes()[:stream.Len()-2])
	assert.ErrorIs(t, ValidateFileQuiet(truncated), ErrTruncated)

	assert.NoError(t, ValidateFileQuiet(writeRawReplay(t, testMeta(), stream.Bytes())))
}
