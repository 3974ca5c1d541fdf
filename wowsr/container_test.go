package wowsr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamCipherRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 8, 13, 64} {
		plain := bytes.Repeat([]byte{0xA5, 0x01, 0x7F}, n)[:n]
		enc := encryptStream(plain)
		assert.Equal(t, 0, len(enc)%8)
		dec := decryptStream(enc)
		require.Len(t, dec, len(enc))
		assert.Equal(t, plain, dec[:n])
		assert.Equal(t, make([]byte, len(enc)-n), dec[n:])
	}
}

func TestStreamCipherChainsBlocks(t *testing.T) {
	enc := encryptStream(bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 2))
	assert.NotEqual(t, enc[0:8], enc[8:16])

	// a repeated block encrypts as the zero block
	zero := encryptStream(make([]byte, 8))
	assert.Equal(t, zero, enc[8:16])
}

func TestReadContainer(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, testMeta())
	require.NoError(t, err)
	require.NoError(t, w.WritePacket(0, TypeVersion, VersionPayload("0.10.8")))
	require.NoError(t, w.WritePacket(12.25, 0x22, []byte{1, 2, 3}))
	w.AddVehicle(Vehicle{ShipID: 1, ID: 7, Name: "captain"})
	w.AddVehicle(Vehicle{ShipID: 1, ID: 7, Name: "captain"})
	require.NoError(t, w.AddBlock(map[string]int{"arenaUniqueID": 42}))
	require.NoError(t, w.Close())

	c, err := ReadContainer(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, "captain", c.Meta.PlayerName)
	assert.Equal(t, testClientVersion, c.Meta.ClientVersionFromExe)
	assert.Equal(t, 13, c.Meta.Duration)
	assert.Len(t, c.Meta.Vehicles, 1)
	require.Len(t, c.Blocks, 1)
	assert.JSONEq(t, `{"arenaUniqueID":42}`, string(c.Blocks[0]))

	packets, err := splitPackets(c.Stream)
	require.NoError(t, err)
	require.Len(t, packets, 2)
	assert.Equal(t, TypeVersion, packets[0].Type)
	assert.Equal(t, PacketType(0x22), packets[1].Type)
	assert.Equal(t, float32(12.25), packets[1].Clock)
	assert.Equal(t, []byte{1, 2, 3}, packets[1].Payload)
}

func TestReadContainerBadMagic(t *testing.T) {
	data := writeReplay(t, testMeta())
	binary.LittleEndian.PutUint32(data[0:4], 0xDEADBEEF)

	_, err := ReadContainer(bytes.NewReader(data))
	assert.True(t, errors.Is(err, ErrBadMagic))
}

func TestReadContainerTruncated(t *testing.T) {
	data := writeReplay(t, testMeta(), testPacket{1, TypeVersion, VersionPayload("0.10.8")})

	for _, n := range []int{0, 6, 12, 40} {
		_, err := ReadContainer(bytes.NewReader(data[:n]))
		assert.True(t, errors.Is(err, ErrTruncated), "cut at %d: %v", n, err)
	}

	_, err := ReadContainer(bytes.NewReader(data[:len(data)-8]))
	assert.Error(t, err)
}

func TestSplitPacketsTruncated(t *testing.T) {
	var stream bytes.Buffer
	appendPacket(&stream, 1, TypeVersion, VersionPayload("0.10.8"))
	appendPacket(&stream, 2, 0x22, []byte{1, 2, 3, 4})

	full := stream.Bytes()
	packets, err := splitPackets(full[:len(full)-1])
	assert.True(t, errors.Is(err, ErrTruncated))
	assert.Len(t, packets, 1)

	packets, err = splitPackets(full[:len(full)-10])
	assert.True(t, errors.Is(err, ErrTruncated))
	assert.Len(t, packets, 1)
}

func TestWriterClosed(t *testing.T) {
	var out bytes.Buffer
	w, err := NewWriter(&out, testMeta())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.Error(t, w.WritePacket(1, TypeVersion, nil))
	assert.Error(t, w.AddBlock(1))
}

func TestWriterSetsDateTime(t *testing.T) {
	meta := testMeta()
	meta.DateTime = ""
	c, err := ReadContainer(bytes.NewReader(writeReplay(t, meta)))
	require.NoError(t, err)
	assert.NotEmpty(t, c.Meta.DateTime)
	assert.Equal(t, 0, c.Meta.Duration)
}
