package wowsr

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/crypto/blowfish"
)

// Magic is the first word of every replay file.
const Magic uint32 = 0x11343212

var (
	// ErrBadMagic is returned when the input does not start with Magic.
	ErrBadMagic = errors.New("wowsr: not a replay file")
	// ErrTruncated is returned when the container ends early.
	ErrTruncated = errors.New("wowsr: truncated replay")
)

var streamKey = []byte{
	0x29, 0xB7, 0xC9, 0x09, 0x38, 0x3F, 0x84, 0x88,
	0xFA, 0x98, 0xEC, 0x4E, 0x13, 0x19, 0x79, 0xFB,
}

// Container is a replay file split into its parts.
type Container struct {
	Meta Meta
	// MetaJSON is block 0 as stored.
	MetaJSON []byte
	// Blocks holds the JSON blocks after the metadata, unparsed.
	Blocks [][]byte
	// Stream is the decrypted and inflated packet stream.
	Stream []byte
}

// ReadContainer reads a whole replay file from r. Either every part is
// read successfully or an error is returned.
func ReadContainer(r io.Reader) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	br := bytes.NewReader(data)

	var header struct {
		Magic      uint32
		BlockCount uint32
	}
	if err := binary.Read(br, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if header.Magic != Magic {
		return nil, fmt.Errorf("%w: magic %#08x", ErrBadMagic, header.Magic)
	}
	if header.BlockCount == 0 {
		return nil, fmt.Errorf("wowsr: replay has no metadata block")
	}

	c := &Container{}
	for i := uint32(0); i < header.BlockCount; i++ {
		block, err := readBlock(br)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		if i == 0 {
			c.MetaJSON = block
		} else {
			c.Blocks = append(c.Blocks, block)
		}
	}
	if err := json.Unmarshal(c.MetaJSON, &c.Meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	var sizes struct {
		Decompressed uint32
		Stream       uint32
	}
	if err := binary.Read(br, binary.LittleEndian, &sizes); err != nil {
		return nil, fmt.Errorf("%w: stream sizes", ErrTruncated)
	}

	encrypted := data[len(data)-br.Len():]
	compressed := decryptStream(encrypted)
	if int(sizes.Stream) > len(compressed) {
		return nil, fmt.Errorf("%w: stream is %d bytes, header says %d", ErrTruncated, len(compressed), sizes.Stream)
	}

	c.Stream, err = inflate(compressed[:sizes.Stream])
	if err != nil {
		return nil, err
	}
	if len(c.Stream) != int(sizes.Decompressed) {
		return nil, fmt.Errorf("wowsr: inflated %d bytes, header says %d", len(c.Stream), sizes.Decompressed)
	}
	return c, nil
}

func readBlock(r *bytes.Reader) ([]byte, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, ErrTruncated
	}
	if int64(size) > int64(r.Len()) {
		return nil, ErrTruncated
	}
	block := make([]byte, size)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, ErrTruncated
	}
	return block, nil
}

func newStreamCipher() *blowfish.Cipher {
	c, err := blowfish.NewCipher(streamKey)
	if err != nil {
		// the key is a constant of valid length
		panic(err)
	}
	return c
}

// decryptStream reverses encryptStream. A trailing partial block is ignored.
func decryptStream(src []byte) []byte {
	if len(src)%blowfish.BlockSize != 0 {
		log.WithField("trailing", len(src)%blowfish.BlockSize).Debug("ignoring partial cipher block")
	}
	bf := newStreamCipher()
	n := len(src) / blowfish.BlockSize * blowfish.BlockSize
	out := make([]byte, n)
	var prev [blowfish.BlockSize]byte
	for off := 0; off < n; off += blowfish.BlockSize {
		block := out[off : off+blowfish.BlockSize]
		bf.Decrypt(block, src[off:off+blowfish.BlockSize])
		for i := range block {
			block[i] ^= prev[i]
		}
		copy(prev[:], block)
	}
	return out
}

// encryptStream pads src with zeros to the block size and encrypts it so
// that decryptStream restores the padded input.
func encryptStream(src []byte) []byte {
	bf := newStreamCipher()
	n := (len(src) + blowfish.BlockSize - 1) / blowfish.BlockSize * blowfish.BlockSize
	plain := make([]byte, n)
	copy(plain, src)

	out := make([]byte, n)
	var prev, mixed [blowfish.BlockSize]byte
	for off := 0; off < n; off += blowfish.BlockSize {
		block := plain[off : off+blowfish.BlockSize]
		for i := range block {
			mixed[i] = block[i] ^ prev[i]
		}
		bf.Encrypt(out[off:off+blowfish.BlockSize], mixed[:])
		copy(prev[:], block)
	}
	return out
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open packet stream: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate packet stream: %w", err)
	}
	return out, nil
}
