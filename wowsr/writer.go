package wowsr

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/klauspost/compress/zlib"
)

// Writer builds a replay file.
//
// Usage:
//
//	w, _ := wowsr.Create("out.wowsreplay", wowsr.Meta{ClientVersionFromExe: "0,10,8,4157125"})
//	defer w.Close()
//	_ = w.WritePacket(1.5, wowsr.TypeEntityMethod, payload)
//
// Packets are compressed as they are written. The container is written on
// Close, when the compressed size is known.
type Writer struct {
	out      io.Writer
	meta     Meta
	blocks   [][]byte
	stream   bytes.Buffer
	zw       *zlib.Writer
	plain    int
	duration float32
	closed   bool
	file     *os.File // set by Create
}

// NewWriter returns a Writer that writes the replay to out on Close.
// An empty Meta.DateTime is set to the current time.
func NewWriter(out io.Writer, meta Meta) (*Writer, error) {
	if meta.DateTime == "" {
		meta.DateTime = time.Now().Format(DateTimeLayout)
	}
	w := &Writer{out: out, meta: meta}
	zw, err := zlib.NewWriterLevel(&w.stream, zlib.BestSpeed)
	if err != nil {
		return nil, fmt.Errorf("create packet stream: %w", err)
	}
	w.zw = zw
	return w, nil
}

// Create creates the file at path and returns a Writer that owns it.
// Close also closes the file.
func Create(path string, meta Meta) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, meta)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.file = f
	return w, nil
}

// WritePacket appends one packet. clock is the game time in seconds.
func (w *Writer) WritePacket(clock float32, typ PacketType, payload []byte) error {
	if w.closed {
		return fmt.Errorf("wowsr: writer closed")
	}
	var buf bytes.Buffer
	appendPacket(&buf, clock, typ, payload)
	n, err := w.zw.Write(buf.Bytes())
	if err != nil {
		return err
	}
	w.plain += n

	if clock > w.duration {
		w.duration = clock
	}
	return nil
}

// AddVehicle lists a participant in the metadata. A vehicle whose ID is
// already listed is ignored.
func (w *Writer) AddVehicle(v Vehicle) {
	for _, existing := range w.meta.Vehicles {
		if existing.ID == v.ID {
			return
		}
	}
	w.meta.Vehicles = append(w.meta.Vehicles, v)
}

// AddBlock appends a JSON block after the metadata. v is marshalled
// immediately.
func (w *Writer) AddBlock(v interface{}) error {
	if w.closed {
		return fmt.Errorf("wowsr: writer closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}
	w.blocks = append(w.blocks, b)
	return nil
}

// Close finishes the packet stream and writes the replay. The metadata
// duration is the largest packet clock, rounded up to whole seconds.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.flush()
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (w *Writer) flush() error {
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("close packet stream: %w", err)
	}
	w.meta.Duration = int(math.Ceil(float64(w.duration)))

	meta, err := json.Marshal(w.meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	blocks := append([][]byte{meta}, w.blocks...)

	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, Magic)
	_ = binary.Write(&buf, le, uint32(len(blocks)))
	for _, b := range blocks {
		_ = binary.Write(&buf, le, uint32(len(b)))
		buf.Write(b)
	}
	_ = binary.Write(&buf, le, uint32(w.plain))
	_ = binary.Write(&buf, le, uint32(w.stream.Len()))
	buf.Write(encryptStream(w.stream.Bytes()))

	if _, err := w.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write replay: %w", err)
	}
	return nil
}
