// Package recorder feeds packets into a wowsr.Writer from several goroutines.
// Clocks are taken relative to the moment the recorder was created unless
// the caller passes one explicitly.
package recorder

import (
	"sync"
	"time"

	"github.com/reallyoldfogie/wows-replay-go/entitydef"
	"github.com/reallyoldfogie/wows-replay-go/schema"
	"github.com/reallyoldfogie/wows-replay-go/wowsr"
)

// Recorder serializes writes to an underlying wowsr.Writer.
type Recorder struct {
	w      *wowsr.Writer
	start  time.Time
	now    func() time.Time
	mu     sync.Mutex
	closed bool
}

// New returns a Recorder writing to w. The recorder clock starts now.
func New(w *wowsr.Writer) *Recorder {
	return &Recorder{w: w, start: time.Now(), now: time.Now}
}

// NewFile creates the replay file at path and records into it.
func NewFile(path string, meta wowsr.Meta) (*Recorder, error) {
	w, err := wowsr.Create(path, meta)
	if err != nil {
		return nil, err
	}
	return New(w), nil
}

func (r *Recorder) clock() float32 {
	return float32(r.now().Sub(r.start).Seconds())
}

// RecordNow records a packet stamped with the time since start.
func (r *Recorder) RecordNow(typ wowsr.PacketType, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.w.WritePacket(r.clock(), typ, payload)
}

// RecordAt records a packet with an explicit clock in seconds.
func (r *Recorder) RecordAt(clock float32, typ wowsr.PacketType, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	return r.w.WritePacket(clock, typ, payload)
}

// CallAt records a call of the client method name of spec on entityID.
func (r *Recorder) CallAt(clock float32, spec *entitydef.EntitySpec, entityID uint32, name string, args ...schema.Value) error {
	payload, err := wowsr.MethodCallPayload(spec, entityID, name, args...)
	if err != nil {
		return err
	}
	return r.RecordAt(clock, wowsr.TypeEntityMethod, payload)
}

// SetAt records an update of the client property name of spec on entityID.
func (r *Recorder) SetAt(clock float32, spec *entitydef.EntitySpec, entityID uint32, name string, value schema.Value) error {
	payload, err := wowsr.PropertyUpdatePayload(spec, entityID, name, value)
	if err != nil {
		return err
	}
	return r.RecordAt(clock, wowsr.TypeEntityProperty, payload)
}

// AddVehicle lists a participant in the metadata.
// No-op after Close.
func (r *Recorder) AddVehicle(v wowsr.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.w.AddVehicle(v)
}

// Close writes the replay.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.w.Close()
}
