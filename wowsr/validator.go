package wowsr

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/wows-replay-go/entitydef"
	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
)

// Report describes a replay that passed validation.
type Report struct {
	Version  entitydef.Version
	Duration int
	Bytes    int64
	Packets  int
	// Types counts packets per type word.
	Types    map[PacketType]int
	Warnings []string
}

// ValidateFile checks that path is a well-formed replay: the container
// decrypts and inflates, the metadata parses and the packet stream frames
// cleanly. Suspicious but valid content is logged as a warning. No entity
// definitions are needed.
func ValidateFile(path string) error {
	_, err := Inspect(path)
	return err
}

// Inspect validates path like ValidateFile and returns what it found.
func Inspect(path string) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("replay file not found: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("replay file is empty (0 bytes)")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := ReadContainer(f)
	if err != nil {
		return nil, err
	}

	packets, err := splitPackets(c.Stream)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Duration: c.Meta.Duration,
		Bytes:    info.Size(),
		Packets:  len(packets),
		Types:    make(map[PacketType]int),
	}
	for _, p := range packets {
		rep.Types[p.Type]++
	}

	vlog := log.WithField("path", path)
	warn := func(entry *logrus.Entry, msg string) {
		rep.Warnings = append(rep.Warnings, msg)
		entry.Warn(msg)
	}

	meta := c.Meta
	version, verr := meta.GameVersion()
	if verr != nil {
		warn(vlog.WithError(verr), "unparsable client version")
	}
	rep.Version = version
	if meta.PlayerName == "" {
		warn(vlog, "metadata has no player name")
	}
	if meta.Duration == 0 {
		warn(vlog, "replay duration is 0 s")
	}
	if len(meta.Vehicles) == 0 {
		warn(vlog, "metadata lists no vehicles")
	}
	if len(packets) == 0 {
		warn(vlog, "packet stream is empty")
	} else if packets[0].Type != TypeBasePlayerCreate && packets[0].Type != TypeVersion {
		warn(vlog.WithField("type", packets[0].Type.String()), "unexpected first packet")
	}

	vlog.WithFields(logrus.Fields{
		"version":  version.String(),
		"packets":  len(packets),
		"duration": meta.Duration,
		"bytes":    info.Size(),
	}).Info("validated replay")
	return rep, nil
}

// ValidateFileQuiet is ValidateFile without log output, for callers that
// report the result themselves.
func ValidateFileQuiet(path string) error {
	restore := logging.Silence()
	defer restore()
	return ValidateFile(path)
}
