package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
	"github.com/reallyoldfogie/wows-replay-go/wowsr"
)

type packetSpec struct {
	clock float32
	typ   wowsr.PacketType
	data  []byte
}

type packetFlags []packetSpec

func (p *packetFlags) String() string { return fmt.Sprintf("%d packets", len(*p)) }

// Format: clock:type:hexpayload  e.g., 12.5:0x08:640000000000000001000000
func (p *packetFlags) Set(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return fmt.Errorf("invalid --packet, want clock:type:hexpayload")
	}
	clock, err := strconv.ParseFloat(parts[0], 32)
	if err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	typ, err := parseUint(parts[1])
	if err != nil {
		return fmt.Errorf("type: %w", err)
	}
	payload, err := hex.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("hexpayload: %w", err)
	}
	*p = append(*p, packetSpec{clock: float32(clock), typ: wowsr.PacketType(typ), data: payload})
	return nil
}

func parseUint(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 32)
	}
	return strconv.ParseUint(s, 10, 32)
}

func main() {
	var out, version, player, vehicle, mapName string
	var pkts packetFlags

	flag.StringVar(&out, "out", "example.wowsreplay", "Output .wowsreplay path")
	flag.StringVar(&version, "version", "0,10,8,4157125", "Client version written to the metadata")
	flag.StringVar(&player, "player", "player", "Player name in metadata")
	flag.StringVar(&vehicle, "vehicle", "", "Player vehicle in metadata")
	flag.StringVar(&mapName, "map", "", "Map display name in metadata")
	flag.Var(&pkts, "packet", "Packet spec clock:type:hexpayload (repeatable)")
	flag.Parse()

	log := logging.WithComponent("wowsr-create")

	meta := wowsr.Meta{
		ClientVersionFromExe: version,
		PlayerName:           player,
		PlayerVehicle:        vehicle,
		MapDisplayName:       mapName,
	}
	if err := create(out, meta, pkts); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%d packets)\n", out, len(pkts))
}

// create writes the replay and returns once it is closed and on disk.
func create(out string, meta wowsr.Meta, pkts packetFlags) error {
	w, err := wowsr.Create(out, meta)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}

	// an empty packet list still produces a valid replay
	for _, sp := range pkts {
		if err := w.WritePacket(sp.clock, sp.typ, sp.data); err != nil {
			_ = w.Close()
			return fmt.Errorf("write packet: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
