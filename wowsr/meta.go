package wowsr

import (
	"fmt"

	"github.com/reallyoldfogie/wows-replay-go/entitydef"
)

// DateTimeLayout is the layout of Meta.DateTime.
const DateTimeLayout = "02.01.2006 15:04:05"

// Meta is the JSON metadata block stored in front of the packet stream.
type Meta struct {
	ClientVersionFromExe string    `json:"clientVersionFromExe"`
	DateTime             string    `json:"dateTime"`
	Name                 string    `json:"name,omitempty"`
	MapDisplayName       string    `json:"mapDisplayName,omitempty"`
	MapName              string    `json:"mapName,omitempty"`
	PlayerName           string    `json:"playerName"`
	PlayerVehicle        string    `json:"playerVehicle,omitempty"`
	PlayerID             int64     `json:"playerID,omitempty"`
	GameMode             int       `json:"gameMode,omitempty"`
	MatchGroup           string    `json:"matchGroup,omitempty"`
	Scenario             string    `json:"scenario,omitempty"`
	Duration             int       `json:"duration"` // seconds
	Vehicles             []Vehicle `json:"vehicles,omitempty"`
}

// Vehicle is one participant listed in the metadata.
type Vehicle struct {
	ShipID   int64  `json:"shipId"`
	Relation int    `json:"relation"` // 0 self, 1 ally, 2 enemy
	ID       int64  `json:"id"`
	Name     string `json:"name"`
}

// GameVersion parses ClientVersionFromExe.
func (m *Meta) GameVersion() (entitydef.Version, error) {
	v, err := entitydef.ParseVersion(m.ClientVersionFromExe)
	if err != nil {
		return entitydef.Version{}, fmt.Errorf("%w: %v", ErrUnknownVersion, err)
	}
	return v, nil
}
