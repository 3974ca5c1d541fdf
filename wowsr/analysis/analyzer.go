// Package analysis turns a decoded replay into a match summary.
package analysis

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/wows-replay-go/internal/logging"
	"github.com/reallyoldfogie/wows-replay-go/schema"
	"github.com/reallyoldfogie/wows-replay-go/wowsr"
)

var log = logging.WithComponent("analysis")

// ErrNoOutcome is returned when the replay never reports the battle result,
// or the team of the recording player is unknown.
var ErrNoOutcome = errors.New("analysis: no battle outcome in replay")

// Entity and member names the analyzer reacts to.
const (
	entityAvatar  = "Avatar"
	entityVehicle = "Vehicle"

	propTeamID    = "teamId"
	propOwnShipID = "ownShipId"

	methodBattleEnd     = "onBattleEnd"
	methodDamageStat    = "receiveDamageStat"
	methodDamagesOnShip = "receiveDamagesOnShip"
	methodRibbon        = "onRibbon"
	methodAchievement   = "onAchievementEarned"
)

// Damage stat categories of receiveDamageStat.
const (
	damageCategoryDealt     = 0
	damageCategorySpotting  = 1
	damageCategoryPotential = 2
)

// Outcome is the result of the battle for the recording player.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeDraw
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "Win"
	case OutcomeLoss:
		return "Loss"
	case OutcomeDraw:
		return "Draw"
	default:
		return "Unknown"
	}
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Achievement is one achievement earned by the recording player.
type Achievement struct {
	ID    uint32  `json:"id"`
	Clock float32 `json:"clock"`
}

// Summary is the result of Analyze. It shares nothing with the replay.
type Summary struct {
	Outcome         Outcome            `json:"outcome"`
	DamageDealt     float64            `json:"damageDealt"`
	DamageTaken     float64            `json:"damageTaken"`
	DamageSpotting  float64            `json:"damageSpotting"`
	DamagePotential float64            `json:"damagePotential"`
	Ribbons         map[RibbonType]int `json:"ribbons"`
	Achievements    []Achievement      `json:"achievements"`
}

// RibbonCount returns the number of ribbons of every kind.
func (s *Summary) RibbonCount() int {
	n := 0
	for _, c := range s.Ribbons {
		n += c
	}
	return n
}

type pendingAchievement struct {
	avatarID int64
	Achievement
}

// state accumulates one pass over the packets.
type state struct {
	replay *wowsr.Replay

	avatarID   uint32
	haveAvatar bool

	team       int64
	haveTeam   bool
	vehicleID  int64
	winnerTeam int64
	battleEnd  bool

	damage       [3]float64
	takenBy      map[int64]float64
	ribbons      map[RibbonType]int
	achievements []pendingAchievement
}

// Analyze computes the summary of r in a single pass over its packets. It
// does not modify r and returns equal summaries for equal replays.
func Analyze(r *wowsr.Replay) (*Summary, error) {
	s := &state{
		replay:  r,
		takenBy: make(map[int64]float64),
		ribbons: make(map[RibbonType]int),
	}
	for i := range r.Packets {
		s.packet(&r.Packets[i])
	}
	return s.summary()
}

func (s *state) entityName(entityType uint16) string {
	spec, ok := s.replay.Spec(entityType)
	if !ok {
		return ""
	}
	return spec.Name
}

func (s *state) isAvatar(entityID uint32) bool {
	return s.haveAvatar && entityID == s.avatarID
}

func (s *state) packet(p *wowsr.Packet) {
	switch pl := p.Payload.(type) {
	case *wowsr.BasePlayerCreate:
		if !s.haveAvatar {
			s.avatarID = pl.EntityID
			s.haveAvatar = true
		}

	case *wowsr.EntityCreate:
		if s.isAvatar(pl.EntityID) {
			for name, v := range pl.State {
				s.avatarProperty(name, v)
			}
		}

	case *wowsr.EntityProperty:
		if s.isAvatar(pl.EntityID) {
			s.avatarProperty(pl.Name, pl.Value)
		}

	case *wowsr.EntityMethod:
		switch s.entityName(pl.EntityType) {
		case entityAvatar:
			if s.isAvatar(pl.EntityID) {
				s.avatarMethod(p.Clock, pl)
			}
		case entityVehicle:
			if pl.Name == methodDamagesOnShip {
				s.damagesOnShip(pl)
			}
		}
	}
}

func (s *state) avatarProperty(name string, v schema.Value) {
	switch name {
	case propTeamID:
		if team, ok := schema.AsInt64(v); ok {
			s.team = team
			s.haveTeam = true
		}
	case propOwnShipID:
		if id, ok := schema.AsInt64(v); ok {
			s.vehicleID = id
		}
	}
}

func (s *state) avatarMethod(clock float32, m *wowsr.EntityMethod) {
	switch m.Name {
	case methodBattleEnd:
		if winner, ok := schema.AsInt64(m.Arg(0)); ok {
			s.winnerTeam = winner
			s.battleEnd = true
		}

	case methodDamageStat:
		stats, ok := m.Arg(0).(schema.Array)
		if !ok {
			return
		}
		var totals [3]float64
		for _, entry := range stats {
			dict, ok := entry.(schema.Dict)
			if !ok {
				continue
			}
			category, ok1 := schema.AsInt64(dict["category"])
			damage, ok2 := schema.AsFloat64(dict["damage"])
			if !ok1 || !ok2 || category < 0 || category >= int64(len(totals)) {
				continue
			}
			totals[category] += damage
		}
		s.damage = totals

	case methodRibbon:
		if id, ok := schema.AsInt64(m.Arg(0)); ok {
			s.ribbons[RibbonType(id)]++
		}

	case methodAchievement:
		avatar, ok1 := schema.AsInt64(m.Arg(0))
		id, ok2 := schema.AsInt64(m.Arg(1))
		if ok1 && ok2 {
			s.achievements = append(s.achievements, pendingAchievement{
				avatarID:    avatar,
				Achievement: Achievement{ID: uint32(id), Clock: clock},
			})
		}
	}
}

func (s *state) damagesOnShip(m *wowsr.EntityMethod) {
	damages, ok := m.Arg(0).(schema.Array)
	if !ok {
		return
	}
	for _, entry := range damages {
		dict, ok := entry.(schema.Dict)
		if !ok {
			continue
		}
		if damage, ok := schema.AsFloat64(dict["damage"]); ok {
			s.takenBy[int64(m.EntityID)] += damage
		}
	}
}

func (s *state) summary() (*Summary, error) {
	if !s.battleEnd {
		return nil, ErrNoOutcome
	}
	if !s.haveTeam {
		return nil, fmt.Errorf("%w: team of the player is unknown", ErrNoOutcome)
	}

	sum := &Summary{
		DamageDealt:     s.damage[damageCategoryDealt],
		DamageSpotting:  s.damage[damageCategorySpotting],
		DamagePotential: s.damage[damageCategoryPotential],
		DamageTaken:     s.takenBy[s.vehicleID],
		Ribbons:         s.ribbons,
		Achievements:    []Achievement{},
	}
	switch {
	case s.winnerTeam == -1:
		sum.Outcome = OutcomeDraw
	case s.winnerTeam == s.team:
		sum.Outcome = OutcomeWin
	default:
		sum.Outcome = OutcomeLoss
	}
	for _, a := range s.achievements {
		if a.avatarID == int64(s.avatarID) {
			sum.Achievements = append(sum.Achievements, a.Achievement)
		}
	}

	log.WithFields(logrus.Fields{
		"replay":  s.replay.ID.String(),
		"outcome": sum.Outcome.String(),
		"damage":  sum.DamageDealt,
		"ribbons": sum.RibbonCount(),
	}).Debug("replay analyzed")
	return sum, nil
}
