package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// RibbonType is the id sent with onRibbon.
type RibbonType int

const (
	RibbonMainCaliber RibbonType = iota
	RibbonTorpedo
	RibbonBomb
	RibbonPlane
	RibbonCrit
	RibbonFrag
	RibbonBurn
	RibbonFlood
	RibbonCitadel
	RibbonBaseDefense
	RibbonBaseCapture
	RibbonBaseCaptureAssist
	RibbonSuppressed
	RibbonSecondaryCaliber
	RibbonMainCaliberOverPenetration
	RibbonMainCaliberPenetration
	RibbonMainCaliberNoPenetration
	RibbonMainCaliberRicochet
	RibbonBuildingKill
	RibbonDetected
	RibbonBombOverPenetration
	RibbonBombPenetration
	RibbonBombNoPenetration
	RibbonBombRicochet
	RibbonRocket
	RibbonRocketPenetration
	RibbonRocketNoPenetration
)

var ribbonNames = [...]string{
	RibbonMainCaliber:                "MainCaliber",
	RibbonTorpedo:                    "Torpedo",
	RibbonBomb:                       "Bomb",
	RibbonPlane:                      "Plane",
	RibbonCrit:                       "Crit",
	RibbonFrag:                       "Frag",
	RibbonBurn:                       "Burn",
	RibbonFlood:                      "Flood",
	RibbonCitadel:                    "Citadel",
	RibbonBaseDefense:                "BaseDefense",
	RibbonBaseCapture:                "BaseCapture",
	RibbonBaseCaptureAssist:          "BaseCaptureAssist",
	RibbonSuppressed:                 "Suppressed",
	RibbonSecondaryCaliber:           "SecondaryCaliber",
	RibbonMainCaliberOverPenetration: "MainCaliberOverPenetration",
	RibbonMainCaliberPenetration:     "MainCaliberPenetration",
	RibbonMainCaliberNoPenetration:   "MainCaliberNoPenetration",
	RibbonMainCaliberRicochet:        "MainCaliberRicochet",
	RibbonBuildingKill:               "BuildingKill",
	RibbonDetected:                   "Detected",
	RibbonBombOverPenetration:        "BombOverPenetration",
	RibbonBombPenetration:            "BombPenetration",
	RibbonBombNoPenetration:          "BombNoPenetration",
	RibbonBombRicochet:               "BombRicochet",
	RibbonRocket:                     "Rocket",
	RibbonRocketPenetration:          "RocketPenetration",
	RibbonRocketNoPenetration:        "RocketNoPenetration",
}

func (r RibbonType) String() string {
	if r >= 0 && int(r) < len(ribbonNames) {
		return ribbonNames[r]
	}
	return fmt.Sprintf("Ribbon(%d)", int(r))
}

// MarshalText makes ribbon counts render as {"Frag": 2} in JSON.
func (r RibbonType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (r *RibbonType) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range ribbonNames {
		if name == s {
			*r = RibbonType(i)
			return nil
		}
	}
	if strings.HasPrefix(s, "Ribbon(") && strings.HasSuffix(s, ")") {
		n, err := strconv.Atoi(s[len("Ribbon(") : len(s)-1])
		if err == nil {
			*r = RibbonType(n)
			return nil
		}
	}
	return fmt.Errorf("unknown ribbon %q", s)
}
