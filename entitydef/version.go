package entitydef

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a game client version, e.g. 0.10.8.4157125.
type Version struct {
	Major, Minor, Patch, Build int
}

// ParseVersion parses "0, 10, 8, 4157125", "0.10.8.4157125" or "0.10.8".
// Missing trailing components are zero.
func ParseVersion(s string) (Version, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '.'
	})
	if len(fields) < 3 || len(fields) > 4 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	var parts [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2], Build: parts[3]}, nil
}

// String renders the version as "major.minor.patch.build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// DirName is the directory holding the definitions of this version below a
// definitions root. The build number is not part of it.
func (v Version) DirName() string {
	return fmt.Sprintf("%d_%d_%d", v.Major, v.Minor, v.Patch)
}
