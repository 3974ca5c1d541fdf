package entitydef

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	cases := map[string]Version{
		"0,10,8,4157125":    {0, 10, 8, 4157125},
		"0, 10, 8, 4157125": {0, 10, 8, 4157125},
		"0.10.8.4157125":    {0, 10, 8, 4157125},
		"0.11.2":            {0, 11, 2, 0},
	}
	for in, want := range cases {
		got, err := ParseVersion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseVersionInvalid(t *testing.T) {
	for _, in := range []string{"", "0.10", "0.10.8.1.2", "a.b.c", "0.-1.2"} {
		_, err := ParseVersion(in)
		assert.Error(t, err, in)
	}
}

func TestVersionFormatting(t *testing.T) {
	v := Version{Major: 0, Minor: 10, Patch: 8, Build: 4157125}
	assert.Equal(t, "0.10.8.4157125", v.String())
	assert.Equal(t, "0_10_8", v.DirName())
}
