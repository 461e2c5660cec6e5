package competition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTarget(t *testing.T) {
	cases := []struct {
		name    string
		country string
		want    bool
	}{
		{"Premier League", "England", true},
		{"La Liga", "Spain", true},
		{"Serie A", "Italy", true},
		{"Bundesliga", "Germany", true},
		{"Ligue 1", "France", true},
		{"UEFA Champions League", "World", true},
		{"UEFA Europa League", "World", true},
		{"UEFA Europa Conference League", "World", true},
		// UEFA competitions match on name regardless of country.
		{"UEFA Champions League", "", true},
		// Top-5 names need the matching country.
		{"Premier League", "Russia", false},
		{"Serie A", "Brazil", false},
		{"Eredivisie", "Netherlands", false},
		{"", "", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, IsTarget(tc.name, tc.country), "%s / %s", tc.name, tc.country)
	}
}

func TestIsTargetTrimsWhitespace(t *testing.T) {
	assert.True(t, IsTarget("  Premier League ", " England "))
}
