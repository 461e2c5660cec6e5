// Package competition holds the fixed Top-5 + UEFA competition filter.
package competition

import "strings"

// League identifies a competition by name and country as reported upstream.
type League struct {
	Name    string
	Country string
}

var top5 = map[League]struct{}{
	{"Premier League", "England"}: {},
	{"La Liga", "Spain"}:          {},
	{"Serie A", "Italy"}:          {},
	{"Bundesliga", "Germany"}:     {},
	{"Ligue 1", "France"}:         {},
}

// UEFA club competitions carry country "World" upstream, so they match on
// name alone.
var uefaNames = map[string]struct{}{
	"UEFA Champions League":         {},
	"UEFA Europa League":            {},
	"UEFA Europa Conference League": {},
}

// IsTarget reports whether a competition is in scope for planning and
// signal emission.
func IsTarget(name, country string) bool {
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)

	if _, ok := top5[League{Name: name, Country: country}]; ok {
		return true
	}
	_, ok := uefaNames[name]
	return ok
}
