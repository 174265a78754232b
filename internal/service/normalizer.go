package service

import "strings"

// canonicalTeams maps lowercase provider spellings to canonical NBA
// franchise names. Providers disagree on city abbreviations and legacy
// names, so everything funnels through this table before lookup.
var canonicalTeams = map[string]string{
	"atlanta hawks":          "Atlanta Hawks",
	"boston celtics":         "Boston Celtics",
	"brooklyn nets":          "Brooklyn Nets",
	"charlotte hornets":      "Charlotte Hornets",
	"chicago bulls":          "Chicago Bulls",
	"cleveland cavaliers":    "Cleveland Cavaliers",
	"dallas mavericks":       "Dallas Mavericks",
	"denver nuggets":         "Denver Nuggets",
	"detroit pistons":        "Detroit Pistons",
	"golden state warriors":  "Golden State Warriors",
	"houston rockets":        "Houston Rockets",
	"indiana pacers":         "Indiana Pacers",
	"la clippers":            "Los Angeles Clippers",
	"los angeles clippers":   "Los Angeles Clippers",
	"los angeles lakers":     "Los Angeles Lakers",
	"memphis grizzlies":      "Memphis Grizzlies",
	"miami heat":             "Miami Heat",
	"milwaukee bucks":        "Milwaukee Bucks",
	"minnesota timberwolves": "Minnesota Timberwolves",
	"new orleans pelicans":   "New Orleans Pelicans",
	"new york knicks":        "New York Knicks",
	"oklahoma city thunder":  "Oklahoma City Thunder",
	"orlando magic":          "Orlando Magic",
	"philadelphia 76ers":     "Philadelphia 76ers",
	"phoenix suns":           "Phoenix Suns",
	"portland trail blazers": "Portland Trail Blazers",
	"sacramento kings":       "Sacramento Kings",
	"san antonio spurs":      "San Antonio Spurs",
	"toronto raptors":        "Toronto Raptors",
	"utah jazz":              "Utah Jazz",
	"washington wizards":     "Washington Wizards",
}

// NormalizeTeamName returns the canonical franchise name for a provider
// spelling. Unknown names pass through trimmed so new or historical
// teams still resolve consistently within one provider.
func NormalizeTeamName(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := canonicalTeams[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
