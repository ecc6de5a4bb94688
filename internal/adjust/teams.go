package adjust

import "strings"

// teamCodes canonicalizes the full team names the feeds use to tricodes.
var teamCodes = map[string]string{
	"atlanta hawks":          "ATL",
	"boston celtics":         "BOS",
	"brooklyn nets":          "BKN",
	"charlotte hornets":      "CHA",
	"chicago bulls":          "CHI",
	"cleveland cavaliers":    "CLE",
	"dallas mavericks":       "DAL",
	"denver nuggets":         "DEN",
	"detroit pistons":        "DET",
	"golden state warriors":  "GSW",
	"houston rockets":        "HOU",
	"indiana pacers":         "IND",
	"la clippers":            "LAC",
	"los angeles clippers":   "LAC",
	"los angeles lakers":     "LAL",
	"memphis grizzlies":      "MEM",
	"miami heat":             "MIA",
	"milwaukee bucks":        "MIL",
	"minnesota timberwolves": "MIN",
	"new orleans pelicans":   "NOP",
	"new york knicks":        "NYK",
	"oklahoma city thunder":  "OKC",
	"orlando magic":          "ORL",
	"philadelphia 76ers":     "PHI",
	"phoenix suns":           "PHX",
	"portland trail blazers": "POR",
	"sacramento kings":       "SAC",
	"san antonio spurs":      "SAS",
	"toronto raptors":        "TOR",
	"utah jazz":              "UTA",
	"washington wizards":     "WAS",
}

// TeamCode canonicalizes a team name to its tricode. Already-canonical codes
// pass through; unknown names return "" so callers can skip them.
func TeamCode(name string) string {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 3 && trimmed == strings.ToUpper(trimmed) {
		return trimmed
	}
	if code, ok := teamCodes[strings.ToLower(trimmed)]; ok {
		return code
	}
	return ""
}

// SameTeam reports whether two team names resolve to the same franchise.
func SameTeam(a, b string) bool {
	ca, cb := TeamCode(a), TeamCode(b)
	return ca != "" && ca == cb
}
