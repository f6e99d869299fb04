package icehockey_nhl

// NHL team abbreviation mappings, keyed by the odds feed's team names
var nhlTeamAbbreviations = map[string]string{
	"Anaheim Ducks":         "ANA",
	"Boston Bruins":         "BOS",
	"Buffalo Sabres":        "BUF",
	"Calgary Flames":        "CGY",
	"Carolina Hurricanes":   "CAR",
	"Chicago Blackhawks":    "CHI",
	"Colorado Avalanche":    "COL",
	"Columbus Blue Jackets": "CBJ",
	"Dallas Stars":          "DAL",
	"Detroit Red Wings":     "DET",
	"Edmonton Oilers":       "EDM",
	"Florida Panthers":      "FLA",
	"Los Angeles Kings":     "LAK",
	"Minnesota Wild":        "MIN",
	"Montréal Canadiens":    "MTL",
	"Montreal Canadiens":    "MTL",
	"Nashville Predators":   "NSH",
	"New Jersey Devils":     "NJD",
	"New York Islanders":    "NYI",
	"New York Rangers":      "NYR",
	"Ottawa Senators":       "OTT",
	"Philadelphia Flyers":   "PHI",
	"Pittsburgh Penguins":   "PIT",
	"San Jose Sharks":       "SJS",
	"Seattle Kraken":        "SEA",
	"St Louis Blues":        "STL",
	"St. Louis Blues":       "STL",
	"Tampa Bay Lightning":   "TBL",
	"Toronto Maple Leafs":   "TOR",
	"Utah Hockey Club":      "UTA",
	"Utah Mammoth":          "UTA",
	"Vancouver Canucks":     "VAN",
	"Vegas Golden Knights":  "VGK",
	"Washington Capitals":   "WSH",
	"Winnipeg Jets":         "WPG",
}

// GetTeamAbbreviation returns the abbreviation for a full team name
func GetTeamAbbreviation(fullName string) string {
	if abbr, ok := nhlTeamAbbreviations[fullName]; ok {
		return abbr
	}
	return fullName // Return original if not found
}
