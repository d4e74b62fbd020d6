package teams

import "nfl_dashboard/aggregator/internal/models"

// Seed teams use ESPN abbreviations as identifiers.
var seed = []models.Team{
	// AFC East
	{ID: "BUF", Name: "Buffalo Bills", City: "Buffalo", Conference: "AFC", Division: "AFC East", PrimaryColor: "#00338D", SecondaryColor: "#C60C30"},
	{ID: "MIA", Name: "Miami Dolphins", City: "Miami", Conference: "AFC", Division: "AFC East", PrimaryColor: "#008E97", SecondaryColor: "#FC4C02"},
	{ID: "NE", Name: "New England Patriots", City: "New England", Conference: "AFC", Division: "AFC East", PrimaryColor: "#002244", SecondaryColor: "#C60C30"},
	{ID: "NYJ", Name: "New York Jets", City: "New York", Conference: "AFC", Division: "AFC East", PrimaryColor: "#125740", SecondaryColor: "#FFFFFF"},

	// AFC North
	{ID: "BAL", Name: "Baltimore Ravens", City: "Baltimore", Conference: "AFC", Division: "AFC North", PrimaryColor: "#241773", SecondaryColor: "#9E7C0C"},
	{ID: "CIN", Name: "Cincinnati Bengals", City: "Cincinnati", Conference: "AFC", Division: "AFC North", PrimaryColor: "#FB4F14", SecondaryColor: "#000000"},
	{ID: "CLE", Name: "Cleveland Browns", City: "Cleveland", Conference: "AFC", Division: "AFC North", PrimaryColor: "#311D00", SecondaryColor: "#FF3C00"},
	{ID: "PIT", Name: "Pittsburgh Steelers", City: "Pittsburgh", Conference: "AFC", Division: "AFC North", PrimaryColor: "#FFB612", SecondaryColor: "#101820"},

	// AFC South
	{ID: "HOU", Name: "Houston Texans", City: "Houston", Conference: "AFC", Division: "AFC South", PrimaryColor: "#03202F", SecondaryColor: "#A71930"},
	{ID: "IND", Name: "Indianapolis Colts", City: "Indianapolis", Conference: "AFC", Division: "AFC South", PrimaryColor: "#002C5F", SecondaryColor: "#A2AAAD"},
	{ID: "JAX", Name: "Jacksonville Jaguars", City: "Jacksonville", Conference: "AFC", Division: "AFC South", PrimaryColor: "#006778", SecondaryColor: "#D7A22A"},
	{ID: "TEN", Name: "Tennessee Titans", City: "Tennessee", Conference: "AFC", Division: "AFC South", PrimaryColor: "#0C2340", SecondaryColor: "#4B92DB"},

	// AFC West
	{ID: "DEN", Name: "Denver Broncos", City: "Denver", Conference: "AFC", Division: "AFC West", PrimaryColor: "#FB4F14", SecondaryColor: "#002244"},
	{ID: "KC", Name: "Kansas City Chiefs", City: "Kansas City", Conference: "AFC", Division: "AFC West", PrimaryColor: "#E31837", SecondaryColor: "#FFB81C"},
	{ID: "LV", Name: "Las Vegas Raiders", City: "Las Vegas", Conference: "AFC", Division: "AFC West", PrimaryColor: "#000000", SecondaryColor: "#A5ACAF"},
	{ID: "LAC", Name: "Los Angeles Chargers", City: "Los Angeles", Conference: "AFC", Division: "AFC West", PrimaryColor: "#0080C6", SecondaryColor: "#FFC20E"},

	// NFC East
	{ID: "DAL", Name: "Dallas Cowboys", City: "Dallas", Conference: "NFC", Division: "NFC East", PrimaryColor: "#041E42", SecondaryColor: "#869397"},
	{ID: "NYG", Name: "New York Giants", City: "New York", Conference: "NFC", Division: "NFC East", PrimaryColor: "#0B2265", SecondaryColor: "#A71930"},
	{ID: "PHI", Name: "Philadelphia Eagles", City: "Philadelphia", Conference: "NFC", Division: "NFC East", PrimaryColor: "#004C54", SecondaryColor: "#A5ACAF"},
	{ID: "WSH", Name: "Washington Commanders", City: "Washington", Conference: "NFC", Division: "NFC East", PrimaryColor: "#5A1414", SecondaryColor: "#FFB612"},

	// NFC North
	{ID: "CHI", Name: "Chicago Bears", City: "Chicago", Conference: "NFC", Division: "NFC North", PrimaryColor: "#0B162A", SecondaryColor: "#C83803"},
	{ID: "DET", Name: "Detroit Lions", City: "Detroit", Conference: "NFC", Division: "NFC North", PrimaryColor: "#0076B6", SecondaryColor: "#B0B7BC"},
	{ID: "GB", Name: "Green Bay Packers", City: "Green Bay", Conference: "NFC", Division: "NFC North", PrimaryColor: "#203731", SecondaryColor: "#FFB612"},
	{ID: "MIN", Name: "Minnesota Vikings", City: "Minnesota", Conference: "NFC", Division: "NFC North", PrimaryColor: "#4F2683", SecondaryColor: "#FFC62F"},

	// NFC South
	{ID: "ATL", Name: "Atlanta Falcons", City: "Atlanta", Conference: "NFC", Division: "NFC South", PrimaryColor: "#A71930", SecondaryColor: "#000000"},
	{ID: "CAR", Name: "Carolina Panthers", City: "Carolina", Conference: "NFC", Division: "NFC South", PrimaryColor: "#0085CA", SecondaryColor: "#101820"},
	{ID: "NO", Name: "New Orleans Saints", City: "New Orleans", Conference: "NFC", Division: "NFC South", PrimaryColor: "#D3BC8D", SecondaryColor: "#101820"},
	{ID: "TB", Name: "Tampa Bay Buccaneers", City: "Tampa Bay", Conference: "NFC", Division: "NFC South", PrimaryColor: "#D50A0A", SecondaryColor: "#FF7900"},

	// NFC West
	{ID: "ARI", Name: "Arizona Cardinals", City: "Arizona", Conference: "NFC", Division: "NFC West", PrimaryColor: "#97233F", SecondaryColor: "#000000"},
	{ID: "LAR", Name: "Los Angeles Rams", City: "Los Angeles", Conference: "NFC", Division: "NFC West", PrimaryColor: "#003594", SecondaryColor: "#FFA300"},
	{ID: "SF", Name: "San Francisco 49ers", City: "San Francisco", Conference: "NFC", Division: "NFC West", PrimaryColor: "#AA0000", SecondaryColor: "#B3995D"},
	{ID: "SEA", Name: "Seattle Seahawks", City: "Seattle", Conference: "NFC", Division: "NFC West", PrimaryColor: "#002244", SecondaryColor: "#69BE28"},
}

// aliases maps alternate abbreviations, nicknames and historical names to an id.
// Full display names, cities unique to one team, and nicknames are derived from seed.
var aliases = map[string]string{
	"WAS":                      "WSH",
	"washington football team": "WSH",
	"washington redskins":      "WSH",
	"JAC":                      "JAX",
	"jags":                     "JAX",
	"KCC":                      "KC",
	"LVR":                      "LV",
	"OAK":                      "LV",
	"oakland raiders":          "LV",
	"GBP":                      "GB",
	"NOS":                      "NO",
	"NEP":                      "NE",
	"pats":                     "NE",
	"SFO":                      "SF",
	"niners":                   "SF",
	"TBB":                      "TB",
	"bucs":                     "TB",
	"STL":                      "LAR",
	"LA":                       "LAR",
	"st. louis rams":           "LAR",
	"SD":                       "LAC",
	"san diego chargers":       "LAC",
	"philly":                   "PHI",
	"indy":                     "IND",
	"cards":                    "ARI",
}
