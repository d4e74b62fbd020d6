package advice

// source is one named commentary outlet with its template pools.
// Templates use {home} and {away}.
type source struct {
	name            string
	content         []string
	recommendations []string
}

var roster = []source{
	{
		name: "ESPN Analytics",
		content: []string{
			"FPI gives {home} the better projected efficiency margin at home, but {away} has closed the gap over the last three weeks.",
			"{away} has been one of the better third-down offenses lately, which is exactly where {home} has struggled defensively.",
			"Our model sees {home} vs {away} as one of the tighter matchups of the week once rest and travel are factored in.",
		},
		recommendations: []string{
			"{home} -3 (spread)",
			"{away} +3.5 (spread)",
			"Under the game total",
		},
	},
	{
		name: "The Athletic",
		content: []string{
			"Film study suggests {home} will lean on the run game early to keep the {away} pass rush honest.",
			"The {away} secondary has been vulnerable to explosive plays, and {home} has the receivers to test it.",
			"Scouts expect {home} to move its protection toward the {away} edge rushers, leaving one-on-ones on the outside.",
		},
		recommendations: []string{
			"{home} moneyline",
			"{away} moneyline",
			"{home} team total over",
		},
	},
	{
		name: "Action Network",
		content: []string{
			"Sharp money has hit {away} early in the week while the public sides with {home}.",
			"Reverse line movement on {home} vs {away}: the number moved toward {home} despite most tickets on {away}.",
			"Bettors have split on {away} at {home}, and books are holding at the key number.",
		},
		recommendations: []string{
			"{away} +3 (spread)",
			"Over the game total",
			"{home} moneyline and the under",
		},
	},
	{
		name: "Pro Football Focus",
		content: []string{
			"{home} grades out with a clear edge in pass blocking, while {away} holds the advantage in coverage.",
			"The {away} offensive line ranks below average in pressure rate allowed, a problem against the {home} front.",
			"PFF grades favor the {home} skill players, though {away} has the higher-graded quarterback this season.",
		},
		recommendations: []string{
			"{home} -2.5 (spread)",
			"{away} team total under",
			"Under the game total",
		},
	},
	{
		name: "CBS Sports",
		content: []string{
			"Our experts are split on {away} at {home}, with a slight majority backing the home side.",
			"{home} has covered in most recent home games against {away}, and the panel expects that trend to hold.",
			"The {away} defense travels well, which keeps this one closer than the {home} record suggests.",
		},
		recommendations: []string{
			"{home} moneyline",
			"{away} +6.5 (spread)",
			"{away} moneyline and the over",
		},
	},
	{
		name: "Vegas Insider",
		content: []string{
			"Oddsmakers opened {home} as a short favorite over {away}, and the total has ticked up since.",
			"Books report balanced action on {away} at {home}, with the moneyline holding steady.",
			"Futures markets rate {home} above {away}, but this line is tighter than those prices imply.",
		},
		recommendations: []string{
			"Over the game total",
			"{home} team total over",
			"{away} +1.5 (spread) and the under",
		},
	},
}
