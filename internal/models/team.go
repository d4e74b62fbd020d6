package models

import "strings"

// Team represents an NFL franchise. ID is the abbreviation.
type Team struct {
	ID             string `json:"id" db:"id"`
	Abbreviation   string `json:"abbreviation" db:"abbreviation"`
	Name           string `json:"name" db:"name"` // Full display name, e.g. "Kansas City Chiefs"
	City           string `json:"city" db:"city"`
	Conference     string `json:"conference" db:"conference"`
	Division       string `json:"division" db:"division"`
	PrimaryColor   string `json:"primaryColor,omitempty" db:"primary_color"`
	SecondaryColor string `json:"secondaryColor,omitempty" db:"secondary_color"`

	// Placeholder marks a team created during refresh because the schedule
	// referenced an abbreviation the registry did not know.
	Placeholder bool `json:"placeholder,omitempty" db:"placeholder"`
}

// Nickname returns the display name without the city prefix ("Chiefs").
func (t Team) Nickname() string {
	if t.City != "" && strings.HasPrefix(t.Name, t.City+" ") {
		return strings.TrimPrefix(t.Name, t.City+" ")
	}
	return t.Name
}

// PlaceholderTeam builds a minimal entry for an unknown abbreviation.
// Conference is AFC when the abbreviation starts with A-M, NFC otherwise.
func PlaceholderTeam(abbreviation string) Team {
	abbr := strings.ToUpper(strings.TrimSpace(abbreviation))
	conference := "NFC"
	if abbr != "" && abbr[0] >= 'A' && abbr[0] <= 'M' {
		conference = "AFC"
	}

	return Team{
		ID:           abbr,
		Abbreviation: abbr,
		Name:         abbr,
		City:         abbr,
		Conference:   conference,
		Division:     "Unknown",
		Placeholder:  true,
	}
}
