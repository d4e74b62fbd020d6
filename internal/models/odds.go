package models

import "time"

// StandardPrice is the default vig on spread and total lines
const StandardPrice = -110

// Odds holds the betting lines for one game.
// Nil fields mean the value has not been fetched, not zero.
type Odds struct {
	GameID        string   `json:"gameId" db:"game_id"`
	HomeSpread    *float64 `json:"homeSpread,omitempty" db:"home_spread"`
	AwaySpread    *float64 `json:"awaySpread,omitempty" db:"away_spread"`
	SpreadPrice   *int     `json:"spreadPrice,omitempty" db:"spread_price"`
	TotalPoints   *float64 `json:"totalPoints,omitempty" db:"total_points"`
	TotalPrice    *int     `json:"totalPrice,omitempty" db:"total_price"`
	HomeMoneyline *int     `json:"homeMoneyline,omitempty" db:"home_moneyline"`
	AwayMoneyline *int     `json:"awayMoneyline,omitempty" db:"away_moneyline"`

	Bookmaker string    `json:"bookmaker" db:"bookmaker"`
	Synthetic bool      `json:"synthetic" db:"synthetic"`
	FetchedAt time.Time `json:"fetchedAt" db:"fetched_at"`
}

// HasLines reports whether any market value is present
func (o Odds) HasLines() bool {
	return o.HomeSpread != nil || o.TotalPoints != nil || o.HomeMoneyline != nil || o.AwayMoneyline != nil
}

// FavoriteIsHome reports whether the home side is favored by spread,
// falling back to moneyline when no spread is present.
func (o Odds) FavoriteIsHome() (home bool, known bool) {
	if o.HomeSpread != nil && *o.HomeSpread != 0 {
		return *o.HomeSpread < 0, true
	}
	if o.HomeMoneyline != nil && o.AwayMoneyline != nil && *o.HomeMoneyline != *o.AwayMoneyline {
		return *o.HomeMoneyline < *o.AwayMoneyline, true
	}
	return false, false
}

// Clone returns a copy that shares no pointers with o
func (o Odds) Clone() Odds {
	o.HomeSpread = cloneFloat(o.HomeSpread)
	o.AwaySpread = cloneFloat(o.AwaySpread)
	o.SpreadPrice = cloneInt(o.SpreadPrice)
	o.TotalPoints = cloneFloat(o.TotalPoints)
	o.TotalPrice = cloneInt(o.TotalPrice)
	o.HomeMoneyline = cloneInt(o.HomeMoneyline)
	o.AwayMoneyline = cloneInt(o.AwayMoneyline)
	return o
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(*v)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return Int(*v)
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }
