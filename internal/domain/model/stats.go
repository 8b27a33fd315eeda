package model

// PlayerGameStats holds one player's cumulative counting stats for a game.
// Every field only ever grows as events are applied.
type PlayerGameStats struct {
	PlayerID      string  `json:"player_id"`
	TeamID        string  `json:"team_id,omitempty"`
	Side          Side    `json:"side,omitempty"`
	Points        int     `json:"points"`
	FGM           int     `json:"fgm"`
	FGA           int     `json:"fga"`
	FG3M          int     `json:"fg3m"`
	FG3A          int     `json:"fg3a"`
	FTM           int     `json:"ftm"`
	FTA           int     `json:"fta"`
	OffRebounds   int     `json:"oreb"`
	DefRebounds   int     `json:"dreb"`
	Rebounds      int     `json:"reb"`
	Assists       int     `json:"ast"`
	Steals        int     `json:"stl"`
	Blocks        int     `json:"blk"`
	Turnovers     int     `json:"tov"`
	Fouls         int     `json:"pf"`
	Technicals    int     `json:"tech"`
	SecondsPlayed float64 `json:"seconds_played"`
}

// Minutes returns playing time in minutes.
func (p PlayerGameStats) Minutes() float64 { return p.SecondsPlayed / 60 }

// TeamGameStats holds a team's cumulative counting stats for a game.
type TeamGameStats struct {
	TeamID        string  `json:"team_id"`
	Side          Side    `json:"side"`
	Points        int     `json:"points"`
	FGM           int     `json:"fgm"`
	FGA           int     `json:"fga"`
	FG3M          int     `json:"fg3m"`
	FG3A          int     `json:"fg3a"`
	FTM           int     `json:"ftm"`
	FTA           int     `json:"fta"`
	OffRebounds   int     `json:"oreb"`
	DefRebounds   int     `json:"dreb"`
	Rebounds      int     `json:"reb"`
	TeamRebounds  int     `json:"team_reb"`
	Assists       int     `json:"ast"`
	Steals        int     `json:"stl"`
	Blocks        int     `json:"blk"`
	Turnovers     int     `json:"tov"`
	TeamTurnovers int     `json:"team_tov"`
	Fouls         int     `json:"pf"`
	Technicals    int     `json:"tech"`
	Timeouts      int     `json:"timeouts"`
	SecondsPlayed float64 `json:"seconds_played"`
}
