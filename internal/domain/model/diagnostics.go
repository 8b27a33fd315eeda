package model

// Inconsistency reasons recorded by the lineup tracker.
const (
	InconsistencyNotOnCourt      = "sub_out_not_on_court"
	InconsistencySizeViolation   = "lineup_size_violation"
	InconsistencyUnknownTeam     = "substitution_team_unresolved"
	InconsistencyUnpairedSub     = "unpaired_substitution"
	InconsistencyInsufficient    = "insufficient_starters"
	InconsistencyBadStartingFive = "invalid_starting_lineup"
	InconsistencyUninitialized   = "lineup_uninitialized"
)

// LineupInconsistency is one rejected or partially applied lineup change.
type LineupInconsistency struct {
	EventNum int    `json:"event_num"`
	TeamID   string `json:"team_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	Reason   string `json:"reason"`
}

// Diagnostics summarises data quality for one processed game.
type Diagnostics struct {
	TotalEvents           int                   `json:"total_events"`
	ParsedEvents          int                   `json:"parsed_events"`
	UnparsedEvents        int                   `json:"unparsed_events"`
	CoveragePct           float64               `json:"coverage_pct"`
	LineupInconsistencies int                   `json:"lineup_inconsistencies"`
	Inconsistencies       []LineupInconsistency `json:"inconsistencies,omitempty"`
	ScoreAnomalies        int                   `json:"score_anomalies"`
	ClockAnomalies        int                   `json:"clock_anomalies"`
	Renumbered            bool                  `json:"renumbered,omitempty"`
	UnparsedSamples       []string              `json:"unparsed_samples,omitempty"`
	IntegrityError        string                `json:"integrity_error,omitempty"`
}

// UnparsedPct returns the share of unparsed records in percent.
func (d *Diagnostics) UnparsedPct() float64 {
	if d.TotalEvents == 0 {
		return 0
	}
	return 100 * float64(d.UnparsedEvents) / float64(d.TotalEvents)
}

// InconsistencyPct returns lineup inconsistencies per hundred records.
func (d *Diagnostics) InconsistencyPct() float64 {
	if d.TotalEvents == 0 {
		return 0
	}
	return 100 * float64(d.LineupInconsistencies) / float64(d.TotalEvents)
}
