// Package replay loads recorded games from files and runs them through
// the game service as one batch.
package replay

import (
	"time"

	"github.com/okian/hoopstate/internal/domain/model"
)

// Format names an input file layout.
type Format string

// Input formats. FormatAuto picks one from the file extension.
const (
	FormatAuto   Format = ""
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatCSV    Format = "csv"
)

// Config holds configuration for a replay run.
type Config struct {
	Inputs     []string      // Files to load
	Format     Format        // Input format, FormatAuto by extension
	ReportFile string        // Batch report destination, stdout when empty
	ResultsDir string        // Per-game result files, skipped when empty
	Timeout    time.Duration // Upper bound for the whole batch
}

// Header describes the game a CSV play file belongs to. CSV files carry
// their headers in a sidecar JSON file holding one header or an array.
type Header struct {
	GameID   string         `json:"game_id"`
	Home     model.Team     `json:"home"`
	Away     model.Team     `json:"away"`
	Starters model.Starters `json:"starters,omitempty"`
}
