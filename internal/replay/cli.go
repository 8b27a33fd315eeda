package replay

import "os"

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`hoopstate replay
================

Processes recorded play-by-play files as one batch and prints a report.

Usage:
  replay [options] FILE...

Files:
  *.json             one game object or an array of games
  *.ndjson, *.jsonl  one game per line
  *.csv              plays with columns game_id,event_num,period,clock,team,
                     score_home,score_away,text; teams and starters come from
                     the sidecar header (plays.csv -> plays.json)

Options:
  -format string
        Force the input format: json, ndjson or csv
  -report string
        Write the batch report here instead of stdout
  -results string
        Directory for one result file per game
  -timeout duration
        Stop the batch after this long (default: no limit)
  -help
        Show this help message

Processing settings (workers, thresholds, archive, redis) come from the
same HOOP_ environment and HOOP_CONFIG file as the server.

Examples:
  replay games/2024-01-05.ndjson
  replay -results out/ -report out/report.json plays.csv
  HOOP_ARCHIVE_DRIVER=sqlite HOOP_ARCHIVE_DSN=games.db replay season.json
`)
}
