package archive

// migration is one versioned schema step.
type migration struct {
	version string
	stmts   []string
}

// migrations run in order; applied versions are tracked in
// schema_migrations. Column types are chosen to mean the same thing on
// SQLite and PostgreSQL.
var migrations = []migration{
	{
		version: "001_games",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS games (
				game_id          TEXT PRIMARY KEY,
				status           TEXT NOT NULL,
				home_id          TEXT NOT NULL,
				away_id          TEXT NOT NULL,
				score_home       INTEGER NOT NULL,
				score_away       INTEGER NOT NULL,
				events           INTEGER NOT NULL,
				unparsed         INTEGER NOT NULL,
				inconsistencies  INTEGER NOT NULL,
				coverage_pct     DOUBLE PRECISION NOT NULL,
				derived_withheld INTEGER NOT NULL,
				integrity_error  TEXT NOT NULL,
				processed_at     TEXT NOT NULL,
				duration_ms      BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_games_status ON games(status)`,
		},
	},
	{
		version: "002_box_scores",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS player_game_stats (
				game_id   TEXT NOT NULL,
				player_id TEXT NOT NULL,
				team_id   TEXT NOT NULL,
				side      TEXT NOT NULL,
				points    INTEGER NOT NULL,
				fgm       INTEGER NOT NULL,
				fga       INTEGER NOT NULL,
				fg3m      INTEGER NOT NULL,
				fg3a      INTEGER NOT NULL,
				ftm       INTEGER NOT NULL,
				fta       INTEGER NOT NULL,
				oreb      INTEGER NOT NULL,
				dreb      INTEGER NOT NULL,
				reb       INTEGER NOT NULL,
				ast       INTEGER NOT NULL,
				stl       INTEGER NOT NULL,
				blk       INTEGER NOT NULL,
				tov       INTEGER NOT NULL,
				pf        INTEGER NOT NULL,
				tech      INTEGER NOT NULL,
				seconds   DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (game_id, player_id)
			)`,
		},
	},
	{
		version: "003_possessions_stints",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS possessions (
				game_id       TEXT NOT NULL,
				ordinal       INTEGER NOT NULL,
				possession_id TEXT NOT NULL,
				side          TEXT NOT NULL,
				team_id       TEXT NOT NULL,
				period        INTEGER NOT NULL,
				start_event   INTEGER NOT NULL,
				end_event     INTEGER NOT NULL,
				end_reason    TEXT NOT NULL,
				points        INTEGER NOT NULL,
				PRIMARY KEY (game_id, ordinal)
			)`,
			`CREATE TABLE IF NOT EXISTS stints (
				game_id        TEXT NOT NULL,
				side           TEXT NOT NULL,
				ordinal        INTEGER NOT NULL,
				team_id        TEXT NOT NULL,
				players        TEXT NOT NULL,
				period         INTEGER NOT NULL,
				start_event    INTEGER NOT NULL,
				end_event      INTEGER NOT NULL,
				seconds        DOUBLE PRECISION NOT NULL,
				points_for     INTEGER NOT NULL,
				points_against INTEGER NOT NULL,
				plus_minus     INTEGER NOT NULL,
				PRIMARY KEY (game_id, side, ordinal)
			)`,
			`CREATE TABLE IF NOT EXISTS lineup_ratings (
				game_id         TEXT NOT NULL,
				side            TEXT NOT NULL,
				lineup_key      TEXT NOT NULL,
				team_id         TEXT NOT NULL,
				seconds         DOUBLE PRECISION NOT NULL,
				off_possessions INTEGER NOT NULL,
				def_possessions INTEGER NOT NULL,
				off_rating      DOUBLE PRECISION NOT NULL,
				def_rating      DOUBLE PRECISION NOT NULL,
				net_rating      DOUBLE PRECISION NOT NULL,
				plus_minus      INTEGER NOT NULL,
				low_confidence  INTEGER NOT NULL,
				PRIMARY KEY (game_id, side, lineup_key)
			)`,
		},
	},
}

// childTables hold per-game rows replaced wholesale on every write.
var childTables = []string{"player_game_stats", "possessions", "stints", "lineup_ratings"}
