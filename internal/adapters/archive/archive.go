// Package archive persists processed games to a SQL database. SQLite
// (modernc.org/sqlite) and PostgreSQL (lib/pq) share one schema.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"   // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const defaultMaxOpen = 10

// Archive writes game results to SQL tables. It is safe for concurrent use.
type Archive struct {
	db      *sql.DB
	driver  string
	maxOpen int
	log     logger.Logger
}

// Open connects to the database and applies pending migrations. An empty
// SQLite dsn or ":memory:" opens a private in-memory database.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Archive, error) {
	a := &Archive{driver: driver, maxOpen: defaultMaxOpen}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.Get().Named("archive")
	}

	memory := false
	switch driver {
	case DriverSQLite:
		if dsn == "" || dsn == ":memory:" {
			dsn, memory = ":memory:", true
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(a.maxOpen)
		db.SetMaxIdleConns(max(1, a.maxOpen/4))
		db.SetConnMaxLifetime(time.Hour)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if driver == DriverSQLite && !memory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	a.db = db
	if err := a.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// Name identifies the archive as a result sink.
func (a *Archive) Name() string { return "archive" }

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Ping checks the connection.
func (a *Archive) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// rebind rewrites ? placeholders for drivers that number them.
func (a *Archive) rebind(query string) string {
	if a.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (a *Archive) migrate(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	for _, m := range migrations {
		if err := a.apply(ctx, m); err != nil {
			return fmt.Errorf("migration %s: %w", m.version, err)
		}
	}
	return nil
}

func (a *Archive) apply(ctx context.Context, m migration) error {
	var exists bool
	err := a.db.QueryRowContext(ctx,
		a.rebind("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)"), m.version).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		a.rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
		m.version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	a.log.Info(ctx, "migration applied", logger.String("version", m.version))
	return nil
}

// Store writes a result, replacing any earlier rows for the same game.
func (a *Archive) Store(ctx context.Context, r *game.Result) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, a.rebind("DELETE FROM "+table+" WHERE game_id = ?"), r.GameID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := a.storeGame(ctx, tx, r); err != nil {
		return err
	}
	if err := a.storePlayers(ctx, tx, r); err != nil {
		return err
	}
	if err := a.storePossessions(ctx, tx, r); err != nil {
		return err
	}
	if err := a.storeStints(ctx, tx, r); err != nil {
		return err
	}
	if err := a.storeRatings(ctx, tx, r); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	a.log.Debug(ctx, "game archived", logger.String("game_id", r.GameID))
	return nil
}

func (a *Archive) storeGame(ctx context.Context, tx *sql.Tx, r *game.Result) error {
	d := r.Diagnostics
	_, err := tx.ExecContext(ctx, a.rebind(`INSERT INTO games (
			game_id, status, home_id, away_id, score_home, score_away, events, unparsed,
			inconsistencies, coverage_pct, derived_withheld, integrity_error, processed_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO UPDATE SET
			status = excluded.status,
			home_id = excluded.home_id,
			away_id = excluded.away_id,
			score_home = excluded.score_home,
			score_away = excluded.score_away,
			events = excluded.events,
			unparsed = excluded.unparsed,
			inconsistencies = excluded.inconsistencies,
			coverage_pct = excluded.coverage_pct,
			derived_withheld = excluded.derived_withheld,
			integrity_error = excluded.integrity_error,
			processed_at = excluded.processed_at,
			duration_ms = excluded.duration_ms`),
		r.GameID, string(r.Status), r.Home.ID, r.Away.ID, r.ScoreHome, r.ScoreAway,
		d.TotalEvents, d.UnparsedEvents, d.LineupInconsistencies, d.CoveragePct,
		boolInt(r.DerivedWithheld), d.IntegrityError,
		r.ProcessedAt.UTC().Format(time.RFC3339Nano), r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("upsert game: %w", err)
	}
	return nil
}

func (a *Archive) storePlayers(ctx context.Context, tx *sql.Tx, r *game.Result) error {
	if len(r.Players) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, a.rebind(`INSERT INTO player_game_stats (
			game_id, player_id, team_id, side, points, fgm, fga, fg3m, fg3a, ftm, fta,
			oreb, dreb, reb, ast, stl, blk, tov, pf, tech, seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare players: %w", err)
	}
	defer stmt.Close()

	for _, p := range r.Players {
		if _, err := stmt.ExecContext(ctx, r.GameID, p.PlayerID, p.TeamID, p.Side.String(),
			p.Points, p.FGM, p.FGA, p.FG3M, p.FG3A, p.FTM, p.FTA,
			p.OffRebounds, p.DefRebounds, p.Rebounds, p.Assists, p.Steals, p.Blocks,
			p.Turnovers, p.Fouls, p.Technicals, p.SecondsPlayed); err != nil {
			return fmt.Errorf("insert player %s: %w", p.PlayerID, err)
		}
	}
	return nil
}

func (a *Archive) storePossessions(ctx context.Context, tx *sql.Tx, r *game.Result) error {
	if len(r.Possessions) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, a.rebind(`INSERT INTO possessions (
			game_id, ordinal, possession_id, side, team_id, period, start_event, end_event, end_reason, points
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare possessions: %w", err)
	}
	defer stmt.Close()

	for _, p := range r.Possessions {
		if _, err := stmt.ExecContext(ctx, r.GameID, p.Ordinal, p.ID, p.Side.String(), p.TeamID,
			p.Period, p.StartEventNum, p.EndEventNum, string(p.EndReason), p.PointsScored); err != nil {
			return fmt.Errorf("insert possession %d: %w", p.Ordinal, err)
		}
	}
	return nil
}

func (a *Archive) storeStints(ctx context.Context, tx *sql.Tx, r *game.Result) error {
	stmt, err := tx.PrepareContext(ctx, a.rebind(`INSERT INTO stints (
			game_id, side, ordinal, team_id, players, period, start_event, end_event,
			seconds, points_for, points_against, plus_minus
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare stints: %w", err)
	}
	defer stmt.Close()

	for _, side := range model.Sides {
		for i, s := range r.Stints(side) {
			if _, err := stmt.ExecContext(ctx, r.GameID, side.String(), i+1, s.TeamID,
				strings.Join(s.Players, "|"), s.Period, s.StartEventNum, s.EndEventNum,
				s.DurationSeconds, s.PointsFor, s.PointsAgainst, s.PlusMinus); err != nil {
				return fmt.Errorf("insert %s stint %d: %w", side, i+1, err)
			}
		}
	}
	return nil
}

func (a *Archive) storeRatings(ctx context.Context, tx *sql.Tx, r *game.Result) error {
	if len(r.LineupRatings) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, a.rebind(`INSERT INTO lineup_ratings (
			game_id, side, lineup_key, team_id, seconds, off_possessions, def_possessions,
			off_rating, def_rating, net_rating, plus_minus, low_confidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare ratings: %w", err)
	}
	defer stmt.Close()

	for _, lr := range r.LineupRatings {
		if _, err := stmt.ExecContext(ctx, r.GameID, lr.Side.String(), lr.Key, lr.TeamID, lr.Seconds,
			lr.OffPossessions, lr.DefPossessions, lr.OffRating, lr.DefRating, lr.NetRating,
			lr.PlusMinus, boolInt(lr.LowConfidence)); err != nil {
			return fmt.Errorf("insert rating %s: %w", lr.Key, err)
		}
	}
	return nil
}

// Game returns the archived summary of one game.
func (a *Archive) Game(ctx context.Context, gameID string) (game.Summary, error) {
	row := a.db.QueryRowContext(ctx, a.rebind(`SELECT
			game_id, status, home_id, away_id, score_home, score_away, events, unparsed, processed_at
		FROM games WHERE game_id = ?`), gameID)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Summary{}, ErrNotFound
	}
	return sum, err
}

// Games lists archived games ordered by id.
func (a *Archive) Games(ctx context.Context) ([]game.Summary, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT
			game_id, status, home_id, away_id, score_home, score_away, events, unparsed, processed_at
		FROM games ORDER BY game_id`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var out []game.Summary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Players returns the archived box score of one game ordered by player.
func (a *Archive) Players(ctx context.Context, gameID string) ([]model.PlayerGameStats, error) {
	rows, err := a.db.QueryContext(ctx, a.rebind(`SELECT
			player_id, team_id, side, points, fgm, fga, fg3m, fg3a, ftm, fta,
			oreb, dreb, reb, ast, stl, blk, tov, pf, tech, seconds
		FROM player_game_stats WHERE game_id = ? ORDER BY player_id`), gameID)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []model.PlayerGameStats
	for rows.Next() {
		var p model.PlayerGameStats
		var side string
		if err := rows.Scan(&p.PlayerID, &p.TeamID, &side, &p.Points, &p.FGM, &p.FGA, &p.FG3M, &p.FG3A,
			&p.FTM, &p.FTA, &p.OffRebounds, &p.DefRebounds, &p.Rebounds, &p.Assists, &p.Steals,
			&p.Blocks, &p.Turnovers, &p.Fouls, &p.Technicals, &p.SecondsPlayed); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		if err := p.Side.UnmarshalText([]byte(side)); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Possessions returns the archived possessions of one game in order.
func (a *Archive) Possessions(ctx context.Context, gameID string) ([]model.Possession, error) {
	rows, err := a.db.QueryContext(ctx, a.rebind(`SELECT
			ordinal, possession_id, side, team_id, period, start_event, end_event, end_reason, points
		FROM possessions WHERE game_id = ? ORDER BY ordinal`), gameID)
	if err != nil {
		return nil, fmt.Errorf("query possessions: %w", err)
	}
	defer rows.Close()

	var out []model.Possession
	for rows.Next() {
		var p model.Possession
		var side, reason string
		if err := rows.Scan(&p.Ordinal, &p.ID, &side, &p.TeamID, &p.Period,
			&p.StartEventNum, &p.EndEventNum, &reason, &p.PointsScored); err != nil {
			return nil, fmt.Errorf("scan possession: %w", err)
		}
		if err := p.Side.UnmarshalText([]byte(side)); err != nil {
			return nil, err
		}
		p.EndReason = model.PossessionEnd(reason)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stints returns the archived stints of one side in order.
func (a *Archive) Stints(ctx context.Context, gameID string, side model.Side) ([]model.Stint, error) {
	rows, err := a.db.QueryContext(ctx, a.rebind(`SELECT
			team_id, players, period, start_event, end_event, seconds, points_for, points_against, plus_minus
		FROM stints WHERE game_id = ? AND side = ? ORDER BY ordinal`), gameID, side.String())
	if err != nil {
		return nil, fmt.Errorf("query stints: %w", err)
	}
	defer rows.Close()

	var out []model.Stint
	for rows.Next() {
		s := model.Stint{Side: side}
		var players string
		if err := rows.Scan(&s.TeamID, &players, &s.Period, &s.StartEventNum, &s.EndEventNum,
			&s.DurationSeconds, &s.PointsFor, &s.PointsAgainst, &s.PlusMinus); err != nil {
			return nil, fmt.Errorf("scan stint: %w", err)
		}
		if players != "" {
			s.Players = strings.Split(players, "|")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (game.Summary, error) {
	var sum game.Summary
	var status, processedAt string
	if err := row.Scan(&sum.GameID, &status, &sum.Home, &sum.Away, &sum.ScoreHome, &sum.ScoreAway,
		&sum.Events, &sum.Unparsed, &processedAt); err != nil {
		return game.Summary{}, err
	}
	sum.Status = model.GameStatus(status)
	at, err := time.Parse(time.RFC3339Nano, processedAt)
	if err != nil {
		return game.Summary{}, fmt.Errorf("parse processed_at: %w", err)
	}
	sum.ProcessedAt = at
	return sum, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
