// Package publisher announces processed games on a Redis stream.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
)

const (
	defaultStream = "hoopstate.games"
	defaultMaxLen = 10_000
	dialTimeout   = 5 * time.Second
)

// XAdder is the part of a Redis client the publisher needs.
type XAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Message is the payload of one stream entry.
type Message struct {
	game.Summary
	TeamHome        model.TeamGameStats `json:"team_home"`
	TeamAway        model.TeamGameStats `json:"team_away"`
	Possessions     int                 `json:"possessions"`
	CoveragePct     float64             `json:"coverage_pct"`
	Inconsistencies int                 `json:"lineup_inconsistencies"`
	DerivedWithheld bool                `json:"derived_withheld,omitempty"`
}

// Publisher writes one stream entry per stored result.
type Publisher struct {
	client XAdder
	close  func() error
	stream string
	maxLen int64
	now    func() time.Time
	log    logger.Logger
}

// New wraps an existing client.
func New(client XAdder, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		close:  func() error { return nil },
		stream: defaultStream,
		maxLen: defaultMaxLen,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("publisher")
	}
	return p
}

// Dial connects to the Redis server at url and checks it answers.
func Dial(ctx context.Context, url string, opts ...Option) (*Publisher, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	p := New(client, opts...)
	p.close = client.Close
	return p, nil
}

// Name identifies the publisher as a result sink.
func (p *Publisher) Name() string { return "redis" }

// Close releases the client when the publisher dialled it.
func (p *Publisher) Close() error {
	return p.close()
}

// Store implements the result sink.
func (p *Publisher) Store(ctx context.Context, r *game.Result) error {
	msg := Message{
		Summary:         r.Summarize(),
		TeamHome:        r.TeamHome,
		TeamAway:        r.TeamAway,
		Possessions:     len(r.Possessions),
		CoveragePct:     r.Diagnostics.CoveragePct,
		Inconsistencies: r.Diagnostics.LineupInconsistencies,
		DerivedWithheld: r.DerivedWithheld,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"game_id":   r.GameID,
			"status":    string(r.Status),
			"data":      string(data),
			"timestamp": strconv.FormatInt(p.now().Unix(), 10),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	p.log.Debug(ctx, "game published",
		logger.String("game_id", r.GameID),
		logger.String("stream", p.stream),
		logger.String("entry", id))
	return nil
}
