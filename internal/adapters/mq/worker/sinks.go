package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/metrics"
)

// Sinks fans one result out to several sinks in order. Every sink is
// tried even when an earlier one fails.
type Sinks []Sink

// Name joins the member names.
func (s Sinks) Name() string {
	names := make([]string, len(s))
	for i, sink := range s {
		names[i] = sink.Name()
	}
	return strings.Join(names, "+")
}

// Begin forwards to the members that track games in flight.
func (s Sinks) Begin(ctx context.Context, in *model.GameInput) {
	for _, sink := range s {
		if st, ok := sink.(Starter); ok {
			st.Begin(ctx, in)
		}
	}
}

// Store writes r to every member.
func (s Sinks) Store(ctx context.Context, r *game.Result) error {
	var errs []error
	for _, sink := range s {
		if err := sink.Store(ctx, r); err != nil {
			metrics.RecordSinkError(sink.Name())
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		metrics.RecordSinkWrite(sink.Name())
	}
	return errors.Join(errs...)
}
