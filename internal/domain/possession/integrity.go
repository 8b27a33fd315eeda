package possession

import (
	"fmt"

	"github.com/okian/hoopstate/internal/domain/model"
)

// checkIntegrity verifies that possessions partition the event range and
// carry every point, and that each team's stints are contiguous and sum to
// the final differential when the team was tracked from the first event.
func (e *Engine) checkIntegrity() error {
	n := len(e.nums)
	if n == 0 {
		return nil
	}
	if err := contiguous(e.spans, n, true); err != nil {
		return fmt.Errorf("%w: possessions: %w", ErrIntegrity, err)
	}

	var points [2]int
	for _, p := range e.possessions {
		if p.Side != model.SideNone {
			points[p.Side.Index()] += p.PointsScored
		}
	}
	for i, side := range model.Sides {
		if points[i] != e.scores[i] {
			return fmt.Errorf("%w: %s possessions carry %d points, final score %d",
				ErrIntegrity, side, points[i], e.scores[i])
		}
	}

	for i, side := range model.Sides {
		whole := e.activeFrom[i] == 0
		if len(e.stintSpans[i]) == 0 {
			continue
		}
		if err := contiguous(e.stintSpans[i], n, whole); err != nil {
			return fmt.Errorf("%w: %s stints: %w", ErrIntegrity, side, err)
		}
		if !whole {
			continue
		}
		sum := 0
		for _, s := range e.stints[i] {
			sum += s.PlusMinus
		}
		if diff := e.scores[i] - e.scores[1-i]; sum != diff {
			return fmt.Errorf("%w: %s stint plus-minus %d, final differential %d",
				ErrIntegrity, side, sum, diff)
		}
	}
	return nil
}

// contiguous checks that spans follow each other without gaps or overlap.
// With cover set they must also run from the first to the last event.
func contiguous(spans []span, n int, cover bool) error {
	if len(spans) == 0 {
		return fmt.Errorf("no spans over %d events", n)
	}
	for i, s := range spans {
		if s.last < s.first {
			return fmt.Errorf("span %d ends before it starts", i)
		}
		if i > 0 && s.first != spans[i-1].last+1 {
			return fmt.Errorf("gap or overlap between spans %d and %d", i-1, i)
		}
	}
	if cover && (spans[0].first != 0 || spans[len(spans)-1].last != n-1) {
		return fmt.Errorf("spans cover events %d..%d of %d", spans[0].first, spans[len(spans)-1].last, n)
	}
	return nil
}
