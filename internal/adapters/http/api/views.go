package api

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/domain/possession"
	"github.com/okian/hoopstate/internal/domain/snapshot"
)

const (
	defaultSnapshotPage = 100
	maxSnapshotPage     = 1000
)

type snapshotPage struct {
	Snapshots []*snapshot.Snapshot `json:"snapshots"`
	// Next is the event number to ask for next, zero on the last page.
	Next int `json:"next,omitempty"`
}

// sideParam reads the optional side filter. SideNone means both.
func sideParam(r *http.Request) (model.Side, error) {
	var side model.Side
	err := side.UnmarshalText([]byte(r.URL.Query().Get("side")))
	return side, err
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}

// handlePlayers handles GET /games/{id}/players.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.players"
	side, err := sideParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, ok := s.finished(w, r, op)
	if !ok {
		return
	}
	out := make([]model.PlayerGameStats, 0, len(res.Players))
	for _, p := range res.Players {
		if side == model.SideNone || p.Side == side {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePossessions handles GET /games/{id}/possessions.
func (s *Server) handlePossessions(w http.ResponseWriter, r *http.Request) {
	res, ok := s.derived(w, r, "api.possessions")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res.Possessions)
}

// handleStints handles GET /games/{id}/stints.
func (s *Server) handleStints(w http.ResponseWriter, r *http.Request) {
	const op = "api.stints"
	side, err := sideParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, ok := s.derived(w, r, op)
	if !ok {
		return
	}
	if side != model.SideNone {
		writeJSON(w, http.StatusOK, res.Stints(side))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Stint{
		"home": res.StintsHome,
		"away": res.StintsAway,
	})
}

// handleLineups handles GET /games/{id}/lineups.
func (s *Server) handleLineups(w http.ResponseWriter, r *http.Request) {
	const op = "api.lineups"
	q := r.URL.Query()
	top, err := intParam(r, "top", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	includeLow := false
	if raw := q.Get("low_confidence"); raw != "" {
		if includeLow, err = strconv.ParseBool(raw); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	side, err := sideParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rankFn := possession.Top
	switch q.Get("order") {
	case "", "top":
	case "bottom":
		rankFn = possession.Bottom
	default:
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, strconv.ErrSyntax))
		return
	}

	res, ok := s.derived(w, r, op)
	if !ok {
		return
	}
	ratings := res.LineupRatings
	if side != model.SideNone {
		ratings = make([]model.LineupRating, 0, len(res.LineupRatings))
		for _, lr := range res.LineupRatings {
			if lr.Side == side {
				ratings = append(ratings, lr)
			}
		}
	}
	writeJSON(w, http.StatusOK, rankFn(ratings, top, includeLow))
}

// handleSnapshots handles GET /games/{id}/snapshots.
func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	const op = "api.snapshots"
	from, err := intParam(r, "from", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	limit, err := intParam(r, "limit", defaultSnapshotPage)
	if err != nil || limit == 0 || limit > maxSnapshotPage {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	res, ok := s.finished(w, r, op)
	if !ok {
		return
	}

	start := sort.Search(len(res.Snapshots), func(i int) bool { return res.Snapshots[i].EventNum >= from })
	end := min(start+limit, len(res.Snapshots))
	page := snapshotPage{Snapshots: res.Snapshots[start:end]}
	if end < len(res.Snapshots) {
		page.Next = res.Snapshots[end].EventNum
	}
	writeJSON(w, http.StatusOK, page)
}

// handleSnapshot handles GET /games/{id}/snapshots/{event}.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.snapshot"
	eventNum, err := strconv.Atoi(chi.URLParam(r, "event"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, ok := s.finished(w, r, op)
	if !ok {
		return
	}
	snap, found := res.Snapshot(eventNum)
	if !found {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
