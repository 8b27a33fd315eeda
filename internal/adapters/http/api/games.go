package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/hoopstate/internal/adapters/mq/queue"
	"github.com/okian/hoopstate/internal/domain/model"
	"github.com/okian/hoopstate/internal/domain/snapshot"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
)

type submitResponse struct {
	Status     string   `json:"status"`
	Batch      string   `json:"batch,omitempty"`
	Accepted   []string `json:"accepted"`
	Duplicates []string `json:"duplicates"`
}

// resultView is a game result without its bulky per-event series.
type resultView struct {
	*game.Result
	Events    []model.Event        `json:"events,omitempty"`
	Snapshots []*snapshot.Snapshot `json:"snapshots,omitempty"`
}

// decodeGames accepts a single game object or an array of them.
func decodeGames(r io.Reader) ([]model.GameInput, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	if body[0] == '[' {
		var games []model.GameInput
		if err := json.Unmarshal(body, &games); err != nil {
			return nil, err
		}
		return games, nil
	}
	var in model.GameInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, err
	}
	return []model.GameInput{in}, nil
}

// handleSubmit handles POST /games.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_games"
	ctx := r.Context()

	games, err := decodeGames(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(games) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("no games")))
		return
	}
	for i := range games {
		if err := game.Validate(&games[i]); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("game %d: %w", i, err)))
			return
		}
	}

	resp := submitResponse{Accepted: []string{}, Duplicates: []string{}}
	if len(games) > 1 {
		resp.Batch = s.newBatch()
	}
	for _, in := range games {
		if s.deps.SeenAndRecord(ctx, in.GameID) {
			resp.Duplicates = append(resp.Duplicates, in.GameID)
			continue
		}
		if err := s.deps.Enqueue(ctx, in, resp.Batch); err != nil {
			s.deps.Unrecord(ctx, in.GameID)
			s.log.Warn(ctx, "enqueue refused",
				logger.String("game_id", in.GameID),
				logger.Int("accepted", len(resp.Accepted)),
				logger.Error(err))
			cause := fmt.Errorf("%d of %d games queued: %w", len(resp.Accepted), len(games), err)
			if errors.Is(err, queue.ErrClosed) {
				writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, cause))
				return
			}
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, cause))
			return
		}
		resp.Accepted = append(resp.Accepted, in.GameID)
	}

	if len(resp.Accepted) == 0 {
		resp.Status = "duplicate"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp.Status = "accepted"
	writeJSON(w, http.StatusAccepted, resp)
}

// handleList handles GET /games.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	status := model.GameStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, s.deps.List(r.Context(), status))
}

// handleGet handles GET /games/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	res, ok := s.lookup(w, r, "api.get_game")
	if !ok {
		return
	}
	view := resultView{Result: res}
	if r.URL.Query().Get("events") == "true" {
		view.Events = res.Events
	}
	writeJSON(w, http.StatusOK, view)
}
