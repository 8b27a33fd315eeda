package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"github.com/okian/hoopstate/internal/domain/snapshot"
	"github.com/okian/hoopstate/internal/game"
	"github.com/okian/hoopstate/pkg/logger"
	"github.com/okian/hoopstate/pkg/metrics"
)

// Stream message types.
const (
	msgWaiting  = "waiting"
	msgSnapshot = "snapshot"
	msgEnd      = "end"
)

type streamMessage struct {
	Type     string             `json:"type"`
	Snapshot *snapshot.Snapshot `json:"snapshot,omitempty"`
	Summary  *game.Summary      `json:"summary,omitempty"`
}

// handleStream handles GET /games/{id}/stream. Once the game is processed
// its snapshots are replayed in event order, then an end message carries
// the summary.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	from, err := intParam(r, "from", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, ok := s.lookup(w, r, op)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	metrics.StreamOpened()
	defer metrics.StreamClosed()
	defer conn.Close()

	// The read loop ends when the client goes away.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !res.Status.Terminal() {
		sum := res.Summarize()
		if err := s.send(conn, streamMessage{Type: msgWaiting, Summary: &sum}); err != nil {
			return
		}
		if res, err = s.deps.Wait(ctx, res.GameID); err != nil {
			return
		}
	}

	start := sort.Search(len(res.Snapshots), func(i int) bool { return res.Snapshots[i].EventNum >= from })
	for _, snap := range res.Snapshots[start:] {
		if ctx.Err() != nil {
			return
		}
		if err := s.send(conn, streamMessage{Type: msgSnapshot, Snapshot: snap}); err != nil {
			s.log.Debug(ctx, "stream write failed", logger.String("game_id", res.GameID), logger.Error(err))
			return
		}
	}

	sum := res.Summarize()
	if err := s.send(conn, streamMessage{Type: msgEnd, Summary: &sum}); err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(res.Status)))
}

func (s *Server) send(conn *websocket.Conn, msg streamMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
