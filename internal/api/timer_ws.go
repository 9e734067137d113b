package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// tickInterval is how often the timer stream emits. The stream is a
// display aid; the recorded per-question time comes from submission.
const tickInterval = time.Second

type timerTick struct {
	SessionID      string `json:"session_id"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}

// TimerStream pushes the current question's elapsed seconds over a
// WebSocket once per second until the client disconnects or the
// session stops being live.
func (h *Handler) TimerStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.ws.Elapsed(sessionID); err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept timer websocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("failed to close timer websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	ctx := r.Context()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		elapsed, err := h.ws.Elapsed(sessionID)
		if err != nil {
			// Session was reset or ended out from under the stream.
			return
		}
		if err := writeTick(ctx, ws, timerTick{SessionID: sessionID, ElapsedSeconds: elapsed}); err != nil {
			slog.Debug("timer stream closed", "error", err, "session_id", sessionID)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func writeTick(ctx context.Context, ws *websocket.Conn, tick timerTick) error {
	data, err := json.Marshal(tick)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}
