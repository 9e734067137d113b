package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prepdesk/prepdesk/internal/session"
	"github.com/prepdesk/prepdesk/internal/store"
	"github.com/prepdesk/prepdesk/internal/workspace"
)

// CreateSession generates questions and returns the populated session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var cfg session.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.ws.Create(r.Context(), h.userID(r), cfg)
	if err != nil {
		switch {
		case errors.Is(err, workspace.ErrGenerationInFlight):
			Error(w, http.StatusConflict, err.Error())
		case cfg.Validate() != nil:
			Error(w, http.StatusBadRequest, err.Error())
		default:
			Error(w, http.StatusBadGateway, "question generation failed")
		}
		return
	}
	JSON(w, http.StatusCreated, snap)
}

// ListSessions returns the caller's persisted sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	recs, err := h.ws.List(r.Context(), h.userID(r))
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	if recs == nil {
		recs = []*store.SessionRecord{}
	}
	JSON(w, http.StatusOK, map[string]any{"sessions": recs})
}

// GetSession returns a snapshot of a live session.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ws.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, snap)
}

// ActivateSession starts the session clock.
func (h *Handler) ActivateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ws.Activate(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, snap)
}

type advanceRequest struct {
	Direction string `json:"direction"`
}

// AdvanceSession moves the cursor one question forward or back.
func (h *Handler) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var dir session.Direction
	switch req.Direction {
	case "next":
		dir = session.Next
	case "previous":
		dir = session.Previous
	default:
		Error(w, http.StatusBadRequest, "direction must be next or previous")
		return
	}

	snap, err := h.ws.Advance(chi.URLParam(r, "sessionID"), dir)
	if err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, snap)
}

type jumpRequest struct {
	Index int `json:"index"`
}

// JumpSession moves the cursor to an arbitrary question.
func (h *Handler) JumpSession(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.ws.JumpTo(chi.URLParam(r, "sessionID"), req.Index)
	if err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, snap)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type answerResponse struct {
	Evaluation *session.Evaluation `json:"evaluation"`
}

// SubmitAnswer records and grades an answer to one question. When
// grading fails the answer is already stored; the client gets a 502
// and may resubmit to retry the evaluation.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev, err := h.ws.SubmitAnswer(r.Context(),
		chi.URLParam(r, "sessionID"), chi.URLParam(r, "questionID"), req.Answer)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			Error(w, http.StatusNotFound, err.Error())
			return
		}
		Error(w, http.StatusConflict, err.Error())
		return
	}
	if ev == nil {
		Error(w, http.StatusBadGateway, "evaluation failed; answer stored")
		return
	}
	JSON(w, http.StatusOK, answerResponse{Evaluation: ev})
}

// EndSession finalizes the session and returns its statistics. A
// repeated end is a tolerated no-op, same 200 with the same stats.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ws.End(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, stats)
}

// ResetSession discards the live session state.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Reset(chi.URLParam(r, "sessionID")); err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionStats returns statistics over the current question store,
// without ending the session.
func (h *Handler) SessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ws.Stats(chi.URLParam(r, "sessionID"))
	if err != nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, stats)
}
