package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdesk/prepdesk/internal/session"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateSession(ctx, &SessionRecord{
		UserID:        "local",
		Title:         "Backend interview prep",
		Type:          "technical",
		Difficulty:    "medium",
		TargetRole:    "Backend Engineer",
		TargetCompany: "Acme",
		QuestionCount: 5,
		Status:        "populated",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Backend interview prep", got.Title)
	assert.Equal(t, "technical", got.Type)
	assert.Equal(t, 5, got.QuestionCount)
	assert.Equal(t, "populated", got.Status)
	assert.Nil(t, got.Score)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetSessionMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetSession(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateSessionPatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.CreateSession(ctx, &SessionRecord{
		UserID: "local", Title: "t", Type: "behavioral",
		QuestionCount: 3, Status: "active",
	})
	require.NoError(t, err)

	status := "ended"
	score := 72.5
	dur := 840
	require.NoError(t, s.UpdateSession(ctx, id, SessionPatch{
		Status:       &status,
		Score:        &score,
		DurationSecs: &dur,
	}))

	got, err := s.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ended", got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, 72.5, *got.Score)
	assert.Equal(t, 840, got.DurationSecs)
}

func TestListSessionsByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, user := range []string{"alice", "alice", "bob"} {
		_, err := s.CreateSession(ctx, &SessionRecord{
			UserID: user, Title: "t", Type: "general",
			QuestionCount: 1, Status: "populated",
		})
		require.NoError(t, err)
	}

	got, err := s.ListSessions(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestQuestionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sid, err := s.CreateSession(ctx, &SessionRecord{
		UserID: "local", Title: "t", Type: "technical",
		QuestionCount: 2, Status: "populated",
	})
	require.NoError(t, err)

	require.NoError(t, s.CreateQuestion(ctx, &QuestionRecord{
		SessionID: sid, ID: "q1", Position: 0,
		Prompt: "Explain database indexing.",
		Type:   "technical", Difficulty: "medium",
	}))
	require.NoError(t, s.CreateQuestion(ctx, &QuestionRecord{
		SessionID: sid, ID: "q2", Position: 1,
		Prompt: "Describe a caching strategy.",
		Type:   "technical", Difficulty: "medium",
	}))

	got, err := s.ListQuestions(ctx, sid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].ID)
	assert.Equal(t, "q2", got[1].ID)
	assert.Nil(t, got[0].EvalScore)
	assert.Empty(t, got[0].EvalStrengths)
}

func TestUpdateQuestionMergesEvaluation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sid, err := s.CreateSession(ctx, &SessionRecord{
		UserID: "local", Title: "t", Type: "behavioral",
		QuestionCount: 1, Status: "active",
	})
	require.NoError(t, err)
	require.NoError(t, s.CreateQuestion(ctx, &QuestionRecord{
		SessionID: sid, ID: "q1", Position: 0,
		Prompt: "Tell me about a conflict.", Type: "behavioral",
	}))

	answer := "I talked it through with my teammate."
	spent := 95
	require.NoError(t, s.UpdateQuestion(ctx, sid, "q1", QuestionPatch{
		Answer:        &answer,
		TimeSpentSecs: &spent,
	}))

	require.NoError(t, s.UpdateQuestion(ctx, sid, "q1", QuestionPatch{
		Evaluation: &session.Evaluation{
			Score:        78,
			Strengths:    []string{"clear structure"},
			Improvements: []string{"quantify the outcome"},
			Feedback:     "Solid answer overall.",
		},
	}))

	got, err := s.ListQuestions(ctx, sid)
	require.NoError(t, err)
	require.Len(t, got, 1)
	q := got[0]
	assert.Equal(t, answer, q.Answer)
	assert.Equal(t, 95, q.TimeSpentSecs)
	require.NotNil(t, q.EvalScore)
	assert.Equal(t, 78, *q.EvalScore)
	assert.Equal(t, []string{"clear structure"}, q.EvalStrengths)
	assert.Equal(t, []string{"quantify the outcome"}, q.EvalImprove)
	assert.Equal(t, "Solid answer overall.", q.EvalFeedback)
}

func TestUpdateQuestionEmptyPatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sid, err := s.CreateSession(ctx, &SessionRecord{
		UserID: "local", Title: "t", Type: "general",
		QuestionCount: 1, Status: "active",
	})
	require.NoError(t, err)
	require.NoError(t, s.CreateQuestion(ctx, &QuestionRecord{
		SessionID: sid, ID: "q1", Position: 0, Prompt: "p", Type: "general",
	}))

	assert.NoError(t, s.UpdateQuestion(ctx, sid, "q1", QuestionPatch{}))
}

func TestLLMEventLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AppendLLMEvent(ctx, LLMEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      "question-gen",
			InputTokens:  100,
			OutputTokens: 200,
			LatencyMs:    int64(50 + i),
			Success:      true,
			RequestBody:  `{"messages":[]}`,
			ResponseBody: `{"questions":[]}`,
		}))
	}

	events, err := s.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Greater(t, events[0].ID, events[1].ID)

	got, err := s.GetLLMEvent(ctx, events[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "mock", got.Provider)
	assert.Equal(t, "question-gen", got.Purpose)
	assert.True(t, got.Success)

	missing, err := s.GetLLMEvent(ctx, 99999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
