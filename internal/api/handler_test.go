package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdesk/prepdesk/internal/evaluate"
	"github.com/prepdesk/prepdesk/internal/questiongen"
	"github.com/prepdesk/prepdesk/internal/session"
	"github.com/prepdesk/prepdesk/internal/store"
	"github.com/prepdesk/prepdesk/internal/workspace"
)

// memRepo is a minimal in-memory Repository for API tests.
type memRepo struct {
	mu        sync.Mutex
	sessions  map[string]*store.SessionRecord
	questions map[string][]*store.QuestionRecord
	nextID    int
}

func newMemRepo() *memRepo {
	return &memRepo{
		sessions:  make(map[string]*store.SessionRecord),
		questions: make(map[string][]*store.QuestionRecord),
	}
}

func (r *memRepo) CreateSession(_ context.Context, rec *store.SessionRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = fmt.Sprintf("s%d", r.nextID)
	r.sessions[rec.ID] = rec
	return rec.ID, nil
}

func (r *memRepo) UpdateSession(_ context.Context, id string, patch store.SessionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.sessions[id]; ok && patch.Status != nil {
		rec.Status = *patch.Status
	}
	return nil
}

func (r *memRepo) GetSession(_ context.Context, id string) (*store.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id], nil
}

func (r *memRepo) ListSessions(_ context.Context, userID string) ([]*store.SessionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*store.SessionRecord
	for _, rec := range r.sessions {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) CreateQuestion(_ context.Context, rec *store.QuestionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[rec.SessionID] = append(r.questions[rec.SessionID], rec)
	return nil
}

func (r *memRepo) UpdateQuestion(context.Context, string, string, store.QuestionPatch) error {
	return nil
}

func (r *memRepo) ListQuestions(_ context.Context, sessionID string) ([]*store.QuestionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.questions[sessionID], nil
}

func (r *memRepo) AppendLLMEvent(context.Context, store.LLMEventData) error { return nil }
func (r *memRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]*store.LLMEvent, error) {
	return nil, nil
}
func (r *memRepo) GetLLMEvent(context.Context, int64) (*store.LLMEvent, error) { return nil, nil }
func (r *memRepo) Ping(context.Context) error                                  { return nil }
func (r *memRepo) Close() error                                                { return nil }

type fixedGen struct{}

func (fixedGen) Generate(_ context.Context, input questiongen.Input) ([]*session.Question, error) {
	qs := make([]*session.Question, input.Count)
	for i := range qs {
		qs[i] = &session.Question{
			ID:     fmt.Sprintf("q%d", i+1),
			Prompt: fmt.Sprintf("Question %d", i+1),
			Type:   input.Type,
		}
	}
	return qs, nil
}

type fixedEval struct{}

func (fixedEval) Evaluate(context.Context, evaluate.Input) (*session.Evaluation, error) {
	return &session.Evaluation{Score: 75, Feedback: "fine"}, nil
}

type failingEval struct{}

func (failingEval) Evaluate(context.Context, evaluate.Input) (*session.Evaluation, error) {
	return nil, errors.New("provider unavailable")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ws := workspace.New(newMemRepo(), fixedGen{}, fixedEval{}, nil)
	srv := httptest.NewServer(NewHandler(ws, "local").Routes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func createSession(t *testing.T, srv *httptest.Server, n int) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sessions",
		fmt.Sprintf(`{"title": "t", "interview_type": "behavioral", "question_count": %d}`, n))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sess := body["session"].(map[string]any)
	return sess["id"].(string)
}

func TestCreateSessionEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/sessions",
		`{"title": "Mock interview", "interview_type": "technical", "question_count": 3}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "populated", body["state"])
	assert.Len(t, body["questions"], 3)
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/sessions",
		`{"title": "", "interview_type": "technical", "question_count": 3}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/sessions",
		`{"title": "t", "interview_type": "technical", "question_count": 0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, 2)
	base := srv.URL + "/api/sessions/" + id

	resp, body := doJSON(t, http.MethodPost, base+"/activate", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "active", body["state"])

	resp, body = doJSON(t, http.MethodPost, base+"/questions/q1/answer", `{"answer": "my answer"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ev := body["evaluation"].(map[string]any)
	assert.Equal(t, float64(75), ev["score"])

	resp, body = doJSON(t, http.MethodPost, base+"/advance", `{"direction": "next"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["cursor"])

	resp, body = doJSON(t, http.MethodPost, base+"/end", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(75), body["average_score"])
	assert.Equal(t, float64(50), body["completion_percent"])

	// A second end is tolerated, same 200 with the same stats.
	resp, body = doJSON(t, http.MethodPost, base+"/end", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(75), body["average_score"])
	assert.Equal(t, float64(50), body["completion_percent"])
}

func TestSubmitAnswerEvaluationFailureIs502(t *testing.T) {
	ws := workspace.New(newMemRepo(), fixedGen{}, failingEval{}, nil)
	srv := httptest.NewServer(NewHandler(ws, "local").Routes())
	t.Cleanup(srv.Close)

	id := createSession(t, srv, 1)
	base := srv.URL + "/api/sessions/" + id
	_, _ = doJSON(t, http.MethodPost, base+"/activate", ``)

	resp, _ := doJSON(t, http.MethodPost, base+"/questions/q1/answer", `{"answer": "kept"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// The answer survived the failed evaluation.
	getResp, body := doJSON(t, http.MethodGet, base, ``)
	require.Equal(t, http.StatusOK, getResp.StatusCode)
	q := body["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, "kept", q["answer"])
	_, hasEval := q["evaluation"]
	assert.False(t, hasEval)
}

func TestAdvanceValidatesDirection(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, 2)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+id+"/advance",
		`{"direction": "sideways"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownSessionIs404(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/sessions/nope", ""},
		{http.MethodPost, "/api/sessions/nope/activate", ""},
		{http.MethodPost, "/api/sessions/nope/advance", `{"direction": "next"}`},
		{http.MethodPost, "/api/sessions/nope/end", ""},
		{http.MethodPost, "/api/sessions/nope/questions/q1/answer", `{"answer": "a"}`},
		{http.MethodGet, "/api/sessions/nope/stats", ""},
	} {
		resp, _ := doJSON(t, tc.method, srv.URL+tc.path, tc.body)
		assert.Equalf(t, http.StatusNotFound, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}

func TestResetEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, 1)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+id+"/reset", ``)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/sessions/"+id, ``)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListSessionsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createSession(t, srv, 1)
	createSession(t, srv, 1)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/sessions", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["sessions"], 2)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	id := createSession(t, srv, 4)
	base := srv.URL + "/api/sessions/" + id

	_, _ = doJSON(t, http.MethodPost, base+"/activate", ``)
	_, _ = doJSON(t, http.MethodPost, base+"/questions/q1/answer", `{"answer": "a"}`)

	resp, body := doJSON(t, http.MethodGet, base+"/stats", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(25), body["completion_percent"])
	assert.Equal(t, float64(75), body["average_score"])
}

func TestUserScoping(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/sessions",
		strings.NewReader(`{"title": "t", "interview_type": "general", "question_count": 1}`))
	require.NoError(t, err)
	req.Header.Set("X-Prepdesk-User", "alice")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The default user does not see alice's session.
	listResp, body := doJSON(t, http.MethodGet, srv.URL+"/api/sessions", ``)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	assert.Len(t, body["sessions"], 0)
}
