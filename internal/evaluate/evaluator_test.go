package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/prepdesk/prepdesk/internal/llm"
	"github.com/prepdesk/prepdesk/internal/session"
)

func validEvaluationJSON() json.RawMessage {
	return json.RawMessage(`{
		"score": 78,
		"strengths": ["clear structure", "quantified the outcome"],
		"improvements": ["mention what you would do differently"],
		"feedback": "A solid answer with a concrete example. Add a reflection at the end."
	}`)
}

func testInput() Input {
	return Input{
		Question:   "Tell me about a time you disagreed with a teammate.",
		Type:       session.TypeBehavioral,
		TargetRole: "Engineering Manager",
		Answer:     "On my last team we disagreed about the release cadence...",
	}
}

func TestEvaluate_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validEvaluationJSON()})
	ev := New(mock, DefaultConfig())

	got, err := ev.Evaluate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 78 {
		t.Errorf("expected score 78, got %d", got.Score)
	}
	if len(got.Strengths) != 2 || got.Strengths[0] != "clear structure" {
		t.Errorf("unexpected strengths: %v", got.Strengths)
	}
	if len(got.Improvements) != 1 {
		t.Errorf("unexpected improvements: %v", got.Improvements)
	}
	if got.Feedback == "" {
		t.Error("expected non-empty feedback")
	}
}

func TestEvaluate_ClampsScore(t *testing.T) {
	for _, tc := range []struct {
		raw  int
		want int
	}{
		{-5, 0},
		{0, 0},
		{100, 100},
		{140, 100},
	} {
		mock := llm.NewMockProvider(llm.MockResponse{
			Content: json.RawMessage(
				`{"score": ` + strconv.Itoa(tc.raw) + `, "strengths": [], "improvements": [], "feedback": "f"}`),
		})
		ev := New(mock, DefaultConfig())

		got, err := ev.Evaluate(context.Background(), testInput())
		if err != nil {
			t.Fatalf("score %d: unexpected error: %v", tc.raw, err)
		}
		if got.Score != tc.want {
			t.Errorf("score %d: expected clamp to %d, got %d", tc.raw, tc.want, got.Score)
		}
	}
}

func TestEvaluate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrRateLimit{Err: errors.New("slow down")},
	})
	ev := New(mock, DefaultConfig())

	_, err := ev.Evaluate(context.Background(), testInput())
	if err == nil {
		t.Fatal("expected provider error to surface")
	}
	var rate *llm.ErrRateLimit
	if !errors.As(err, &rate) {
		t.Errorf("expected ErrRateLimit, got %T: %v", err, err)
	}
}

func TestEvaluate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validEvaluationJSON()})
	ev := New(mock, DefaultConfig())

	if _, err := ev.Evaluate(context.Background(), testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := mock.Calls[0]
	if req.Schema != EvaluationSchema {
		t.Error("expected evaluation schema on the request")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"behavioral", "Engineering Manager", "disagreed with a teammate", "release cadence"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}
