package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prepdesk/prepdesk/internal/llm"
	"github.com/prepdesk/prepdesk/internal/session"
)

func questionSetJSON(n int) json.RawMessage {
	items := make([]string, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, fmt.Sprintf(
			`{"prompt": "Question number %d about distributed systems.", "interview_type": "technical", "difficulty": "medium"}`, i+1))
	}
	return json.RawMessage(`{"questions": [` + strings.Join(items, ",") + `]}`)
}

func testInput(count int) Input {
	return Input{
		Type:       session.TypeTechnical,
		Difficulty: session.DifficultyMedium,
		TargetRole: "Backend Engineer",
		Count:      count,
	}
}

func TestGenerate_FullSet(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionSetJSON(3)})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), testInput(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	for i, q := range qs {
		wantID := fmt.Sprintf("q%d", i+1)
		if q.ID != wantID {
			t.Errorf("question %d: expected id %s, got %s", i, wantID, q.ID)
		}
		if q.Type != session.TypeTechnical {
			t.Errorf("question %d: expected technical type, got %q", i, q.Type)
		}
		if q.Answered() {
			t.Errorf("question %d: fresh question should not be answered", i)
		}
	}
	if qs[0].Prompt != "Question number 1 about distributed systems." {
		t.Errorf("unexpected prompt: %q", qs[0].Prompt)
	}
}

func TestGenerate_EmptySetIsError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"questions": []}`),
	})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), testInput(5))
	if err == nil {
		t.Fatal("expected error for empty question set")
	}
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Errorf("expected ErrInvalidResponse, got %T: %v", err, err)
	}
}

func TestGenerate_ShortSetIsError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionSetJSON(2)})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), testInput(5))
	if err == nil {
		t.Fatal("expected error for short question set")
	}
	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Errorf("expected ErrInvalidResponse, got %T: %v", err, err)
	}
}

func TestGenerate_TruncatesExtras(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionSetJSON(7)})
	gen := New(mock, DefaultConfig())

	qs, err := gen.Generate(context.Background(), testInput(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != 5 {
		t.Errorf("expected 5 questions after truncation, got %d", len(qs))
	}
}

func TestGenerate_UnknownTypeFallsBackToRequested(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"questions": [{"prompt": "p", "interview_type": "brainteaser", "difficulty": "easy"}]}`),
	})
	gen := New(mock, Config{MaxTokens: 512, Temperature: 0})

	qs, err := gen.Generate(context.Background(), Input{Type: session.TypeBehavioral, Count: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qs[0].Type != session.TypeBehavioral {
		t.Errorf("expected fallback to behavioral, got %q", qs[0].Type)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.ErrProviderUnavailable{Err: errors.New("boom")},
	})
	gen := New(mock, DefaultConfig())

	_, err := gen.Generate(context.Background(), testInput(3))
	if err == nil {
		t.Fatal("expected provider error to surface")
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: questionSetJSON(2)})
	gen := New(mock, DefaultConfig())

	input := testInput(2)
	input.TargetCompany = "Acme"
	if _, err := gen.Generate(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(mock.Calls))
	}
	req := mock.Calls[0]
	if req.Schema != QuestionSetSchema {
		t.Error("expected question set schema on the request")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{"technical", "Number of questions: 2", "Backend Engineer", "Acme"} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q:\n%s", want, msg)
		}
	}
}
