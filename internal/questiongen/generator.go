package questiongen

import (
	"context"

	"github.com/prepdesk/prepdesk/internal/session"
)

// Generator produces a full set of interview questions for a session.
type Generator interface {
	// Generate produces the question list for the given input. On
	// success the slice holds exactly Input.Count questions; a
	// response with fewer is an error, extras are dropped.
	Generate(ctx context.Context, input Input) ([]*session.Question, error)
}
