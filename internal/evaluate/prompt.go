package evaluate

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced interviewer grading a candidate's spoken answer in a mock interview.

Rules:
- Score the answer from 0 to 100. An empty or off-topic answer scores below 20; a complete, well-structured answer with concrete specifics scores above 80.
- Grade against the question's interview type: behavioral answers need situation, action, and outcome; technical and system_design answers need correctness and trade-off awareness; case_study answers need a structured approach.
- Strengths and improvements must cite specifics from the answer, never generic advice.
- Keep feedback encouraging but honest, two to four sentences, addressed directly to the candidate.
- Judge only what was said. Do not invent details the candidate did not mention.`

// buildUserMessage constructs the user message from the evaluation input.
func buildUserMessage(input Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Interview type: %s\n", input.Type)
	if input.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	}
	if input.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", input.TargetRole)
	}

	b.WriteString("\nQuestion:\n")
	b.WriteString(input.Question)
	b.WriteString("\n\nCandidate's answer:\n")
	b.WriteString(input.Answer)

	return b.String()
}
