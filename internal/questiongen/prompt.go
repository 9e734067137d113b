package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced interviewer preparing a mock interview for a candidate.

Rules:
- Generate exactly the requested number of questions for the given interview type.
- Every question must be self-contained and phrased the way a real interviewer would ask it out loud.
- Order the questions the way a real interview would flow: warm-up first, the hardest material in the middle, a reflective or forward-looking question last.
- Tailor questions to the target role and company when they are given. Never invent facts about the company.
- For behavioral questions, ask about concrete past situations ("Tell me about a time...").
- For technical, system_design, and coding questions, keep the problem statement precise enough to answer verbally without a whiteboard.
- For case_study questions, present a short scenario followed by the ask.
- Do not number the questions inside the prompt text.
- Do not repeat or trivially rephrase another question in the set.`

// buildUserMessage constructs the user message from the generation input.
func buildUserMessage(input Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Interview type: %s\n", input.Type)
	fmt.Fprintf(&b, "Number of questions: %d\n", input.Count)

	if input.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	} else {
		b.WriteString("Difficulty: mixed, appropriate for the role\n")
	}
	if input.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", input.TargetRole)
	}
	if input.TargetCompany != "" {
		fmt.Fprintf(&b, "Target company: %s\n", input.TargetCompany)
	}

	return strings.TrimRight(b.String(), "\n")
}
