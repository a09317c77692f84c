package itemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/examprep/internal/exam"
)

const systemPrompt = `You write certification practice items for the CompTIA A+ exams.

Rules:
- Return a JSON object whose only key is "items". It must contain exactly one item per requested slot, in the same order.
- Each item must use the answerType requested for its slot and echo the slot's objectiveId.
- Ground every item in the objective title and bullets given for its slot. Do not invent facts outside the objective.
- single: 4 to 6 options with exactly one correct index.
- multi: 4 to 6 options with two or three correct indices. Say in the prompt how many to select.
- pbq-order: 4 to 8 steps in shuffled display order; correctOrder lists indices into orderItems in the correct sequence.
- pbq-match: 3 to 8 entries in each column; correctPairs has one pair per left entry.
- Options, steps and column entries must be distinct. Distractors should be plausible, not absurd.
- Fields that do not apply to an item's answerType must be empty arrays.
- The explanation states why the correct answer is correct in one or two sentences.`

var difficultyGuidance = map[exam.Difficulty]string{
	exam.DifficultyEasy:   "Recall level. Direct questions about a single fact from the bullets.",
	exam.DifficultyMedium: "Application level. Short workplace scenarios that require choosing the right fact.",
	exam.DifficultyHard:   "Analysis level. Multi-step troubleshooting scenarios with close distractors.",
}

// buildUserMessage describes the batch to generate.
func buildUserMessage(req BatchRequest) string {
	var b strings.Builder

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = exam.DifficultyMedium
	}

	fmt.Fprintf(&b, "Exam core: %s\n", req.Core)
	fmt.Fprintf(&b, "Difficulty: %s\n", difficulty)
	fmt.Fprintf(&b, "Guidance: %s\n", difficultyGuidance[difficulty])
	fmt.Fprintf(&b, "Slots: %d\n", len(req.Items))

	for i, it := range req.Items {
		fmt.Fprintf(&b, "\n%d. answerType=%s objectiveId=%s\n", i+1, it.AnswerType, it.ObjectiveID)
		fmt.Fprintf(&b, "   Domain: %s %s\n", it.DomainNumber, it.DomainLabel)
		fmt.Fprintf(&b, "   Objective: %s\n", it.ObjectiveTitle)
		for _, bullet := range it.ObjectiveBullets {
			fmt.Fprintf(&b, "   - %s\n", bullet)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// withCorrection appends the rejection reason of a previous attempt.
func withCorrection(msg, reason string) string {
	return msg + "\n\nYour previous response was rejected: " + reason +
		"\nReturn a corrected response for every slot."
}
