package game

import "strings"

// Result is the outcome of evaluating a raw answer against a question.
type Result struct {
	IsCorrect     bool
	CorrectAnswer string
}

// Evaluate checks raw input against the question's canonical answer.
// Comparison trims whitespace and ignores case but is otherwise exact:
// no fuzzy matching, no diacritic folding. Empty trimmed input yields
// an incorrect result with an empty correct answer; callers treat that
// as a non-attempt rather than a failed one.
func Evaluate(q Question, raw string) Result {
	answer := strings.TrimSpace(raw)
	if answer == "" {
		return Result{}
	}
	correct := q.CorrectAnswer()
	return Result{
		IsCorrect:     strings.EqualFold(answer, correct),
		CorrectAnswer: correct,
	}
}
