package app

import (
	"fmt"
	"math"
	"sort"

	"quiz-platform-service/internal/domain"
)

// Grade decides whether the selected option ids answer the question and how many
// points that earns. Points are all-or-nothing.
func Grade(question domain.Question, selected []string) (bool, int, error) {
	var correct bool
	switch question.Type {
	case domain.QuestionMultipleChoice, domain.QuestionYesNo:
		correct = gradeSingle(question.Options, selected)
	case domain.QuestionCheckbox:
		correct = gradeExactSet(question.Options, selected)
	default:
		return false, 0, fmt.Errorf("question %s: %w", question.ID, domain.ErrUnknownQuestionType)
	}
	if !correct {
		return false, 0, nil
	}
	return true, question.Points, nil
}

// gradeSingle requires exactly one selection equal to the single correct option.
// A question without exactly one correct option can never be answered correctly.
func gradeSingle(options []domain.AnswerOption, selected []string) bool {
	if len(selected) != 1 {
		return false
	}
	correctID := ""
	for _, opt := range options {
		if !opt.IsCorrect {
			continue
		}
		if correctID != "" {
			return false
		}
		correctID = opt.ID
	}
	return correctID != "" && selected[0] == correctID
}

// gradeExactSet compares the sorted selection with the sorted correct ids.
func gradeExactSet(options []domain.AnswerOption, selected []string) bool {
	correctIDs := make([]string, 0, len(options))
	for _, opt := range options {
		if opt.IsCorrect {
			correctIDs = append(correctIDs, opt.ID)
		}
	}
	if len(correctIDs) != len(selected) {
		return false
	}

	picked := append([]string(nil), selected...)
	sort.Strings(correctIDs)
	sort.Strings(picked)
	for i := range correctIDs {
		if correctIDs[i] != picked[i] {
			return false
		}
	}
	return true
}

// ScorePercentage rounds correct/total to a whole percentage; an empty submission scores 0.
func ScorePercentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Passed reports whether score meets the quiz passing score.
func Passed(score, passingScore int) bool {
	return score >= passingScore
}
