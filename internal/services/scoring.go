package services

import (
	"math"
	"sort"

	"github.com/revisa-edu/assessment-service/internal/models"
)

// AttemptResults is the computed score summary for a submitted attempt.
// CorrectAnswers, ScorePercentage and Passed are absent while open answers
// are still waiting for review.
type AttemptResults struct {
	TotalQuestions    int              `json:"total_questions"`
	AnsweredQuestions int              `json:"answered_questions"`
	CorrectAnswers    *int             `json:"correct_answers,omitempty"`
	ScorePercentage   *float64         `json:"score_percentage,omitempty"`
	Passed            *bool            `json:"passed,omitempty"`
	TimeSpentMinutes  int              `json:"time_spent_minutes"`
	ReviewedQuestions int              `json:"reviewed_questions"`
	PendingReview     int              `json:"pending_review"`
	ArgumentResults   []ArgumentResult `json:"argument_results,omitempty"`
}

// ArgumentResult is the per-topic breakdown produced for SIMULADO assessments.
type ArgumentResult struct {
	ArgumentID      uint    `json:"argument_id"`
	Title           string  `json:"title"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	ScorePercentage float64 `json:"score_percentage"`
}

// RoundPercentage rounds half up, matching how scores are reported everywhere.
func RoundPercentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct) / float64(total) * 100)
}

// ComputeResults derives the score summary for an attempt from persisted state.
// It is a pure function: callers load the attempt, its answers, the assessment
// questions, the answer keys and the arguments, and get back the summary.
func ComputeResults(
	assessment *models.Assessment,
	attempt *models.Attempt,
	answers []*models.AttemptAnswer,
	questions []*models.Question,
	keys []*models.AnswerKey,
	arguments []*models.Argument,
) *AttemptResults {
	answerByQuestion := make(map[uint]*models.AttemptAnswer, len(answers))
	for _, answer := range answers {
		answerByQuestion[answer.QuestionID] = answer
	}
	keyByQuestion := make(map[uint]*models.AnswerKey, len(keys))
	for _, key := range keys {
		keyByQuestion[key.QuestionID] = key
	}

	results := &AttemptResults{
		TotalQuestions:   len(questions),
		TimeSpentMinutes: timeSpentMinutes(attempt),
	}

	correct := 0
	for _, question := range questions {
		answer := answerByQuestion[question.ID]
		if answer != nil && answer.HasAnswer() {
			results.AnsweredQuestions++
		}

		switch {
		case question.Type.IsMultipleChoice():
			// A choice with a selection is auto-checked, so it counts as
			// reviewed the moment it is answered.
			if answer != nil && answer.SelectedOptionID != nil {
				results.ReviewedQuestions++
			}
			if isCorrectChoice(answer, keyByQuestion[question.ID]) {
				correct++
			}
		case question.Type.IsOpen():
			if answer == nil || !answer.HasAnswer() {
				continue
			}
			if answer.Status.IsGraded() {
				results.ReviewedQuestions++
				if answer.IsCorrect != nil && *answer.IsCorrect {
					correct++
				}
			} else {
				results.PendingReview++
			}
		}
	}

	// While any open answer awaits review the aggregate verdict is unknown,
	// so correct count, percentage and pass flag stay absent.
	if results.PendingReview == 0 {
		score := RoundPercentage(correct, results.TotalQuestions)
		// An assessment with no questions cannot be passed, even with a
		// passing score of zero.
		passed := results.TotalQuestions > 0 && score >= float64(assessment.PassingScore)
		results.CorrectAnswers = &correct
		results.ScorePercentage = &score
		results.Passed = &passed
	}

	if assessment.Type.IsSimulado() {
		results.ArgumentResults = computeArgumentResults(questions, answerByQuestion, keyByQuestion, arguments)
	}

	return results
}

func timeSpentMinutes(attempt *models.Attempt) int {
	if attempt.SubmittedAt == nil {
		return 0
	}
	elapsed := attempt.SubmittedAt.Sub(attempt.StartedAt)
	if elapsed < 0 {
		return 0
	}
	return int(math.Round(elapsed.Minutes()))
}

func isCorrectChoice(answer *models.AttemptAnswer, key *models.AnswerKey) bool {
	if answer == nil || answer.SelectedOptionID == nil || key == nil {
		return false
	}
	return *answer.SelectedOptionID == key.CorrectOptionID
}

// isCorrectAnswer covers both kinds: a graded answer with a positive verdict,
// or a choice matching the canonical option.
func isCorrectAnswer(answer *models.AttemptAnswer, key *models.AnswerKey) bool {
	if answer != nil && answer.Status.IsGraded() && answer.IsCorrect != nil && *answer.IsCorrect {
		return true
	}
	return isCorrectChoice(answer, key)
}

func computeArgumentResults(
	questions []*models.Question,
	answerByQuestion map[uint]*models.AttemptAnswer,
	keyByQuestion map[uint]*models.AnswerKey,
	arguments []*models.Argument,
) []ArgumentResult {
	titleByArgument := make(map[uint]string, len(arguments))
	for _, argument := range arguments {
		titleByArgument[argument.ID] = argument.Title
	}

	// Every known topic appears in the breakdown, with zeroes when none of
	// its questions were asked. Questions pointing at unknown topic ids are
	// left out rather than emitting untitled rows.
	byArgument := make(map[uint]*ArgumentResult, len(arguments))
	for _, argument := range arguments {
		byArgument[argument.ID] = &ArgumentResult{
			ArgumentID: argument.ID,
			Title:      titleByArgument[argument.ID],
		}
	}
	for _, question := range questions {
		if question.ArgumentID == nil {
			continue
		}
		entry := byArgument[*question.ArgumentID]
		if entry == nil {
			continue
		}
		entry.TotalQuestions++
		if isCorrectAnswer(answerByQuestion[question.ID], keyByQuestion[question.ID]) {
			entry.CorrectAnswers++
		}
	}

	results := make([]ArgumentResult, 0, len(byArgument))
	for _, entry := range byArgument {
		entry.ScorePercentage = RoundPercentage(entry.CorrectAnswers, entry.TotalQuestions)
		results = append(results, *entry)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ArgumentID < results[j].ArgumentID
	})
	return results
}

// CombinedScore is the finalization score for an attempt once every open
// answer has been reviewed. It is the same percentage ComputeResults reports,
// recomputed from persisted state so repeated finalizations agree.
func CombinedScore(
	assessment *models.Assessment,
	attempt *models.Attempt,
	answers []*models.AttemptAnswer,
	questions []*models.Question,
	keys []*models.AnswerKey,
) (float64, bool) {
	results := ComputeResults(assessment, attempt, answers, questions, keys, nil)
	if results.ScorePercentage == nil {
		return 0, false
	}
	return *results.ScorePercentage, true
}
