package services

import (
	"testing"
	"time"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }

type scoringFixture struct {
	assessment *models.Assessment
	attempt    *models.Attempt
	questions  []*models.Question
	keys       []*models.AnswerKey
	answers    []*models.AttemptAnswer
	arguments  []*models.Argument
}

// newChoiceFixture builds a multiple-choice assessment with n questions where
// option IDs 1..n are correct and the attempt answered the first `correct` of
// them correctly and the rest wrong.
func newChoiceFixture(assessmentType models.AssessmentType, n, correct, passingScore int) *scoringFixture {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	submitted := started.Add(42 * time.Minute)

	fixture := &scoringFixture{
		assessment: &models.Assessment{ID: 1, Type: assessmentType, PassingScore: passingScore},
		attempt: &models.Attempt{
			ID:          10,
			Status:      models.AttemptSubmitted,
			StartedAt:   started,
			SubmittedAt: &submitted,
		},
	}

	for i := 1; i <= n; i++ {
		questionID := uint(i)
		correctOption := uint(100 + i)
		fixture.questions = append(fixture.questions, &models.Question{
			ID: questionID, Type: models.QuestionMultipleChoice, AssessmentID: 1,
		})
		fixture.keys = append(fixture.keys, &models.AnswerKey{
			ID: questionID, QuestionID: questionID, CorrectOptionID: correctOption,
		})

		selected := correctOption
		if i > correct {
			selected = correctOption + 1000 // wrong option
		}
		fixture.answers = append(fixture.answers, &models.AttemptAnswer{
			ID: questionID, Status: models.AttemptSubmitted,
			AttemptID: 10, QuestionID: questionID,
			SelectedOptionID: uintPtr(selected),
		})
	}
	return fixture
}

func (f *scoringFixture) compute() *AttemptResults {
	return ComputeResults(f.assessment, f.attempt, f.answers, f.questions, f.keys, f.arguments)
}

func TestComputeResults_QuizAllAnswered(t *testing.T) {
	fixture := newChoiceFixture(models.TypeQuiz, 10, 7, 70)

	results := fixture.compute()

	assert.Equal(t, 10, results.TotalQuestions)
	assert.Equal(t, 10, results.AnsweredQuestions)
	require.NotNil(t, results.CorrectAnswers)
	assert.Equal(t, 7, *results.CorrectAnswers)
	require.NotNil(t, results.ScorePercentage)
	assert.Equal(t, 70.0, *results.ScorePercentage)
	require.NotNil(t, results.Passed)
	assert.True(t, *results.Passed)
	assert.Equal(t, 42, results.TimeSpentMinutes)
	assert.Equal(t, 10, results.ReviewedQuestions)
	assert.Zero(t, results.PendingReview)
	assert.Empty(t, results.ArgumentResults)
}

func TestComputeResults_UnansweredCountAsWrong(t *testing.T) {
	fixture := newChoiceFixture(models.TypeQuiz, 4, 2, 50)
	// Remove the answers for the two wrong questions entirely.
	fixture.answers = fixture.answers[:2]

	results := fixture.compute()

	assert.Equal(t, 4, results.TotalQuestions)
	assert.Equal(t, 2, results.AnsweredQuestions)
	require.NotNil(t, results.CorrectAnswers)
	assert.Equal(t, 2, *results.CorrectAnswers)
	assert.Equal(t, 50.0, *results.ScorePercentage)
	assert.True(t, *results.Passed)
}

func TestComputeResults_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		name     string
		total    int
		correct  int
		expected float64
	}{
		{"one of eight", 8, 1, 13},    // 12.5 -> 13
		{"five of eight", 8, 5, 63},   // 62.5 -> 63
		{"seven of eight", 8, 7, 88},  // 87.5 -> 88
		{"one of forty", 40, 1, 3},    // 2.5 -> 3
		{"one of three", 3, 1, 33},    // 33.33 -> 33
		{"two of three", 3, 2, 67},    // 66.67 -> 67
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := newChoiceFixture(models.TypeQuiz, tc.total, tc.correct, 60)
			results := fixture.compute()
			require.NotNil(t, results.ScorePercentage)
			assert.Equal(t, tc.expected, *results.ScorePercentage)
		})
	}
}

func TestComputeResults_PassingBoundary(t *testing.T) {
	// 62.5 rounds to 63, which clears a passing score of 63 exactly.
	fixture := newChoiceFixture(models.TypeQuiz, 8, 5, 63)
	results := fixture.compute()
	require.NotNil(t, results.Passed)
	assert.True(t, *results.Passed)

	fixture = newChoiceFixture(models.TypeQuiz, 8, 5, 64)
	results = fixture.compute()
	assert.False(t, *results.Passed)
}

func TestComputeResults_ZeroQuestions(t *testing.T) {
	started := time.Now().Add(-5 * time.Minute)
	submitted := time.Now()
	results := ComputeResults(
		&models.Assessment{ID: 1, Type: models.TypeQuiz, PassingScore: 70},
		&models.Attempt{Status: models.AttemptSubmitted, StartedAt: started, SubmittedAt: &submitted},
		nil, nil, nil, nil,
	)

	assert.Zero(t, results.TotalQuestions)
	require.NotNil(t, results.ScorePercentage)
	assert.Equal(t, 0.0, *results.ScorePercentage)
	require.NotNil(t, results.Passed)
	assert.False(t, *results.Passed)

	// Even a passing score of zero cannot pass an empty assessment.
	results = ComputeResults(
		&models.Assessment{ID: 2, Type: models.TypeProvaAberta, PassingScore: 0},
		&models.Attempt{Status: models.AttemptSubmitted, StartedAt: started, SubmittedAt: &submitted},
		nil, nil, nil, nil,
	)
	require.NotNil(t, results.Passed)
	assert.False(t, *results.Passed)
}

func TestComputeResults_OpenAnswersMaskVerdictWhilePending(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	submitted := started.Add(20 * time.Minute)
	assessment := &models.Assessment{ID: 1, Type: models.TypeProvaAberta, PassingScore: 70}
	attempt := &models.Attempt{ID: 10, Status: models.AttemptSubmitted, StartedAt: started, SubmittedAt: &submitted}

	questions := []*models.Question{
		{ID: 1, Type: models.QuestionOpen, AssessmentID: 1},
		{ID: 2, Type: models.QuestionOpen, AssessmentID: 1},
	}
	answers := []*models.AttemptAnswer{
		{ID: 1, AttemptID: 10, QuestionID: 1, Status: models.AttemptGraded, TextAnswer: strPtr("answer one"), IsCorrect: boolPtr(true)},
		{ID: 2, AttemptID: 10, QuestionID: 2, Status: models.AttemptSubmitted, TextAnswer: strPtr("answer two")},
	}

	results := ComputeResults(assessment, attempt, answers, questions, nil, nil)

	assert.Equal(t, 2, results.AnsweredQuestions)
	assert.Equal(t, 1, results.ReviewedQuestions)
	assert.Equal(t, 1, results.PendingReview)
	assert.Nil(t, results.CorrectAnswers)
	assert.Nil(t, results.ScorePercentage)
	assert.Nil(t, results.Passed)
}

func TestComputeResults_OpenAnswersAllReviewed(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	submitted := started.Add(20 * time.Minute)
	assessment := &models.Assessment{ID: 1, Type: models.TypeProvaAberta, PassingScore: 50}
	attempt := &models.Attempt{ID: 10, Status: models.AttemptSubmitted, StartedAt: started, SubmittedAt: &submitted}

	questions := []*models.Question{
		{ID: 1, Type: models.QuestionOpen, AssessmentID: 1},
		{ID: 2, Type: models.QuestionOpen, AssessmentID: 1},
	}
	answers := []*models.AttemptAnswer{
		{ID: 1, AttemptID: 10, QuestionID: 1, Status: models.AttemptGraded, TextAnswer: strPtr("answer one"), IsCorrect: boolPtr(true)},
		{ID: 2, AttemptID: 10, QuestionID: 2, Status: models.AttemptGraded, TextAnswer: strPtr("answer two"), IsCorrect: boolPtr(false)},
	}

	results := ComputeResults(assessment, attempt, answers, questions, nil, nil)

	assert.Zero(t, results.PendingReview)
	assert.Equal(t, 2, results.ReviewedQuestions)
	require.NotNil(t, results.CorrectAnswers)
	assert.Equal(t, 1, *results.CorrectAnswers)
	assert.Equal(t, 50.0, *results.ScorePercentage)
	assert.True(t, *results.Passed)
}

func TestComputeResults_SimuladoArgumentBreakdown(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	submitted := started.Add(60 * time.Minute)
	assessment := &models.Assessment{ID: 1, Type: models.TypeSimulado, PassingScore: 60}
	attempt := &models.Attempt{ID: 10, Status: models.AttemptSubmitted, StartedAt: started, SubmittedAt: &submitted}

	arguments := []*models.Argument{
		{ID: 1, Title: "Anatomy", AssessmentID: 1},
		{ID: 2, Title: "Physiology", AssessmentID: 1},
	}

	var questions []*models.Question
	var keys []*models.AnswerKey
	var answers []*models.AttemptAnswer
	// Three questions in Anatomy (2 correct), two in Physiology (1 correct),
	// one question without an argument (correct).
	spec := []struct {
		questionID uint
		argumentID *uint
		correct    bool
	}{
		{1, uintPtr(1), true},
		{2, uintPtr(1), true},
		{3, uintPtr(1), false},
		{4, uintPtr(2), true},
		{5, uintPtr(2), false},
		{6, nil, true},
	}
	for _, q := range spec {
		questions = append(questions, &models.Question{
			ID: q.questionID, Type: models.QuestionMultipleChoice, AssessmentID: 1, ArgumentID: q.argumentID,
		})
		correctOption := 100 + q.questionID
		keys = append(keys, &models.AnswerKey{ID: q.questionID, QuestionID: q.questionID, CorrectOptionID: correctOption})
		selected := correctOption
		if !q.correct {
			selected += 1000
		}
		answers = append(answers, &models.AttemptAnswer{
			ID: q.questionID, AttemptID: 10, QuestionID: q.questionID,
			Status: models.AttemptSubmitted, SelectedOptionID: uintPtr(selected),
		})
	}

	results := ComputeResults(assessment, attempt, answers, questions, keys, arguments)

	require.NotNil(t, results.CorrectAnswers)
	assert.Equal(t, 4, *results.CorrectAnswers)
	assert.Equal(t, 67.0, *results.ScorePercentage) // 4/6 = 66.67 -> 67

	require.Len(t, results.ArgumentResults, 2)

	anatomy := results.ArgumentResults[0]
	assert.Equal(t, uint(1), anatomy.ArgumentID)
	assert.Equal(t, "Anatomy", anatomy.Title)
	assert.Equal(t, 3, anatomy.TotalQuestions)
	assert.Equal(t, 2, anatomy.CorrectAnswers)
	assert.Equal(t, 67.0, anatomy.ScorePercentage)

	physiology := results.ArgumentResults[1]
	assert.Equal(t, uint(2), physiology.ArgumentID)
	assert.Equal(t, 2, physiology.TotalQuestions)
	assert.Equal(t, 1, physiology.CorrectAnswers)
	assert.Equal(t, 50.0, physiology.ScorePercentage)

	// Per-argument totals never exceed the overall totals.
	argTotal := anatomy.TotalQuestions + physiology.TotalQuestions
	assert.LessOrEqual(t, argTotal, results.TotalQuestions)
}

func TestComputeResults_ArgumentBreakdownEdges(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	submitted := started.Add(30 * time.Minute)
	assessment := &models.Assessment{ID: 1, Type: models.TypeSimulado, PassingScore: 60}
	attempt := &models.Attempt{ID: 10, Status: models.AttemptSubmitted, StartedAt: started, SubmittedAt: &submitted}

	arguments := []*models.Argument{
		{ID: 1, Title: "Pharmacology", AssessmentID: 1},
		{ID: 2, Title: "Ethics", AssessmentID: 1},
	}
	questions := []*models.Question{
		// A reviewed open question under Pharmacology, and a question pointing
		// at a topic id that no argument carries.
		{ID: 1, Type: models.QuestionOpen, AssessmentID: 1, ArgumentID: uintPtr(1)},
		{ID: 2, Type: models.QuestionMultipleChoice, AssessmentID: 1, ArgumentID: uintPtr(99)},
	}
	keys := []*models.AnswerKey{
		{ID: 2, QuestionID: 2, CorrectOptionID: 102},
	}
	answers := []*models.AttemptAnswer{
		{ID: 1, AttemptID: 10, QuestionID: 1, Status: models.AttemptGraded, TextAnswer: strPtr("reviewed"), IsCorrect: boolPtr(true)},
		{ID: 2, AttemptID: 10, QuestionID: 2, Status: models.AttemptSubmitted, SelectedOptionID: uintPtr(102)},
	}

	results := ComputeResults(assessment, attempt, answers, questions, keys, arguments)

	require.Len(t, results.ArgumentResults, 2)

	pharmacology := results.ArgumentResults[0]
	assert.Equal(t, uint(1), pharmacology.ArgumentID)
	assert.Equal(t, "Pharmacology", pharmacology.Title)
	assert.Equal(t, 1, pharmacology.TotalQuestions)
	// A graded open answer with a positive verdict counts for its topic.
	assert.Equal(t, 1, pharmacology.CorrectAnswers)
	assert.Equal(t, 100.0, pharmacology.ScorePercentage)

	// A topic with no questions still appears, zeroed.
	ethics := results.ArgumentResults[1]
	assert.Equal(t, uint(2), ethics.ArgumentID)
	assert.Equal(t, "Ethics", ethics.Title)
	assert.Zero(t, ethics.TotalQuestions)
	assert.Zero(t, ethics.CorrectAnswers)
	assert.Equal(t, 0.0, ethics.ScorePercentage)
}

func TestComputeResults_TimeSpentRounding(t *testing.T) {
	started := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		elapsed  time.Duration
		expected int
	}{
		{"ninety seconds", 90 * time.Second, 2},
		{"eighty nine seconds", 89 * time.Second, 1},
		{"exact hour", time.Hour, 60},
		{"under thirty seconds", 20 * time.Second, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			submitted := started.Add(tc.elapsed)
			attempt := &models.Attempt{Status: models.AttemptSubmitted, StartedAt: started, SubmittedAt: &submitted}
			results := ComputeResults(&models.Assessment{Type: models.TypeQuiz}, attempt, nil, nil, nil, nil)
			assert.Equal(t, tc.expected, results.TimeSpentMinutes)
		})
	}
}

func TestRoundPercentage_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, RoundPercentage(0, 0))
	assert.Equal(t, 0.0, RoundPercentage(5, 0))
}
