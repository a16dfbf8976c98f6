package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/revisa-edu/assessment-service/internal/models"
	"github.com/revisa-edu/assessment-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory repositories.Repository. Reads hand out copies so
// the optimistic guards behave like they do against a real database: what a
// caller mutates is not what the store holds until a write method runs.
type fakeRepo struct {
	mu sync.Mutex

	attempts    map[uint]*models.Attempt
	answers     map[uint]*models.AttemptAnswer
	assessments map[uint]*models.Assessment
	questions   map[uint]*models.Question
	options     map[uint]*models.QuestionOption
	keys        map[uint]*models.AnswerKey
	arguments   map[uint]*models.Argument
	users       map[string]*models.User

	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		attempts:    make(map[uint]*models.Attempt),
		answers:     make(map[uint]*models.AttemptAnswer),
		assessments: make(map[uint]*models.Assessment),
		questions:   make(map[uint]*models.Question),
		options:     make(map[uint]*models.QuestionOption),
		keys:        make(map[uint]*models.AnswerKey),
		arguments:   make(map[uint]*models.Argument),
		users:       make(map[string]*models.User),
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) Attempt() repositories.AttemptRepository             { return &fakeAttemptRepo{f} }
func (f *fakeRepo) AttemptAnswer() repositories.AttemptAnswerRepository { return &fakeAnswerRepo{f} }
func (f *fakeRepo) Assessment() repositories.AssessmentRepository       { return &fakeAssessmentRepo{f} }
func (f *fakeRepo) Question() repositories.QuestionRepository           { return &fakeQuestionRepo{f} }
func (f *fakeRepo) AnswerKey() repositories.AnswerKeyRepository         { return &fakeKeyRepo{f} }
func (f *fakeRepo) Argument() repositories.ArgumentRepository           { return &fakeArgumentRepo{f} }
func (f *fakeRepo) User() repositories.UserRepository                   { return &fakeUserRepo{f} }

func (f *fakeRepo) WithTx(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

// ===== seeding helpers =====

func (f *fakeRepo) addUser(id string, role models.UserRole) *models.User {
	user := &models.User{ID: id, FullName: "User " + id, Email: id + "@example.com", Role: role, IsActive: true}
	f.users[id] = user
	return user
}

func (f *fakeRepo) addAssessment(assessmentType models.AssessmentType, passingScore int, timeLimit *int) *models.Assessment {
	assessment := &models.Assessment{
		ID:               f.id(),
		Slug:             "assessment",
		Title:            "Assessment",
		Type:             assessmentType,
		PassingScore:     passingScore,
		TimeLimitMinutes: timeLimit,
	}
	f.assessments[assessment.ID] = assessment
	return assessment
}

func (f *fakeRepo) addQuestion(assessmentID uint, questionType models.QuestionType, argumentID *uint) *models.Question {
	question := &models.Question{
		ID:           f.id(),
		Text:         "Question",
		Type:         questionType,
		AssessmentID: assessmentID,
		ArgumentID:   argumentID,
	}
	f.questions[question.ID] = question
	return question
}

func (f *fakeRepo) addOption(questionID uint, text string) *models.QuestionOption {
	option := &models.QuestionOption{ID: f.id(), Text: text, QuestionID: questionID}
	f.options[option.ID] = option
	return option
}

func (f *fakeRepo) addKey(questionID, correctOptionID uint) *models.AnswerKey {
	key := &models.AnswerKey{ID: f.id(), QuestionID: questionID, CorrectOptionID: correctOptionID}
	f.keys[key.ID] = key
	return key
}

func (f *fakeRepo) addArgument(assessmentID uint, title string) *models.Argument {
	argument := &models.Argument{ID: f.id(), Title: title, AssessmentID: assessmentID}
	f.arguments[argument.ID] = argument
	return argument
}

func (f *fakeRepo) addAttempt(userID string, assessmentID uint, status models.AttemptStatus) *models.Attempt {
	now := time.Now()
	attempt := &models.Attempt{
		ID:           f.id(),
		Status:       status,
		StartedAt:    now.Add(-30 * time.Minute),
		UserID:       userID,
		AssessmentID: assessmentID,
		CreatedAt:    now,
	}
	if status != models.AttemptInProgress {
		submittedAt := now.Add(-10 * time.Minute)
		attempt.SubmittedAt = &submittedAt
	}
	f.attempts[attempt.ID] = attempt
	return attempt
}

func (f *fakeRepo) addAnswer(attemptID, questionID uint, status models.AttemptStatus, optionID *uint, text *string) *models.AttemptAnswer {
	answer := &models.AttemptAnswer{
		ID:               f.id(),
		Status:           status,
		SelectedOptionID: optionID,
		TextAnswer:       text,
		AttemptID:        attemptID,
		QuestionID:       questionID,
		CreatedAt:        time.Now().Add(time.Duration(f.nextID) * time.Millisecond),
	}
	f.answers[answer.ID] = answer
	return answer
}

// ===== attempt repo =====

type fakeAttemptRepo struct{ f *fakeRepo }

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *models.Attempt) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	attempt.ID = r.f.id()
	attempt.CreatedAt = time.Now()
	stored := *attempt
	r.f.attempts[attempt.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	attempt, ok := r.f.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *attempt
	return &copied, nil
}

func (r *fakeAttemptRepo) Update(ctx context.Context, attempt *models.Attempt) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *attempt
	r.f.attempts[attempt.ID] = &stored
	return nil
}

func (r *fakeAttemptRepo) GetActiveByUserAndAssessment(ctx context.Context, userID string, assessmentID uint) (*models.Attempt, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, attempt := range r.f.attempts {
		if attempt.UserID == userID && attempt.AssessmentID == assessmentID && attempt.Status.IsInProgress() {
			copied := *attempt
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttemptRepo) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var result []*models.Attempt
	for _, attempt := range r.f.attempts {
		if filters.UserID != nil && attempt.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && attempt.Status != *filters.Status {
			continue
		}
		if filters.AssessmentID != nil && attempt.AssessmentID != *filters.AssessmentID {
			continue
		}
		copied := *attempt
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (r *fakeAttemptRepo) FinalizeIfSubmitted(ctx context.Context, id uint, score float64, gradedAt time.Time) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	attempt, ok := r.f.attempts[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if !attempt.Status.IsSubmitted() {
		return false, nil
	}
	attempt.Status = models.AttemptGraded
	attempt.Score = &score
	attempt.GradedAt = &gradedAt
	attempt.UpdatedAt = gradedAt
	return true, nil
}

// ===== attempt answer repo =====

type fakeAnswerRepo struct{ f *fakeRepo }

func (r *fakeAnswerRepo) Create(ctx context.Context, answer *models.AttemptAnswer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	answer.ID = r.f.id()
	answer.CreatedAt = time.Now()
	stored := *answer
	r.f.answers[answer.ID] = &stored
	return nil
}

func (r *fakeAnswerRepo) GetByID(ctx context.Context, id uint) (*models.AttemptAnswer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	answer, ok := r.f.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *answer
	return &copied, nil
}

func (r *fakeAnswerRepo) Update(ctx context.Context, answer *models.AttemptAnswer) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.answers[answer.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *answer
	r.f.answers[answer.ID] = &stored
	return nil
}

func (r *fakeAnswerRepo) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.AttemptAnswer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var result []*models.AttemptAnswer
	for _, answer := range r.f.answers {
		if answer.AttemptID == attemptID {
			copied := *answer
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeAnswerRepo) GetByAttemptAndQuestion(ctx context.Context, attemptID, questionID uint) (*models.AttemptAnswer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, answer := range r.f.answers {
		if answer.AttemptID == attemptID && answer.QuestionID == questionID {
			copied := *answer
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAnswerRepo) SubmitAllInProgress(ctx context.Context, attemptID uint, now time.Time) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, answer := range r.f.answers {
		if answer.AttemptID == attemptID && answer.Status.IsInProgress() {
			answer.Status = models.AttemptSubmitted
			answer.UpdatedAt = now
		}
	}
	return nil
}

func (r *fakeAnswerRepo) GradeSubmitted(ctx context.Context, answer *models.AttemptAnswer) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stored, ok := r.f.answers[answer.ID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if !stored.Status.IsSubmitted() || stored.ReviewerID != nil {
		return false, nil
	}
	stored.Status = answer.Status
	stored.IsCorrect = answer.IsCorrect
	stored.TeacherComment = answer.TeacherComment
	stored.ReviewerID = answer.ReviewerID
	stored.UpdatedAt = answer.UpdatedAt
	return true, nil
}

func (r *fakeAnswerRepo) ListPendingReview(ctx context.Context) ([]*models.AttemptAnswer, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var result []*models.AttemptAnswer
	for _, answer := range r.f.answers {
		if answer.Status.IsSubmitted() {
			copied := *answer
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// ===== lookup repos =====

type fakeAssessmentRepo struct{ f *fakeRepo }

func (r *fakeAssessmentRepo) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	assessment, ok := r.f.assessments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *assessment
	return &copied, nil
}

func (r *fakeAssessmentRepo) GetBySlug(ctx context.Context, slug string) (*models.Assessment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, assessment := range r.f.assessments {
		if assessment.Slug == slug {
			copied := *assessment
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssessmentRepo) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var result []*models.Assessment
	for _, assessment := range r.f.assessments {
		if filters.Type != nil && assessment.Type != *filters.Type {
			continue
		}
		copied := *assessment
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

type fakeQuestionRepo struct{ f *fakeRepo }

func (r *fakeQuestionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	question, ok := r.f.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *question
	return &copied, nil
}

func (r *fakeQuestionRepo) GetByAssessment(ctx context.Context, assessmentID uint) ([]*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var result []*models.Question
	for _, question := range r.f.questions {
		if question.AssessmentID == assessmentID {
			copied := *question
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeQuestionRepo) GetOptionsByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.QuestionOption, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	wanted := make(map[uint]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}
	var result []*models.QuestionOption
	for _, option := range r.f.options {
		if wanted[option.QuestionID] {
			copied := *option
			result = append(result, &copied)
		}
	}
	return result, nil
}

type fakeKeyRepo struct{ f *fakeRepo }

func (r *fakeKeyRepo) GetByQuestion(ctx context.Context, questionID uint) (*models.AnswerKey, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, key := range r.f.keys {
		if key.QuestionID == questionID {
			copied := *key
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeKeyRepo) GetByQuestionIDs(ctx context.Context, questionIDs []uint) ([]*models.AnswerKey, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	wanted := make(map[uint]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}
	var result []*models.AnswerKey
	for _, key := range r.f.keys {
		if wanted[key.QuestionID] {
			copied := *key
			result = append(result, &copied)
		}
	}
	return result, nil
}

type fakeArgumentRepo struct{ f *fakeRepo }

func (r *fakeArgumentRepo) GetByID(ctx context.Context, id uint) (*models.Argument, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	argument, ok := r.f.arguments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *argument
	return &copied, nil
}

func (r *fakeArgumentRepo) GetByAssessment(ctx context.Context, assessmentID uint) ([]*models.Argument, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var result []*models.Argument
	for _, argument := range r.f.arguments {
		if argument.AssessmentID == assessmentID {
			copied := *argument
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeUserRepo struct{ f *fakeRepo }

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var result []*models.User
	for _, user := range r.f.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		copied := *user
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}
