package service

import (
	"errors"
	"knowledgebot/internal/model"
	"knowledgebot/internal/repository"
	"knowledgebot/internal/util"
	"knowledgebot/pkg/logger"
	"knowledgebot/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestProvider is the read-only slice of the test store the quiz engine
// consumes. *repository.TestRepository satisfies it.
type TestProvider interface {
	FindByID(id string) (*model.Test, error)
	GetOrderedQuestions(testID string) ([]model.Question, error)
	ListActive(page, limit int) ([]model.Test, int64, error)
}

// AttemptStore persists finished attempts and serves the reporting
// surface. *repository.AttemptRepository satisfies it.
type AttemptStore interface {
	Create(attempt *model.Attempt) error
	History(userID uint, testID string, limit, offset int) ([]model.Attempt, error)
	ListByTest(testID string, limit, offset int) ([]model.Attempt, error)
	Stats(testID string) (*repository.TestStats, error)
}

// QuizService orchestrates quiz sessions: start, answer, finish,
// cancel. State transitions follow NoSession -> InProgress ->
// Completed/Cancelled; a completing submission scores and persists the
// attempt before the session is closed, so a failed write leaves the
// session recoverable.
type QuizService struct {
	Tests    TestProvider
	Attempts AttemptStore
	Registry SessionRegistry

	persistRetries int
	retryDelay     time.Duration
}

func NewQuizService(tests TestProvider, attempts AttemptStore, registry SessionRegistry, persistRetries int) *QuizService {
	if persistRetries <= 0 {
		persistRetries = 3
	}
	return &QuizService{
		Tests:          tests,
		Attempts:       attempts,
		Registry:       registry,
		persistRetries: persistRetries,
		retryDelay:     200 * time.Millisecond,
	}
}

type QuestionPayload struct {
	TestID     string             `json:"testId"`
	QuestionID string             `json:"questionId"`
	Index      int                `json:"index"` // zero-based position
	Total      int                `json:"total"`
	Text       string             `json:"text"`
	Type       model.QuestionType `json:"type"`
	Options    []string           `json:"options,omitempty"`
}

type QuizResultPayload struct {
	AttemptID    string `json:"attemptId"`
	Score        int    `json:"score"`
	Passed       bool   `json:"passed"`
	PassingScore int    `json:"passingScore"`
	CorrectCount int    `json:"correctCount"`
	Total        int    `json:"total"`
}

// SubmitOutcome carries either the next question or the final result.
type SubmitOutcome struct {
	Next   *QuestionPayload   `json:"next,omitempty"`
	Result *QuizResultPayload `json:"result,omitempty"`
}

func questionPayload(testID string, q *model.Question, index, total int) *QuestionPayload {
	p := &QuestionPayload{
		TestID:     testID,
		QuestionID: q.ID,
		Index:      index,
		Total:      total,
		Text:       q.Text,
		Type:       q.Type,
	}
	for _, opt := range q.Options {
		p.Options = append(p.Options, opt.Text)
	}
	return p
}

func (s *QuizService) loadTest(testID string) (*model.Test, []model.Question, error) {
	test, err := s.Tests.FindByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrTestNotFound
		}
		return nil, nil, err
	}

	questions, err := s.Tests.GetOrderedQuestions(testID)
	if err != nil {
		return nil, nil, err
	}
	return test, questions, nil
}

// StartQuiz opens a session and returns the first question. The session
// snapshots the question order, so content edits made mid-attempt do
// not shift the traversal under the user.
func (s *QuizService) StartQuiz(userID uint, testID string) (*QuestionPayload, error) {
	test, questions, err := s.loadTest(testID)
	if err != nil {
		return nil, err
	}
	if !test.IsActive {
		return nil, util.ErrTestInactive
	}
	if len(questions) == 0 {
		return nil, util.ErrNoQuestions
	}

	questionIDs := make([]string, len(questions))
	for i := range questions {
		questionIDs[i] = questions[i].ID
	}

	if _, err := s.Registry.Open(userID, testID, questionIDs, time.Duration(test.TimeLimit)*time.Minute); err != nil {
		return nil, err
	}

	return questionPayload(testID, &questions[0], 0, len(questions)), nil
}

// SubmitAnswer records the answer for the current question and returns
// either the next question or, on the last question, the final result.
// When the attempt write failed on a previous submission the same call
// with the last question retries the write without re-recording.
func (s *QuizService) SubmitAnswer(userID uint, testID, questionID string, answer Answer) (*SubmitOutcome, error) {
	test, questions, err := s.loadTest(testID)
	if err != nil {
		return nil, err
	}

	sess := s.Registry.Get(userID, testID)
	if sess == nil {
		return nil, util.ErrSessionExpired
	}

	// The snapshot no longer matches the stored test; the attempt
	// cannot be scored coherently, so expire it.
	if len(questions) != len(sess.QuestionIDs) {
		s.Registry.Close(userID, testID)
		return nil, util.ErrSessionExpired
	}

	if !sess.Finished() {
		q := &questions[sess.Index]
		if q.ID != questionID {
			return nil, util.ErrQuestionMismatch
		}

		correct, err := EvaluateAnswer(q, answer)
		if err != nil {
			return nil, err
		}

		sess, err = s.Registry.RecordAnswer(userID, testID, AnswerRecord{
			QuestionID: questionID,
			Answer:     answer,
			IsCorrect:  correct,
		})
		if err != nil {
			return nil, err
		}

		if !sess.Finished() {
			next := &questions[sess.Index]
			return &SubmitOutcome{Next: questionPayload(testID, next, sess.Index, len(questions))}, nil
		}
	} else if sess.QuestionIDs[len(sess.QuestionIDs)-1] != questionID {
		// Recovery path: every question is already recorded but the
		// attempt was never persisted. Only a retry of the final answer
		// is accepted.
		return nil, util.ErrQuestionMismatch
	}

	result, err := s.finalize(userID, test, questions, sess)
	if err != nil {
		return nil, err
	}
	return &SubmitOutcome{Result: result}, nil
}

// finalize scores the finished session, persists the attempt, then
// closes the session, strictly in that order.
func (s *QuizService) finalize(userID uint, test *model.Test, questions []model.Question, sess *QuizSession) (*QuizResultPayload, error) {
	score, err := ScoreTest(test, questions, sess.Answers)
	if err != nil {
		return nil, err
	}

	raw, err := EncodeAnswers(sess.Answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := &model.Attempt{
		UserID:      userID,
		TestID:      test.ID,
		Score:       score.Percent,
		Passed:      score.Passed,
		TimeTaken:   int(now.Sub(sess.StartedAt).Seconds()),
		Answers:     raw,
		StartedAt:   sess.StartedAt,
		CompletedAt: now,
	}

	if err := s.persistAttempt(attempt); err != nil {
		// Deliberately keep the session open: the user retries the last
		// answer instead of losing the finished quiz.
		logger.Log.Error("failed to persist quiz attempt",
			zap.Uint("user_id", userID),
			zap.String("test_id", test.ID),
			zap.Error(err))
		return nil, util.ErrPersistenceFailed
	}

	s.Registry.Close(userID, test.ID)

	outcome := "failed"
	if score.Passed {
		outcome = "passed"
	}
	monitoring.QuizAttemptsTotal.WithLabelValues(outcome).Inc()

	return &QuizResultPayload{
		AttemptID:    attempt.ID,
		Score:        score.Percent,
		Passed:       score.Passed,
		PassingScore: test.PassingScore,
		CorrectCount: score.CorrectCount,
		Total:        score.Total,
	}, nil
}

func (s *QuizService) persistAttempt(attempt *model.Attempt) error {
	var err error
	for i := 0; i < s.persistRetries; i++ {
		if err = s.Attempts.Create(attempt); err == nil {
			return nil
		}
		time.Sleep(s.retryDelay * time.Duration(i+1))
	}
	return err
}

// CancelQuiz closes the session without recording an attempt. Closing a
// session that does not exist is a no-op.
func (s *QuizService) CancelQuiz(userID uint, testID string) {
	if s.Registry.Get(userID, testID) == nil {
		return
	}
	s.Registry.Close(userID, testID)
	monitoring.QuizAttemptsTotal.WithLabelValues("cancelled").Inc()
}

func (s *QuizService) ListTests(page, limit int) ([]model.Test, int64, error) {
	return s.Tests.ListActive(page, limit)
}

// AttemptPayload is an attempt with its answers decoded back out of the
// stored JSON snapshot.
type AttemptPayload struct {
	model.Attempt
	Answers []AnswerRecord `json:"answers"`
}

func (s *QuizService) History(userID uint, testID string, limit, offset int) ([]AttemptPayload, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	attempts, err := s.Attempts.History(userID, testID, limit, offset)
	if err != nil {
		return nil, err
	}
	return decodeAttempts(attempts)
}

func (s *QuizService) AttemptsByTest(testID string, limit, offset int) ([]AttemptPayload, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	attempts, err := s.Attempts.ListByTest(testID, limit, offset)
	if err != nil {
		return nil, err
	}
	return decodeAttempts(attempts)
}

func decodeAttempts(attempts []model.Attempt) ([]AttemptPayload, error) {
	payloads := make([]AttemptPayload, 0, len(attempts))
	for _, a := range attempts {
		answers, err := DecodeAnswers(a.Answers)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, AttemptPayload{Attempt: a, Answers: answers})
	}
	return payloads, nil
}

func (s *QuizService) Stats(testID string) (*repository.TestStats, error) {
	if _, err := s.Tests.FindByID(testID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return s.Attempts.Stats(testID)
}
