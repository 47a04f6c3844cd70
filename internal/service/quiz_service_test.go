package service

import (
	"errors"
	"knowledgebot/internal/model"
	"knowledgebot/internal/repository"
	"knowledgebot/internal/util"
	"testing"

	"gorm.io/gorm"
)

type fakeTestProvider struct {
	tests     map[string]*model.Test
	questions map[string][]model.Question
}

func (f *fakeTestProvider) FindByID(id string) (*model.Test, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (f *fakeTestProvider) GetOrderedQuestions(testID string) ([]model.Question, error) {
	return f.questions[testID], nil
}

func (f *fakeTestProvider) ListActive(page, limit int) ([]model.Test, int64, error) {
	var out []model.Test
	for _, t := range f.tests {
		if t.IsActive {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

type fakeAttemptStore struct {
	attempts  []model.Attempt
	failTimes int // Create fails this many times before succeeding
	creates   int
}

func (f *fakeAttemptStore) Create(attempt *model.Attempt) error {
	f.creates++
	if f.creates <= f.failTimes {
		return errors.New("database gone")
	}
	attempt.ID = model.GenerateUUID()
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptStore) History(userID uint, testID string, limit, offset int) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.UserID == userID && (testID == "" || a.TestID == testID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) ListByTest(testID string, limit, offset int) ([]model.Attempt, error) {
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.TestID == testID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttemptStore) Stats(testID string) (*repository.TestStats, error) {
	return &repository.TestStats{AttemptCount: int64(len(f.attempts))}, nil
}

func quizFixture(questionCount int) (*fakeTestProvider, *fakeAttemptStore, *QuizService) {
	test := &model.Test{
		UUIDBase:     model.UUIDBase{ID: "test-1"},
		Title:        "capitals",
		PassingScore: 70,
		IsActive:     true,
	}
	var questions []model.Question
	for i := 0; i < questionCount; i++ {
		questions = append(questions, singleChoiceQuestion(questionID(i), 0, 3))
	}

	tests := &fakeTestProvider{
		tests:     map[string]*model.Test{test.ID: test},
		questions: map[string][]model.Question{test.ID: questions},
	}
	attempts := &fakeAttemptStore{}
	svc := NewQuizService(tests, attempts, NewMemorySessionRegistry(), 3)
	svc.retryDelay = 0
	return tests, attempts, svc
}

func TestQuizFullRun(t *testing.T) {
	_, attempts, svc := quizFixture(3)

	first, err := svc.StartQuiz(7, "test-1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Index != 0 || first.Total != 3 || first.QuestionID != questionID(0) {
		t.Fatalf("first question: %+v", first)
	}
	if len(first.Options) != 3 {
		t.Fatalf("first question options: %d, want 3", len(first.Options))
	}

	// Answer the first two correctly, the last one wrong.
	out, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0))
	if err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if out.Next == nil || out.Next.QuestionID != questionID(1) {
		t.Fatalf("after answer 1: %+v", out)
	}

	out, err = svc.SubmitAnswer(7, "test-1", questionID(1), SingleChoiceAnswer(0))
	if err != nil {
		t.Fatalf("answer 2: %v", err)
	}
	if out.Next == nil || out.Next.QuestionID != questionID(2) {
		t.Fatalf("after answer 2: %+v", out)
	}

	out, err = svc.SubmitAnswer(7, "test-1", questionID(2), SingleChoiceAnswer(1))
	if err != nil {
		t.Fatalf("answer 3: %v", err)
	}
	if out.Result == nil {
		t.Fatal("final submission returned no result")
	}
	if out.Result.Score != 67 || out.Result.Passed {
		t.Errorf("result = %+v, want score 67 failed", out.Result)
	}
	if out.Result.CorrectCount != 2 || out.Result.Total != 3 {
		t.Errorf("result counts = %+v", out.Result)
	}

	if len(attempts.attempts) != 1 {
		t.Fatalf("persisted %d attempts, want 1", len(attempts.attempts))
	}
	saved := attempts.attempts[0]
	if saved.UserID != 7 || saved.TestID != "test-1" || saved.Score != 67 || saved.Passed {
		t.Errorf("saved attempt: %+v", saved)
	}

	// Answers survive the JSON round trip.
	records, err := DecodeAnswers(saved.Answers)
	if err != nil {
		t.Fatalf("decode answers: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("decoded %d answers, want 3", len(records))
	}
	if !records[0].IsCorrect || !records[1].IsCorrect || records[2].IsCorrect {
		t.Errorf("decoded correctness: %+v", records)
	}

	// The session is gone; a new run may start.
	if svc.Registry.Get(7, "test-1") != nil {
		t.Error("session still open after completion")
	}
	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Errorf("restart after completion: %v", err)
	}
}

func TestStartQuizErrors(t *testing.T) {
	tests, _, svc := quizFixture(2)

	if _, err := svc.StartQuiz(7, "missing"); !errors.Is(err, util.ErrTestNotFound) {
		t.Errorf("missing test: got %v, want ErrTestNotFound", err)
	}

	tests.tests["test-1"].IsActive = false
	if _, err := svc.StartQuiz(7, "test-1"); !errors.Is(err, util.ErrTestInactive) {
		t.Errorf("inactive test: got %v, want ErrTestInactive", err)
	}
	tests.tests["test-1"].IsActive = true

	tests.questions["test-1"] = nil
	if _, err := svc.StartQuiz(7, "test-1"); !errors.Is(err, util.ErrNoQuestions) {
		t.Errorf("empty test: got %v, want ErrNoQuestions", err)
	}
	// The failed start must not have left a session behind.
	if svc.Registry.Get(7, "test-1") != nil {
		t.Error("session opened for an empty test")
	}
}

func TestStartQuizRejectsSecondRun(t *testing.T) {
	_, _, svc := quizFixture(2)

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.StartQuiz(7, "test-1"); !errors.Is(err, util.ErrAlreadyInProgress) {
		t.Errorf("second start: got %v, want ErrAlreadyInProgress", err)
	}
}

func TestSubmitAnswerWithoutSession(t *testing.T) {
	_, _, svc := quizFixture(2)

	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0)); !errors.Is(err, util.ErrSessionExpired) {
		t.Errorf("got %v, want ErrSessionExpired", err)
	}
}

func TestSubmitAnswerOutOfOrder(t *testing.T) {
	_, attempts, svc := quizFixture(2)

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(1), SingleChoiceAnswer(0)); !errors.Is(err, util.ErrQuestionMismatch) {
		t.Errorf("got %v, want ErrQuestionMismatch", err)
	}
	if len(attempts.attempts) != 0 {
		t.Error("mismatched answer produced an attempt")
	}
}

func TestSubmitAnswerRejectsWrongKind(t *testing.T) {
	_, _, svc := quizFixture(1)

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), FreeTextAnswer("x")); !errors.Is(err, util.ErrInvalidAnswer) {
		t.Errorf("got %v, want ErrInvalidAnswer", err)
	}
	// The session did not advance.
	s := svc.Registry.Get(7, "test-1")
	if s == nil || s.Index != 0 {
		t.Errorf("session after invalid answer: %+v", s)
	}
}

func TestCancelQuiz(t *testing.T) {
	_, attempts, svc := quizFixture(2)

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0)); err != nil {
		t.Fatalf("answer: %v", err)
	}

	svc.CancelQuiz(7, "test-1")

	if svc.Registry.Get(7, "test-1") != nil {
		t.Error("session still open after cancel")
	}
	if len(attempts.attempts) != 0 {
		t.Error("cancelled run produced an attempt")
	}

	// Cancelling again, or with no session at all, is a no-op.
	svc.CancelQuiz(7, "test-1")
	svc.CancelQuiz(9, "test-1")
}

func TestPersistFailureKeepsSessionRecoverable(t *testing.T) {
	_, attempts, svc := quizFixture(2)
	attempts.failTimes = 100 // every retry fails

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0)); err != nil {
		t.Fatalf("answer 1: %v", err)
	}

	if _, err := svc.SubmitAnswer(7, "test-1", questionID(1), SingleChoiceAnswer(0)); !errors.Is(err, util.ErrPersistenceFailed) {
		t.Fatalf("final answer: got %v, want ErrPersistenceFailed", err)
	}

	// Session survives the failed write so the user can retry.
	if svc.Registry.Get(7, "test-1") == nil {
		t.Fatal("session closed despite failed persistence")
	}

	// The store comes back; retrying the last answer finalizes the run.
	attempts.failTimes = 0
	out, err := svc.SubmitAnswer(7, "test-1", questionID(1), SingleChoiceAnswer(0))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if out.Result == nil || out.Result.Score != 100 || !out.Result.Passed {
		t.Fatalf("retry result: %+v", out.Result)
	}
	if len(attempts.attempts) != 1 {
		t.Errorf("persisted %d attempts, want 1", len(attempts.attempts))
	}
	if svc.Registry.Get(7, "test-1") != nil {
		t.Error("session still open after successful retry")
	}
}

func TestPersistRetriesBeforeGivingUp(t *testing.T) {
	_, attempts, svc := quizFixture(1)
	attempts.failTimes = 2 // first two writes fail, the third succeeds

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	out, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0))
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if out.Result == nil {
		t.Fatal("no result despite eventual persistence")
	}
	if attempts.creates != 3 {
		t.Errorf("create called %d times, want 3", attempts.creates)
	}
	if len(attempts.attempts) != 1 {
		t.Errorf("persisted %d attempts, want 1", len(attempts.attempts))
	}
}

func TestRecoveryRejectsNonFinalQuestion(t *testing.T) {
	_, attempts, svc := quizFixture(2)
	attempts.failTimes = 100

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0)); err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(1), SingleChoiceAnswer(0)); !errors.Is(err, util.ErrPersistenceFailed) {
		t.Fatalf("final answer: got %v, want ErrPersistenceFailed", err)
	}

	// Only a retry of the final question is accepted in recovery.
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0)); !errors.Is(err, util.ErrQuestionMismatch) {
		t.Errorf("got %v, want ErrQuestionMismatch", err)
	}
}

func TestSessionExpiresWhenTestShrinks(t *testing.T) {
	tests, _, svc := quizFixture(3)

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// An editor removes a question mid-run.
	tests.questions["test-1"] = tests.questions["test-1"][:2]

	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0)); !errors.Is(err, util.ErrSessionExpired) {
		t.Fatalf("got %v, want ErrSessionExpired", err)
	}
	if svc.Registry.Get(7, "test-1") != nil {
		t.Error("stale session left open")
	}
}

func TestHistoryDecodesAnswers(t *testing.T) {
	_, _, svc := quizFixture(2)

	if _, err := svc.StartQuiz(7, "test-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(0), SingleChoiceAnswer(0)); err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if _, err := svc.SubmitAnswer(7, "test-1", questionID(1), SingleChoiceAnswer(2)); err != nil {
		t.Fatalf("answer 2: %v", err)
	}

	history, err := svc.History(7, "test-1", 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length %d, want 1", len(history))
	}
	if len(history[0].Answers) != 2 {
		t.Fatalf("decoded %d answers, want 2", len(history[0].Answers))
	}
	if !history[0].Answers[0].IsCorrect || history[0].Answers[1].IsCorrect {
		t.Errorf("decoded correctness: %+v", history[0].Answers)
	}

	// Empty history for a user who never played.
	other, err := svc.History(42, "", 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unexpected history: %+v", other)
	}
}

func TestStatsUnknownTest(t *testing.T) {
	_, _, svc := quizFixture(1)

	if _, err := svc.Stats("missing"); !errors.Is(err, util.ErrTestNotFound) {
		t.Errorf("got %v, want ErrTestNotFound", err)
	}
	if _, err := svc.Stats("test-1"); err != nil {
		t.Errorf("stats for known test: %v", err)
	}
}
