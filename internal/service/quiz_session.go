package service

import (
	"knowledgebot/internal/util"
	"knowledgebot/pkg/monitoring"
	"sync"
	"time"
)

// QuizSession is the in-memory state of one in-progress quiz. Sessions
// are process-local and ephemeral: a restart drops every open session
// (finished attempts are unaffected), and a missing session is reported
// as expired rather than treated as a fault.
type QuizSession struct {
	UserID      uint
	TestID      string
	QuestionIDs []string // traversal order snapshotted at open
	Index       int      // current question, equals len(Answers)
	Answers     []AnswerRecord
	StartedAt   time.Time
	TimeLimit   time.Duration // 0 means unlimited
}

func (s *QuizSession) Finished() bool {
	return s.Index >= len(s.QuestionIDs)
}

func (s *QuizSession) expired(now time.Time) bool {
	return s.TimeLimit > 0 && now.Sub(s.StartedAt) > s.TimeLimit
}

func (s *QuizSession) clone() *QuizSession {
	cp := *s
	cp.QuestionIDs = append([]string(nil), s.QuestionIDs...)
	cp.Answers = append([]AnswerRecord(nil), s.Answers...)
	return &cp
}

// SessionRegistry tracks open quiz sessions. At most one session may be
// open per (user, test) pair; mutations on a pair are serialized so two
// near-simultaneous submissions cannot advance past the same question.
type SessionRegistry interface {
	// Open creates a session. Fails with ErrAlreadyInProgress when a
	// live session for the pair exists.
	Open(userID uint, testID string, questionIDs []string, timeLimit time.Duration) (*QuizSession, error)
	// Get returns a snapshot of the session, or nil when none is open.
	// An over-limit session is dropped here (lazy expiry).
	Get(userID uint, testID string) *QuizSession
	// RecordAnswer appends the record and advances the index, enforcing
	// that the record answers the current question.
	RecordAnswer(userID uint, testID string, rec AnswerRecord) (*QuizSession, error)
	// Close removes the session. Idempotent.
	Close(userID uint, testID string)
}

type sessionKey struct {
	userID uint
	testID string
}

// MemorySessionRegistry is the mutex-guarded in-memory implementation.
type MemorySessionRegistry struct {
	mu       sync.Mutex
	sessions map[sessionKey]*QuizSession
	now      func() time.Time
}

func NewMemorySessionRegistry() *MemorySessionRegistry {
	return &MemorySessionRegistry{
		sessions: make(map[sessionKey]*QuizSession),
		now:      time.Now,
	}
}

func (r *MemorySessionRegistry) Open(userID uint, testID string, questionIDs []string, timeLimit time.Duration) (*QuizSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{userID: userID, testID: testID}
	if existing, ok := r.sessions[key]; ok {
		if !existing.expired(r.now()) {
			return nil, util.ErrAlreadyInProgress
		}
		r.dropLocked(key, "expired")
	}

	s := &QuizSession{
		UserID:      userID,
		TestID:      testID,
		QuestionIDs: append([]string(nil), questionIDs...),
		Answers:     make([]AnswerRecord, 0, len(questionIDs)),
		StartedAt:   r.now(),
		TimeLimit:   timeLimit,
	}
	r.sessions[key] = s
	monitoring.ActiveQuizSessions.Inc()

	return s.clone(), nil
}

func (r *MemorySessionRegistry) Get(userID uint, testID string) *QuizSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{userID: userID, testID: testID}
	s, ok := r.sessions[key]
	if !ok {
		return nil
	}
	if s.expired(r.now()) {
		r.dropLocked(key, "expired")
		return nil
	}
	return s.clone()
}

func (r *MemorySessionRegistry) RecordAnswer(userID uint, testID string, rec AnswerRecord) (*QuizSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{userID: userID, testID: testID}
	s, ok := r.sessions[key]
	if !ok {
		return nil, util.ErrSessionExpired
	}
	if s.expired(r.now()) {
		r.dropLocked(key, "expired")
		return nil, util.ErrSessionExpired
	}
	if s.Finished() || s.QuestionIDs[s.Index] != rec.QuestionID {
		return nil, util.ErrQuestionMismatch
	}

	s.Answers = append(s.Answers, rec)
	s.Index++

	return s.clone(), nil
}

func (r *MemorySessionRegistry) Close(userID uint, testID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{userID: userID, testID: testID}
	if _, ok := r.sessions[key]; ok {
		delete(r.sessions, key)
		monitoring.ActiveQuizSessions.Dec()
	}
}

func (r *MemorySessionRegistry) dropLocked(key sessionKey, outcome string) {
	delete(r.sessions, key)
	monitoring.ActiveQuizSessions.Dec()
	monitoring.QuizAttemptsTotal.WithLabelValues(outcome).Inc()
}
