package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
)

// Persistence is the durable half of the context store. *sqlite.Client
// satisfies it; tests run the store memory-only with a nil Persistence.
type Persistence interface {
	InsertInterview(s *models.Session) error
	UpdateInterview(s *models.Session) error
	InsertExchange(interviewID string, ex *models.Exchange) error
	UpdateExchangeAnswer(interviewID string, ex *models.Exchange) error
	InsertEvaluation(interviewID string, ev *models.Evaluation) error
	InsertReport(interviewID string, report *models.Report) error
	GetInterview(id string) (*models.Session, error)
	ListInterviews(limit, offset int) ([]models.InterviewSummary, error)
}

// Store holds interview sessions keyed by id. The in-memory map is
// authoritative for live sessions and every write goes through to the
// durable layer, so a Save followed by a Get always observes the update.
// The store holds no business logic; the orchestrator is the sole mutator.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	locks    map[string]*sync.Mutex
	db       Persistence
	logger   *zap.Logger
}

func NewStore(db Persistence, logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
		locks:    make(map[string]*sync.Mutex),
		db:       db,
		logger:   logger,
	}
}

// Lock returns the mutex serializing all mutations of one session.
func (s *Store) Lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk, ok := s.locks[id]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[id] = lk
	}
	return lk
}

func (s *Store) Create(sess *models.Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.InsertInterview(sess); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}

	s.logger.Debug("Session created", zap.String("session_id", sess.ID))
	return nil
}

// Get returns the session, reloading it from the durable layer when it is
// no longer resident in memory.
func (s *Store) Get(id string) (*models.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok {
		return sess, true
	}

	if s.db == nil {
		return nil, false
	}

	sess, err := s.db.GetInterview(id)
	if err != nil {
		s.logger.Warn("Failed to reload session", zap.String("session_id", id), zap.Error(err))
		return nil, false
	}
	if sess == nil {
		return nil, false
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return sess, true
}

func (s *Store) Save(sess *models.Session) error {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.UpdateInterview(sess); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}

	return nil
}

func (s *Store) SaveExchange(interviewID string, ex *models.Exchange) error {
	if s.db == nil {
		return nil
	}
	return s.db.InsertExchange(interviewID, ex)
}

func (s *Store) SaveAnswer(interviewID string, ex *models.Exchange) error {
	if s.db == nil {
		return nil
	}
	return s.db.UpdateExchangeAnswer(interviewID, ex)
}

func (s *Store) SaveEvaluation(interviewID string, ev *models.Evaluation) error {
	if s.db == nil {
		return nil
	}
	return s.db.InsertEvaluation(interviewID, ev)
}

func (s *Store) SaveReport(interviewID string, report *models.Report) error {
	if s.db == nil {
		return nil
	}
	return s.db.InsertReport(interviewID, report)
}

// List reads from the durable layer so completed and evicted sessions are
// included; memory-only stores list what they hold.
func (s *Store) List(limit, offset int) ([]models.InterviewSummary, error) {
	if s.db != nil {
		return s.db.ListInterviews(limit, offset)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]models.InterviewSummary, 0, len(s.sessions))
	for _, sess := range s.sessions {
		summaries = append(summaries, models.InterviewSummary{
			ID:            sess.ID,
			CandidateName: sess.CandidateName,
			JobRole:       sess.JobRole,
			Status:        sess.Status,
			CreatedAt:     sess.CreatedAt,
		})
	}

	if offset >= len(summaries) {
		return nil, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}

	return summaries, nil
}
