package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/session"
	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/config"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
)

// QuestionEngine supplies the next question for a session. *question.Engine
// satisfies it.
type QuestionEngine interface {
	Next(ctx context.Context, sess *models.Session) string
}

// Evaluator scores an answered exchange. *evaluation.Evaluator satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, sess *models.Session, ex *models.Exchange) models.Evaluation
}

// Orchestrator drives the interview state machine. All session mutations
// happen here, serialized per session by the store's lock, so concurrent
// requests for one interview never interleave.
type Orchestrator struct {
	store       *session.Store
	questions   QuestionEngine
	evaluator   Evaluator
	phases      []string
	maxPerPhase map[string]int
	earlyExit   bool
	logger      *zap.Logger
}

func NewOrchestrator(store *session.Store, questions QuestionEngine, evaluator Evaluator, cfg config.InterviewConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Orchestrator{
		store:       store,
		questions:   questions,
		evaluator:   evaluator,
		phases:      cfg.Phases,
		maxPerPhase: cfg.MaxPerPhase,
		earlyExit:   cfg.EarlyExit,
		logger:      log,
	}
}

// SubmitResult is the outcome of processing one answer.
type SubmitResult struct {
	Complete     bool
	NextQuestion string
	Phase        string
	Score        float64
	Feedback     string
	Fallback     bool
	Report       *models.Report
}

// StatusInfo is a read-only snapshot of a session.
type StatusInfo struct {
	ID              string
	Phase           string
	Status          string
	QuestionsAsked  int
	PhaseProgress   string
	CurrentQuestion string
	LatestScore     float64
}

// Start creates a session and returns it together with the first question.
func (o *Orchestrator) Start(ctx context.Context, profile models.CandidateProfile) (*models.Session, string, error) {
	if err := validateProfile(profile); err != nil {
		return nil, "", err
	}

	firstPhase, ok := o.firstPhase()
	if !ok {
		return nil, "", fmt.Errorf("no interview phases configured")
	}

	now := time.Now()
	sess := &models.Session{
		ID:              uuid.New().String(),
		CandidateName:   profile.Name,
		CandidateEmail:  profile.Email,
		JobRole:         profile.JobRole,
		ExperienceYears: profile.ExperienceYears,
		JobDescription:  profile.JobDescription,
		ResumeSummary:   profile.ResumeSummary,
		Phase:           firstPhase,
		Status:          models.StatusInProgress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	question := o.questions.Next(ctx, sess)
	o.askQuestion(sess, question)

	if err := o.store.Create(sess); err != nil {
		return nil, "", err
	}
	if err := o.store.SaveExchange(sess.ID, &sess.Exchanges[0]); err != nil {
		o.logger.Warn("Failed to persist first exchange",
			zap.String("session_id", sess.ID), zap.Error(err))
	}

	o.logger.Info("Interview started",
		zap.String("session_id", sess.ID),
		zap.String("candidate", sess.CandidateName),
		zap.String("job_role", sess.JobRole),
		zap.String("phase", sess.Phase),
	)

	return sess, question, nil
}

// SubmitAnswer records an answer, evaluates it, advances the phase machine,
// and returns either the next question or the final report.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, id, answer string) (*SubmitResult, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, NewValidationError("answer", "answer must not be empty")
	}

	lk := o.store.Lock(id)
	lk.Lock()
	defer lk.Unlock()

	sess, ok := o.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	if sess.Status == models.StatusCompleted {
		return nil, fmt.Errorf("%w: interview already completed", ErrInvalidState)
	}

	ex := sess.OpenExchange()
	if ex == nil {
		return nil, fmt.Errorf("%w: no question awaiting an answer", ErrInvalidState)
	}

	now := time.Now()
	ex.Answer = answer
	ex.Answered = true
	ex.AnsweredAt = &now
	if err := o.store.SaveAnswer(sess.ID, ex); err != nil {
		o.logger.Warn("Failed to persist answer",
			zap.String("session_id", sess.ID), zap.Error(err))
	}

	ev := o.evaluator.Evaluate(ctx, sess, ex)
	sess.Evaluations = append(sess.Evaluations, ev)
	if err := o.store.SaveEvaluation(sess.ID, &ev); err != nil {
		o.logger.Warn("Failed to persist evaluation",
			zap.String("session_id", sess.ID), zap.Error(err))
	}

	if o.shouldAdvance(sess) {
		next, ok := o.nextPhase(sess.Phase)
		if !ok {
			return o.complete(sess, &ev)
		}

		o.logger.Info("Phase transition",
			zap.String("session_id", sess.ID),
			zap.String("from", sess.Phase),
			zap.String("to", next),
		)
		sess.Phase = next
		sess.QuestionsInPhase = 0
	}

	question := o.questions.Next(ctx, sess)
	o.askQuestion(sess, question)

	if err := o.store.SaveExchange(sess.ID, &sess.Exchanges[len(sess.Exchanges)-1]); err != nil {
		o.logger.Warn("Failed to persist exchange",
			zap.String("session_id", sess.ID), zap.Error(err))
	}

	sess.UpdatedAt = time.Now()
	if err := o.store.Save(sess); err != nil {
		return nil, err
	}

	return &SubmitResult{
		Complete:     false,
		NextQuestion: question,
		Phase:        sess.Phase,
		Score:        ev.Composite,
		Feedback:     ev.Feedback,
		Fallback:     ev.Fallback,
	}, nil
}

// Report returns the final report, synthesizing and persisting it on first
// request. Repeated calls return the stored report unchanged.
func (o *Orchestrator) Report(ctx context.Context, id string) (*models.Report, error) {
	lk := o.store.Lock(id)
	lk.Lock()
	defer lk.Unlock()

	sess, ok := o.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	if sess.Report != nil {
		return sess.Report, nil
	}

	if sess.Status != models.StatusCompleted {
		return nil, ErrNotReady
	}

	report, err := Synthesize(sess)
	if err != nil {
		return nil, err
	}

	sess.Report = report
	if err := o.store.SaveReport(sess.ID, report); err != nil {
		o.logger.Warn("Failed to persist report",
			zap.String("session_id", sess.ID), zap.Error(err))
	}
	if err := o.store.Save(sess); err != nil {
		return nil, err
	}

	return report, nil
}

// Status reports progress without mutating the session.
func (o *Orchestrator) Status(id string) (*StatusInfo, error) {
	sess, ok := o.store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}

	info := &StatusInfo{
		ID:             sess.ID,
		Phase:          sess.Phase,
		Status:         sess.Status,
		QuestionsAsked: sess.TotalQuestions,
		PhaseProgress:  o.phaseProgress(sess.Phase),
	}
	if ex := sess.OpenExchange(); ex != nil {
		info.CurrentQuestion = ex.Question
	}
	if len(sess.Evaluations) > 0 {
		info.LatestScore = sess.Evaluations[len(sess.Evaluations)-1].Composite
	}
	return info, nil
}

// List returns summaries of stored interviews.
func (o *Orchestrator) List(limit, offset int) ([]models.InterviewSummary, error) {
	return o.store.List(limit, offset)
}

func (o *Orchestrator) complete(sess *models.Session, ev *models.Evaluation) (*SubmitResult, error) {
	now := time.Now()
	sess.Status = models.StatusCompleted
	sess.CompletedAt = &now
	sess.UpdatedAt = now

	report, err := Synthesize(sess)
	if err != nil {
		return nil, err
	}
	sess.Report = report

	if err := o.store.SaveReport(sess.ID, report); err != nil {
		o.logger.Warn("Failed to persist report",
			zap.String("session_id", sess.ID), zap.Error(err))
	}
	if err := o.store.Save(sess); err != nil {
		return nil, err
	}

	o.logger.Info("Interview completed",
		zap.String("session_id", sess.ID),
		zap.Int("total_questions", sess.TotalQuestions),
		zap.Float64("overall_score", report.OverallScore),
	)

	return &SubmitResult{
		Complete: true,
		Phase:    sess.Phase,
		Score:    ev.Composite,
		Feedback: ev.Feedback,
		Fallback: ev.Fallback,
		Report:   report,
	}, nil
}

func (o *Orchestrator) askQuestion(sess *models.Session, question string) {
	sess.Exchanges = append(sess.Exchanges, models.Exchange{
		Sequence: len(sess.Exchanges) + 1,
		Phase:    sess.Phase,
		Question: question,
		AskedAt:  time.Now(),
	})
	sess.QuestionsInPhase++
	sess.TotalQuestions++
}

// shouldAdvance decides whether the current phase is done: either its
// question budget is spent, or early exit is enabled and the last two
// answers in the phase were extreme enough that more questions add nothing.
func (o *Orchestrator) shouldAdvance(sess *models.Session) bool {
	if sess.QuestionsInPhase >= o.maxFor(sess.Phase) {
		return true
	}

	if !o.earlyExit {
		return false
	}

	recent := make([]float64, 0, 2)
	for i := len(sess.Evaluations) - 1; i >= 0 && len(recent) < 2; i-- {
		if sess.Evaluations[i].Phase == sess.Phase {
			recent = append(recent, sess.Evaluations[i].Composite)
		}
	}
	if len(recent) < 2 {
		return false
	}

	avg := (recent[0] + recent[1]) / 2
	return avg >= 90 || avg <= 30
}

func (o *Orchestrator) maxFor(phase string) int {
	if max, ok := o.maxPerPhase[phase]; ok {
		return max
	}
	return 3
}

// firstPhase returns the first phase with a nonzero question budget.
func (o *Orchestrator) firstPhase() (string, bool) {
	for _, phase := range o.phases {
		if o.maxFor(phase) > 0 {
			return phase, true
		}
	}
	return "", false
}

// nextPhase returns the phase after the given one, skipping phases whose
// budget is zero.
func (o *Orchestrator) nextPhase(current string) (string, bool) {
	idx := -1
	for i, phase := range o.phases {
		if phase == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", false
	}

	for _, phase := range o.phases[idx+1:] {
		if o.maxFor(phase) > 0 {
			return phase, true
		}
	}
	return "", false
}

func (o *Orchestrator) phaseProgress(current string) string {
	for i, phase := range o.phases {
		if phase == current {
			return fmt.Sprintf("%d/%d", i+1, len(o.phases))
		}
	}
	return fmt.Sprintf("%d/%d", len(o.phases), len(o.phases))
}

func validateProfile(p models.CandidateProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return NewValidationError("candidate_name", "candidate name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return NewValidationError("candidate_email", "candidate email is required")
	}
	if strings.TrimSpace(p.JobRole) == "" {
		return NewValidationError("job_role", "job role is required")
	}
	if p.ExperienceYears < 0 {
		return NewValidationError("experience_years", "experience years must not be negative")
	}
	return nil
}
