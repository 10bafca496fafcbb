package interview

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/session"
	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/config"
)

type stubEngine struct {
	calls int
}

func (s *stubEngine) Next(ctx context.Context, sess *models.Session) string {
	s.calls++
	return fmt.Sprintf("question %d for phase %s", s.calls, sess.Phase)
}

type stubEvaluator struct {
	score    float64
	fallback bool
}

func (s *stubEvaluator) Evaluate(ctx context.Context, sess *models.Session, ex *models.Exchange) models.Evaluation {
	return models.Evaluation{
		ExchangeSequence:     ex.Sequence,
		Phase:                ex.Phase,
		TechnicalAccuracy:    s.score,
		CommunicationQuality: s.score,
		ProblemSolving:       s.score,
		CulturalFit:          s.score,
		Composite:            s.score,
		Feedback:             "noted",
		Fallback:             s.fallback,
		CreatedAt:            time.Now(),
	}
}

func testConfig() config.InterviewConfig {
	return config.InterviewConfig{
		Phases: []string{"introduction", "technical", "behavioral", "problem_solving", "closing"},
		MaxPerPhase: map[string]int{
			"introduction":    1,
			"technical":       2,
			"behavioral":      1,
			"problem_solving": 1,
			"closing":         1,
		},
	}
}

func newTestOrchestrator(cfg config.InterviewConfig, ev Evaluator) *Orchestrator {
	store := session.NewStore(nil, zap.NewNop())
	if ev == nil {
		ev = &stubEvaluator{score: 70}
	}
	return NewOrchestrator(store, &stubEngine{}, ev, cfg, zap.NewNop())
}

func testProfile() models.CandidateProfile {
	return models.CandidateProfile{
		Name:            "Alice Chen",
		Email:           "alice@example.com",
		JobRole:         "software_engineer",
		ExperienceYears: 5,
	}
}

func TestStartCreatesSessionWithFirstQuestion(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)

	sess, question, err := o.Start(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if sess.Phase != "introduction" {
		t.Errorf("expected phase introduction, got %s", sess.Phase)
	}
	if sess.QuestionsInPhase != 1 {
		t.Errorf("expected 1 question in phase, got %d", sess.QuestionsInPhase)
	}
	if sess.TotalQuestions != 1 {
		t.Errorf("expected 1 total question, got %d", sess.TotalQuestions)
	}
	if sess.Status != models.StatusInProgress {
		t.Errorf("expected status in_progress, got %s", sess.Status)
	}
	if question == "" {
		t.Error("expected a first question")
	}
	if sess.OpenExchange() == nil {
		t.Error("expected an open exchange after start")
	}
}

func TestStartRejectsInvalidProfile(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)

	cases := []models.CandidateProfile{
		{Email: "alice@example.com", JobRole: "software_engineer"},
		{Name: "Alice Chen", JobRole: "software_engineer"},
		{Name: "Alice Chen", Email: "alice@example.com"},
		{Name: "Alice Chen", Email: "alice@example.com", JobRole: "software_engineer", ExperienceYears: -1},
	}

	for i, profile := range cases {
		_, _, err := o.Start(context.Background(), profile)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestPhaseTransitionsAndCompletion(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)

	sess, _, err := o.Start(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	// Budgets: intro 1, technical 2, behavioral 1, problem_solving 1,
	// closing 1, so the sixth answer completes the interview.
	expectedPhases := []string{"technical", "technical", "behavioral", "problem_solving", "closing"}

	for i, want := range expectedPhases {
		result, err := o.SubmitAnswer(context.Background(), sess.ID, "my answer")
		if err != nil {
			t.Fatalf("answer %d returned error: %v", i+1, err)
		}
		if result.Complete {
			t.Fatalf("answer %d unexpectedly completed the interview", i+1)
		}
		if result.Phase != want {
			t.Errorf("answer %d: expected phase %s, got %s", i+1, want, result.Phase)
		}
	}

	result, err := o.SubmitAnswer(context.Background(), sess.ID, "final answer")
	if err != nil {
		t.Fatalf("final answer returned error: %v", err)
	}
	if !result.Complete {
		t.Fatal("expected interview to complete")
	}
	if result.Report == nil {
		t.Fatal("expected final report on completion")
	}
	if result.Report.TotalQuestions != 6 {
		t.Errorf("expected 6 evaluated questions, got %d", result.Report.TotalQuestions)
	}
}

func TestCounterResetsOnPhaseTransition(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)

	sess, _, _ := o.Start(context.Background(), testProfile())

	if _, err := o.SubmitAnswer(context.Background(), sess.ID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	got, _ := o.store.Get(sess.ID)
	if got.Phase != "technical" {
		t.Fatalf("expected phase technical, got %s", got.Phase)
	}
	if got.QuestionsInPhase != 1 {
		t.Errorf("expected counter 1 after entering new phase, got %d", got.QuestionsInPhase)
	}
}

func TestSubmitAnswerUnknownInterview(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)

	_, err := o.SubmitAnswer(context.Background(), "missing", "answer")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitAnswerEmptyAnswer(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)
	sess, _, _ := o.Start(context.Background(), testProfile())

	_, err := o.SubmitAnswer(context.Background(), sess.ID, "   ")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestSubmitAnswerAfterCompletion(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPerPhase = map[string]int{
		"introduction": 1, "technical": 0, "behavioral": 0, "problem_solving": 0, "closing": 1,
	}
	o := newTestOrchestrator(cfg, nil)

	sess, _, _ := o.Start(context.Background(), testProfile())

	if _, err := o.SubmitAnswer(context.Background(), sess.ID, "intro answer"); err != nil {
		t.Fatalf("first answer returned error: %v", err)
	}
	result, err := o.SubmitAnswer(context.Background(), sess.ID, "closing answer")
	if err != nil {
		t.Fatalf("second answer returned error: %v", err)
	}
	if !result.Complete {
		t.Fatal("expected interview to complete")
	}

	_, err = o.SubmitAnswer(context.Background(), sess.ID, "extra answer")
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestZeroBudgetPhasesAreSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPerPhase = map[string]int{
		"introduction": 1, "technical": 0, "behavioral": 1, "problem_solving": 0, "closing": 1,
	}
	o := newTestOrchestrator(cfg, nil)

	sess, _, _ := o.Start(context.Background(), testProfile())

	result, err := o.SubmitAnswer(context.Background(), sess.ID, "answer")
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if result.Phase != "behavioral" {
		t.Errorf("expected technical to be skipped, got phase %s", result.Phase)
	}
}

func TestFallbackEvaluationStillAdvances(t *testing.T) {
	o := newTestOrchestrator(testConfig(), &stubEvaluator{score: 50, fallback: true})

	sess, _, _ := o.Start(context.Background(), testProfile())

	result, err := o.SubmitAnswer(context.Background(), sess.ID, "answer")
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if !result.Fallback {
		t.Error("expected fallback flag on result")
	}
	if result.NextQuestion == "" {
		t.Error("expected next question despite evaluation fallback")
	}
}

func TestEarlyExitSkipsPhase(t *testing.T) {
	cfg := testConfig()
	cfg.EarlyExit = true
	cfg.MaxPerPhase["technical"] = 3
	o := newTestOrchestrator(cfg, &stubEvaluator{score: 95})

	sess, _, _ := o.Start(context.Background(), testProfile())

	// Intro answer moves into technical.
	if _, err := o.SubmitAnswer(context.Background(), sess.ID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	// Two strong technical answers trigger the early exit before the
	// three-question budget is spent.
	if _, err := o.SubmitAnswer(context.Background(), sess.ID, "answer"); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	result, err := o.SubmitAnswer(context.Background(), sess.ID, "answer")
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if result.Phase != "behavioral" {
		t.Errorf("expected early transition to behavioral, got %s", result.Phase)
	}
}

func TestReportBeforeCompletion(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)
	sess, _, _ := o.Start(context.Background(), testProfile())

	_, err := o.Report(context.Background(), sess.ID)
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}

func TestReportIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPerPhase = map[string]int{
		"introduction": 1, "technical": 0, "behavioral": 0, "problem_solving": 0, "closing": 1,
	}
	o := newTestOrchestrator(cfg, nil)

	sess, _, _ := o.Start(context.Background(), testProfile())
	o.SubmitAnswer(context.Background(), sess.ID, "intro")
	o.SubmitAnswer(context.Background(), sess.ID, "closing")

	first, err := o.Report(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Report returned error: %v", err)
	}
	second, err := o.Report(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("second Report returned error: %v", err)
	}
	if first != second {
		t.Error("expected repeated Report calls to return the stored report")
	}
}

func TestStatusSnapshot(t *testing.T) {
	o := newTestOrchestrator(testConfig(), nil)
	sess, question, _ := o.Start(context.Background(), testProfile())

	info, err := o.Status(sess.ID)
	if err != nil {
		t.Fatalf("Status returned error: %v", err)
	}
	if info.Phase != "introduction" {
		t.Errorf("expected phase introduction, got %s", info.Phase)
	}
	if info.CurrentQuestion != question {
		t.Errorf("expected current question %q, got %q", question, info.CurrentQuestion)
	}
	if info.PhaseProgress != "1/5" {
		t.Errorf("expected phase progress 1/5, got %s", info.PhaseProgress)
	}

	if _, err := o.Status("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}
