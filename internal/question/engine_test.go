package question

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/llm"
	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
)

type stubGenerator struct {
	responses []string
	err       error
	requests  []llm.QuestionRequest
}

func (s *stubGenerator) GenerateQuestion(ctx context.Context, req llm.QuestionRequest) (string, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("no responses configured")
	}
	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

type stubRetriever struct {
	matches []models.BankMatch
	err     error
}

func (s *stubRetriever) SearchQuestions(ctx context.Context, query, phase, role string, topK int) ([]models.BankMatch, error) {
	return s.matches, s.err
}

func bankMatch(text string) models.BankMatch {
	return models.BankMatch{BankQuestion: models.BankQuestion{Question: text}}
}

func technicalSession() *models.Session {
	return &models.Session{
		ID:              "iv-1",
		CandidateName:   "Alice Chen",
		JobRole:         "software_engineer",
		ExperienceYears: 5,
		Phase:           "technical",
	}
}

func TestNextIntroductionUsesTemplate(t *testing.T) {
	e := NewEngine(&stubGenerator{}, &stubRetriever{}, 5, zap.NewNop())

	sess := technicalSession()
	sess.Phase = "introduction"

	q := e.Next(context.Background(), sess)
	if !strings.Contains(q, "Alice Chen") {
		t.Errorf("expected introduction to greet the candidate, got %q", q)
	}
	if !strings.Contains(q, "software_engineer") {
		t.Errorf("expected introduction to mention the role, got %q", q)
	}
}

func TestNextClosingUsesTemplate(t *testing.T) {
	e := NewEngine(&stubGenerator{}, &stubRetriever{}, 5, zap.NewNop())

	sess := technicalSession()
	sess.Phase = "closing"

	q := e.Next(context.Background(), sess)
	if !strings.Contains(q, "questions for me") {
		t.Errorf("expected closing template, got %q", q)
	}
}

func TestNextReturnsGeneratedQuestion(t *testing.T) {
	gen := &stubGenerator{responses: []string{"Explain goroutine scheduling."}}
	e := NewEngine(gen, &stubRetriever{}, 5, zap.NewNop())

	q := e.Next(context.Background(), technicalSession())
	if q != "Explain goroutine scheduling." {
		t.Errorf("unexpected question: %q", q)
	}
}

func TestNextRegeneratesOnRepeat(t *testing.T) {
	gen := &stubGenerator{responses: []string{
		"What is a mutex?",
		"Explain channel buffering.",
	}}
	e := NewEngine(gen, &stubRetriever{}, 5, zap.NewNop())

	sess := technicalSession()
	sess.Exchanges = []models.Exchange{
		{Sequence: 1, Phase: "technical", Question: "What is a mutex?", Answered: true},
	}

	q := e.Next(context.Background(), sess)
	if q != "Explain channel buffering." {
		t.Errorf("expected regenerated question, got %q", q)
	}
	if len(gen.requests) != 2 {
		t.Errorf("expected exactly 2 generation attempts, got %d", len(gen.requests))
	}
}

func TestNextFallsBackToBankQuestion(t *testing.T) {
	gen := &stubGenerator{err: errors.New("service down")}
	retriever := &stubRetriever{matches: []models.BankMatch{
		bankMatch("Explain REST API design principles and best practices."),
	}}
	e := NewEngine(gen, retriever, 5, zap.NewNop())

	q := e.Next(context.Background(), technicalSession())
	if q != "Explain REST API design principles and best practices." {
		t.Errorf("expected bank fallback, got %q", q)
	}
}

func TestNextBankFallbackSkipsAskedQuestions(t *testing.T) {
	gen := &stubGenerator{err: errors.New("service down")}
	retriever := &stubRetriever{matches: []models.BankMatch{
		bankMatch("Question A"),
		bankMatch("Question B"),
	}}
	e := NewEngine(gen, retriever, 5, zap.NewNop())

	sess := technicalSession()
	sess.Exchanges = []models.Exchange{
		{Sequence: 1, Phase: "technical", Question: "Question A", Answered: true},
	}

	q := e.Next(context.Background(), sess)
	if q != "Question B" {
		t.Errorf("expected second bank question, got %q", q)
	}
}

func TestNextFallsBackToStaticTemplate(t *testing.T) {
	gen := &stubGenerator{err: errors.New("service down")}
	retriever := &stubRetriever{err: errors.New("vector store down")}
	e := NewEngine(gen, retriever, 5, zap.NewNop())

	q := e.Next(context.Background(), technicalSession())
	if q == "" {
		t.Fatal("expected a static fallback question")
	}
	if !strings.Contains(q, "clean, maintainable code") {
		t.Errorf("expected the technical template, got %q", q)
	}
}

func TestDifficultyHintFollowsLatestScore(t *testing.T) {
	gen := &stubGenerator{responses: []string{"generated"}}
	e := NewEngine(gen, &stubRetriever{}, 5, zap.NewNop())

	sess := technicalSession()
	sess.Evaluations = []models.Evaluation{{Composite: 30}}
	e.Next(context.Background(), sess)

	if !strings.Contains(gen.requests[0].DifficultyHint, "easier") {
		t.Errorf("expected easier hint for weak answer, got %q", gen.requests[0].DifficultyHint)
	}

	gen.requests = nil
	gen.responses = []string{"generated"}
	sess.Evaluations = []models.Evaluation{{Composite: 90}}
	e.Next(context.Background(), sess)

	if !strings.Contains(gen.requests[0].DifficultyHint, "challenging") {
		t.Errorf("expected harder hint for strong answer, got %q", gen.requests[0].DifficultyHint)
	}

	gen.requests = nil
	gen.responses = []string{"generated"}
	sess.Evaluations = []models.Evaluation{{Composite: 65}}
	e.Next(context.Background(), sess)

	if gen.requests[0].DifficultyHint != "" {
		t.Errorf("expected no hint for mid-range score, got %q", gen.requests[0].DifficultyHint)
	}
}

func TestAskedQuestionsPassedToGenerator(t *testing.T) {
	gen := &stubGenerator{responses: []string{"generated"}}
	e := NewEngine(gen, &stubRetriever{}, 5, zap.NewNop())

	sess := technicalSession()
	sess.Exchanges = []models.Exchange{
		{Sequence: 1, Phase: "technical", Question: "Earlier question", Answered: true},
	}

	e.Next(context.Background(), sess)

	if len(gen.requests[0].AskedQuestions) != 1 || gen.requests[0].AskedQuestions[0] != "Earlier question" {
		t.Errorf("expected asked questions in request, got %v", gen.requests[0].AskedQuestions)
	}
}
