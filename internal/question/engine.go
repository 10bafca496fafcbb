package question

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/llm"
	"github.com/Greeshmargowda/interview-agent/internal/metrics"
	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
)

// Generator produces a question from a prompt context. *llm.Client
// satisfies it.
type Generator interface {
	GenerateQuestion(ctx context.Context, req llm.QuestionRequest) (string, error)
}

// Retriever does semantic search over the question bank. *bank.Index
// satisfies it.
type Retriever interface {
	SearchQuestions(ctx context.Context, query, phase, role string, topK int) ([]models.BankMatch, error)
}

// Engine selects the next question for a session. Generation is
// best-effort: if the reasoning service fails it falls back to the highest
// scoring bank question, and as a last resort to a static phase template.
// Next therefore always produces a question.
type Engine struct {
	generator Generator
	retriever Retriever
	topK      int
	logger    *zap.Logger
}

func NewEngine(generator Generator, retriever Retriever, topK int, log *zap.Logger) *Engine {
	if topK <= 0 {
		topK = 5
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Engine{
		generator: generator,
		retriever: retriever,
		topK:      topK,
		logger:    log,
	}
}

// Next returns the next question for the session's current phase.
func (e *Engine) Next(ctx context.Context, sess *models.Session) string {
	switch sess.Phase {
	case "introduction":
		metrics.QuestionSource.WithLabelValues("template").Inc()
		return fmt.Sprintf("Hello %s! Thanks for joining. To start, could you tell me about yourself and what excites you about this %s role?",
			sess.CandidateName, sess.JobRole)
	case "closing":
		metrics.QuestionSource.WithLabelValues("template").Inc()
		return fmt.Sprintf("Thank you for your responses, %s. Before we wrap up, do you have any questions for me about the role or the company?",
			sess.CandidateName)
	}

	asked := askedQuestions(sess)
	matches := e.retrieve(ctx, sess)

	req := llm.QuestionRequest{
		Phase:           sess.Phase,
		Role:            sess.JobRole,
		CandidateName:   sess.CandidateName,
		ExperienceYears: sess.ExperienceYears,
		JobDescription:  sess.JobDescription,
		History:         historySummary(sess),
		BankContext:     formatMatches(matches),
		AskedQuestions:  asked,
		DifficultyHint:  difficultyHint(sess),
	}

	question, err := e.generator.GenerateQuestion(ctx, req)
	if err == nil && question != "" {
		if !isRepeat(question, asked) {
			metrics.QuestionSource.WithLabelValues("generated").Inc()
			return question
		}

		// One regeneration attempt before falling back.
		e.logger.Warn("Generated question repeats an earlier one, regenerating",
			zap.String("session_id", sess.ID),
		)
		question, err = e.generator.GenerateQuestion(ctx, req)
		if err == nil && question != "" && !isRepeat(question, asked) {
			metrics.QuestionSource.WithLabelValues("generated").Inc()
			return question
		}
	}

	if err != nil {
		e.logger.Warn("Question generation failed, falling back",
			zap.String("session_id", sess.ID),
			zap.String("phase", sess.Phase),
			zap.Error(err),
		)
	}

	if q := pickBankQuestion(matches, asked); q != "" {
		metrics.QuestionSource.WithLabelValues("bank").Inc()
		return q
	}

	metrics.QuestionSource.WithLabelValues("template").Inc()
	return fallbackTemplate(sess.Phase)
}

func (e *Engine) retrieve(ctx context.Context, sess *models.Session) []models.BankMatch {
	if e.retriever == nil {
		return nil
	}

	query := fmt.Sprintf("%s questions for %s with %d years experience",
		sess.Phase, sess.JobRole, sess.ExperienceYears)

	matches, err := e.retriever.SearchQuestions(ctx, query, sess.Phase, sess.JobRole, e.topK)
	if err != nil {
		e.logger.Warn("Bank retrieval failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		return nil
	}
	return matches
}

func askedQuestions(sess *models.Session) []string {
	asked := make([]string, 0, len(sess.Exchanges))
	for _, ex := range sess.Exchanges {
		asked = append(asked, ex.Question)
	}
	return asked
}

// historySummary renders the recent exchanges for the generation prompt.
// Answers are truncated so the prompt stays bounded.
func historySummary(sess *models.Session) string {
	if len(sess.Exchanges) == 0 {
		return "No questions asked yet."
	}

	start := 0
	if len(sess.Exchanges) > 5 {
		start = len(sess.Exchanges) - 5
	}

	var builder strings.Builder
	for _, ex := range sess.Exchanges[start:] {
		builder.WriteString("Q: ")
		builder.WriteString(ex.Question)
		builder.WriteString("\n")
		if ex.Answered {
			builder.WriteString("A: ")
			builder.WriteString(truncate(ex.Answer, 300))
			builder.WriteString("\n")
		}
	}
	return builder.String()
}

// difficultyHint adapts the next question to the latest composite score.
func difficultyHint(sess *models.Session) string {
	if len(sess.Evaluations) == 0 {
		return ""
	}

	last := sess.Evaluations[len(sess.Evaluations)-1]
	switch {
	case last.Composite < 50:
		return "Previous answer was weak. Ask a slightly easier follow-up to build confidence."
	case last.Composite > 80:
		return "Previous answer was strong. Ask a more challenging question to assess depth."
	}
	return ""
}

func formatMatches(matches []models.BankMatch) string {
	if len(matches) == 0 {
		return "No similar questions found."
	}

	var builder strings.Builder
	for i, m := range matches {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&builder, "%d. %s\n", i+1, m.Question)
	}
	return builder.String()
}

func isRepeat(question string, asked []string) bool {
	normalized := normalizeQuestion(question)
	for _, a := range asked {
		if normalizeQuestion(a) == normalized {
			return true
		}
	}
	return false
}

func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// pickBankQuestion returns the best scoring bank match not already asked.
func pickBankQuestion(matches []models.BankMatch, asked []string) string {
	for _, m := range matches {
		if !isRepeat(m.Question, asked) {
			return m.Question
		}
	}
	return ""
}

func fallbackTemplate(phase string) string {
	switch phase {
	case "technical":
		return "Can you explain your approach to writing clean, maintainable code? Give me a specific example from your experience."
	case "behavioral":
		return "Tell me about a time when you faced a significant challenge at work. How did you handle it?"
	case "problem_solving":
		return "If you were asked to improve our team's efficiency by 30%, what would be your approach?"
	}
	return "Tell me more about your relevant experience for this role."
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
