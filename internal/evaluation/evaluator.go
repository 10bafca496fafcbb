package evaluation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/llm"
	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
)

const neutralScore = 50.0

// Scorer produces raw dimension scores for an answer. *llm.Client
// satisfies it.
type Scorer interface {
	ScoreAnswer(ctx context.Context, req llm.ScoreRequest) (llm.ScoreOutcome, error)
}

// Evaluator turns candidate answers into four-dimension evaluations. It
// never fails: a scorer outage or an unparseable response produces a
// neutral fallback evaluation so the interview always advances.
type Evaluator struct {
	scorer  Scorer
	weights map[string]float64
	logger  *zap.Logger
}

func NewEvaluator(scorer Scorer, weights map[string]float64, log *zap.Logger) *Evaluator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Evaluator{
		scorer:  scorer,
		weights: weights,
		logger:  log,
	}
}

// Evaluate scores one answered exchange.
func (e *Evaluator) Evaluate(ctx context.Context, sess *models.Session, ex *models.Exchange) models.Evaluation {
	outcome, err := e.scorer.ScoreAnswer(ctx, llm.ScoreRequest{
		Question:        ex.Question,
		Answer:          ex.Answer,
		Phase:           ex.Phase,
		Role:            sess.JobRole,
		ExperienceYears: sess.ExperienceYears,
	})

	if err != nil {
		e.logger.Warn("Scoring failed, using fallback evaluation",
			zap.String("session_id", sess.ID),
			zap.Int("sequence", ex.Sequence),
			zap.Error(err),
		)
		return e.fallback(ex)
	}

	if outcome.Parsed == nil {
		e.logger.Warn("Scoring response unparseable, using fallback evaluation",
			zap.String("session_id", sess.ID),
			zap.Int("sequence", ex.Sequence),
		)
		return e.fallback(ex)
	}

	ev := models.Evaluation{
		ExchangeSequence: ex.Sequence,
		Phase:            ex.Phase,
		Feedback:         outcome.Parsed.Feedback,
		Reasoning:        outcome.Parsed.Reasoning,
		CreatedAt:        time.Now(),
	}

	ev.TechnicalAccuracy, ev.Clamped = normalize(outcome.Parsed.TechnicalAccuracy, ev.Clamped)
	ev.CommunicationQuality, ev.Clamped = normalize(outcome.Parsed.CommunicationQuality, ev.Clamped)
	ev.ProblemSolving, ev.Clamped = normalize(outcome.Parsed.ProblemSolving, ev.Clamped)
	ev.CulturalFit, ev.Clamped = normalize(outcome.Parsed.CulturalFit, ev.Clamped)

	if ev.Feedback == "" {
		ev.Feedback = "Thank you for your answer."
	}

	ev.Composite = e.Composite(&ev)

	return ev
}

// Composite is the weighted sum of the dimension scores.
func (e *Evaluator) Composite(ev *models.Evaluation) float64 {
	var total float64
	for name, weight := range e.weights {
		total += ev.Dimension(name) * weight
	}
	return total
}

func (e *Evaluator) fallback(ex *models.Exchange) models.Evaluation {
	ev := models.Evaluation{
		ExchangeSequence:     ex.Sequence,
		Phase:                ex.Phase,
		TechnicalAccuracy:    neutralScore,
		CommunicationQuality: neutralScore,
		ProblemSolving:       neutralScore,
		CulturalFit:          neutralScore,
		Feedback:             "Thank you for your answer. Let's continue with the interview.",
		Fallback:             true,
		CreatedAt:            time.Now(),
	}
	ev.Composite = e.Composite(&ev)
	return ev
}

// normalize maps a possibly missing or out-of-range score into [0,100].
// Missing dimensions get the neutral score; both cases set the clamped flag.
func normalize(score *float64, clamped bool) (float64, bool) {
	if score == nil {
		return neutralScore, true
	}
	if *score < 0 {
		return 0, true
	}
	if *score > 100 {
		return 100, true
	}
	return *score, clamped
}
