package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InterviewsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sessions_started_total",
			Help: "Total interviews started",
		},
	)

	InterviewsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_sessions_completed_total",
			Help: "Total interviews completed",
		},
	)

	AnswersProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_answers_processed_total",
			Help: "Total answers processed",
		},
		[]string{"phase", "status"},
	)

	AnswerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interview_answer_duration_seconds",
			Help:    "Answer processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"phase"},
	)

	CompositeScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_composite_score",
			Help:    "Composite scores of evaluated answers",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	EvaluationFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_evaluation_fallbacks_total",
			Help: "Total evaluations that fell back to neutral scores",
		},
	)

	QuestionSource = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_question_source_total",
			Help: "Questions served by source",
		},
		[]string{"source"},
	)

	ReportsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "interview_reports_generated_total",
			Help: "Total final reports synthesized",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	BankQuestionsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_bank_questions_total",
			Help: "Questions in the vector question bank",
		},
	)
)

func Init() {
	prometheus.MustRegister(InterviewsStarted)
	prometheus.MustRegister(InterviewsCompleted)
	prometheus.MustRegister(AnswersProcessed)
	prometheus.MustRegister(AnswerDuration)
	prometheus.MustRegister(CompositeScore)
	prometheus.MustRegister(EvaluationFallbacks)
	prometheus.MustRegister(QuestionSource)
	prometheus.MustRegister(ReportsGenerated)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(BankQuestionsTotal)
}

// MetricsHandler exposes the Prometheus scrape endpoint on the fiber app.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
