package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/bank"
	redisCache "github.com/Greeshmargowda/interview-agent/internal/cache/redis"
	"github.com/Greeshmargowda/interview-agent/internal/interview"
	"github.com/Greeshmargowda/interview-agent/internal/metrics"
	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
)

// InterviewHandler exposes the interview lifecycle over HTTP. The cache is
// optional; a nil cache skips report caching.
type InterviewHandler struct {
	orchestrator *interview.Orchestrator
	questionBank *bank.Index
	cache        *redisCache.Client
}

func NewInterviewHandler(orchestrator *interview.Orchestrator, questionBank *bank.Index, cache *redisCache.Client) *InterviewHandler {
	return &InterviewHandler{
		orchestrator: orchestrator,
		questionBank: questionBank,
		cache:        cache,
	}
}

func (h *InterviewHandler) StartInterview(c *fiber.Ctx) error {
	var req struct {
		CandidateName   string `json:"candidate_name"`
		CandidateEmail  string `json:"candidate_email"`
		JobRole         string `json:"job_role"`
		ExperienceYears int    `json:"experience_years"`
		JobDescription  string `json:"job_description"`
		ResumeSummary   string `json:"resume_summary"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	profile := models.CandidateProfile{
		Name:            req.CandidateName,
		Email:           req.CandidateEmail,
		JobRole:         req.JobRole,
		ExperienceYears: req.ExperienceYears,
		JobDescription:  bank.CleanText(req.JobDescription),
		ResumeSummary:   bank.CleanText(req.ResumeSummary),
	}

	sess, firstQuestion, err := h.orchestrator.Start(c.Context(), profile)
	if err != nil {
		return h.errorResponse(c, err)
	}

	metrics.InterviewsStarted.Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":        true,
		"interview_id":   sess.ID,
		"first_question": firstQuestion,
		"phase":          sess.Phase,
	})
}

func (h *InterviewHandler) SubmitAnswer(c *fiber.Ctx) error {
	var req struct {
		InterviewID string `json:"interview_id"`
		Answer      string `json:"answer"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.InterviewID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "interview_id is required",
		})
	}

	start := time.Now()
	result, err := h.orchestrator.SubmitAnswer(c.Context(), req.InterviewID, req.Answer)
	if err != nil {
		metrics.AnswersProcessed.WithLabelValues("unknown", "error").Inc()
		return h.errorResponse(c, err)
	}

	metrics.AnswersProcessed.WithLabelValues(result.Phase, "ok").Inc()
	metrics.AnswerDuration.WithLabelValues(result.Phase).Observe(time.Since(start).Seconds())
	metrics.CompositeScore.Observe(result.Score)
	if result.Fallback {
		metrics.EvaluationFallbacks.Inc()
	}

	if result.Complete {
		metrics.InterviewsCompleted.Inc()
		metrics.ReportsGenerated.Inc()
		if h.cache != nil && result.Report != nil {
			h.cache.SetReport(c.Context(), req.InterviewID, result.Report)
		}

		return c.JSON(fiber.Map{
			"success":            true,
			"interview_complete": true,
			"score":              result.Score,
			"feedback":           result.Feedback,
			"final_report":       result.Report,
		})
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"interview_complete": false,
		"next_question":      result.NextQuestion,
		"phase":              result.Phase,
		"score":              result.Score,
		"feedback":           result.Feedback,
	})
}

func (h *InterviewHandler) GetReport(c *fiber.Ctx) error {
	interviewID := c.Params("id")

	if h.cache != nil {
		if report, ok := h.cache.GetReport(c.Context(), interviewID); ok {
			metrics.CacheHits.WithLabelValues("report").Inc()
			return c.JSON(fiber.Map{
				"success": true,
				"report":  report,
			})
		}
		metrics.CacheMisses.WithLabelValues("report").Inc()
	}

	report, err := h.orchestrator.Report(c.Context(), interviewID)
	if err != nil {
		return h.errorResponse(c, err)
	}

	if h.cache != nil {
		h.cache.SetReport(c.Context(), interviewID, report)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"report":  report,
	})
}

func (h *InterviewHandler) GetStatus(c *fiber.Ctx) error {
	info, err := h.orchestrator.Status(c.Params("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"interview_id":     info.ID,
		"phase":            info.Phase,
		"status":           info.Status,
		"questions_asked":  info.QuestionsAsked,
		"phase_progress":   info.PhaseProgress,
		"current_question": info.CurrentQuestion,
		"latest_score":     info.LatestScore,
	})
}

func (h *InterviewHandler) ListInterviews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	summaries, err := h.orchestrator.List(limit, offset)
	if err != nil {
		logger.Error("Failed to list interviews", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to list interviews",
		})
	}

	items := make([]fiber.Map, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, fiber.Map{
			"interview_id":   s.ID,
			"candidate_name": s.CandidateName,
			"job_role":       s.JobRole,
			"status":         s.Status,
			"created_at":     s.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"interviews": items,
	})
}

// AddQuestion indexes a custom question into the bank.
func (h *InterviewHandler) AddQuestion(c *fiber.Ctx) error {
	var req struct {
		Question   string `json:"question"`
		Phase      string `json:"phase"`
		Role       string `json:"role"`
		Difficulty string `json:"difficulty"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.Question == "" || req.Phase == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "question and phase are required",
		})
	}
	if req.Role == "" {
		req.Role = "general"
	}
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}

	id, err := h.questionBank.AddQuestion(c.Context(), req.Question, req.Phase, req.Role, req.Difficulty)
	if err != nil {
		logger.Error("Failed to add question", zap.Error(err))
		return h.errorResponse(c, fmt.Errorf("%w: %v", interview.ErrExternalService, err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":     true,
		"question_id": id,
	})
}

// errorResponse maps orchestrator errors onto HTTP statuses.
func (h *InterviewHandler) errorResponse(c *fiber.Ctx, err error) error {
	var vErr *interview.ValidationError
	switch {
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": vErr.Message,
			"field":   vErr.Field,
		})
	case errors.Is(err, interview.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Interview not found",
		})
	case errors.Is(err, interview.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	case errors.Is(err, interview.ErrNotReady):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Interview is not completed yet",
		})
	case errors.Is(err, interview.ErrInsufficientData):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Not enough answers to generate a report",
		})
	case errors.Is(err, interview.ErrExternalService):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"message": "Upstream service unavailable",
		})
	}

	logger.Error("Request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}
