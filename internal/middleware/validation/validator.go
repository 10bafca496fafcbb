package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	sqlInjectionPattern = regexp.MustCompile(`(?i)(\bunion\b|\bselect\b.*\bfrom\b|\binsert\b.*\binto\b|\bdrop\b.*\btable\b|\bexec\b)`)
	xssPattern          = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)
	emailPattern        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type Config struct {
	MaxAnswerLength int
	MaxTextLength   int
	Logger          *zap.Logger
}

// Middleware validates interview request payloads before they reach the
// handlers: required fields on interview creation, a bounded non-empty
// answer on submission, and injection screening on all free text.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxAnswerLength == 0 {
		cfg.MaxAnswerLength = 10000
	}
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = 20000
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if contentType != "" && !strings.Contains(contentType, "application/json") {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"success": false,
				"message": "Unsupported content type",
			})
		}

		path := c.Path()

		switch {
		case strings.HasSuffix(path, "/api/interview/start"):
			return validateStart(c, cfg)
		case strings.HasSuffix(path, "/api/interview/answer"):
			return validateAnswer(c, cfg)
		case strings.HasSuffix(path, "/api/questions"):
			return validateQuestion(c, cfg)
		}

		return c.Next()
	}
}

func validateStart(c *fiber.Ctx, cfg Config) error {
	var req map[string]interface{}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	name, _ := req["candidate_name"].(string)
	if strings.TrimSpace(name) == "" {
		return badRequest(c, "candidate_name is required")
	}

	role, _ := req["job_role"].(string)
	if strings.TrimSpace(role) == "" {
		return badRequest(c, "job_role is required")
	}

	if years, ok := req["experience_years"].(float64); ok && years < 0 {
		return badRequest(c, "experience_years must not be negative")
	}

	email, _ := req["candidate_email"].(string)
	if strings.TrimSpace(email) == "" {
		return badRequest(c, "candidate_email is required")
	}
	if !emailPattern.MatchString(email) {
		return badRequest(c, "candidate_email format is invalid")
	}

	for _, field := range []string{"candidate_name", "job_role", "job_description", "resume_summary"} {
		value, _ := req[field].(string)
		if len(value) > cfg.MaxTextLength {
			return badRequest(c, field+" exceeds maximum length")
		}
		if suspicious(value) {
			cfg.Logger.Warn("Suspicious input rejected",
				zap.String("ip", c.IP()),
				zap.String("field", field),
			)
			return badRequest(c, "Invalid content in "+field)
		}
	}

	return c.Next()
}

func validateAnswer(c *fiber.Ctx, cfg Config) error {
	var req map[string]interface{}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	id, _ := req["interview_id"].(string)
	if strings.TrimSpace(id) == "" {
		return badRequest(c, "interview_id is required")
	}

	answer, ok := req["answer"].(string)
	if !ok || strings.TrimSpace(answer) == "" {
		return badRequest(c, "answer is required and must be a string")
	}

	if len(answer) > cfg.MaxAnswerLength {
		return badRequest(c, "answer exceeds maximum length")
	}

	if suspicious(answer) {
		cfg.Logger.Warn("Suspicious answer rejected", zap.String("ip", c.IP()))
		return badRequest(c, "Invalid answer content")
	}

	return c.Next()
}

func validateQuestion(c *fiber.Ctx, cfg Config) error {
	var req map[string]interface{}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	question, ok := req["question"].(string)
	if !ok || strings.TrimSpace(question) == "" {
		return badRequest(c, "question is required and must be a string")
	}

	if len(question) > cfg.MaxTextLength {
		return badRequest(c, "question exceeds maximum length")
	}

	if suspicious(question) {
		cfg.Logger.Warn("Suspicious question rejected", zap.String("ip", c.IP()))
		return badRequest(c, "Invalid question content")
	}

	return c.Next()
}

func suspicious(input string) bool {
	return sqlInjectionPattern.MatchString(input) || xssPattern.MatchString(input)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
