package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/pkg/circuitbreaker"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
	"github.com/Greeshmargowda/interview-agent/pkg/retry"
)

// Client talks to the reasoning service. Every call runs inside the
// circuit breaker and retry envelope and is bounded by a hard timeout, so
// a slow or failing backend degrades the interview instead of blocking it.
type Client struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
	timeout        time.Duration
	cb             *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

func NewClient(apiKey, model, embeddingModel string, temperature float32, maxTokens, timeoutSec int) *Client {
	client := openai.NewClient(apiKey)

	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	if timeoutSec == 0 {
		timeoutSec = 30
	}

	logger.Info("LLM client initialized",
		zap.String("model", model),
		zap.String("embedding_model", embeddingModel),
	)

	return &Client{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		maxTokens:      maxTokens,
		timeout:        time.Duration(timeoutSec) * time.Second,
		cb:             cb,
		retryConfig:    retryConfig,
	}
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserPrompt,
		},
	}

	var content string

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)

			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			content = resp.Choices[0].Message.Content
			return nil
		})
	})

	if err != nil {
		return "", err
	}

	return content, nil
}

func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var embedding []float32

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateEmbeddings(
				ctx,
				openai.EmbeddingRequest{
					Input: []string{text},
					Model: openai.EmbeddingModel(c.embeddingModel),
				},
			)

			if err != nil {
				return fmt.Errorf("failed to generate embedding: %w", err)
			}

			embedding = make([]float32, len(resp.Data[0].Embedding))
			copy(embedding, resp.Data[0].Embedding)

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return embedding, nil
}

func (c *Client) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var embeddings [][]float32

	batchSize := 100
	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := texts[i:end]

		err := c.cb.Execute(ctx, func() error {
			return retry.Do(ctx, c.retryConfig, func() error {
				resp, err := c.client.CreateEmbeddings(
					ctx,
					openai.EmbeddingRequest{
						Input: batch,
						Model: openai.EmbeddingModel(c.embeddingModel),
					},
				)

				if err != nil {
					return fmt.Errorf("failed to generate batch embeddings: %w", err)
				}

				for _, data := range resp.Data {
					embedding := make([]float32, len(data.Embedding))
					copy(embedding, data.Embedding)
					embeddings = append(embeddings, embedding)
				}

				return nil
			})
		})

		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Batch embeddings generated", zap.Int("count", len(embeddings)))

	return embeddings, nil
}

type QuestionRequest struct {
	Phase           string
	Role            string
	CandidateName   string
	ExperienceYears int
	JobDescription  string
	History         string
	BankContext     string
	AskedQuestions  []string
	DifficultyHint  string
}

// GenerateQuestion asks the reasoning service for one novel interview
// question grounded in the retrieved bank context and the session history.
func (c *Client) GenerateQuestion(ctx context.Context, req QuestionRequest) (string, error) {
	systemPrompt := fmt.Sprintf(`You are an expert interviewer conducting the %s phase of an interview for a %s position.

Job Description: %s
Candidate Experience: %d years
Interview History:
%s

Reference questions from the question bank:
%s

IMPORTANT: Do NOT repeat any of these already asked questions:
%s`,
		req.Phase,
		req.Role,
		req.JobDescription,
		req.ExperienceYears,
		req.History,
		req.BankContext,
		formatAskedQuestions(req.AskedQuestions),
	)

	if req.DifficultyHint != "" {
		systemPrompt += "\n\nNote: " + req.DifficultyHint
	}

	userPrompt := fmt.Sprintf(`Generate ONE specific, relevant interview question for the %s phase.

Requirements:
- Make it specific to %s
- Appropriate for %d years of experience
- Clear and professional
- Don't repeat questions already asked

Return ONLY the question, nothing else.`, req.Phase, req.Role, req.ExperienceYears)

	content, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.7,
		MaxTokens:    300,
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate question: %w", err)
	}

	return strings.TrimSpace(content), nil
}

type ScoreRequest struct {
	Question        string
	Answer          string
	Phase           string
	Role            string
	ExperienceYears int
}

// ScorePayload is the structured scoring response. Dimension fields are
// pointers so a missing score is distinguishable from a zero.
type ScorePayload struct {
	TechnicalAccuracy    *float64 `json:"technical_accuracy"`
	CommunicationQuality *float64 `json:"communication_quality"`
	ProblemSolving       *float64 `json:"problem_solving"`
	CulturalFit          *float64 `json:"cultural_fit"`
	Feedback             string   `json:"feedback"`
	Reasoning            string   `json:"reasoning"`
}

// ScoreOutcome is the tagged result of parsing a scoring response: either
// Parsed is set, or the response was unusable and Raw holds the original
// text. Callers must pick a fallback explicitly when Parsed is nil.
type ScoreOutcome struct {
	Parsed *ScorePayload
	Raw    string
}

// ScoreAnswer requests four dimension scores in [0,100] plus feedback and
// reasoning. A transport failure is returned as an error; a response that
// arrives but cannot be parsed yields an unparseable outcome.
func (c *Client) ScoreAnswer(ctx context.Context, req ScoreRequest) (ScoreOutcome, error) {
	systemPrompt := fmt.Sprintf(`You are an expert interviewer evaluating a candidate's response.

Job Role: %s
Candidate Experience: %d years
Interview Phase: %s

Evaluate the response on these dimensions, each scored 0-100:
1. Technical Accuracy: how technically correct and detailed is the answer?
2. Communication Quality: how clear, structured, and professional is it?
3. Problem-Solving Ability: does it demonstrate analytical thinking?
4. Cultural Fit: does it align with professional values and collaboration?

Respond in this EXACT JSON format:
{
  "technical_accuracy": <0-100>,
  "communication_quality": <0-100>,
  "problem_solving": <0-100>,
  "cultural_fit": <0-100>,
  "feedback": "<brief constructive feedback>",
  "reasoning": "<short justification of the scores>"
}

Be objective and fair. Consider the candidate's experience level.`,
		req.Role, req.ExperienceYears, req.Phase)

	userPrompt := fmt.Sprintf("Question Asked: %s\n\nCandidate's Answer: %s", req.Question, req.Answer)

	content, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.3,
		MaxTokens:    800,
	})

	if err != nil {
		return ScoreOutcome{}, fmt.Errorf("failed to score answer: %w", err)
	}

	return ParseScoreOutcome(content), nil
}

// ParseScoreOutcome extracts the JSON scoring payload from a completion,
// tolerating markdown code fences around it.
func ParseScoreOutcome(content string) ScoreOutcome {
	extracted := extractJSON(content)

	var payload ScorePayload
	if err := json.Unmarshal([]byte(extracted), &payload); err != nil {
		logger.Warn("Unparseable scoring response", zap.Error(err))
		return ScoreOutcome{Raw: content}
	}

	return ScoreOutcome{Parsed: &payload, Raw: content}
}

func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+len("```"):]
		if end := strings.Index(content, "```"); end >= 0 {
			content = content[:end]
		}
	}

	return strings.TrimSpace(content)
}

func formatAskedQuestions(asked []string) string {
	if len(asked) == 0 {
		return "None yet."
	}

	var builder strings.Builder
	for _, q := range asked {
		builder.WriteString("- ")
		builder.WriteString(q)
		builder.WriteString("\n")
	}
	return builder.String()
}
