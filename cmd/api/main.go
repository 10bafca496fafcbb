package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/api/handlers"
	"github.com/Greeshmargowda/interview-agent/internal/bank"
	redisCache "github.com/Greeshmargowda/interview-agent/internal/cache/redis"
	"github.com/Greeshmargowda/interview-agent/internal/evaluation"
	"github.com/Greeshmargowda/interview-agent/internal/interview"
	"github.com/Greeshmargowda/interview-agent/internal/llm"
	"github.com/Greeshmargowda/interview-agent/internal/metrics"
	"github.com/Greeshmargowda/interview-agent/internal/middleware/ratelimit"
	"github.com/Greeshmargowda/interview-agent/internal/middleware/security"
	"github.com/Greeshmargowda/interview-agent/internal/middleware/validation"
	"github.com/Greeshmargowda/interview-agent/internal/question"
	"github.com/Greeshmargowda/interview-agent/internal/session"
	"github.com/Greeshmargowda/interview-agent/internal/storage/sqlite"
	"github.com/Greeshmargowda/interview-agent/internal/vector/milvus"
	"github.com/Greeshmargowda/interview-agent/pkg/config"
	appLogger "github.com/Greeshmargowda/interview-agent/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Interview Agent API Server")

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	milvusClient, err := milvus.NewClient(
		cfg.Milvus.Endpoint,
		cfg.Milvus.CollectionName,
		cfg.Milvus.VectorDim,
	)
	if err != nil {
		appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
	}
	defer milvusClient.Close()

	// Redis is an optimization only; the server runs without it.
	var cache *redisCache.Client
	if cfg.Redis.Enabled {
		cache, err = redisCache.NewClient(
			fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	metrics.Init()

	var embeddingCache bank.EmbeddingCache
	if cache != nil {
		embeddingCache = cache
	}
	questionBank := bank.NewIndex(llmClient, milvusClient, embeddingCache, appLogger.GetLogger())
	if err := questionBank.Seed(context.Background()); err != nil {
		appLogger.Warn("Failed to seed question bank", zap.Error(err))
	}
	if count, err := milvusClient.Count(context.Background()); err == nil {
		metrics.BankQuestionsTotal.Set(float64(count))
	}

	store := session.NewStore(sqliteClient, appLogger.GetLogger())
	questionEngine := question.NewEngine(llmClient, questionBank, cfg.Interview.TopK, appLogger.GetLogger())
	evaluator := evaluation.NewEvaluator(llmClient, cfg.Interview.Weights, appLogger.GetLogger())
	orchestrator := interview.NewOrchestrator(store, questionEngine, evaluator, cfg.Interview, appLogger.GetLogger())

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Candidate-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	rl := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer rl.Stop()
	app.Use(rl.Middleware())

	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	interviewHandler := handlers.NewInterviewHandler(orchestrator, questionBank, cache)

	api := app.Group("/api")

	api.Post("/interview/start", interviewHandler.StartInterview)
	api.Post("/interview/answer", interviewHandler.SubmitAnswer)
	api.Get("/interview/:id/report", interviewHandler.GetReport)
	api.Get("/interview/:id/status", interviewHandler.GetStatus)
	api.Get("/interviews/list", interviewHandler.ListInterviews)
	api.Post("/questions", interviewHandler.AddQuestion)

	app.Get("/metrics", metrics.MetricsHandler())

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
