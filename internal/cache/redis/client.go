package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
	"github.com/Greeshmargowda/interview-agent/pkg/utils"
)

const (
	reportTTL    = 24 * time.Hour
	embeddingTTL = 7 * 24 * time.Hour
)

// Client caches final reports and query embeddings. The cache is an
// optimization only; every method degrades to a miss on error.
type Client struct {
	rdb *redis.Client
}

func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Redis client initialized", zap.String("addr", addr))

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) GetReport(ctx context.Context, interviewID string) (*models.Report, bool) {
	data, err := c.rdb.Get(ctx, reportKey(interviewID)).Bytes()
	if err != nil {
		return nil, false
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		logger.Warn("Corrupt cached report", zap.String("interview_id", interviewID), zap.Error(err))
		return nil, false
	}

	return &report, true
}

func (c *Client) SetReport(ctx context.Context, interviewID string, report *models.Report) {
	data, err := json.Marshal(report)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, reportKey(interviewID), data, reportTTL).Err(); err != nil {
		logger.Warn("Failed to cache report", zap.String("interview_id", interviewID), zap.Error(err))
	}
}

func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, bool) {
	data, err := c.rdb.Get(ctx, embeddingKey(text)).Bytes()
	if err != nil {
		return nil, false
	}

	var embedding []float32
	if err := json.Unmarshal(data, &embedding); err != nil {
		return nil, false
	}

	return embedding, true
}

func (c *Client) SetEmbedding(ctx context.Context, text string, embedding []float32) {
	data, err := json.Marshal(embedding)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, embeddingKey(text), data, embeddingTTL).Err(); err != nil {
		logger.Warn("Failed to cache embedding", zap.Error(err))
	}
}

func reportKey(interviewID string) string {
	return "report:" + interviewID
}

func embeddingKey(text string) string {
	return "embedding:" + utils.HashString(text)
}
