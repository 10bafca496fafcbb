package bank

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/internal/vector/milvus"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
)

// Embedder converts text into embedding vectors.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore is the similarity search backend. *milvus.Client satisfies it.
type VectorStore interface {
	EnsureCollection(ctx context.Context) (bool, error)
	Insert(ctx context.Context, entries []milvus.Entry) error
	Search(ctx context.Context, queryEmbedding []float32, phase, role string, topK int) ([]models.BankMatch, error)
	Count(ctx context.Context) (int64, error)
}

// EmbeddingCache memoizes query embeddings so repeated retrievals for the
// same phase/role skip the embedding call. Optional; nil disables caching.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, bool)
	SetEmbedding(ctx context.Context, text string, embedding []float32)
}

// Index is the question bank: a vector store of interview questions with
// semantic search over them.
type Index struct {
	embedder Embedder
	store    VectorStore
	cache    EmbeddingCache
	logger   *zap.Logger
}

func NewIndex(embedder Embedder, store VectorStore, cache EmbeddingCache, log *zap.Logger) *Index {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Index{
		embedder: embedder,
		store:    store,
		cache:    cache,
		logger:   log,
	}
}

// Seed ensures the collection exists and loads the built-in bank into a
// freshly created collection. An already populated collection is left alone.
func (x *Index) Seed(ctx context.Context) error {
	created, err := x.store.EnsureCollection(ctx)
	if err != nil {
		return err
	}

	if !created {
		count, err := x.store.Count(ctx)
		if err == nil && count > 0 {
			x.logger.Info("Question bank already loaded", zap.Int64("questions", count))
			return nil
		}
	}

	texts := make([]string, len(seedQuestions))
	for i, q := range seedQuestions {
		texts[i] = q.Question
	}

	embeddings, err := x.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed question bank: %w", err)
	}
	if len(embeddings) != len(seedQuestions) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(seedQuestions))
	}

	entries := make([]milvus.Entry, len(seedQuestions))
	for i, q := range seedQuestions {
		entries[i] = milvus.Entry{Question: q, Embedding: embeddings[i]}
	}

	if err := x.store.Insert(ctx, entries); err != nil {
		return err
	}

	x.logger.Info("Question bank seeded", zap.Int("questions", len(entries)))
	return nil
}

// SearchQuestions returns the bank questions most similar to the query,
// filtered by phase and role when given.
func (x *Index) SearchQuestions(ctx context.Context, query, phase, role string, topK int) ([]models.BankMatch, error) {
	embedding, err := x.queryEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := x.store.Search(ctx, embedding, phase, role, topK)
	if err != nil {
		return nil, err
	}

	// Retry without the role filter so a niche role still gets bank context.
	if len(matches) == 0 && role != "" {
		matches, err = x.store.Search(ctx, embedding, phase, "", topK)
		if err != nil {
			return nil, err
		}
	}

	return matches, nil
}

// AddQuestion embeds and indexes a custom question, returning its id.
func (x *Index) AddQuestion(ctx context.Context, question, phase, role, difficulty string) (string, error) {
	question = CleanText(question)
	if question == "" {
		return "", fmt.Errorf("question text is empty")
	}

	embedding, err := x.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	q := models.BankQuestion{
		ID:         "custom_" + uuid.New().String(),
		Question:   question,
		Phase:      phase,
		Role:       role,
		Difficulty: difficulty,
	}

	if err := x.store.Insert(ctx, []milvus.Entry{{Question: q, Embedding: embedding}}); err != nil {
		return "", err
	}

	x.logger.Info("Custom question added",
		zap.String("question_id", q.ID),
		zap.String("phase", phase),
		zap.String("role", role),
	)

	return q.ID, nil
}

func (x *Index) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if x.cache != nil {
		if embedding, ok := x.cache.GetEmbedding(ctx, query); ok {
			return embedding, nil
		}
	}

	embedding, err := x.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	if x.cache != nil {
		x.cache.SetEmbedding(ctx, query, embedding)
	}

	return embedding, nil
}

// FormatContext renders bank matches as a bulleted block for prompts.
func FormatContext(matches []models.BankMatch) string {
	if len(matches) == 0 {
		return "No reference questions available."
	}

	var builder strings.Builder
	for _, m := range matches {
		builder.WriteString("- ")
		builder.WriteString(m.Question)
		builder.WriteString("\n")
	}
	return builder.String()
}
