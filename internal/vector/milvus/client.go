package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
)

// Client wraps the Milvus collection holding the question bank embeddings.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

// Entry is one bank question ready for insertion.
type Entry struct {
	Question  models.BankQuestion
	Embedding []float32
}

func NewClient(endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

// EnsureCollection creates, indexes, and loads the question collection if
// it does not exist yet. Returns true when the collection was just created,
// which signals the caller to seed it.
func (m *Client) EnsureCollection(ctx context.Context) (bool, error) {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return false, fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		if err := m.client.LoadCollection(ctx, m.collectionName, false); err != nil {
			return false, fmt.Errorf("failed to load collection: %w", err)
		}
		return false, nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Interview question bank embeddings",
		Fields: []*entity.Field{
			{
				Name:       "question_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "question",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "2048",
				},
			},
			{
				Name:     "phase",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "role",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "difficulty",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return false, fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return false, fmt.Errorf("failed to build index definition: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return false, fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return false, fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return true, nil
}

func (m *Client) Insert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]string, len(entries))
	embeddings := make([][]float32, len(entries))
	questions := make([]string, len(entries))
	phases := make([]string, len(entries))
	roles := make([]string, len(entries))
	difficulties := make([]string, len(entries))

	for i, e := range entries {
		ids[i] = e.Question.ID
		embeddings[i] = e.Embedding
		questions[i] = e.Question.Question
		phases[i] = e.Question.Phase
		roles[i] = e.Question.Role
		difficulties[i] = e.Question.Difficulty
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("question_id", ids),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("question", questions),
		entity.NewColumnVarChar("phase", phases),
		entity.NewColumnVarChar("role", roles),
		entity.NewColumnVarChar("difficulty", difficulties),
	)

	if err != nil {
		return fmt.Errorf("failed to insert questions: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Questions inserted into vector DB", zap.Int("count", len(entries)))

	return nil
}

// Search returns the bank questions closest to the query embedding,
// optionally restricted to a phase and role.
func (m *Client) Search(ctx context.Context, queryEmbedding []float32, phase, role string, topK int) ([]models.BankMatch, error) {
	expr := ""
	if phase != "" {
		expr = fmt.Sprintf(`phase == "%s"`, phase)
	}
	if role != "" {
		if expr != "" {
			expr += " && "
		}
		expr += fmt.Sprintf(`role == "%s"`, role)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		expr,
		[]string{"question_id", "question", "phase", "role", "difficulty"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]models.BankMatch, 0)
	for _, sr := range searchResult {
		idCol := sr.Fields.GetColumn("question_id")
		questionCol := sr.Fields.GetColumn("question")
		phaseCol := sr.Fields.GetColumn("phase")
		roleCol := sr.Fields.GetColumn("role")
		difficultyCol := sr.Fields.GetColumn("difficulty")

		for i := 0; i < sr.ResultCount; i++ {
			id, _ := idCol.Get(i)
			question, _ := questionCol.Get(i)
			ph, _ := phaseCol.Get(i)
			rl, _ := roleCol.Get(i)
			difficulty, _ := difficultyCol.Get(i)

			results = append(results, models.BankMatch{
				BankQuestion: models.BankQuestion{
					ID:         id.(string),
					Question:   question.(string),
					Phase:      ph.(string),
					Role:       rl.(string),
					Difficulty: difficulty.(string),
				},
				Score: sr.Scores[i],
			})
		}
	}

	logger.Debug("Vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(results)),
		zap.String("filters", expr),
	)

	return results, nil
}

// Count returns the number of questions in the collection.
func (m *Client) Count(ctx context.Context) (int64, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.collectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}

	var count int64
	fmt.Sscanf(stats["row_count"], "%d", &count)
	return count, nil
}
