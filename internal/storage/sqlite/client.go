package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
	"github.com/Greeshmargowda/interview-agent/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS interviews (
		id TEXT PRIMARY KEY,
		candidate_name TEXT NOT NULL,
		candidate_email TEXT NOT NULL,
		job_role TEXT NOT NULL,
		experience_years INTEGER NOT NULL,
		job_description TEXT,
		resume_summary TEXT,
		phase TEXT NOT NULL,
		questions_in_phase INTEGER NOT NULL DEFAULT 0,
		total_questions INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'in_progress',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		completed_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_interviews_status ON interviews(status);
	CREATE INDEX IF NOT EXISTS idx_interviews_created ON interviews(created_at);

	CREATE TABLE IF NOT EXISTS exchanges (
		interview_id TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		phase TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT,
		answered INTEGER NOT NULL DEFAULT 0,
		asked_at INTEGER NOT NULL,
		answered_at INTEGER,
		PRIMARY KEY (interview_id, sequence),
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS evaluations (
		interview_id TEXT NOT NULL,
		exchange_sequence INTEGER NOT NULL,
		phase TEXT NOT NULL,
		technical_accuracy REAL NOT NULL,
		communication_quality REAL NOT NULL,
		problem_solving REAL NOT NULL,
		cultural_fit REAL NOT NULL,
		composite REAL NOT NULL,
		feedback TEXT,
		reasoning TEXT,
		fallback INTEGER NOT NULL DEFAULT 0,
		clamped INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (interview_id, exchange_sequence),
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reports (
		interview_id TEXT PRIMARY KEY,
		report_data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (interview_id) REFERENCES interviews(id) ON DELETE CASCADE
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertInterview(s *models.Session) error {
	query := `
		INSERT INTO interviews (id, candidate_name, candidate_email, job_role, experience_years,
			job_description, resume_summary, phase, questions_in_phase, total_questions, status,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		s.ID,
		s.CandidateName,
		s.CandidateEmail,
		s.JobRole,
		s.ExperienceYears,
		s.JobDescription,
		s.ResumeSummary,
		s.Phase,
		s.QuestionsInPhase,
		s.TotalQuestions,
		s.Status,
		s.CreatedAt.Unix(),
		s.UpdatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert interview: %w", err)
	}

	logger.Debug("Interview inserted", zap.String("interview_id", s.ID))
	return nil
}

func (c *Client) UpdateInterview(s *models.Session) error {
	query := `
		UPDATE interviews
		SET phase = ?, questions_in_phase = ?, total_questions = ?, status = ?, updated_at = ?, completed_at = ?
		WHERE id = ?
	`

	var completedAt interface{}
	if s.CompletedAt != nil {
		completedAt = s.CompletedAt.Unix()
	}

	_, err := c.db.Exec(
		query,
		s.Phase,
		s.QuestionsInPhase,
		s.TotalQuestions,
		s.Status,
		s.UpdatedAt.Unix(),
		completedAt,
		s.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update interview: %w", err)
	}

	return nil
}

func (c *Client) InsertExchange(interviewID string, ex *models.Exchange) error {
	query := `
		INSERT INTO exchanges (interview_id, sequence, phase, question, answered, asked_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`

	_, err := c.db.Exec(query, interviewID, ex.Sequence, ex.Phase, ex.Question, ex.AskedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	return nil
}

func (c *Client) UpdateExchangeAnswer(interviewID string, ex *models.Exchange) error {
	query := `
		UPDATE exchanges SET answer = ?, answered = 1, answered_at = ?
		WHERE interview_id = ? AND sequence = ?
	`

	var answeredAt interface{}
	if ex.AnsweredAt != nil {
		answeredAt = ex.AnsweredAt.Unix()
	}

	_, err := c.db.Exec(query, ex.Answer, answeredAt, interviewID, ex.Sequence)
	if err != nil {
		return fmt.Errorf("failed to update exchange answer: %w", err)
	}

	return nil
}

func (c *Client) InsertEvaluation(interviewID string, ev *models.Evaluation) error {
	query := `
		INSERT INTO evaluations (interview_id, exchange_sequence, phase, technical_accuracy,
			communication_quality, problem_solving, cultural_fit, composite, feedback, reasoning,
			fallback, clamped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		interviewID,
		ev.ExchangeSequence,
		ev.Phase,
		ev.TechnicalAccuracy,
		ev.CommunicationQuality,
		ev.ProblemSolving,
		ev.CulturalFit,
		ev.Composite,
		ev.Feedback,
		ev.Reasoning,
		boolToInt(ev.Fallback),
		boolToInt(ev.Clamped),
		ev.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}

	return nil
}

func (c *Client) InsertReport(interviewID string, report *models.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `INSERT OR REPLACE INTO reports (interview_id, report_data, created_at) VALUES (?, ?, ?)`

	_, err = c.db.Exec(query, interviewID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	logger.Info("Report stored", zap.String("interview_id", interviewID))
	return nil
}

func (c *Client) GetReport(interviewID string) (*models.Report, error) {
	query := `SELECT report_data FROM reports WHERE interview_id = ?`

	var data string
	err := c.db.QueryRow(query, interviewID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}

// GetInterview reconstructs a full session, including its exchanges,
// evaluations, and report when present.
func (c *Client) GetInterview(id string) (*models.Session, error) {
	query := `
		SELECT id, candidate_name, candidate_email, job_role, experience_years, job_description,
			resume_summary, phase, questions_in_phase, total_questions, status, created_at,
			updated_at, completed_at
		FROM interviews WHERE id = ?
	`

	var s models.Session
	var createdAt, updatedAt int64
	var completedAt sql.NullInt64

	err := c.db.QueryRow(query, id).Scan(
		&s.ID,
		&s.CandidateName,
		&s.CandidateEmail,
		&s.JobRole,
		&s.ExperienceYears,
		&s.JobDescription,
		&s.ResumeSummary,
		&s.Phase,
		&s.QuestionsInPhase,
		&s.TotalQuestions,
		&s.Status,
		&createdAt,
		&updatedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}

	s.CreatedAt = time.Unix(createdAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		s.CompletedAt = &t
	}

	s.Exchanges, err = c.getExchanges(id)
	if err != nil {
		return nil, err
	}

	s.Evaluations, err = c.getEvaluations(id)
	if err != nil {
		return nil, err
	}

	s.Report, err = c.GetReport(id)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (c *Client) getExchanges(interviewID string) ([]models.Exchange, error) {
	query := `
		SELECT sequence, phase, question, answer, answered, asked_at, answered_at
		FROM exchanges WHERE interview_id = ? ORDER BY sequence ASC
	`

	rows, err := c.db.Query(query, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []models.Exchange
	for rows.Next() {
		var ex models.Exchange
		var answer sql.NullString
		var answered int
		var askedAt int64
		var answeredAt sql.NullInt64

		err := rows.Scan(&ex.Sequence, &ex.Phase, &ex.Question, &answer, &answered, &askedAt, &answeredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}

		ex.Answer = answer.String
		ex.Answered = answered == 1
		ex.AskedAt = time.Unix(askedAt, 0)
		if answeredAt.Valid {
			t := time.Unix(answeredAt.Int64, 0)
			ex.AnsweredAt = &t
		}

		exchanges = append(exchanges, ex)
	}

	return exchanges, rows.Err()
}

func (c *Client) getEvaluations(interviewID string) ([]models.Evaluation, error) {
	query := `
		SELECT exchange_sequence, phase, technical_accuracy, communication_quality, problem_solving,
			cultural_fit, composite, feedback, reasoning, fallback, clamped, created_at
		FROM evaluations WHERE interview_id = ? ORDER BY exchange_sequence ASC
	`

	rows, err := c.db.Query(query, interviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluations: %w", err)
	}
	defer rows.Close()

	var evals []models.Evaluation
	for rows.Next() {
		var ev models.Evaluation
		var fallback, clamped int
		var createdAt int64

		err := rows.Scan(
			&ev.ExchangeSequence,
			&ev.Phase,
			&ev.TechnicalAccuracy,
			&ev.CommunicationQuality,
			&ev.ProblemSolving,
			&ev.CulturalFit,
			&ev.Composite,
			&ev.Feedback,
			&ev.Reasoning,
			&fallback,
			&clamped,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}

		ev.Fallback = fallback == 1
		ev.Clamped = clamped == 1
		ev.CreatedAt = time.Unix(createdAt, 0)

		evals = append(evals, ev)
	}

	return evals, rows.Err()
}

func (c *Client) ListInterviews(limit, offset int) ([]models.InterviewSummary, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, candidate_name, job_role, status, created_at
		FROM interviews
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := c.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	defer rows.Close()

	var summaries []models.InterviewSummary
	for rows.Next() {
		var s models.InterviewSummary
		var createdAt int64

		err := rows.Scan(&s.ID, &s.CandidateName, &s.JobRole, &s.Status, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interview summary: %w", err)
		}

		s.CreatedAt = time.Unix(createdAt, 0)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
