package models

import "time"

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

const (
	DimTechnicalAccuracy    = "technical_accuracy"
	DimCommunicationQuality = "communication_quality"
	DimProblemSolving       = "problem_solving"
	DimCulturalFit          = "cultural_fit"
)

var Dimensions = []string{
	DimTechnicalAccuracy,
	DimCommunicationQuality,
	DimProblemSolving,
	DimCulturalFit,
}

type CandidateProfile struct {
	Name            string
	Email           string
	JobRole         string
	ExperienceYears int
	JobDescription  string
	ResumeSummary   string
}

// Session is one interview instance. The orchestrator is its sole mutator;
// once Status is completed the session is immutable except for the report.
type Session struct {
	ID               string
	CandidateName    string
	CandidateEmail   string
	JobRole          string
	ExperienceYears  int
	JobDescription   string
	ResumeSummary    string
	Phase            string
	QuestionsInPhase int
	TotalQuestions   int
	Status           string
	Exchanges        []Exchange
	Evaluations      []Evaluation
	Report           *Report
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CompletedAt      *time.Time
}

// OpenExchange returns the pending question/answer pair, if any. At most
// one exchange is open per session at any time.
func (s *Session) OpenExchange() *Exchange {
	if len(s.Exchanges) == 0 {
		return nil
	}
	last := &s.Exchanges[len(s.Exchanges)-1]
	if last.Answered {
		return nil
	}
	return last
}

type Exchange struct {
	Sequence   int
	Phase      string
	Question   string
	Answer     string
	Answered   bool
	AskedAt    time.Time
	AnsweredAt *time.Time
}

type Evaluation struct {
	ExchangeSequence     int
	Phase                string
	TechnicalAccuracy    float64
	CommunicationQuality float64
	ProblemSolving       float64
	CulturalFit          float64
	Composite            float64
	Feedback             string
	Reasoning            string
	Fallback             bool
	Clamped              bool
	CreatedAt            time.Time
}

// Dimension returns the score for a named dimension.
func (e *Evaluation) Dimension(name string) float64 {
	switch name {
	case DimTechnicalAccuracy:
		return e.TechnicalAccuracy
	case DimCommunicationQuality:
		return e.CommunicationQuality
	case DimProblemSolving:
		return e.ProblemSolving
	case DimCulturalFit:
		return e.CulturalFit
	}
	return 0
}

type Report struct {
	InterviewID          string             `json:"interview_id"`
	CandidateName        string             `json:"candidate_name"`
	JobRole              string             `json:"job_role"`
	OverallScore         float64            `json:"overall_score"`
	DimensionAverages    map[string]float64 `json:"dimension_scores"`
	PhaseScores          map[string]float64 `json:"phase_scores"`
	Strengths            []string           `json:"strengths"`
	Weaknesses           []string           `json:"weaknesses"`
	Recommendation       string             `json:"recommendation"`
	Confidence           string             `json:"confidence"`
	TechnicalLevel       string             `json:"technical_assessment"`
	CommunicationQuality string             `json:"communication_quality"`
	TotalQuestions       int                `json:"total_questions"`
	Reasoning            string             `json:"reasoning"`
	NextSteps            []string           `json:"next_steps"`
	DurationEstimate     string             `json:"duration_estimate"`
	GeneratedAt          time.Time          `json:"generated_at"`
}

type BankQuestion struct {
	ID         string
	Question   string
	Phase      string
	Role       string
	Difficulty string
}

// BankMatch is a bank question returned by a similarity search.
type BankMatch struct {
	BankQuestion
	Score float32
}

type InterviewSummary struct {
	ID            string
	CandidateName string
	JobRole       string
	Status        string
	CreatedAt     time.Time
}
