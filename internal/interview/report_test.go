package interview

import (
	"errors"
	"testing"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
)

func evalWith(phase string, tech, comm, prob, cult float64) models.Evaluation {
	composite := tech*0.30 + comm*0.25 + prob*0.25 + cult*0.20
	return models.Evaluation{
		Phase:                phase,
		TechnicalAccuracy:    tech,
		CommunicationQuality: comm,
		ProblemSolving:       prob,
		CulturalFit:          cult,
		Composite:            composite,
	}
}

func TestSynthesizeRequiresEvaluations(t *testing.T) {
	sess := &models.Session{ID: "empty"}

	_, err := Synthesize(sess)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestSynthesizeStrongHire(t *testing.T) {
	sess := &models.Session{
		ID:            "iv-1",
		CandidateName: "Alice Chen",
		JobRole:       "software_engineer",
		Evaluations: []models.Evaluation{
			evalWith("technical", 85, 80, 78, 82),
			evalWith("behavioral", 80, 76, 79, 78),
		},
	}

	report, err := Synthesize(sess)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if report.Recommendation != "Strong Hire" {
		t.Errorf("expected Strong Hire, got %s", report.Recommendation)
	}
	if len(report.Weaknesses) != 0 {
		t.Errorf("expected empty weaknesses, got %v", report.Weaknesses)
	}
	if len(report.Strengths) != 4 {
		t.Errorf("expected all four dimensions as strengths, got %v", report.Strengths)
	}
	if report.TotalQuestions != 2 {
		t.Errorf("expected 2 total questions, got %d", report.TotalQuestions)
	}
	if report.TechnicalLevel != "Expert" {
		t.Errorf("expected Expert technical level, got %s", report.TechnicalLevel)
	}
	if len(report.NextSteps) == 0 {
		t.Error("expected next steps in report")
	}
}

func TestSynthesizeRecommendationBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{80, "Strong Hire"},
		{75, "Strong Hire"},
		{65, "Hire"},
		{60, "Hire"},
		{50, "Borderline"},
		{45, "Borderline"},
		{30, "No Hire"},
	}

	for _, tc := range cases {
		sess := &models.Session{
			Evaluations: []models.Evaluation{
				{Phase: "technical", Composite: tc.score,
					TechnicalAccuracy: tc.score, CommunicationQuality: tc.score,
					ProblemSolving: tc.score, CulturalFit: tc.score},
			},
		}
		report, err := Synthesize(sess)
		if err != nil {
			t.Fatalf("Synthesize returned error: %v", err)
		}
		if report.Recommendation != tc.want {
			t.Errorf("score %.0f: expected %s, got %s", tc.score, tc.want, report.Recommendation)
		}
	}
}

func TestSynthesizeWeaknesses(t *testing.T) {
	sess := &models.Session{
		Evaluations: []models.Evaluation{
			evalWith("technical", 40, 70, 44, 60),
		},
	}

	report, err := Synthesize(sess)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if len(report.Weaknesses) != 2 {
		t.Fatalf("expected 2 weaknesses, got %v", report.Weaknesses)
	}
	if len(report.Strengths) != 0 {
		t.Errorf("expected no strengths, got %v", report.Strengths)
	}
}

func TestSynthesizePhaseScores(t *testing.T) {
	sess := &models.Session{
		Evaluations: []models.Evaluation{
			{Phase: "technical", Composite: 80},
			{Phase: "technical", Composite: 60},
			{Phase: "behavioral", Composite: 50},
		},
	}

	report, err := Synthesize(sess)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}

	if report.PhaseScores["technical"] != 70 {
		t.Errorf("expected technical phase score 70, got %.2f", report.PhaseScores["technical"])
	}
	if report.PhaseScores["behavioral"] != 50 {
		t.Errorf("expected behavioral phase score 50, got %.2f", report.PhaseScores["behavioral"])
	}

	wantOverall := (80.0 + 60.0 + 50.0) / 3.0
	if diff := report.OverallScore - wantOverall; diff > 0.01 || diff < -0.01 {
		t.Errorf("expected overall %.2f, got %.2f", wantOverall, report.OverallScore)
	}
}

func TestBand(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{90, "excellent"},
		{75, "excellent"},
		{74.9, "good"},
		{60, "good"},
		{59, "average"},
		{45, "average"},
		{44, "needs-improvement"},
		{0, "needs-improvement"},
	}

	for _, tc := range cases {
		if got := Band(tc.score); got != tc.want {
			t.Errorf("Band(%.1f): expected %s, got %s", tc.score, tc.want, got)
		}
	}
}
