package interview

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
)

// Score bands shared by recommendation derivation and the qualitative
// labels. The same thresholds drive UI score coloring.
const (
	bandExcellent = 75.0
	bandGood      = 60.0
	bandAverage   = 45.0
)

// Band maps a score to its qualitative band name.
func Band(score float64) string {
	switch {
	case score >= bandExcellent:
		return "excellent"
	case score >= bandGood:
		return "good"
	case score >= bandAverage:
		return "average"
	}
	return "needs-improvement"
}

// Synthesize builds the final report from the session's evaluations. It is
// pure computation over already collected scores and only fails when there
// is nothing to aggregate.
func Synthesize(sess *models.Session) (*models.Report, error) {
	if len(sess.Evaluations) == 0 {
		return nil, ErrInsufficientData
	}

	overall := overallScore(sess.Evaluations)
	dimAverages := dimensionAverages(sess.Evaluations)
	strengths, weaknesses := strengthsAndWeaknesses(dimAverages)
	recommendation, confidence, reasoning, nextSteps := recommend(overall)

	return &models.Report{
		InterviewID:          sess.ID,
		CandidateName:        sess.CandidateName,
		JobRole:              sess.JobRole,
		OverallScore:         round2(overall),
		DimensionAverages:    dimAverages,
		PhaseScores:          phaseScores(sess.Evaluations),
		Strengths:            strengths,
		Weaknesses:           weaknesses,
		Recommendation:       recommendation,
		Confidence:           confidence,
		TechnicalLevel:       technicalLevel(dimAverages[models.DimTechnicalAccuracy]),
		CommunicationQuality: communicationLabel(dimAverages[models.DimCommunicationQuality]),
		TotalQuestions:       len(sess.Evaluations),
		Reasoning:            reasoning,
		NextSteps:            nextSteps,
		DurationEstimate:     fmt.Sprintf("%d minutes", len(sess.Evaluations)*3),
		GeneratedAt:          time.Now(),
	}, nil
}

func overallScore(evals []models.Evaluation) float64 {
	var total float64
	for _, ev := range evals {
		total += ev.Composite
	}
	return total / float64(len(evals))
}

func dimensionAverages(evals []models.Evaluation) map[string]float64 {
	averages := make(map[string]float64, len(models.Dimensions))
	for _, dim := range models.Dimensions {
		var total float64
		for _, ev := range evals {
			total += ev.Dimension(dim)
		}
		averages[dim] = round2(total / float64(len(evals)))
	}
	return averages
}

func phaseScores(evals []models.Evaluation) map[string]float64 {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, ev := range evals {
		totals[ev.Phase] += ev.Composite
		counts[ev.Phase]++
	}

	scores := make(map[string]float64, len(totals))
	for phase, total := range totals {
		scores[phase] = round2(total / float64(counts[phase]))
	}
	return scores
}

// strengthsAndWeaknesses classifies dimension averages: at or above the
// excellent band is a strength, below the average band is a weakness.
// Either list may come back empty.
func strengthsAndWeaknesses(averages map[string]float64) ([]string, []string) {
	strengths := make([]string, 0, len(models.Dimensions))
	weaknesses := make([]string, 0, len(models.Dimensions))

	for _, dim := range models.Dimensions {
		score := averages[dim]
		label := fmt.Sprintf("%s: %.1f/100", dimensionTitle(dim), score)
		if score >= bandExcellent {
			strengths = append(strengths, label)
		} else if score < bandAverage {
			weaknesses = append(weaknesses, label)
		}
	}

	return strengths, weaknesses
}

func recommend(overall float64) (decision, confidence, reasoning string, nextSteps []string) {
	switch {
	case overall >= bandExcellent:
		return "Strong Hire", "High",
			"Candidate demonstrated strong technical skills and excellent communication.",
			[]string{"Proceed to final round", "Send offer"}
	case overall >= bandGood:
		return "Hire", "Medium",
			"Candidate shows good potential with room for growth.",
			[]string{"Additional technical interview", "Team fit assessment"}
	case overall >= bandAverage:
		return "Borderline", "Low",
			"Candidate has some skills but significant gaps identified.",
			[]string{"Skills assessment test", "Consider for junior role"}
	}
	return "No Hire", "High",
		"Candidate did not meet the requirements for this position.",
		[]string{"Send rejection with feedback", "Keep in talent pool"}
}

func technicalLevel(score float64) string {
	switch Band(score) {
	case "excellent":
		return "Expert"
	case "good":
		return "Proficient"
	case "average":
		return "Intermediate"
	}
	return "Beginner"
}

func communicationLabel(score float64) string {
	switch Band(score) {
	case "excellent":
		return "Excellent - Clear, structured, and professional"
	case "good":
		return "Good - Generally clear with minor areas for improvement"
	case "average":
		return "Adequate - Could improve structure and clarity"
	}
	return "Needs Improvement - Responses lack clarity"
}

func dimensionTitle(dim string) string {
	words := strings.Split(dim, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
