package bank

import (
	"strings"
	"testing"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
)

func TestCleanTextPlainPassthrough(t *testing.T) {
	got := CleanText("  Senior   Go developer\n\twith 5 years  ")
	if got != "Senior Go developer with 5 years" {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestCleanTextStripsHTML(t *testing.T) {
	input := `<div><h1>Job Posting</h1><p>Build <b>backend</b> services.</p><script>alert(1)</script></div>`

	got := CleanText(input)
	if strings.Contains(got, "<") || strings.Contains(got, "alert") {
		t.Errorf("expected markup and scripts removed, got %q", got)
	}
	if !strings.Contains(got, "Job Posting") || !strings.Contains(got, "backend") {
		t.Errorf("expected text content preserved, got %q", got)
	}
}

func TestCleanTextEmpty(t *testing.T) {
	if got := CleanText("   "); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestFormatContext(t *testing.T) {
	if got := FormatContext(nil); got != "No reference questions available." {
		t.Errorf("unexpected empty-context text: %q", got)
	}

	matches := []models.BankMatch{
		{BankQuestion: models.BankQuestion{Question: "Q one"}},
		{BankQuestion: models.BankQuestion{Question: "Q two"}},
	}
	got := FormatContext(matches)
	if !strings.Contains(got, "- Q one\n") || !strings.Contains(got, "- Q two\n") {
		t.Errorf("unexpected context block: %q", got)
	}
}

func TestSeedQuestionsAreWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, q := range seedQuestions {
		if q.ID == "" || q.Question == "" || q.Phase == "" {
			t.Errorf("incomplete seed question: %+v", q)
		}
		if seen[q.ID] {
			t.Errorf("duplicate seed id: %s", q.ID)
		}
		seen[q.ID] = true
	}
}
