package session

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Greeshmargowda/interview-agent/internal/storage/models"
)

func newSession(id string) *models.Session {
	return &models.Session{
		ID:            id,
		CandidateName: "Alice Chen",
		JobRole:       "software_engineer",
		Phase:         "introduction",
		Status:        models.StatusInProgress,
		CreatedAt:     time.Now(),
	}
}

func TestCreateAndGet(t *testing.T) {
	store := NewStore(nil, zap.NewNop())

	sess := newSession("iv-1")
	if err := store.Create(sess); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, ok := store.Get("iv-1")
	if !ok {
		t.Fatal("expected session to be found")
	}
	if got.CandidateName != "Alice Chen" {
		t.Errorf("unexpected candidate name: %s", got.CandidateName)
	}
}

func TestGetMissingSession(t *testing.T) {
	store := NewStore(nil, zap.NewNop())

	if _, ok := store.Get("missing"); ok {
		t.Error("expected miss for unknown session")
	}
}

func TestSaveIsReadYourWrites(t *testing.T) {
	store := NewStore(nil, zap.NewNop())

	sess := newSession("iv-1")
	store.Create(sess)

	sess.Phase = "technical"
	sess.TotalQuestions = 3
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, _ := store.Get("iv-1")
	if got.Phase != "technical" || got.TotalQuestions != 3 {
		t.Errorf("expected saved state, got phase=%s total=%d", got.Phase, got.TotalQuestions)
	}
}

func TestLockIsStablePerSession(t *testing.T) {
	store := NewStore(nil, zap.NewNop())

	a := store.Lock("iv-1")
	b := store.Lock("iv-1")
	if a != b {
		t.Error("expected the same mutex for one session")
	}

	c := store.Lock("iv-2")
	if a == c {
		t.Error("expected distinct mutexes for distinct sessions")
	}
}

func TestListMemoryFallbackPaging(t *testing.T) {
	store := NewStore(nil, zap.NewNop())

	for _, id := range []string{"a", "b", "c"} {
		store.Create(newSession(id))
	}

	all, err := store.List(0, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(all))
	}

	limited, _ := store.List(2, 0)
	if len(limited) != 2 {
		t.Errorf("expected 2 summaries with limit, got %d", len(limited))
	}

	offset, _ := store.List(0, 2)
	if len(offset) != 1 {
		t.Errorf("expected 1 summary with offset 2, got %d", len(offset))
	}

	none, _ := store.List(0, 10)
	if len(none) != 0 {
		t.Errorf("expected no summaries past the end, got %d", len(none))
	}
}
