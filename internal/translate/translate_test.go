package translate

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/WesselBraakman/NoBBQ/internal/bbq"
	"github.com/WesselBraakman/NoBBQ/internal/store"
)

// fakeProvider prefixes every input, and can fail on demand.
type fakeProvider struct {
	lastSystem string
	calls      int
	failOn     string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	if f.failOn != "" && strings.Contains(user, f.failOn) {
		return "", fmt.Errorf("provider unavailable")
	}
	return "NO: " + user, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "nobbq-test-*.sqlite")
	if err != nil {
		t.Fatal(err)
	}
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	s, err := store.NewStore(tmpFile.Name())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSampled(t *testing.T, s *store.Store, n int) []store.Item {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := &bbq.Record{
			ExampleID: i, QuestionIndex: "1", QuestionPolarity: "neg",
			ContextCondition: "ambig", Category: "Age",
			Context:  fmt.Sprintf("Context %d", i),
			Question: fmt.Sprintf("Question %d?", i),
			Ans0:     "A", Ans1: "B", Ans2: "Unknown", Label: 2,
		}
		if _, err := s.InsertItem(rec, time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	items, err := s.CategoryItems("Age")
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]int64, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := s.MarkSampled(ids); err != nil {
		t.Fatal(err)
	}
	return items
}

func TestRunTranslatesAllFields(t *testing.T) {
	s := newTestStore(t)
	items := seedSampled(t, s, 2)

	provider := &fakeProvider{}
	tr := New(provider, "Norwegian", 0, nil)

	stats, err := tr.Run(context.Background(), s, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Translated != 2 || stats.Failed != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	// 5 fields per item.
	if provider.calls != 10 {
		t.Errorf("Expected 10 provider calls, got %d", provider.calls)
	}
	if !strings.Contains(provider.lastSystem, "Norwegian") {
		t.Errorf("System prompt missing target language: %s", provider.lastSystem)
	}
	if !strings.Contains(provider.lastSystem, "ONLY the translation") {
		t.Errorf("System prompt too loose: %s", provider.lastSystem)
	}

	it, err := s.GetItem(items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if it.ContextTr != "NO: Context 0" || it.Ans2Tr != "NO: Unknown" {
		t.Errorf("Translation not stored: %+v", it)
	}
	if !it.Translated {
		t.Error("Item should be marked translated")
	}
}

func TestRunResumes(t *testing.T) {
	s := newTestStore(t)
	seedSampled(t, s, 3)

	// First run fails on one item.
	provider := &fakeProvider{failOn: "Context 1"}
	tr := New(provider, "Norwegian", 0, nil)
	stats, err := tr.Run(context.Background(), s, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Translated != 2 || stats.Failed != 1 {
		t.Fatalf("Unexpected stats: %+v", stats)
	}

	// Second run only touches the failed item.
	provider2 := &fakeProvider{}
	tr2 := New(provider2, "Norwegian", 0, nil)
	stats, err = tr2.Run(context.Background(), s, nil)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if stats.Translated != 1 {
		t.Errorf("Expected 1 translated on resume, got %d", stats.Translated)
	}
	if provider2.calls != 5 {
		t.Errorf("Resume should translate one item (5 calls), got %d", provider2.calls)
	}

	pending, err := s.PendingTranslations()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("Expected no pending translations, got %d", len(pending))
	}
}
