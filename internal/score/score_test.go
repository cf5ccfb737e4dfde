package score

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

func TestParseBatchOutput(t *testing.T) {
	out := "ID=3 ans1\n  id=7 ANS0 \nnoise line\nID=9 ans5\nID=12 ans2"
	labels := parseBatchOutput(out)
	if len(labels) != 3 {
		t.Fatalf("Expected 3 labels, got %d: %v", len(labels), labels)
	}
	if labels[3] != "ans1" || labels[7] != "ans0" || labels[12] != "ans2" {
		t.Errorf("Unexpected labels: %v", labels)
	}
	if _, ok := labels[9]; ok {
		t.Error("ans5 is not a valid label")
	}
}

func TestBuildBatchPrompt(t *testing.T) {
	batch := []store.Unlabeled{
		{ResponseID: 4, Answer: "Jeg tror\ndet var B.", Ans0: "A", Ans1: "B", Ans2: "Vet ikke"},
		{ResponseID: 8, Answer: "A", Ans0: "A", Ans1: "B", Ans2: "Vet ikke"},
	}
	prompt := buildBatchPrompt(batch)
	if !strings.Contains(prompt, "ID=4 |") || !strings.Contains(prompt, "ID=8 |") {
		t.Errorf("Prompt missing element lines:\n%s", prompt)
	}
	// Multi-line answers must stay on their protocol line.
	if !strings.Contains(prompt, "Jeg tror det var B.") {
		t.Errorf("Answer not flattened:\n%s", prompt)
	}
	if !strings.Contains(prompt, "ID=12 ans1") {
		t.Errorf("Prompt missing output example:\n%s", prompt)
	}
}

// batchProvider answers batch prompts with a canned protocol reply and
// single-row fallbacks with a bare label.
type batchProvider struct {
	batchReply  string
	batchErr    error
	singleReply string
	batchCalls  int
	singleCalls int
}

func (p *batchProvider) Name() string { return "fake" }

func (p *batchProvider) Complete(ctx context.Context, system, user string) (string, error) {
	if strings.Contains(user, "ELEMENTER:") {
		p.batchCalls++
		return p.batchReply, p.batchErr
	}
	p.singleCalls++
	return p.singleReply, nil
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

// seedResponses stores n answered responses and returns their ids in order.
func seedResponses(t *testing.T, s *store.Store, n int) []int64 {
	t.Helper()
	var ids []int64
	for i := 0; i < n; i++ {
		rec := &bbq.Record{
			ExampleID: i, QuestionIndex: "1", QuestionPolarity: "neg",
			ContextCondition: "ambig", Category: "Age",
			Context: fmt.Sprintf("c%d", i), Question: fmt.Sprintf("q%d?", i),
			Ans0: "A", Ans1: "B", Ans2: "U", Label: 2,
		}
		if _, err := s.InsertItem(rec, time.Now()); err != nil {
			t.Fatal(err)
		}
		items, _ := s.CategoryItems("Age")
		itemID := items[len(items)-1].ID
		if err := s.UpsertPrompt(itemID, "choices", "nb", "text", time.Now()); err != nil {
			t.Fatal(err)
		}
		prompts, _ := s.PromptsForItem(itemID)
		if err := s.SaveResponse(&store.Response{
			PromptID: prompts[0].ID, Provider: "ollama", Model: "llama3",
			Answer: fmt.Sprintf("svar %d", i),
		}, time.Now()); err != nil {
			t.Fatal(err)
		}
		unlabeled, _ := s.UnlabeledResponses(0)
		ids = append(ids, unlabeled[len(unlabeled)-1].ResponseID)
	}
	return ids
}

func TestClassifierRun(t *testing.T) {
	s := newTestStore(t)
	ids := seedResponses(t, s, 3)

	provider := &batchProvider{
		batchReply: fmt.Sprintf("ID=%d ans0\nID=%d ans1\nID=%d ans2", ids[0], ids[1], ids[2]),
	}
	c := New(provider, 10, 0, nil)

	stats, err := c.Run(context.Background(), s, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Labeled != 3 || stats.Failed != 0 || stats.Fallback != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if provider.batchCalls != 1 || provider.singleCalls != 0 {
		t.Errorf("Expected one batch call, got %d/%d", provider.batchCalls, provider.singleCalls)
	}

	tally, _ := s.TallyLabels()
	total := 0
	for _, row := range tally {
		total += row.Count
	}
	if total != 3 {
		t.Errorf("Expected 3 labels in tally, got %d", total)
	}
}

func TestClassifierFallback(t *testing.T) {
	s := newTestStore(t)
	ids := seedResponses(t, s, 2)

	// Batch reply misses the second row; the per-row retry places it.
	provider := &batchProvider{
		batchReply:  fmt.Sprintf("ID=%d ans0", ids[0]),
		singleReply: "Etiketten er ans2.",
	}
	c := New(provider, 10, 0, nil)

	stats, err := c.Run(context.Background(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Labeled != 2 || stats.Fallback != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if provider.singleCalls != 1 {
		t.Errorf("Expected 1 fallback call, got %d", provider.singleCalls)
	}
}

func TestClassifierUnknown(t *testing.T) {
	s := newTestStore(t)
	seedResponses(t, s, 1)

	// Neither the batch nor the fallback yields a label.
	provider := &batchProvider{batchReply: "garbage", singleReply: "no idea"}
	c := New(provider, 10, 0, nil)

	stats, err := c.Run(context.Background(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", stats.Failed)
	}

	tally, _ := s.TallyLabels()
	if len(tally) != 1 || tally[0].Label != LabelUnknown {
		t.Errorf("Expected %q label, got %+v", LabelUnknown, tally)
	}

	// Nothing left to classify.
	unlabeled, _ := s.UnlabeledResponses(0)
	if len(unlabeled) != 0 {
		t.Errorf("Unknown labels still count as labeled, got %d pending", len(unlabeled))
	}
}

func TestClassifierBatching(t *testing.T) {
	s := newTestStore(t)
	ids := seedResponses(t, s, 5)

	var lines []string
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("ID=%d ans1", id))
	}
	// Every batch reply lists all ids; extra ones are ignored per batch.
	provider := &batchProvider{batchReply: strings.Join(lines, "\n")}
	c := New(provider, 2, 0, nil)

	stats, err := c.Run(context.Background(), s, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Labeled != 5 {
		t.Errorf("Expected 5 labeled, got %d", stats.Labeled)
	}
	if provider.batchCalls != 3 {
		t.Errorf("Expected 3 batches of size 2, got %d", provider.batchCalls)
	}
}
