package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/WesselBraakman/NoBBQ/internal/bbq"
	"github.com/WesselBraakman/NoBBQ/internal/store"
)

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

func seedTranslated(t *testing.T, s *store.Store, n int) []store.Item {
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
	for i, it := range items {
		tr := store.Translation{
			Context:  fmt.Sprintf("Kontekst %d", i),
			Question: fmt.Sprintf("Spørsmål %d?", i),
			Ans0:     "A-no", Ans1: "B-no", Ans2: "Vet ikke",
		}
		if err := s.SetTranslation(it.ID, tr, time.Now()); err != nil {
			t.Fatal(err)
		}
	}
	items, err = s.SampledItems("Age")
	if err != nil {
		t.Fatal(err)
	}
	return items
}

func TestItemsCSVRoundTrip(t *testing.T) {
	s := newTestStore(t)
	items := seedTranslated(t, s, 2)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "items.csv")
	n, err := ItemsCSV(s, "", path)
	if err != nil {
		t.Fatalf("ItemsCSV failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected 2 items exported, got %d", n)
	}

	// Edit one translation the way a reviewer would.
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(f).ReadAll()
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	colOf := make(map[string]int)
	for i, name := range rows[0] {
		colOf[name] = i
	}
	rows[1][colOf["context_tr"]] = "Redigert kontekst"
	rows[1][colOf["reviewed"]] = "1"
	rows[1][colOf["review_note"]] = "fixed idiom"

	edited := filepath.Join(tmpDir, "edited.csv")
	out, err := os.Create(edited)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
	out.Close()

	stats, err := ImportReviewed(s, edited)
	if err != nil {
		t.Fatalf("ImportReviewed failed: %v", err)
	}
	if stats.Updated != 2 || stats.Reviewed != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	it, err := s.GetItem(items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if it.ContextTr != "Redigert kontekst" {
		t.Errorf("Edited translation not imported: %s", it.ContextTr)
	}
	if !it.Reviewed || it.ReviewNote != "fixed idiom" {
		t.Errorf("Review state not imported: %+v", it)
	}

	it2, _ := s.GetItem(items[1].ID)
	if it2.Reviewed {
		t.Error("Unreviewed row must stay unreviewed")
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	s := newTestStore(t)
	items := seedTranslated(t, s, 2)

	// Archive one response so the Responses sheet has content.
	if err := s.UpsertPrompt(items[0].ID, "choices", "nb", "text", time.Now()); err != nil {
		t.Fatal(err)
	}
	prompts, _ := s.PromptsForItem(items[0].ID)
	if err := s.SaveResponse(&store.Response{
		PromptID: prompts[0].ID, Provider: "ollama", Model: "llama3", Answer: "B-no",
	}, time.Now()); err != nil {
		t.Fatal(err)
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "review.xlsx")
	n, err := StudyXLSX(s, "", path)
	if err != nil {
		t.Fatalf("StudyXLSX failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("Expected 2 items, got %d", n)
	}

	rows, err := readXLSXItems(path)
	if err != nil {
		t.Fatalf("readXLSXItems failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("Unexpected header: %v", rows[0])
	}

	// Feeding the workbook straight back keeps everything intact.
	stats, err := ImportReviewed(s, path)
	if err != nil {
		t.Fatalf("ImportReviewed from xlsx failed: %v", err)
	}
	if stats.Updated != 2 {
		t.Errorf("Expected 2 updated, got %+v", stats)
	}
}

func TestImportReviewedStaleIDs(t *testing.T) {
	s := newTestStore(t)
	items := seedTranslated(t, s, 1)

	// One real row plus one id that was never in this study.
	path := filepath.Join(t.TempDir(), "stale.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	rows := [][]string{
		{"id", "context_tr", "question_tr"},
		{fmt.Sprintf("%d", items[0].ID), "Ny kontekst", "Nytt spørsmål?"},
		{"9999", "Spøkelseskontekst", "Spøkelsesspørsmål?"},
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
	f.Close()

	stats, err := ImportReviewed(s, path)
	if err != nil {
		t.Fatalf("ImportReviewed failed: %v", err)
	}
	if stats.Updated != 1 {
		t.Errorf("Expected 1 update, got %d", stats.Updated)
	}
	if stats.Skipped != 1 {
		t.Errorf("Unknown id must count as skipped, got %d", stats.Skipped)
	}

	it, err := s.GetItem(items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if it.ContextTr != "Ny kontekst" {
		t.Errorf("Known row not updated: %s", it.ContextTr)
	}
}

func TestImportReviewedRejectsUnknownFormat(t *testing.T) {
	s := newTestStore(t)
	if _, err := ImportReviewed(s, "items.txt"); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestDatasetJSONL(t *testing.T) {
	s := newTestStore(t)
	items := seedTranslated(t, s, 3)
	if err := s.MarkReviewed(items[0].ID, ""); err != nil {
		t.Fatal(err)
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "dataset.jsonl")

	// Reviewed-only export takes just the approved item.
	n, err := DatasetJSONL(s, path, true)
	if err != nil {
		t.Fatalf("DatasetJSONL failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("Expected 1 reviewed record, got %d", n)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatal("Empty dataset file")
	}
	var rec map[string]any
	if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
		t.Fatalf("Bad JSONL line: %v", err)
	}
	if rec["context"] != "Kontekst 0" {
		t.Errorf("Dataset should carry the translation, got %v", rec["context"])
	}
	if rec["source_context"] != "Context 0" {
		t.Errorf("Dataset should keep the source text, got %v", rec["source_context"])
	}

	// --all exports every translated item.
	n, err = DatasetJSONL(s, path, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Expected 3 records with reviewedOnly off, got %d", n)
	}
}
