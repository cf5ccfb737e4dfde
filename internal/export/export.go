// Package export handles the spreadsheet round-trip for the human review
// stage and the final dataset export.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/WesselBraakman/NoBBQ/internal/store"
)

// itemHeader is the review sheet layout. Import matches columns by these
// names, so reviewers may reorder but not rename them.
var itemHeader = []string{
	"id", "category", "example_id", "question_index", "question_polarity", "context_condition",
	"context", "question", "ans0", "ans1", "ans2", "label",
	"context_tr", "question_tr", "ans0_tr", "ans1_tr", "ans2_tr",
	"reviewed", "review_note",
}

var responseHeader = []string{
	"response_id", "item_id", "category", "style", "provider", "model",
	"prompt", "answer", "error", "label",
}

func itemRow(it *store.Item) []string {
	reviewed := "0"
	if it.Reviewed {
		reviewed = "1"
	}
	return []string{
		strconv.FormatInt(it.ID, 10), it.Category, strconv.Itoa(it.ExampleID),
		it.QuestionIndex, it.QuestionPolarity, it.ContextCondition,
		it.Context, it.Question, it.Ans0, it.Ans1, it.Ans2, strconv.Itoa(it.Label),
		it.ContextTr, it.QuestionTr, it.Ans0Tr, it.Ans1Tr, it.Ans2Tr,
		reviewed, it.ReviewNote,
	}
}

func responseRow(r *store.ExportedResponse) []string {
	return []string{
		strconv.FormatInt(r.ResponseID, 10), strconv.FormatInt(r.ItemID, 10),
		r.Category, r.Style, r.Provider, r.Model, r.Prompt, r.Answer, r.Error, r.Label,
	}
}

// ItemsCSV writes the sampled items (one category or all) as a review CSV.
func ItemsCSV(s *store.Store, category, path string) (int, error) {
	items, err := s.SampledItems(category)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(itemHeader); err != nil {
		return 0, err
	}
	for i := range items {
		if err := w.Write(itemRow(&items[i])); err != nil {
			return 0, err
		}
	}
	w.Flush()
	return len(items), w.Error()
}

// ResponsesCSV writes all archived responses with their labels.
func ResponsesCSV(s *store.Store, path string) (int, error) {
	responses, err := s.ResponsesForExport()
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(responseHeader); err != nil {
		return 0, err
	}
	for i := range responses {
		if err := w.Write(responseRow(&responses[i])); err != nil {
			return 0, err
		}
	}
	w.Flush()
	return len(responses), w.Error()
}

// datasetRecord is one line of the final adapted dataset.
type datasetRecord struct {
	Category         string `json:"category"`
	ExampleID        int    `json:"example_id"`
	QuestionIndex    string `json:"question_index"`
	QuestionPolarity string `json:"question_polarity"`
	ContextCondition string `json:"context_condition"`
	Context          string `json:"context"`
	Question         string `json:"question"`
	Ans0             string `json:"ans0"`
	Ans1             string `json:"ans1"`
	Ans2             string `json:"ans2"`
	Label            int    `json:"label"`
	SourceContext    string `json:"source_context"`
	SourceQuestion   string `json:"source_question"`
	Reviewed         bool   `json:"reviewed"`
}

// DatasetJSONL writes the translated dataset as JSONL, one record per
// sampled item. With reviewedOnly, untranslated or unreviewed items are
// skipped instead of exported half-done.
func DatasetJSONL(s *store.Store, path string, reviewedOnly bool) (int, error) {
	items, err := s.SampledItems("")
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	count := 0
	for i := range items {
		it := &items[i]
		if it.ContextTr == "" || it.QuestionTr == "" {
			if reviewedOnly {
				continue
			}
			return count, fmt.Errorf("item %d has no translation; run translate first or use --all", it.ID)
		}
		if reviewedOnly && !it.Reviewed {
			continue
		}
		rec := datasetRecord{
			Category:         it.Category,
			ExampleID:        it.ExampleID,
			QuestionIndex:    it.QuestionIndex,
			QuestionPolarity: it.QuestionPolarity,
			ContextCondition: it.ContextCondition,
			Context:          it.ContextTr,
			Question:         it.QuestionTr,
			Ans0:             it.Ans0Tr,
			Ans1:             it.Ans1Tr,
			Ans2:             it.Ans2Tr,
			Label:            it.Label,
			SourceContext:    it.Context,
			SourceQuestion:   it.Question,
			Reviewed:         it.Reviewed,
		}
		if err := enc.Encode(&rec); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
