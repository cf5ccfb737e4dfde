package bbq

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Record is one line of an upstream BBQ category JSONL file.
type Record struct {
	ExampleID          int                 `json:"example_id"`
	QuestionIndex      string              `json:"question_index"`
	QuestionPolarity   string              `json:"question_polarity"`
	ContextCondition   string              `json:"context_condition"`
	Category           string              `json:"category"`
	AnswerInfo         map[string][]string `json:"answer_info"`
	AdditionalMetadata map[string]any      `json:"additional_metadata"`
	Context            string              `json:"context"`
	Question           string              `json:"question"`
	Ans0               string              `json:"ans0"`
	Ans1               string              `json:"ans1"`
	Ans2               string              `json:"ans2"`
	Label              int                 `json:"label"`
}

// Categories lists the bias dimensions published by the upstream BBQ repo.
var Categories = []string{
	"Age",
	"Disability_status",
	"Gender_identity",
	"Nationality",
	"Physical_appearance",
	"Race_ethnicity",
	"Race_x_SES",
	"Race_x_gender",
	"Religion",
	"SES",
	"Sexual_orientation",
}

// IsCategory reports whether name is a known BBQ category.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Answers returns the three answer options in label order.
func (r *Record) Answers() [3]string {
	return [3]string{r.Ans0, r.Ans1, r.Ans2}
}

func (r *Record) Validate() error {
	if r.Context == "" {
		return fmt.Errorf("example %d: empty context", r.ExampleID)
	}
	if r.Question == "" {
		return fmt.Errorf("example %d: empty question", r.ExampleID)
	}
	if r.Label < 0 || r.Label > 2 {
		return fmt.Errorf("example %d: label %d out of range", r.ExampleID, r.Label)
	}
	return nil
}

// ParseJSONL decodes BBQ records from a JSONL stream. Lines that fail to
// decode or validate are reported with their 1-based line number.
func ParseJSONL(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var records []Record
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
