package export

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/WesselBraakman/NoBBQ/internal/store"
)

// ImportStats summarizes one review import.
type ImportStats struct {
	Updated  int
	Reviewed int
	Skipped  int
}

// ImportReviewed reads a reviewed Items sheet (CSV or XLSX by extension)
// back into the store: translated columns overwrite the machine output, and
// rows with reviewed=1 are marked accordingly.
func ImportReviewed(s *store.Store, path string) (*ImportStats, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXItems(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"id", "context_tr", "question_tr"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, required)
		}
	}

	get := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	stats := &ImportStats{}
	for lineNo, row := range rows[1:] {
		idText := get(row, "id")
		if idText == "" {
			stats.Skipped++
			continue
		}
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil {
			return stats, fmt.Errorf("%s row %d: bad id %q", path, lineNo+2, idText)
		}
		tr := store.Translation{
			Context:  get(row, "context_tr"),
			Question: get(row, "question_tr"),
			Ans0:     get(row, "ans0_tr"),
			Ans1:     get(row, "ans1_tr"),
			Ans2:     get(row, "ans2_tr"),
		}
		if tr.Context == "" || tr.Question == "" {
			stats.Skipped++
			continue
		}
		// Ids not in the store (a stale sheet, or a different study) are
		// skipped rather than counted as updates.
		if _, err := s.GetItem(id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				stats.Skipped++
				continue
			}
			return stats, err
		}
		if err := s.SetTranslation(id, tr, time.Now()); err != nil {
			return stats, err
		}
		stats.Updated++

		if isTruthy(get(row, "reviewed")) {
			if err := s.MarkReviewed(id, get(row, "review_note")); err != nil {
				return stats, err
			}
			stats.Reviewed++
		}
	}
	return stats, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "x", "ja":
		return true
	}
	return false
}
