package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/WesselBraakman/NoBBQ/internal/bbq"
)

// Item is one stored context/question pair with its translation state.
type Item struct {
	ID               int64
	Category         string
	ExampleID        int
	QuestionIndex    string
	QuestionPolarity string
	ContextCondition string
	Context          string
	Question         string
	Ans0, Ans1, Ans2 string
	Label            int
	Sampled          bool

	ContextTr  string
	QuestionTr string
	Ans0Tr     string
	Ans1Tr     string
	Ans2Tr     string
	Translated bool
	Reviewed   bool
	ReviewNote string
}

// Translation holds the translated fields for one item.
type Translation struct {
	Context  string
	Question string
	Ans0     string
	Ans1     string
	Ans2     string
}

// InsertItem stores a BBQ record. Returns false if the record was already
// present (same category, example id, and question index).
func (s *Store) InsertItem(rec *bbq.Record, addedAt time.Time) (bool, error) {
	info, err := json.Marshal(rec.AnswerInfo)
	if err != nil {
		return false, err
	}
	res, err := s.DB.Exec(`
		INSERT OR IGNORE INTO items
			(category, example_id, question_index, question_polarity, context_condition,
			 context, question, ans0, ans1, ans2, label, answer_info, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Category, rec.ExampleID, rec.QuestionIndex, rec.QuestionPolarity, rec.ContextCondition,
		rec.Context, rec.Question, rec.Ans0, rec.Ans1, rec.Ans2, rec.Label, string(info),
		addedAt.Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

const itemColumns = `id, category, example_id, question_index, question_polarity,
	context_condition, context, question, ans0, ans1, ans2, label, sampled,
	context_tr, question_tr, ans0_tr, ans1_tr, ans2_tr, translated_at, reviewed, review_note`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var it Item
	var sampled, reviewed int
	var translatedAt sql.NullString
	if err := row.Scan(&it.ID, &it.Category, &it.ExampleID, &it.QuestionIndex, &it.QuestionPolarity,
		&it.ContextCondition, &it.Context, &it.Question, &it.Ans0, &it.Ans1, &it.Ans2, &it.Label, &sampled,
		&it.ContextTr, &it.QuestionTr, &it.Ans0Tr, &it.Ans1Tr, &it.Ans2Tr, &translatedAt, &reviewed, &it.ReviewNote); err != nil {
		return nil, err
	}
	it.Sampled = sampled == 1
	it.Translated = translatedAt.Valid
	it.Reviewed = reviewed == 1
	return &it, nil
}

func (s *Store) queryItems(query string, args ...any) ([]Item, error) {
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// GetItem returns one item by id.
func (s *Store) GetItem(id int64) (*Item, error) {
	return scanItem(s.DB.QueryRow(`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
}

// CategoryItems returns all items of a category in insertion order.
func (s *Store) CategoryItems(category string) ([]Item, error) {
	return s.queryItems(`SELECT `+itemColumns+` FROM items WHERE category = ? ORDER BY id`, category)
}

// SampledItems returns the sampled subset, all categories or one.
func (s *Store) SampledItems(category string) ([]Item, error) {
	if category == "" {
		return s.queryItems(`SELECT ` + itemColumns + ` FROM items WHERE sampled = 1 ORDER BY category, id`)
	}
	return s.queryItems(`SELECT `+itemColumns+` FROM items WHERE sampled = 1 AND category = ? ORDER BY id`, category)
}

// PendingTranslations returns sampled items that still miss a translation.
func (s *Store) PendingTranslations() ([]Item, error) {
	return s.queryItems(`SELECT ` + itemColumns + ` FROM items WHERE sampled = 1 AND translated_at IS NULL ORDER BY category, id`)
}

// Categories returns the distinct categories present in the store.
func (s *Store) Categories() ([]string, error) {
	rows, err := s.DB.Query(`SELECT DISTINCT category FROM items ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// MarkSampled flags the given items as part of the study subset.
func (s *Store) MarkSampled(ids []int64) error {
	tx, err := s.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`UPDATE items SET sampled = 1 WHERE id = ?`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetTranslation writes the translated fields for an item. A later review
// pass may overwrite these via import.
func (s *Store) SetTranslation(id int64, tr Translation, at time.Time) error {
	_, err := s.DB.Exec(`
		UPDATE items
		SET context_tr = ?, question_tr = ?, ans0_tr = ?, ans1_tr = ?, ans2_tr = ?, translated_at = ?
		WHERE id = ?
	`, tr.Context, tr.Question, tr.Ans0, tr.Ans1, tr.Ans2, at.Format(time.RFC3339), id)
	return err
}

// MarkReviewed records that a human reviewer accepted (and possibly edited)
// the item's translation.
func (s *Store) MarkReviewed(id int64, note string) error {
	_, err := s.DB.Exec(`UPDATE items SET reviewed = 1, review_note = ? WHERE id = ?`, note, id)
	return err
}
