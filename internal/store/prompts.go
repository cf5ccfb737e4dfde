package store

import "time"

// Prompt is one assembled prompt, ready for dispatch.
type Prompt struct {
	ID     int64
	ItemID int64
	Style  string
	Lang   string
	Text   string
}

// UpsertPrompt stores the assembled prompt text for an item and style,
// replacing a previous build (re-assembly after review edits).
func (s *Store) UpsertPrompt(itemID int64, style, lang, text string, createdAt time.Time) error {
	_, err := s.DB.Exec(`
		INSERT INTO prompts (item_id, style, lang, text, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(item_id, style) DO UPDATE SET lang = excluded.lang, text = excluded.text, created_at = excluded.created_at
	`, itemID, style, lang, text, createdAt.Format(time.RFC3339))
	return err
}

// PendingPrompts returns prompts with no usable response for the given
// provider and model: either never dispatched, or archived with an error and
// an empty answer. Existing answers are never redone (resume semantics).
// limit 0 means no limit.
func (s *Store) PendingPrompts(provider, model string, limit int) ([]Prompt, error) {
	query := `
		SELECT p.id, p.item_id, p.style, p.lang, p.text
		FROM prompts p
		LEFT JOIN responses r ON r.prompt_id = p.id AND r.provider = ? AND r.model = ?
		WHERE r.id IS NULL OR (r.answer = '' AND r.error <> '')
		ORDER BY p.id`
	args := []any{provider, model}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Style, &p.Lang, &p.Text); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// PromptsForItem returns the prompts built for one item.
func (s *Store) PromptsForItem(itemID int64) ([]Prompt, error) {
	rows, err := s.DB.Query(`SELECT id, item_id, style, lang, text FROM prompts WHERE item_id = ? ORDER BY style`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var prompts []Prompt
	for rows.Next() {
		var p Prompt
		if err := rows.Scan(&p.ID, &p.ItemID, &p.Style, &p.Lang, &p.Text); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}
