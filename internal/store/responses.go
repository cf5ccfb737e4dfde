package store

import "time"

// Response is one archived model answer (or failure) for a prompt.
type Response struct {
	ID        int64
	PromptID  int64
	Provider  string
	Model     string
	Answer    string
	Error     string
	RunID     string
	LatencyMS int64
}

// SaveResponse archives a model answer or failure. A retry of a failed
// prompt replaces the earlier error row; answered rows are only reachable
// here through PendingPrompts, which excludes them.
func (s *Store) SaveResponse(r *Response, createdAt time.Time) error {
	_, err := s.DB.Exec(`
		INSERT INTO responses (prompt_id, provider, model, answer, error, run_id, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(prompt_id, provider, model) DO UPDATE SET
			answer = excluded.answer,
			error = excluded.error,
			run_id = excluded.run_id,
			latency_ms = excluded.latency_ms,
			created_at = excluded.created_at
	`, r.PromptID, r.Provider, r.Model, r.Answer, r.Error, r.RunID, r.LatencyMS,
		createdAt.Format(time.RFC3339))
	return err
}

// CreateRun records the start of a dispatch run.
func (s *Store) CreateRun(id, provider, model string, startedAt time.Time) error {
	_, err := s.DB.Exec(`INSERT INTO runs (id, provider, model, started_at) VALUES (?, ?, ?, ?)`,
		id, provider, model, startedAt.Format(time.RFC3339))
	return err
}

// FinishRun closes a dispatch run with its final counts.
func (s *Store) FinishRun(id string, answered, failed int, finishedAt time.Time) error {
	_, err := s.DB.Exec(`UPDATE runs SET finished_at = ?, answered = ?, failed = ? WHERE id = ?`,
		finishedAt.Format(time.RFC3339), answered, failed, id)
	return err
}

// Unlabeled is one answered response awaiting classification, together with
// the translated answer options of its item.
type Unlabeled struct {
	ResponseID       int64
	Answer           string
	Ans0, Ans1, Ans2 string
}

// UnlabeledResponses returns answered responses that have no label yet.
// Translated answer options are used when present, the source options
// otherwise. limit 0 means no limit.
func (s *Store) UnlabeledResponses(limit int) ([]Unlabeled, error) {
	query := `
		SELECT r.id, r.answer,
			CASE WHEN i.ans0_tr <> '' THEN i.ans0_tr ELSE i.ans0 END,
			CASE WHEN i.ans1_tr <> '' THEN i.ans1_tr ELSE i.ans1 END,
			CASE WHEN i.ans2_tr <> '' THEN i.ans2_tr ELSE i.ans2 END
		FROM responses r
		JOIN prompts p ON p.id = r.prompt_id
		JOIN items i ON i.id = p.item_id
		LEFT JOIN labels l ON l.response_id = r.id
		WHERE r.answer <> '' AND l.response_id IS NULL
		ORDER BY r.id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Unlabeled
	for rows.Next() {
		var u Unlabeled
		if err := rows.Scan(&u.ResponseID, &u.Answer, &u.Ans0, &u.Ans1, &u.Ans2); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetLabel records the classification of a response onto an answer option.
func (s *Store) SetLabel(responseID int64, label, method, model string, createdAt time.Time) error {
	_, err := s.DB.Exec(`
		INSERT INTO labels (response_id, label, method, model, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(response_id) DO UPDATE SET
			label = excluded.label,
			method = excluded.method,
			model = excluded.model,
			created_at = excluded.created_at
	`, responseID, label, method, model, createdAt.Format(time.RFC3339))
	return err
}

// LabelTally is one row of the label count breakdown.
type LabelTally struct {
	Category string
	Provider string
	Model    string
	Label    string
	Count    int
}

// TallyLabels counts labels per category, provider, and label value.
func (s *Store) TallyLabels() ([]LabelTally, error) {
	rows, err := s.DB.Query(`
		SELECT i.category, r.provider, r.model, l.label, COUNT(*)
		FROM labels l
		JOIN responses r ON r.id = l.response_id
		JOIN prompts p ON p.id = r.prompt_id
		JOIN items i ON i.id = p.item_id
		GROUP BY i.category, r.provider, r.model, l.label
		ORDER BY i.category, r.provider, r.model, l.label
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LabelTally
	for rows.Next() {
		var t LabelTally
		if err := rows.Scan(&t.Category, &t.Provider, &t.Model, &t.Label, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ExportedResponse is one archived response joined with its item and
// prompt, for the spreadsheet export.
type ExportedResponse struct {
	ResponseID int64
	ItemID     int64
	Category   string
	Style      string
	Provider   string
	Model      string
	Prompt     string
	Answer     string
	Error      string
	Label      string
}

func (s *Store) ResponsesForExport() ([]ExportedResponse, error) {
	rows, err := s.DB.Query(`
		SELECT r.id, i.id, i.category, p.style, r.provider, r.model, p.text, r.answer, r.error,
			COALESCE(l.label, '')
		FROM responses r
		JOIN prompts p ON p.id = r.prompt_id
		JOIN items i ON i.id = p.item_id
		LEFT JOIN labels l ON l.response_id = r.id
		ORDER BY i.category, i.id, p.style, r.provider
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ExportedResponse
	for rows.Next() {
		var e ExportedResponse
		if err := rows.Scan(&e.ResponseID, &e.ItemID, &e.Category, &e.Style, &e.Provider, &e.Model,
			&e.Prompt, &e.Answer, &e.Error, &e.Label); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
