package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	DB     *sql.DB
	DBPath string
}

func GetDefaultDbPath(studyName string) (string, error) {
	if path := os.Getenv("NOBBQ_DB_PATH"); path != "" {
		return path, nil
	}
	if studyName == "" {
		studyName = "study"
	}

	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cacheDir = filepath.Join(home, ".cache")
	}

	nobbqCacheDir := filepath.Join(cacheDir, "nobbq")
	if err := os.MkdirAll(nobbqCacheDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(nobbqCacheDir, fmt.Sprintf("%s.sqlite", studyName)), nil
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		dbPath, err = GetDefaultDbPath("study")
		if err != nil {
			return nil, err
		}
	}

	// Enable WAL mode via DSN
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &Store{DB: db, DBPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// CategoryStatus is per-category progress.
type CategoryStatus struct {
	Name       string
	ItemCount  int
	Sampled    int
	Translated int
	Reviewed   int
}

// ProviderStatus is per-provider dispatch progress.
type ProviderStatus struct {
	Provider string
	Model    string
	Answered int
	Failed   int
	Labeled  int
}

// Status holds study progress for the status command.
type Status struct {
	DBPath      string
	ItemCount   int
	PromptCount int
	Categories  []CategoryStatus
	Providers   []ProviderStatus
}

// GetStatus returns database path, totals, and per-category / per-provider progress.
func (s *Store) GetStatus() (*Status, error) {
	st := &Status{DBPath: s.DBPath}
	if err := s.DB.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&st.ItemCount); err != nil {
		return nil, err
	}
	_ = s.DB.QueryRow(`SELECT COUNT(*) FROM prompts`).Scan(&st.PromptCount)

	rows, err := s.DB.Query(`
		SELECT category,
			COUNT(*),
			COALESCE(SUM(sampled), 0),
			COALESCE(SUM(CASE WHEN translated_at IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(reviewed), 0)
		FROM items
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return st, nil
	}
	defer rows.Close()
	for rows.Next() {
		var c CategoryStatus
		if err := rows.Scan(&c.Name, &c.ItemCount, &c.Sampled, &c.Translated, &c.Reviewed); err != nil {
			continue
		}
		st.Categories = append(st.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	prows, err := s.DB.Query(`
		SELECT r.provider, r.model,
			COALESCE(SUM(CASE WHEN r.answer <> '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN r.error <> '' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN l.response_id IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM responses r
		LEFT JOIN labels l ON l.response_id = r.id
		GROUP BY r.provider, r.model
		ORDER BY r.provider, r.model
	`)
	if err != nil {
		return st, nil
	}
	defer prows.Close()
	for prows.Next() {
		var p ProviderStatus
		if err := prows.Scan(&p.Provider, &p.Model, &p.Answered, &p.Failed, &p.Labeled); err != nil {
			continue
		}
		st.Providers = append(st.Providers, p)
	}
	return st, prows.Err()
}

func (s *Store) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			example_id INTEGER NOT NULL,
			question_index TEXT NOT NULL,
			question_polarity TEXT NOT NULL,
			context_condition TEXT NOT NULL,
			context TEXT NOT NULL,
			question TEXT NOT NULL,
			ans0 TEXT NOT NULL,
			ans1 TEXT NOT NULL,
			ans2 TEXT NOT NULL,
			label INTEGER NOT NULL,
			answer_info TEXT NOT NULL DEFAULT '{}',
			sampled INTEGER NOT NULL DEFAULT 0,
			context_tr TEXT NOT NULL DEFAULT '',
			question_tr TEXT NOT NULL DEFAULT '',
			ans0_tr TEXT NOT NULL DEFAULT '',
			ans1_tr TEXT NOT NULL DEFAULT '',
			ans2_tr TEXT NOT NULL DEFAULT '',
			translated_at TEXT,
			reviewed INTEGER NOT NULL DEFAULT 0,
			review_note TEXT NOT NULL DEFAULT '',
			added_at TEXT NOT NULL,
			UNIQUE(category, example_id, question_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_category ON items(category, sampled)`,
		`CREATE TABLE IF NOT EXISTS prompts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id INTEGER NOT NULL,
			style TEXT NOT NULL,
			lang TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
			UNIQUE(item_id, style)
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			answered INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS responses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			prompt_id INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			answer TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			run_id TEXT NOT NULL DEFAULT '',
			latency_ms INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (prompt_id) REFERENCES prompts(id) ON DELETE CASCADE,
			UNIQUE(prompt_id, provider, model)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_provider ON responses(provider, model)`,
		`CREATE TABLE IF NOT EXISTS labels (
			response_id INTEGER PRIMARY KEY,
			label TEXT NOT NULL,
			method TEXT NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			FOREIGN KEY (response_id) REFERENCES responses(id) ON DELETE CASCADE
		)`,
	}

	for _, query := range queries {
		if _, err := s.DB.Exec(query); err != nil {
			return fmt.Errorf("schema init failed: %w (query: %s)", err, query)
		}
	}

	return nil
}
