package bbq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestURLFor(t *testing.T) {
	url := URLFor("", "Age")
	want := DefaultBaseURL + "/Age.jsonl"
	if url != want {
		t.Errorf("Expected %s, got %s", want, url)
	}
	url = URLFor("http://example.com/data", "Religion")
	if url != "http://example.com/data/Religion.jsonl" {
		t.Errorf("Unexpected url: %s", url)
	}
}

func TestFetchCategory(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "nobbq-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)
	os.Setenv("NOBBQ_DATA_CACHE", tmpDir)
	defer os.Unsetenv("NOBBQ_DATA_CACHE")

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/Age.jsonl" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleLine + "\n"))
	}))
	defer srv.Close()

	records, err := FetchCategory(context.Background(), srv.URL, "Age", false)
	if err != nil {
		t.Fatalf("FetchCategory failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if hits != 1 {
		t.Errorf("Expected 1 download, got %d", hits)
	}

	// Second call reads the cache.
	if _, err := FetchCategory(context.Background(), srv.URL, "Age", false); err != nil {
		t.Fatalf("Cached FetchCategory failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("Cache not used, %d downloads", hits)
	}

	// Force re-downloads.
	if _, err := FetchCategory(context.Background(), srv.URL, "Age", true); err != nil {
		t.Fatalf("Forced FetchCategory failed: %v", err)
	}
	if hits != 2 {
		t.Errorf("Expected forced re-download, got %d hits", hits)
	}

	if _, err := FetchCategory(context.Background(), srv.URL, "NotACategory", false); err == nil {
		t.Error("Expected error for unknown category")
	}
}

func TestGlobFiles(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "nobbq-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	sub := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{filepath.Join("data", "Age.jsonl"), "SES.jsonl", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(sampleLine+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := GlobFiles(tmpDir, "**/*.jsonl")
	if err != nil {
		t.Fatalf("GlobFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 files, got %d: %v", len(files), files)
	}

	records, err := LoadFile(files[0])
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}
