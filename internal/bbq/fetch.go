package bbq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultBaseURL points at the raw data files of the upstream BBQ repo.
const DefaultBaseURL = "https://raw.githubusercontent.com/nyu-mll/BBQ/main/data"

// URLFor returns the download URL for a category's JSONL file.
func URLFor(baseURL, category string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/%s.jsonl", baseURL, category)
}

// DataCacheDir returns the directory where fetched category files are kept
// (~/.cache/nobbq/bbq or NOBBQ_DATA_CACHE).
func DataCacheDir() (string, error) {
	if d := os.Getenv("NOBBQ_DATA_CACHE"); d != "" {
		return d, nil
	}
	cache := os.Getenv("XDG_CACHE_HOME")
	if cache == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cache = filepath.Join(home, ".cache")
	}
	return filepath.Join(cache, "nobbq", "bbq"), nil
}

// Download fetches url to destPath. Creates parent dirs. Uses ctx for timeout/cancel.
func Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "nobbq/1.0")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: %s", url, resp.Status)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

// FetchCategory returns the records for one category, downloading the JSONL
// file into the data cache on first use. With force, the cached copy is
// replaced.
func FetchCategory(ctx context.Context, baseURL, category string, force bool) ([]Record, error) {
	if !IsCategory(category) {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	dir, err := DataCacheDir()
	if err != nil {
		return nil, err
	}
	dest := filepath.Join(dir, category+".jsonl")
	if _, err := os.Stat(dest); err != nil || force {
		url := URLFor(baseURL, category)
		if err := Download(ctx, url, dest); err != nil {
			return nil, err
		}
	}
	f, err := os.Open(dest)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ParseJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dest, err)
	}
	return records, nil
}

// LoadFile parses one local JSONL file.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ParseJSONL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// GlobFiles returns local JSONL files under rootDir matching pattern
// (doublestar syntax), sorted for stable import order.
func GlobFiles(rootDir, pattern string) ([]string, error) {
	fsys := os.DirFS(rootDir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, rel := range matches {
		full := filepath.Join(rootDir, rel)
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, full)
	}
	sort.Strings(files)
	return files, nil
}
