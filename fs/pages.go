package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/pulse"
)

// URLToPath converts a page URL to a relative file path under a host directory.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.txt
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", pulse.Errorf(pulse.EINVALID, "URL %q has no host", rawURL)
	}

	host := strings.ReplaceAll(u.Host, ":", "_")
	path := u.Path

	// Handle root or trailing slash → index.txt
	if path == "" || path == "/" {
		return filepath.Join(host, "index.txt"), nil
	}

	path = strings.TrimPrefix(path, "/")

	if strings.HasSuffix(path, "/") {
		return filepath.Join(host, filepath.FromSlash(path), "index.txt"), nil
	}

	return filepath.Join(host, filepath.FromSlash(path)+".txt"), nil
}

// FormatPage formats a page's text with a source header.
func FormatPage(page *pulse.Page) string {
	var b strings.Builder
	b.WriteString("source: ")
	b.WriteString(page.URL)
	b.WriteString("\n\n")
	b.WriteString(page.Text)
	b.WriteString("\n")
	return b.String()
}

// PageStore writes crawled pages as text files with atomic update semantics.
// Pages are saved to a temporary directory, then moved into place on Commit.
type PageStore struct {
	baseDir string
	name    string
}

// NewPageStore creates a new PageStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewPageStore(baseDir, name string) *PageStore {
	return &PageStore{baseDir: baseDir, name: name}
}

func (s *PageStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *PageStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Dir returns the directory pages end up in after Commit.
func (s *PageStore) Dir() string {
	return s.finalDir()
}

// Save writes a page into the temporary directory.
func (s *PageStore) Save(page *pulse.Page) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	tempDir := s.tempDir()
	fullPath := filepath.Join(tempDir, relPath)
	if !strings.HasPrefix(fullPath, tempDir+string(filepath.Separator)) {
		return pulse.Errorf(pulse.EINVALID, "path traversal in URL %q", page.URL)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(FormatPage(page)), 0644)
}

// SaveAll saves every page of a crawl result.
func (s *PageStore) SaveAll(result *pulse.CrawlResult) error {
	for _, page := range result.Pages {
		if err := s.Save(page); err != nil {
			return err
		}
	}
	return nil
}

// Commit replaces the final directory with the temporary one.
// Committing without any saved pages leaves an empty directory.
func (s *PageStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the temporary directory.
func (s *PageStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
