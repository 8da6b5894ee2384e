package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/MattThePandah/RA-Tracker/pkg/errors"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
)

// chunkSize is the read size used when streaming a download to disk
const chunkSize = 8 * 1024

// Outcome is the result of caching one cover
type Outcome string

const (
	OutcomeHit        Outcome = "hit"
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeFailed     Outcome = "failed"
)

// Downloader fetches the bytes behind an image URL
type Downloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Manager maps covers onto files in the cache directory
type Manager struct {
	dir        string
	downloader Downloader
	logger     logger.Logger

	// known remembers paths already confirmed on disk
	known      *lru.Cache[string, struct{}]
	knownLimit int
}

// NewManager creates a cache manager rooted at dir, creating it if needed.
// knownPaths bounds how many existing paths are remembered in memory.
func NewManager(dir string, downloader Downloader, knownPaths int, log logger.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if knownPaths <= 0 {
		knownPaths = 1024
	}
	known, err := lru.New[string, struct{}](knownPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to create path cache: %w", err)
	}

	if log == nil {
		log = logger.GetLogger()
	}

	m := &Manager{
		dir:        dir,
		downloader: downloader,
		logger:     log,
		known:      known,
		knownLimit: knownPaths,
	}

	if err := m.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return m, nil
}

// scanExistingFiles primes the known-path cache from the cache directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if m.known.Len() >= m.knownLimit {
			break
		}
		if isCoverFile(entry) {
			m.known.Add(filepath.Join(m.dir, entry.Name()), struct{}{})
		}
	}

	return nil
}

func isCoverFile(entry os.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	switch strings.ToLower(filepath.Ext(entry.Name())) {
	case ".jpg", ".png":
		return true
	}
	return false
}

// Dir returns the cache directory
func (m *Manager) Dir() string {
	return m.dir
}

// PathFor returns where the cover for imageURL would be stored
func (m *Manager) PathFor(imageURL, title, platformName string) string {
	return filepath.Join(m.dir, FileNameFor(NormalizeURL(imageURL), title, platformName))
}

// IsCached reports whether a file already exists at path
func (m *Manager) IsCached(path string) bool {
	if m.known.Contains(path) {
		return true
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		m.known.Add(path, struct{}{})
		return true
	}
	return false
}

// EnsureCached makes sure the cover behind imageURL is on disk. An existing
// file is a hit and costs no network call. Failed downloads never leave a
// file at the final path.
func (m *Manager) EnsureCached(ctx context.Context, imageURL, title, platformName string) (Outcome, error) {
	resolved := NormalizeURL(imageURL)
	if resolved == "" {
		return OutcomeFailed, errors.New(errors.ErrorTypeDownload, 0, "no image URL for %q", title)
	}

	path := filepath.Join(m.dir, FileNameFor(resolved, title, platformName))
	if m.IsCached(path) {
		logger.LogCover(m.logger, string(OutcomeHit), title, path, nil)
		return OutcomeHit, nil
	}

	body, err := m.downloader.Download(ctx, resolved)
	if err != nil {
		err = errors.Wrap(errors.ErrorTypeDownload, err, "fetch %s", resolved)
		logger.LogCover(m.logger, string(OutcomeFailed), title, path, err)
		return OutcomeFailed, err
	}
	defer body.Close()

	if err := m.Save(body, path); err != nil {
		err = errors.Wrap(errors.ErrorTypeDownload, err, "store %s", resolved)
		logger.LogCover(m.logger, string(OutcomeFailed), title, path, err)
		return OutcomeFailed, err
	}

	logger.LogCover(m.logger, string(OutcomeDownloaded), title, path, nil)
	return OutcomeDownloaded, nil
}

// Save streams r to path through a temporary ".part" file that is synced
// and renamed into place only after the copy succeeds
func (m *Manager) Save(r io.Reader, path string) error {
	tempFile := path + ".part"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	if err := copyChunks(out, r); err != nil {
		out.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to save cover data: %w", err)
	}

	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(tempFile)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := out.Close(); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.known.Add(path, struct{}{})
	return nil
}

// copyChunks copies r to w in chunkSize reads
func copyChunks(w io.Writer, r io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// CachedCount returns the number of cover files in the cache directory
func (m *Manager) CachedCount() (int, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if isCoverFile(entry) {
			count++
		}
	}
	return count, nil
}
