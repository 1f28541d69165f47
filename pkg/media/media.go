package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"minichat/pkg/logger"
)

// ErrNoFile is returned when a multipart request carries no file part.
// Handlers map it to a 400 response.
var ErrNoFile = errors.New("Nenhum arquivo enviado")

// ErrNotAllowed is returned when the declared content type is outside the
// configured allowlist.
var ErrNotAllowed = errors.New("tipo de arquivo não permitido")

// ErrTooLarge is returned when the file exceeds the configured size cap.
var ErrTooLarge = errors.New("arquivo excede o tamanho máximo")

// Store writes uploaded media files into a flat directory and hands out
// their public URLs. Names are epoch-millis plus a v4 uuid plus the
// original extension, so concurrent uploads never collide and original
// names never reach the filesystem.
type Store struct {
	dir      string
	baseURL  string
	maxBytes int64
	allowed  map[string]struct{}
}

// New creates the upload directory if needed. baseURL prefixes the
// returned URLs ("" yields server-relative /uploads/... URLs). maxBytes
// and allowedTypes are both optional; zero/empty disables the check.
func New(dir, baseURL string, maxBytes int64, allowedTypes []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	s := &Store{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}
	if len(allowedTypes) > 0 {
		s.allowed = make(map[string]struct{}, len(allowedTypes))
		for _, t := range allowedTypes {
			s.allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
	}
	return s, nil
}

// Dir returns the directory files are stored in.
func (s *Store) Dir() string { return s.dir }

// URLFor returns the public URL for a stored file name.
func (s *Store) URLFor(name string) string {
	return s.baseURL + "/uploads/" + name
}

// Save streams the uploaded file to disk and returns its public URL and
// stored name. A partially written file is removed on failure.
func (s *Store) Save(fh *multipart.FileHeader) (string, string, error) {
	if fh == nil {
		return "", "", ErrNoFile
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", "", ErrTooLarge
	}
	if s.allowed != nil {
		ct := strings.ToLower(strings.TrimSpace(fh.Header.Get("Content-Type")))
		if _, ok := s.allowed[ct]; !ok {
			return "", "", ErrNotAllowed
		}
	}

	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), safeExt(fh.Filename))
	dstPath := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("close upload file: %w", err)
	}
	logger.Info("upload_stored", "name", name, "size", fh.Size)
	uploadsTotal.Inc()
	return s.URLFor(name), name, nil
}

// Sweep removes files that are not in referenced and are older than
// minAge. It returns how many files were (or would be, when dryRun)
// removed. Files younger than minAge are kept so an upload is never
// reaped before its message arrives.
func (s *Store) Sweep(referenced map[string]struct{}, minAge time.Duration, dryRun bool) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read uploads dir: %w", err)
	}
	cutoff := time.Now().Add(-minAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := referenced[e.Name()]; ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(cutoff) {
			continue
		}
		if dryRun {
			logger.Info("upload_sweep_would_remove", "name", e.Name())
			removed++
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			logger.Warn("upload_sweep_remove_failed", "name", e.Name(), "error", err)
			continue
		}
		logger.Info("upload_sweep_removed", "name", e.Name())
		removed++
	}
	return removed, nil
}

// safeExt extracts a usable extension from the client-supplied name,
// rejecting anything with path separators or other oddities.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
