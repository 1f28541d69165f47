package media

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// makeFileHeader builds a real multipart.FileHeader by round-tripping a
// form through the stdlib reader, the same way the HTTP layer does.
func makeFileHeader(t *testing.T, filename, contentType string, payload []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	mr := multipart.NewReader(&buf, mw.Boundary())
	form, err := mr.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	fhs := form.File["file"]
	if len(fhs) != 1 {
		t.Fatalf("expected 1 file header, got %d", len(fhs))
	}
	return fhs[0]
}

func TestSaveStoresFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "", 0, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	fh := makeFileHeader(t, "photo.PNG", "image/png", []byte("pngbytes"))
	url, name, err := s.Save(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Logf("stored %s at %s", name, url)

	if !strings.HasPrefix(url, "/uploads/") {
		t.Fatalf("expected server-relative URL, got %q", url)
	}
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("expected lowercased extension preserved, got %q", name)
	}
	if strings.Contains(name, "photo") {
		t.Fatalf("original name must not reach the filesystem: %q", name)
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(b) != "pngbytes" {
		t.Fatalf("stored bytes differ: %q", b)
	}
}

func TestSaveUniqueNames(t *testing.T) {
	s, err := New(t.TempDir(), "", 0, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	seen := map[string]struct{}{}
	for i := 0; i < 10; i++ {
		fh := makeFileHeader(t, "a.jpg", "image/jpeg", []byte("x"))
		_, name, err := s.Save(fh)
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate stored name %q", name)
		}
		seen[name] = struct{}{}
	}
}

func TestSaveBaseURL(t *testing.T) {
	s, err := New(t.TempDir(), "http://localhost:3001/", 0, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	fh := makeFileHeader(t, "a.wav", "audio/wav", []byte("x"))
	url, _, err := s.Save(fh)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:3001/uploads/") {
		t.Fatalf("expected absolute URL, got %q", url)
	}
}

func TestSaveRejectsDisallowedType(t *testing.T) {
	s, err := New(t.TempDir(), "", 0, []string{"image/jpeg", "image/png", "audio/mpeg", "audio/wav"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	fh := makeFileHeader(t, "x.exe", "application/octet-stream", []byte("x"))
	if _, _, err := s.Save(fh); err != ErrNotAllowed {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}
	fh = makeFileHeader(t, "x.png", "image/png", []byte("x"))
	if _, _, err := s.Save(fh); err != nil {
		t.Fatalf("allowed type rejected: %v", err)
	}
}

func TestSaveRejectsTooLarge(t *testing.T) {
	s, err := New(t.TempDir(), "", 4, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	fh := makeFileHeader(t, "x.png", "image/png", []byte("12345"))
	if _, _, err := s.Save(fh); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestSaveNilHeader(t *testing.T) {
	s, err := New(t.TempDir(), "", 0, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, _, err := s.Save(nil); err != ErrNoFile {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
}

func TestSafeExtHostileNames(t *testing.T) {
	cases := map[string]string{
		"photo.png":           ".png",
		"PHOTO.JPG":           ".jpg",
		"../../etc/passwd":    "",
		"noext":               "",
		"weird.p;g":           "",
		"archive.tar.gz":      ".gz",
		"trailingdot.":        "",
		"unicode.päg":    "",
		"verylong.extension1": "",
	}
	for in, want := range cases {
		if got := safeExt(in); got != want {
			t.Fatalf("safeExt(%q): expected %q got %q", in, want, got)
		}
	}
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "", 0, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour)
	write := func(name string, mtime time.Time) {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := os.Chtimes(p, mtime, mtime); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
	}
	write("referenced.png", old)
	write("orphan-old.png", old)
	write("orphan-new.png", time.Now())

	referenced := map[string]struct{}{"referenced.png": {}}

	// Dry run reports but removes nothing.
	n, err := s.Sweep(referenced, 24*time.Hour, true)
	if err != nil {
		t.Fatalf("dry sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("dry run: expected 1 candidate, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "orphan-old.png")); err != nil {
		t.Fatalf("dry run must not remove files: %v", err)
	}

	n, err = s.Sweep(referenced, 24*time.Hour, false)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removal, got %d", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "orphan-old.png")); !os.IsNotExist(err) {
		t.Fatalf("expected old orphan removed, stat err=%v", err)
	}
	for _, keep := range []string{"referenced.png", "orphan-new.png"} {
		if _, err := os.Stat(filepath.Join(dir, keep)); err != nil {
			t.Fatalf("expected %s kept: %v", keep, err)
		}
	}
}
