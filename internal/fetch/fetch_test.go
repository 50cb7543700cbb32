package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurosift/mipforge/internal/spec"
)

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func serveZip(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadZipSingleTopLevelDir(t *testing.T) {
	payload := zipBytes(t, map[string]string{
		"chebfun-master/chebfun.m":       "%",
		"chebfun-master/tools/helper.m":  "%",
		"chebfun-master/tools/helper2.m": "%",
	})
	srv := serveZip(t, payload)

	work := t.TempDir()
	c := &Client{}
	prep := spec.Prepare{DownloadZip: &spec.DownloadZip{URL: srv.URL, Destination: "chebfun"}}
	if err := c.Fetch(context.Background(), prep, work); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, p := range []string{"chebfun/chebfun.m", "chebfun/tools/helper.m"} {
		if _, err := os.Stat(filepath.Join(work, p)); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
	entries, err := os.ReadDir(work)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "chebfun" {
		t.Fatalf("work dir should contain only the destination, got %v", entries)
	}
}

func TestDownloadZipFlatArchive(t *testing.T) {
	payload := zipBytes(t, map[string]string{
		"a.m": "%",
		"b.m": "%",
	})
	srv := serveZip(t, payload)

	work := t.TempDir()
	c := &Client{}
	prep := spec.Prepare{DownloadZip: &spec.DownloadZip{URL: srv.URL, Destination: "pkg"}}
	if err := c.Fetch(context.Background(), prep, work); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for _, p := range []string{"pkg/a.m", "pkg/b.m"} {
		if _, err := os.Stat(filepath.Join(work, p)); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
}

func TestDownloadZipHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := &Client{}
	prep := spec.Prepare{DownloadZip: &spec.DownloadZip{URL: srv.URL, Destination: "pkg"}}
	if err := c.Fetch(context.Background(), prep, t.TempDir()); err == nil {
		t.Fatal("expected an error for a 404 download")
	}
}

func TestExtractZipRejectsEscape(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("../evil.m")
	if err != nil {
		t.Fatal(err)
	}
	f.Write([]byte("%"))
	w.Close()

	dir := t.TempDir()
	archive := filepath.Join(dir, "a.zip")
	if err := os.WriteFile(archive, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := extractZip(archive, filepath.Join(dir, "out")); err == nil {
		t.Fatal("expected zip-slip entry to be rejected")
	}
}

func TestStripGitDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{".git/objects", "sub/.git", "sub/keep"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "keep", "f.m"), []byte("%"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := stripGitDirs(root); err != nil {
		t.Fatalf("strip: %v", err)
	}
	for _, gone := range []string{".git", "sub/.git"} {
		if _, err := os.Stat(filepath.Join(root, gone)); !os.IsNotExist(err) {
			t.Errorf("%s should be removed", gone)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "sub", "keep", "f.m")); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}

func TestCloneGitMissingBinary(t *testing.T) {
	c := &Client{GitBin: filepath.Join(t.TempDir(), "no-such-git")}
	prep := spec.Prepare{CloneGit: &spec.CloneGit{URL: "https://example.com/r.git", Destination: "r"}}
	if err := c.Fetch(context.Background(), prep, t.TempDir()); err == nil {
		t.Fatal("expected an error when git is unavailable")
	}
}
