// Package fetch acquires package sources into a working directory, either by
// downloading and extracting a zip archive or by cloning a git repository.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/neurosift/mipforge/internal/spec"
)

// Fetcher acquires a package's source tree into workDir.
type Fetcher interface {
	Fetch(ctx context.Context, prep spec.Prepare, workDir string) error
}

// Client fetches sources over HTTP and git.
type Client struct {
	HTTPClient *http.Client
	GitBin     string
}

// Fetch dispatches on the acquisition method declared in the spec. The
// loader guarantees exactly one method is present.
func (c *Client) Fetch(ctx context.Context, prep spec.Prepare, workDir string) error {
	switch {
	case prep.DownloadZip != nil:
		return c.downloadZip(ctx, prep.DownloadZip.URL, workDir, prep.DownloadZip.Destination)
	case prep.CloneGit != nil:
		return c.cloneGit(ctx, prep.CloneGit.URL, workDir, prep.CloneGit.Destination)
	}
	return fmt.Errorf("no acquisition method configured")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// downloadZip downloads url into a temp file, extracts it, and places the
// source tree at workDir/destination. Archives with a single top-level
// directory (the github archive layout) have that directory renamed to the
// destination; flat archives land in the destination directly.
func (c *Client) downloadZip(ctx context.Context, url, workDir, destination string) error {
	log.Printf("  downloading %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(workDir, "download-*.zip")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	log.Printf("  extracting archive")
	extractDir, err := os.MkdirTemp(workDir, "extract-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(extractDir)
	if err := extractZip(tmpName, extractDir); err != nil {
		return fmt.Errorf("extract %s: %w", url, err)
	}

	dest := filepath.Join(workDir, destination)
	entries, err := os.ReadDir(extractDir)
	if err != nil {
		return err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return os.Rename(filepath.Join(extractDir, entries[0].Name()), dest)
	}
	return os.Rename(extractDir, dest)
}

// cloneGit clones url into workDir/destination and strips .git trees so the
// bundled artifact carries no repository history.
func (c *Client) cloneGit(ctx context.Context, url, workDir, destination string) error {
	log.Printf("  cloning %s", url)
	bin := c.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, "clone", url, destination)
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone %s: %w\n%s", url, err, output)
	}
	return stripGitDirs(filepath.Join(workDir, destination))
}

func stripGitDirs(root string) error {
	var gitDirs []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			gitDirs = append(gitDirs, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, dir := range gitDirs {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return nil
}
