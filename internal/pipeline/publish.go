package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/neurosift/mipforge/internal/bundle"
	"github.com/neurosift/mipforge/internal/manifest"
	"github.com/neurosift/mipforge/internal/objectstore"
)

// Artifact is one bundled package: the .mhl archive and its standalone
// metadata sidecar.
type Artifact struct {
	WheelName string
	MHLPath   string
	MetaPath  string
}

// BundleAll zips every prepared {wheel}.dir under preparedDir into
// outDir/{wheel}.mhl and writes the sidecar {wheel}.mhl.mip.json from the
// manifest inside the work dir. A work dir without a manifest is an error:
// it means prepare did not finish.
func BundleAll(preparedDir, outDir string) ([]Artifact, error) {
	entries, err := os.ReadDir(preparedDir)
	if err != nil {
		return nil, fmt.Errorf("list prepared dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var arts []Artifact
	for _, e := range entries {
		if !e.IsDir() || !strings.HasSuffix(e.Name(), DirSuffix) {
			continue
		}
		wheel := strings.TrimSuffix(e.Name(), DirSuffix)
		workDir := filepath.Join(preparedDir, e.Name())

		raw, err := os.ReadFile(filepath.Join(workDir, manifest.FileName))
		if err != nil {
			return arts, fmt.Errorf("bundle %s: read manifest: %w", wheel, err)
		}

		mhlPath := filepath.Join(outDir, wheel+MHLSuffix)
		log.Printf("bundling %s", wheel+MHLSuffix)
		if err := bundle.Archive(workDir, mhlPath); err != nil {
			return arts, fmt.Errorf("bundle %s: %w", wheel, err)
		}

		metaPath := filepath.Join(outDir, wheel+MetaSuffix)
		if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
			return arts, fmt.Errorf("bundle %s: write metadata: %w", wheel, err)
		}

		arts = append(arts, Artifact{WheelName: wheel, MHLPath: mhlPath, MetaPath: metaPath})
	}
	return arts, nil
}

// ScanBundled rediscovers artifacts in a bundle output directory, for upload
// runs that did not just bundle. Every .mhl must have its metadata sidecar.
func ScanBundled(outDir string) ([]Artifact, error) {
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("list bundled dir: %w", err)
	}
	var arts []Artifact
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), MHLSuffix) {
			continue
		}
		wheel := strings.TrimSuffix(e.Name(), MHLSuffix)
		metaPath := filepath.Join(outDir, wheel+MetaSuffix)
		if _, err := os.Stat(metaPath); err != nil {
			return nil, fmt.Errorf("artifact %s has no metadata sidecar: %w", e.Name(), err)
		}
		arts = append(arts, Artifact{
			WheelName: wheel,
			MHLPath:   filepath.Join(outDir, e.Name()),
			MetaPath:  metaPath,
		})
	}
	return arts, nil
}

// UploadAll pushes each artifact pair to the object store under keyPrefix.
// With dryRun the keys are logged and nothing is written.
func UploadAll(ctx context.Context, store objectstore.Store, keyPrefix string, arts []Artifact, dryRun bool) error {
	for _, art := range arts {
		pairs := []struct {
			file        string
			contentType string
		}{
			{art.MHLPath, "application/zip"},
			{art.MetaPath, "application/json"},
		}
		for _, pair := range pairs {
			key := path.Join(keyPrefix, filepath.Base(pair.file))
			if dryRun {
				log.Printf("would upload %s", key)
				continue
			}
			data, err := os.ReadFile(pair.file)
			if err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			if err := store.Put(ctx, key, data, pair.contentType); err != nil {
				return fmt.Errorf("upload %s: %w", key, err)
			}
			log.Printf("uploaded %s", key)
		}
	}
	return nil
}
