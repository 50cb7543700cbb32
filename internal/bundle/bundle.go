// Package bundle archives a prepared package directory into a distributable
// .mhl file (a plain zip).
package bundle

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Archive zips the contents of dir into outPath. Entry names are relative
// to dir with forward slashes; the walk order is lexical, so the archive is
// deterministic for an unchanged tree.
func Archive(dir, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		out.Close()
		os.Remove(outPath)
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
