// Package resolve expands declared path rules into concrete directory lists
// and collects the symbols a package exposes on those paths.
package resolve

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/neurosift/mipforge/internal/spec"
)

// PathNotFoundError reports a declared path missing from the acquired source
// tree. Declared paths that do not exist are a specification defect, never
// silently dropped.
type PathNotFoundError struct {
	Rule string
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("declared path %q does not exist (resolved %s)", e.Rule, e.Path)
}

// Paths expands the ordered path rules against workDir/destination and
// returns the matching directories relative to workDir, in rule order with
// exact duplicates removed keeping the first occurrence. The order is the
// activation search-path precedence and must be reproducible run to run.
func Paths(workDir, destination string, rules []spec.PathRule) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(rel string) {
		rel = filepath.ToSlash(rel)
		if _, dup := seen[rel]; dup {
			return
		}
		seen[rel] = struct{}{}
		out = append(out, rel)
	}

	for _, rule := range rules {
		rel := filepath.Join(destination, rule.Path)
		abs := filepath.Join(workDir, rel)
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return nil, &PathNotFoundError{Rule: rule.Path, Path: abs}
		}
		if !rule.Recursive {
			add(rel)
			continue
		}
		excluded := make(map[string]struct{}, len(rule.Exclude))
		for _, name := range rule.Exclude {
			excluded[name] = struct{}{}
		}
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if path != abs {
				if _, skip := excluded[d.Name()]; skip {
					// Prune: never descend into an excluded directory.
					return filepath.SkipDir
				}
			}
			sub, err := filepath.Rel(workDir, path)
			if err != nil {
				return err
			}
			add(sub)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", abs, err)
		}
	}
	return out, nil
}
