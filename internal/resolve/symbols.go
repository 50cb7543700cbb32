package resolve

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Symbols scans each resolved path for publicly exposed identifiers, in path
// order then lexicographic file order, deduplicated keeping the first
// occurrence. A directory that cannot be listed is a warning, not a failure:
// the package keeps whatever was collected so far.
//
// One symbol per matching source file (base name minus the extension); MATLAB
// namespace (+pkg) and class (@cls) directories expose their bare name.
func Symbols(workDir string, resolved []string, extensions []string) []string {
	symbols := []string{}
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		symbols = append(symbols, name)
	}

	for _, rel := range resolved {
		dir := filepath.Join(workDir, filepath.FromSlash(rel))
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("  warning: cannot list %s: %v", dir, err)
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() {
				if strings.HasPrefix(name, "+") || strings.HasPrefix(name, "@") {
					add(name[1:])
				}
				continue
			}
			for _, ext := range extensions {
				if ext != "" && strings.HasSuffix(name, ext) && len(name) > len(ext) {
					add(name[:len(name)-len(ext)])
					break
				}
			}
		}
	}
	return symbols
}
