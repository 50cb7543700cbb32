// Package manifest assembles, persists, and updates the per-package metadata
// record (mip.json).
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// FileName is the manifest file kept inside every prepared package directory.
const FileName = "mip.json"

// Manifest is the persisted metadata record for one resolved package.
type Manifest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Version         string   `json:"version"`
	BuildNumber     int      `json:"build_number"`
	Dependencies    []string `json:"dependencies"`
	Homepage        string   `json:"homepage"`
	Repository      string   `json:"repository"`
	License         string   `json:"license,omitempty"`
	UsageExamples   []string `json:"usage_examples,omitempty"`
	MatlabTag       string   `json:"matlab_tag"`
	ABITag          string   `json:"abi_tag"`
	PlatformTag     string   `json:"platform_tag"`
	BuildType       string   `json:"build_type"`
	ExposedSymbols  []string `json:"exposed_symbols"`
	ResolvedPaths   []string `json:"resolved_paths"`
	Timestamp       string   `json:"timestamp"`
	PrepareDuration float64  `json:"prepare_duration"`
	CompileDuration *float64 `json:"compile_duration,omitempty"`
	MHLURL          string   `json:"mhl_url,omitempty"`
	CacheKey        string   `json:"cache_key,omitempty"`
}

// Round2 rounds a duration in seconds to two decimal places, the precision
// recorded in manifests.
func Round2(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}

// Write persists the manifest as indented JSON. The write goes to a temp
// file in the same directory and is renamed into place so a partial write is
// never observable.
func Write(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, append(data, '\n'))
}

// Read loads a manifest file.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// SetCompileDuration re-opens the manifest, sets compile_duration (rounded to
// two decimal places), and rewrites it without disturbing any other field.
// Unknown fields round-trip untouched: the update decodes into a generic map
// with json.Number so numeric values keep their exact representation.
func SetCompileDuration(path string, seconds float64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	fields["compile_duration"] = json.Number(strconv.FormatFloat(Round2(seconds), 'f', -1, 64))
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, append(out, '\n'))
}

// identityFields are the fields compared against a published manifest to
// decide whether a rebuild is needed. Symbols and timings intentionally do
// not participate.
func (m *Manifest) identity() [7]any {
	deps := m.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return [7]any{m.Name, m.Description, m.Version, m.BuildNumber, deps, m.Homepage, m.Repository}
}

// SameIdentity reports whether two manifests describe the same published
// package: name, description, version, build_number, dependencies, homepage,
// and repository all equal.
func (m *Manifest) SameIdentity(other *Manifest) bool {
	if other == nil {
		return false
	}
	a, b := m.identity(), other.identity()
	for i := range a {
		if as, ok := a[i].([]string); ok {
			bs, ok := b[i].([]string)
			if !ok || !equalStrings(as, bs) {
				return false
			}
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".mip-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
