package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sample() *Manifest {
	return &Manifest{
		Name:            "surfacefun",
		Description:     "Functions on surfaces.",
		Version:         "latest",
		BuildNumber:     3,
		Dependencies:    []string{"chebfun"},
		Homepage:        "https://github.com/danfortunato/surfacefun",
		Repository:      "https://github.com/danfortunato/surfacefun",
		MatlabTag:       "any",
		ABITag:          "none",
		PlatformTag:     "any",
		BuildType:       "standard",
		ExposedSymbols:  []string{"surfacefun", "surfacemesh"},
		ResolvedPaths:   []string{"surfacefun", "surfacefun/tools"},
		Timestamp:       "2026-08-25T10:00:00Z",
		PrepareDuration: 4.21,
	}
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Write(path, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, sample()) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", got, sample())
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := Write(path, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestSetCompileDurationRoundsAndPreserves(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Write(path, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := SetCompileDuration(path, 2.345); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.CompileDuration == nil || *got.CompileDuration != 2.35 {
		t.Fatalf("compile_duration=%v, want 2.35", got.CompileDuration)
	}
	got.CompileDuration = nil
	if !reflect.DeepEqual(got, sample()) {
		t.Fatalf("other fields disturbed:\n%+v\n%+v", got, sample())
	}
}

func TestSetCompileDurationKeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	raw := `{
  "name": "p",
  "build_number": 9007199254740993,
  "custom_field": {"nested": [1, 2.5, "x"]},
  "prepare_duration": 0.10
}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SetCompileDuration(path, 1.005); err != nil {
		t.Fatalf("update: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	// Large integer must not be mangled through a float64 round trip.
	if !strings.Contains(text, "9007199254740993") {
		t.Fatalf("build_number lost precision: %s", text)
	}
	if !strings.Contains(text, `"custom_field"`) || !strings.Contains(text, `"nested"`) {
		t.Fatalf("unknown field dropped: %s", text)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("updated manifest is not valid JSON: %v", err)
	}
	if fields["compile_duration"] != 1.0 {
		t.Fatalf("compile_duration=%v, want 1", fields["compile_duration"])
	}
}

func TestSetCompileDurationMissingManifest(t *testing.T) {
	err := SetCompileDuration(filepath.Join(t.TempDir(), FileName), 1.0)
	if err == nil {
		t.Fatal("expected an error for a missing manifest")
	}
}

func TestSameIdentity(t *testing.T) {
	a := sample()
	b := sample()
	b.ExposedSymbols = []string{"different"}
	b.PrepareDuration = 99
	dur := 3.0
	b.CompileDuration = &dur
	if !a.SameIdentity(b) {
		t.Fatal("symbols and timings must not affect identity")
	}

	c := sample()
	c.BuildNumber = 4
	if a.SameIdentity(c) {
		t.Fatal("build_number change must break identity")
	}
	d := sample()
	d.Dependencies = []string{"chebfun", "kdtree"}
	if a.SameIdentity(d) {
		t.Fatal("dependency change must break identity")
	}
	if a.SameIdentity(nil) {
		t.Fatal("nil manifest never matches")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{2.345, 2.35},
		{2.344, 2.34},
		{0, 0},
		{1.005, 1},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKeyDigest(t *testing.T) {
	k := Key{Name: "fmm2d", Version: "unspecified", BuildNumber: 1, PlatformTag: "linux_x86_64", MatlabTag: "any", ABITag: "none", BuildType: "linux_workstation"}
	if k.Digest() != k.Digest() {
		t.Fatal("digest not deterministic")
	}
	k2 := k
	k2.BuildNumber = 2
	if k.Digest() == k2.Digest() {
		t.Fatal("digest should change with build_number")
	}
	if !strings.HasPrefix(k.Digest(), "sha256:") {
		t.Fatalf("digest format: %s", k.Digest())
	}
}
