// Package spec loads declarative package specifications (package.yaml) and
// selects the build variant matching a requested build type.
package spec

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WildcardBuildType matches any requested build type.
const WildcardBuildType = "any"

// DefaultSymbolExtension is used when a spec declares no symbol_extensions.
const DefaultSymbolExtension = ".m"

// SpecFileName is the per-package specification file.
const SpecFileName = "package.yaml"

// PathRule declares one addpath entry, relative to the acquired source root.
type PathRule struct {
	Path      string   `yaml:"path"`
	Recursive bool     `yaml:"recursive,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`
}

// DownloadZip acquires the source by downloading and extracting an archive.
type DownloadZip struct {
	URL         string `yaml:"url"`
	Destination string `yaml:"destination"`
}

// CloneGit acquires the source by cloning a git repository.
type CloneGit struct {
	URL         string `yaml:"url"`
	Destination string `yaml:"destination"`
}

// Prepare holds the source acquisition method and path rules.
// Exactly one of DownloadZip / CloneGit must be set.
type Prepare struct {
	DownloadZip *DownloadZip `yaml:"download_zip,omitempty"`
	CloneGit    *CloneGit    `yaml:"clone_git,omitempty"`
	AddPaths    []PathRule   `yaml:"addpaths"`
}

// Destination returns the directory name the source lands in.
func (p Prepare) Destination() string {
	if p.DownloadZip != nil {
		return p.DownloadZip.Destination
	}
	if p.CloneGit != nil {
		return p.CloneGit.Destination
	}
	return ""
}

// BuildVariant is one build-type-scoped entry in the builds list.
type BuildVariant struct {
	BuildType     string `yaml:"build_type"`
	BuildOn       string `yaml:"build_on,omitempty"`
	CompileScript string `yaml:"compile_script,omitempty"`
}

// Package is the loaded, validated specification for one package.
type Package struct {
	Name             string         `yaml:"name"`
	Description      string         `yaml:"description"`
	Version          string         `yaml:"version"`
	BuildNumber      int            `yaml:"build_number"`
	ReleaseNumber    *int           `yaml:"release_number,omitempty"`
	Dependencies     []string       `yaml:"dependencies"`
	Homepage         string         `yaml:"homepage"`
	Repository       string         `yaml:"repository"`
	License          string         `yaml:"license,omitempty"`
	SymbolExtensions []string       `yaml:"symbol_extensions,omitempty"`
	UsageExamples    []string       `yaml:"usage_examples,omitempty"`
	MatlabTag        string         `yaml:"matlab_tag,omitempty"`
	ABITag           string         `yaml:"abi_tag,omitempty"`
	PlatformTag      string         `yaml:"platform_tag,omitempty"`
	Prepare          Prepare        `yaml:"prepare"`
	Builds           []BuildVariant `yaml:"builds"`

	// Dir is the directory the spec was loaded from; compile scripts are
	// resolved against it.
	Dir string `yaml:"-"`
}

// ValidationError reports a specification that cannot be built as written.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid spec: %s: %s", e.Field, e.Msg)
}

// Load reads and validates a package.yaml file.
func Load(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg Package
	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	pkg.Dir = filepath.Dir(path)
	pkg.applyDefaults()
	if err := pkg.Validate(); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// LoadDir loads the package.yaml contained in dir.
func LoadDir(dir string) (*Package, error) {
	return Load(filepath.Join(dir, SpecFileName))
}

func (p *Package) applyDefaults() {
	if p.BuildNumber == 0 && p.ReleaseNumber != nil {
		p.BuildNumber = *p.ReleaseNumber
	}
	if len(p.SymbolExtensions) == 0 {
		p.SymbolExtensions = []string{DefaultSymbolExtension}
	}
	if p.Dependencies == nil {
		p.Dependencies = []string{}
	}
}

// Validate checks the structural invariants of the specification.
func (p *Package) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Msg: "required"}
	}
	if p.Version == "" {
		return &ValidationError{Field: "version", Msg: "required"}
	}
	if p.BuildNumber < 0 {
		return &ValidationError{Field: "build_number", Msg: "must not be negative"}
	}
	zip, git := p.Prepare.DownloadZip != nil, p.Prepare.CloneGit != nil
	if zip && git {
		return &ValidationError{Field: "prepare", Msg: "download_zip and clone_git are mutually exclusive"}
	}
	if !zip && !git {
		return &ValidationError{Field: "prepare", Msg: "one of download_zip or clone_git is required"}
	}
	if p.Prepare.Destination() == "" {
		return &ValidationError{Field: "prepare", Msg: "destination is required"}
	}
	if len(p.Prepare.AddPaths) == 0 {
		return &ValidationError{Field: "prepare.addpaths", Msg: "at least one path rule is required"}
	}
	for i, rule := range p.Prepare.AddPaths {
		if rule.Path == "" {
			return &ValidationError{Field: fmt.Sprintf("prepare.addpaths[%d].path", i), Msg: "required"}
		}
		if filepath.IsAbs(rule.Path) {
			return &ValidationError{Field: fmt.Sprintf("prepare.addpaths[%d].path", i), Msg: "must be relative"}
		}
	}
	if len(p.Builds) == 0 {
		return &ValidationError{Field: "builds", Msg: "at least one build variant is required"}
	}
	for i, b := range p.Builds {
		if b.BuildType == "" {
			return &ValidationError{Field: fmt.Sprintf("builds[%d].build_type", i), Msg: "required"}
		}
	}
	return nil
}

// SelectVariant returns the first declared variant whose build type equals
// the requested type or the wildcard. Declaration order is the tie-break:
// a spec may list both a specific type and "any" with different compile
// steps, and the first match wins. ok is false when no variant matches,
// which callers treat as a skip, not an error.
func (p *Package) SelectVariant(buildType string) (BuildVariant, bool) {
	for _, b := range p.Builds {
		if b.BuildType == buildType || b.BuildType == WildcardBuildType {
			return b, true
		}
	}
	return BuildVariant{}, false
}
