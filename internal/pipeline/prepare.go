package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neurosift/mipforge/internal/compile"
	"github.com/neurosift/mipforge/internal/fetch"
	"github.com/neurosift/mipforge/internal/loadscripts"
	"github.com/neurosift/mipforge/internal/manifest"
	"github.com/neurosift/mipforge/internal/queue"
	"github.com/neurosift/mipforge/internal/remote"
	"github.com/neurosift/mipforge/internal/resolve"
	"github.com/neurosift/mipforge/internal/spec"
)

// Preparer runs the prepare stage: acquire each package's source, resolve
// its paths and symbols, generate activation scripts, write the manifest,
// and run the compile step when the variant declares one.
type Preparer struct {
	Cfg     Config
	Fetcher fetch.Fetcher
	Invoker compile.Invoker
	Remote  *remote.Client
}

// NewPreparer wires a Preparer from config.
func NewPreparer(cfg Config) *Preparer {
	return &Preparer{
		Cfg:     cfg,
		Fetcher: cfg.Fetcher(),
		Invoker: cfg.Invoker(),
		Remote:  cfg.Remote(),
	}
}

// Run prepares every package directory under the packages root, in listing
// order, stopping at the first failure. With Parallel > 1 packages run
// concurrently under that limit; each package's filesystem work stays inside
// its own goroutine.
func (p *Preparer) Run(ctx context.Context) error {
	names, err := p.packageNames()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		log.Printf("no packages to prepare under %s", p.Cfg.PackagesDir)
		return nil
	}

	if p.Cfg.Parallel > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.Cfg.Parallel)
		for _, name := range names {
			name := name
			g.Go(func() error {
				return p.PreparePackage(gctx, name)
			})
		}
		return g.Wait()
	}

	for _, name := range names {
		if err := p.PreparePackage(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// RunFromQueue drains up to BatchSize rebuild requests and prepares the
// packages they name. A failed package is re-enqueued with its attempt count
// bumped, until MaxAttempts is reached; the errors are still reported.
func (p *Preparer) RunFromQueue(ctx context.Context, q queue.Backend) error {
	reqs, err := q.Pop(ctx, p.Cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("drain rebuild queue: %w", err)
	}
	if len(reqs) == 0 {
		log.Printf("rebuild queue is empty")
		return nil
	}
	log.Printf("drained %d rebuild request(s)", len(reqs))

	var errs []error
	for _, req := range reqs {
		err := p.PreparePackage(ctx, req.Package)
		if err == nil {
			continue
		}
		errs = append(errs, err)
		req.Attempts++
		if req.Attempts >= p.Cfg.MaxAttempts {
			log.Printf("  giving up on %s after %d attempt(s)", req.Package, req.Attempts)
			continue
		}
		if qerr := q.Enqueue(ctx, req); qerr != nil {
			errs = append(errs, fmt.Errorf("re-enqueue %s: %w", req.Package, qerr))
		}
	}
	return errors.Join(errs...)
}

func (p *Preparer) packageNames() ([]string, error) {
	entries, err := os.ReadDir(p.Cfg.PackagesDir)
	if err != nil {
		return nil, fmt.Errorf("list packages dir: %w", err)
	}
	wanted := map[string]bool{}
	for _, name := range p.Cfg.Packages {
		wanted[name] = true
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if len(wanted) > 0 && !wanted[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// PreparePackage runs the full prepare flow for one package directory.
func (p *Preparer) PreparePackage(ctx context.Context, name string) error {
	log.Printf("preparing %s", name)
	pkg, err := spec.LoadDir(filepath.Join(p.Cfg.PackagesDir, name))
	if err != nil {
		return &ConfigError{Package: name, Stage: "load spec", Err: err}
	}

	variant, ok := pkg.SelectVariant(p.Cfg.BuildType)
	if !ok {
		log.Printf("  no build variant for type %q, skipping", p.Cfg.BuildType)
		return nil
	}

	matlabTag, abiTag, platformTag := resolveTags(pkg)
	wheel := wheelName(pkg.Name, pkg.Version, matlabTag, abiTag, platformTag)
	workDir := filepath.Join(p.Cfg.PreparedDir, wheel+DirSuffix)

	if !p.Cfg.Force && p.published(ctx, pkg, wheel) {
		log.Printf("  %s already published, skipping", wheel)
		return nil
	}

	if err := os.RemoveAll(workDir); err != nil {
		return fmt.Errorf("package %s: clear work dir: %w", name, err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("package %s: create work dir: %w", name, err)
	}

	start := time.Now()
	if err := p.Fetcher.Fetch(ctx, pkg.Prepare, workDir); err != nil {
		os.RemoveAll(workDir)
		return &ToolError{Package: name, Stage: "acquire source", Err: err}
	}

	paths, err := resolve.Paths(workDir, pkg.Prepare.Destination(), pkg.Prepare.AddPaths)
	if err != nil {
		return &ConfigError{Package: name, Stage: "resolve paths", Err: err}
	}
	symbols := resolve.Symbols(workDir, paths, pkg.SymbolExtensions)
	log.Printf("  resolved %d path(s), %d symbol(s)", len(paths), len(symbols))

	if variant.CompileScript != "" {
		if err := stageCompileScript(pkg.Dir, workDir, variant.CompileScript); err != nil {
			return &ConfigError{Package: name, Stage: "stage compile script", Err: err}
		}
	}

	if err := loadscripts.Write(workDir, pkg.Name, paths); err != nil {
		return fmt.Errorf("package %s: write activation scripts: %w", name, err)
	}

	m := p.assembleManifest(pkg, wheel, matlabTag, abiTag, platformTag, paths, symbols, time.Since(start))
	manifestPath := filepath.Join(workDir, manifest.FileName)
	if err := manifest.Write(manifestPath, m); err != nil {
		return fmt.Errorf("package %s: write manifest: %w", name, err)
	}

	if variant.CompileScript != "" {
		log.Printf("  compiling with %s", variant.CompileScript)
		dur, output, err := p.Invoker.Invoke(ctx, variant.CompileScript, workDir)
		if err != nil {
			return &ToolError{Package: name, Stage: "compile", Output: output, Err: err}
		}
		log.Printf("  compiled in %.2fs", dur.Seconds())
		if err := manifest.SetCompileDuration(manifestPath, dur.Seconds()); err != nil {
			log.Printf("  warning: record compile duration: %v", err)
		}
	}

	log.Printf("  prepared %s", wheel)
	return nil
}

// published probes the public base URL for this wheel's metadata and compares
// the identity fields. Probe failures are logged and treated as unpublished.
func (p *Preparer) published(ctx context.Context, pkg *spec.Package, wheel string) bool {
	remoteManifest, err := p.Remote.PublishedManifest(ctx, wheel+MHLSuffix)
	if err != nil {
		log.Printf("  warning: probe published metadata: %v", err)
		return false
	}
	if remoteManifest == nil {
		return false
	}
	candidate := &manifest.Manifest{
		Name:         pkg.Name,
		Description:  pkg.Description,
		Version:      pkg.Version,
		BuildNumber:  pkg.BuildNumber,
		Dependencies: pkg.Dependencies,
		Homepage:     pkg.Homepage,
		Repository:   pkg.Repository,
	}
	return candidate.SameIdentity(remoteManifest)
}

func (p *Preparer) assembleManifest(pkg *spec.Package, wheel, matlabTag, abiTag, platformTag string, paths, symbols []string, prepDur time.Duration) *manifest.Manifest {
	key := manifest.Key{
		Name:         pkg.Name,
		Version:      pkg.Version,
		BuildNumber:  pkg.BuildNumber,
		Dependencies: pkg.Dependencies,
		MatlabTag:    matlabTag,
		ABITag:       abiTag,
		PlatformTag:  platformTag,
		BuildType:    p.Cfg.BuildType,
	}
	return &manifest.Manifest{
		Name:            pkg.Name,
		Description:     pkg.Description,
		Version:         pkg.Version,
		BuildNumber:     pkg.BuildNumber,
		Dependencies:    pkg.Dependencies,
		Homepage:        pkg.Homepage,
		Repository:      pkg.Repository,
		License:         pkg.License,
		UsageExamples:   pkg.UsageExamples,
		MatlabTag:       matlabTag,
		ABITag:          abiTag,
		PlatformTag:     platformTag,
		BuildType:       p.Cfg.BuildType,
		ExposedSymbols:  symbols,
		ResolvedPaths:   paths,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		PrepareDuration: manifest.Round2(prepDur.Seconds()),
		MHLURL:          fmt.Sprintf("%s/%s%s", p.Cfg.BaseURL, wheel, MHLSuffix),
		CacheKey:        key.Digest(),
	}
}

// stageCompileScript copies the script named by the build variant from the
// spec directory into the work dir, executable.
func stageCompileScript(specDir, workDir, script string) error {
	data, err := os.ReadFile(filepath.Join(specDir, script))
	if err != nil {
		return fmt.Errorf("compile script %s: %w", script, err)
	}
	return os.WriteFile(filepath.Join(workDir, script), data, 0o755)
}
