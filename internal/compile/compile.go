// Package compile runs a package's compile script in its working directory
// and measures how long it takes.
package compile

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// Invoker executes a compile step. The script path is relative to workDir;
// the subprocess runs with workDir as its directory, so the parent process
// never changes directory.
type Invoker interface {
	Invoke(ctx context.Context, script, workDir string) (time.Duration, string, error)
}

// ScriptInvoker runs compile scripts through a shell.
type ScriptInvoker struct {
	Shell   string
	Timeout time.Duration
}

// Invoke runs workDir/script and returns its wall-clock duration and
// combined output. The script must already exist; callers validate its
// presence before invoking so a missing script surfaces as a configuration
// error rather than a tool failure.
func (s *ScriptInvoker) Invoke(ctx context.Context, script, workDir string) (time.Duration, string, error) {
	path := filepath.Join(workDir, script)
	if _, err := os.Stat(path); err != nil {
		return 0, "", fmt.Errorf("compile script %s: %w", script, err)
	}
	shell := s.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	cmd := exec.CommandContext(runCtx, shell, script)
	cmd.Dir = workDir
	output, err := cmd.CombinedOutput()
	dur := time.Since(start)
	if err != nil {
		return dur, string(output), fmt.Errorf("compile script %s: %w", script, err)
	}
	return dur, string(output), nil
}

// Fake is used in tests.
type Fake struct {
	Calls []string
	Dur   time.Duration
	Out   string
	Err   error
}

func (f *Fake) Invoke(ctx context.Context, script, workDir string) (time.Duration, string, error) {
	f.Calls = append(f.Calls, filepath.Join(workDir, script))
	return f.Dur, f.Out, f.Err
}
