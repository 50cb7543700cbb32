package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError marks a broken specification: wrong acquisition config, a
// declared path missing from the source tree, a named compile script that
// does not exist. It aborts the whole run, because a misconfigured package
// means no artifact from this invocation is trustworthy.
type ConfigError struct {
	Package string
	Stage   string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("package %s: %s: %v", e.Package, e.Stage, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ToolError marks an external tool failure (download, git, compile script)
// and carries the tool's own diagnostic output.
type ToolError struct {
	Package string
	Stage   string
	Output  string
	Err     error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("package %s: %s: %v", e.Package, e.Stage, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// IsConfig reports whether err is (or wraps) a configuration error.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
