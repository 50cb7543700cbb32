// Package platform maps the host OS/architecture onto MIP platform tags.
package platform

import (
	"fmt"
	"runtime"
)

// Tag defaults used when a spec leaves a field unset.
const (
	AnyMatlabTag   = "any"
	NoABITag       = "none"
	AnyPlatformTag = "any"
	// Unspecified fills a tag slot in file names when the value is empty.
	Unspecified = "unspecified"
)

// CurrentTag returns the MIP platform tag for the running host,
// e.g. "linux_x86_64", "macosx_11_0_arm64", "win_amd64".
func CurrentTag() string {
	return tagFor(runtime.GOOS, runtime.GOARCH)
}

func tagFor(goos, goarch string) string {
	arch := goarch
	switch goarch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		if goos == "linux" {
			arch = "aarch64"
		}
	case "386":
		arch = "i686"
	}

	switch goos {
	case "linux":
		return "linux_" + arch
	case "darwin":
		if arch == "arm64" {
			return "macosx_11_0_arm64"
		}
		return "macosx_10_9_" + arch
	case "windows":
		switch arch {
		case "x86_64":
			return "win_amd64"
		case "arm64":
			return "win_arm64"
		case "i686":
			return "win32"
		}
		return "win_" + arch
	}
	return fmt.Sprintf("%s_%s", goos, arch)
}

// OrUnspecified substitutes the placeholder for empty tag values so that
// file and object names always have five dash-separated parts.
func OrUnspecified(tag string) string {
	if tag == "" {
		return Unspecified
	}
	return tag
}
