package pipeline

import (
	"fmt"

	"github.com/neurosift/mipforge/internal/platform"
	"github.com/neurosift/mipforge/internal/spec"
)

// Artifact name suffixes. A prepared package lives in {wheel}.dir, is
// bundled as {wheel}.mhl, and publishes its metadata as {wheel}.mhl.mip.json.
const (
	DirSuffix  = ".dir"
	MHLSuffix  = ".mhl"
	MetaSuffix = ".mhl.mip.json"
)

// CurrentPlatform is the spec value that resolves to the detected host tag.
const CurrentPlatform = "current"

// resolveTags fills tag defaults: an unset matlab tag means any release, an
// unset abi tag means no ABI constraint, and the platform tag defaults to
// portable unless the spec pins it or asks for the build host.
func resolveTags(pkg *spec.Package) (matlabTag, abiTag, platformTag string) {
	matlabTag = pkg.MatlabTag
	if matlabTag == "" {
		matlabTag = platform.AnyMatlabTag
	}
	abiTag = pkg.ABITag
	if abiTag == "" {
		abiTag = platform.NoABITag
	}
	switch pkg.PlatformTag {
	case "":
		platformTag = platform.AnyPlatformTag
	case CurrentPlatform:
		platformTag = platform.CurrentTag()
	default:
		platformTag = pkg.PlatformTag
	}
	return matlabTag, abiTag, platformTag
}

// wheelName builds the five-part artifact base name. Empty parts become the
// "unspecified" placeholder so the name always splits into five fields.
func wheelName(name, version, matlabTag, abiTag, platformTag string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		name,
		platform.OrUnspecified(version),
		platform.OrUnspecified(matlabTag),
		platform.OrUnspecified(abiTag),
		platform.OrUnspecified(platformTag))
}
