package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key identifies one reproducible build of a package for a build type.
// Its digest is the manifest cache_key.
type Key struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	BuildNumber  int      `json:"build_number"`
	Dependencies []string `json:"dependencies,omitempty"`
	MatlabTag    string   `json:"matlab_tag"`
	ABITag       string   `json:"abi_tag"`
	PlatformTag  string   `json:"platform_tag"`
	BuildType    string   `json:"build_type"`
}

// Digest computes a stable content digest for the key. Dependency order is
// part of the spec, so it is hashed as declared.
func (k Key) Digest() string {
	b, _ := json.Marshal(k)
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:])
}
