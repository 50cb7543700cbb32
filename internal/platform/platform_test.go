package platform

import "testing"

func TestTagFor(t *testing.T) {
	tests := []struct {
		goos, goarch, want string
	}{
		{"linux", "amd64", "linux_x86_64"},
		{"linux", "arm64", "linux_aarch64"},
		{"linux", "386", "linux_i686"},
		{"linux", "s390x", "linux_s390x"},
		{"darwin", "amd64", "macosx_10_9_x86_64"},
		{"darwin", "arm64", "macosx_11_0_arm64"},
		{"windows", "amd64", "win_amd64"},
		{"windows", "arm64", "win_arm64"},
		{"windows", "386", "win32"},
		{"freebsd", "amd64", "freebsd_x86_64"},
	}
	for _, tt := range tests {
		if got := tagFor(tt.goos, tt.goarch); got != tt.want {
			t.Errorf("tagFor(%s, %s)=%q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func TestOrUnspecified(t *testing.T) {
	if got := OrUnspecified(""); got != "unspecified" {
		t.Fatalf("empty tag should map to unspecified, got %q", got)
	}
	if got := OrUnspecified("any"); got != "any" {
		t.Fatalf("non-empty tag should pass through, got %q", got)
	}
}

func TestCurrentTagNonEmpty(t *testing.T) {
	if CurrentTag() == "" {
		t.Fatal("current platform tag should never be empty")
	}
}
