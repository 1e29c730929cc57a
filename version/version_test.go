package version

import "testing"

func withVersion(t *testing.T, v, commit string) {
	t.Helper()
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = v, commit
	t.Cleanup(func() { Version, GitCommit = origVersion, origCommit })
}

func TestGet(t *testing.T) {
	withVersion(t, "1.2.0", "abc1234def")

	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("expected 1.2.0, got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit truncated to abc1234, got %q", info.GitCommit)
	}
}

func TestInfoShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tt := range tests {
		if got := tt.info.Short(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestUserAgent(t *testing.T) {
	withVersion(t, "2.0.0", "")
	if got := UserAgent(); got != "restauth/2.0.0" {
		t.Errorf("expected restauth/2.0.0, got %q", got)
	}
}
