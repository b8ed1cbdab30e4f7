package buildinfo

import (
	"strings"
	"testing"
)

func TestGet_Stamped(t *testing.T) {
	saved := [3]string{Version, Commit, Date}
	defer func() { Version, Commit, Date = saved[0], saved[1], saved[2] }()

	Version, Commit, Date = "v1.4.0", "abc123", "2026-01-02T03:04:05Z"
	want := Info{Version: "v1.4.0", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}
	if got := Get(); got != want {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if tmpl := Template(); !strings.Contains(tmpl, "v1.4.0") || !strings.Contains(tmpl, "abc123") {
		t.Errorf("Template() = %q", tmpl)
	}
}

func TestGet_Unstamped(t *testing.T) {
	if got := Get(); got.Version == "" || got.Commit == "" || got.Date == "" {
		t.Errorf("Get() = %+v, want every field filled", got)
	}
}
