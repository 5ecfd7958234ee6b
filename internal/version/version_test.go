package version

import (
	"bytes"
	"strings"
	"testing"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origMessage, origDate := Version, GitCommit, GitMessage, BuildDate
	Version, GitCommit, GitMessage, BuildDate = v, commit, "", date
	t.Cleanup(func() {
		Version, GitCommit, GitMessage, BuildDate = origVersion, origCommit, origMessage, origDate
	})
}

func TestColored(t *testing.T) {
	tests := []struct {
		version string
		plain   string
	}{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"1.2.3-rc.1+build.123", "1.2.3-rc.1+build.123"},
		{"nightly", "nightly"},
	}
	for _, tt := range tests {
		withVersion(t, tt.version, "", "")
		if got := Colored(false); got != tt.plain {
			t.Errorf("Colored(false) for %q = %q", tt.version, got)
		}
	}

	withVersion(t, "1.2.3-dev", "", "")
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-dev") {
		t.Fatalf("Colored(true) = %q", got)
	}
}

func TestWrite(t *testing.T) {
	withVersion(t, "1.0.0", "abc123def456", "2026-01-15T10:30:00Z")
	var buf bytes.Buffer
	if err := Write(&buf, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "cscpp 1.0.0\n" +
		"  commit:  abc123def456\n" +
		"  built:   2026-01-15T10:30:00Z\n"
	if buf.String() != want {
		t.Fatalf("Write =\n%q\nwant\n%q", buf.String(), want)
	}

	withVersion(t, "1.0.0", "", "")
	buf.Reset()
	if err := Write(&buf, false); err != nil || buf.String() != "cscpp 1.0.0\n" {
		t.Fatalf("Write without metadata = %q, %v", buf.String(), err)
	}
}
