package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGetInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version = "1.0.0"
	Commit = "abc123def456"
	Date = "2024-01-01T12:00:00Z"
	defer func() {
		Version, Commit, Date = origVersion, origCommit, origDate
	}()

	info := GetInfo()

	if info.Version != "1.0.0" {
		t.Errorf("GetInfo().Version = %v, want 1.0.0", info.Version)
	}
	if info.Commit != "abc123def456" {
		t.Errorf("GetInfo().Commit = %v, want abc123def456", info.Commit)
	}
	if info.Date != "2024-01-01T12:00:00Z" {
		t.Errorf("GetInfo().Date = %v, want 2024-01-01T12:00:00Z", info.Date)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GetInfo().GoVersion = %v, want %v", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("GetInfo().Platform = %v, want %v", info.Platform, want)
	}
}

func TestFillFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-02-01T10:00:00Z"},
		},
	}

	tests := []struct {
		name string
		info Info
		want Info
	}{
		{
			name: "unset values come from build info",
			info: Info{Version: "dev", Commit: "unknown", Date: "unknown"},
			want: Info{Version: "v0.3.0", Commit: "0123456789abcdef", Date: "2026-02-01T10:00:00Z"},
		},
		{
			name: "ldflags values win",
			info: Info{Version: "1.2.3", Commit: "feedbeef", Date: "2025-12-24"},
			want: Info{Version: "1.2.3", Commit: "feedbeef", Date: "2025-12-24"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.fill(bi); got != tt.want {
				t.Errorf("fill() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFillKeepsDevForDevelBuilds(t *testing.T) {
	info := Info{Version: "dev", Commit: "unknown", Date: "unknown"}
	got := info.fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	if got.Version != "dev" {
		t.Errorf("fill() Version = %v, want dev", got.Version)
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want []string // Substrings that should be present
	}{
		{
			name: "full version info",
			info: Info{
				Version:   "1.0.0",
				Commit:    "abc123def456",
				Date:      "2024-01-01T12:00:00Z",
				GoVersion: "go1.22.0",
				Platform:  "windows/amd64",
			},
			want: []string{"daxbuild 1.0.0", "(abc123de)", "built 2024-01-01T12:00:00Z", "with go1.22.0", "for windows/amd64"},
		},
		{
			name: "short commit hash",
			info: Info{Version: "1.0.0", Commit: "abc123", Date: "2024-01-01", GoVersion: "go1.22.0", Platform: "linux/arm64"},
			want: []string{"(abc123)", "linux/arm64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.String()
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Info.String() = %v, missing substring %v", got, substr)
				}
			}
		})
	}
}

func TestInfoShort(t *testing.T) {
	if got := (Info{Version: "1.0.0-rc1"}).Short(); got != "1.0.0-rc1" {
		t.Errorf("Info.Short() = %v, want 1.0.0-rc1", got)
	}
}
