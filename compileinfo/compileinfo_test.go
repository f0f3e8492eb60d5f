package compileinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	ci := FromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.21.0",
		Path:      "github.com/carbocation/sciutil/cmd/sam2fastq",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2024-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	if ci.Commit != "abc123" || !ci.Modified || ci.CommitTime != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected %+v", ci)
	}
	if s := ci.String(); !strings.Contains(s, "sam2fastq") || !strings.Contains(s, "uncommitted") {
		t.Errorf("unexpected string %q", s)
	}
}

func TestEmpty(t *testing.T) {
	if s := (CompileInfo{}).String(); !strings.Contains(s, "No build information") {
		t.Errorf("unexpected string %q", s)
	}
}
