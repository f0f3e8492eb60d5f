// Package compileinfo reports which commit a sciutil binary was built from.
package compileinfo

import (
	"fmt"
	"os"
	"runtime/debug"
)

type CompileInfo struct {
	Package    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	if c.Package == "" {
		return "No build information is embedded in this binary."
	}

	commit := c.Commit
	if commit == "" {
		commit = "an unknown commit"
	}

	mod := ""
	if c.Modified {
		mod = " (with uncommitted changes)"
	}

	return fmt.Sprintf("%s: built with %s from %s%s at %s", c.Package, c.GoVersion, commit, mod, c.CommitTime)
}

// Get reads the VCS stamp that the go tool embeds in the binary.
func Get() CompileInfo {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return CompileInfo{}
	}

	return FromBuildInfo(bi)
}

func FromBuildInfo(bi *debug.BuildInfo) CompileInfo {
	out := CompileInfo{
		GoVersion: bi.GoVersion,
		Package:   bi.Path,
	}

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func PrintToStdErr() {
	fmt.Fprintln(os.Stderr, Get())
}
