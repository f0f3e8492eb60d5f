// Package compileinfoprint is imported by the sciutil commands for the side
// effect of printing build information to stderr at startup.
package compileinfoprint

import "github.com/carbocation/sciutil/compileinfo"

func init() {
	compileinfo.PrintToStdErr()
}
