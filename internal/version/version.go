package version

import "github.com/fatih/color"

// Version information for the veld CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Number is the plain semantic version. Generated file banners use this
	// one; ANSI escapes must never leak into emitted code.
	Number = "0.1.0"

	// Version is the colored "0.1.0-dev" for terminal output. Its digits are
	// literals of their own; overriding Number does not change it.
	Version = versionMajorColor.Sprint("0") + "." + versionMinorColor.Sprint("1") + "." + versionPatchColor.Sprint("0") + "-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)
