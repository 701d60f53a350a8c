// Package buildinfo holds version identifiers stamped into release
// binaries via -ldflags. Development builds leave them empty and fall
// back to module build info.
package buildinfo

var (
	Version = ""
	Commit  = ""
)
