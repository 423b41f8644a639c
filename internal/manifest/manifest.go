// Package manifest recognizes which files on disk belong to the
// Gemfile/Podfile/gemspec/podspec family this repo understands, the same
// CanParse convention every sibling parser in the organization follows.
package manifest

import "strings"

// Kind identifies which manifest family a path belongs to.
type Kind int

const (
	Unknown Kind = iota
	Gemfile
	Podfile
	Gemspec
	Podspec
)

func (k Kind) String() string {
	switch k {
	case Gemfile:
		return "Gemfile"
	case Podfile:
		return "Podfile"
	case Gemspec:
		return "gemspec"
	case Podspec:
		return "podspec"
	default:
		return "unknown"
	}
}

// Detect classifies path by name/suffix, ignoring any directory prefix.
func Detect(path string) Kind {
	base := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		base = path[idx+1:]
	}

	switch {
	case base == "Gemfile":
		return Gemfile
	case base == "Podfile":
		return Podfile
	case strings.HasSuffix(base, ".gemspec"):
		return Gemspec
	case strings.HasSuffix(base, ".podspec"):
		return Podspec
	default:
		return Unknown
	}
}

// CanParse reports whether path names a manifest this repo understands.
func CanParse(path string) bool {
	return Detect(path) != Unknown
}
