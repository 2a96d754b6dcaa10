package privacy

import (
	"path"
	"path/filepath"
	"strings"
)

// DefaultExcludePatterns are the patterns applied when configuration supplies none.
var DefaultExcludePatterns = []string{
	"**/.env*",
	"**/secrets/**",
	"**/credentials*",
}

// Pattern is a single compiled exclusion glob.
type Pattern struct {
	raw      string
	segments []string
	basename bool // no separator in the pattern: match the last segment only
}

// Compile parses a glob. It returns false for empty or malformed patterns.
func Compile(pattern string) (Pattern, bool) {
	p := strings.TrimSpace(filepath.ToSlash(pattern))
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return Pattern{}, false
	}

	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." {
			continue
		}
		// Consecutive ** collapse into one.
		if s == "**" && len(segs) > 0 && segs[len(segs)-1] == "**" {
			continue
		}
		if s != "**" {
			if _, err := path.Match(s, ""); err != nil {
				return Pattern{}, false
			}
		}
		segs = append(segs, s)
	}
	if len(segs) == 0 {
		return Pattern{}, false
	}

	return Pattern{
		raw:      pattern,
		segments: segs,
		basename: !strings.Contains(p, "/"),
	}, true
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether path is matched by the pattern.
// Absolute paths carry an unknown prefix (the project root), so the pattern
// is tried against every segment suffix of an absolute path.
func (p Pattern) Match(name string) bool {
	segs, floating := splitPath(name)
	if len(segs) == 0 {
		return false
	}

	if p.basename {
		ok, _ := path.Match(p.segments[0], segs[len(segs)-1])
		return ok
	}

	if !floating {
		return matchSegments(p.segments, segs)
	}
	for i := range segs {
		if matchSegments(p.segments, segs[i:]) {
			return true
		}
	}
	return false
}

// ShouldExclude reports whether path matches any of the patterns.
// An empty pattern list never excludes anything. Malformed patterns are ignored.
func ShouldExclude(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	for _, raw := range patterns {
		p, ok := Compile(raw)
		if !ok {
			continue
		}
		if p.Match(name) {
			return true
		}
	}
	return false
}

// Filter returns the paths that survive the patterns, preserving order.
func Filter(names []string, patterns []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !ShouldExclude(n, patterns) {
			out = append(out, n)
		}
	}
	return out
}

// splitPath normalizes name to slash-separated segments. floating is true when
// the path is absolute or escapes upward, i.e. its anchor is unknown.
func splitPath(name string) (segs []string, floating bool) {
	p := filepath.ToSlash(name)
	if vol := filepath.VolumeName(name); vol != "" {
		p = strings.TrimPrefix(p, filepath.ToSlash(vol))
		floating = true
	}
	if strings.HasPrefix(p, "/") {
		floating = true
	}
	p = path.Clean("/" + p)

	for _, s := range strings.Split(p, "/") {
		if s == "" || s == "." {
			continue
		}
		segs = append(segs, s)
	}
	if c := path.Clean(filepath.ToSlash(name)); c == ".." || strings.HasPrefix(c, "../") {
		floating = true
	}
	return segs, floating
}

// matchSegments matches glob segments against path segments.
func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(pat[1:], segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pat[0], segs[0]); !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}
