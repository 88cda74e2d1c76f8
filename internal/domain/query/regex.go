package query

import (
	"regexp"
	"strings"
)

// compileRegex builds a pattern honoring client flags:
//
//	i  case-insensitive
//	m  dot matches newline
//	x  extended: unescaped whitespace and #-comments outside character classes are ignored
//
// Line anchors (^ and $) always match at line boundaries.
func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	if strings.Contains(flags, "x") {
		pattern = stripExtended(pattern)
	}

	mode := "m"
	if strings.Contains(flags, "i") {
		mode += "i"
	}
	if strings.Contains(flags, "m") {
		mode += "s"
	}

	return regexp.Compile("(?" + mode + ")" + pattern)
}

func stripExtended(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))

	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			b.WriteByte(c)
			b.WriteByte(pattern[i+1])
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
			b.WriteByte(c)
		case c == '[':
			inClass = true
			b.WriteByte(c)
		case c == '#':
			for i < len(pattern) && pattern[i] != '\n' {
				i++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			// insignificant in extended mode
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
