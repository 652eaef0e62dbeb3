package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var entityPattern = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z]+);`)

// namedEntities are the named references Gmail snippets and subjects carry in
// practice. Lookup is case-insensitive.
var namedEntities = map[string]string{
	"amp":    "&",
	"lt":     "<",
	"gt":     ">",
	"quot":   `"`,
	"apos":   "'",
	"nbsp":   " ",
	"hellip": "…",
	"mdash":  "—",
	"ndash":  "–",
	"lsquo":  "‘",
	"rsquo":  "’",
	"ldquo":  "“",
	"rdquo":  "”",
}

// DecodeEntities replaces named, decimal (&#39;) and hex (&#x2F;) character
// references in a single pass. Unknown names and invalid code points are left
// as written, so text without references comes back unchanged.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityPattern.ReplaceAllStringFunc(s, func(ref string) string {
		body := ref[1 : len(ref)-1]
		if body[0] != '#' {
			if v, ok := namedEntities[strings.ToLower(body)]; ok {
				return v
			}
			return ref
		}
		var (
			n   uint64
			err error
		)
		if body[1] == 'x' || body[1] == 'X' {
			n, err = strconv.ParseUint(body[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(body[1:], 10, 32)
		}
		if err != nil || n == 0 {
			return ref
		}
		r := rune(n)
		if !utf8.ValidRune(r) {
			return ref
		}
		return string(r)
	})
}
