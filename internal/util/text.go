package util

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// MaxBodyChars caps expanded thread bodies.
const MaxBodyChars = 800

var invisible = regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{034F}\x{2060}-\x{2064}]+`)

// HTMLToText flattens an HTML (or plain) body into a single line of text.
// Script, style and head content is dropped; block elements are separated by a space.
func HTMLToText(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return CollapseWhitespace(DecodeEntities(body))
	}
	doc.Find("script, style, head, meta, link").Remove()
	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr, td, blockquote").Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml(" ")
	})

	text := invisible.ReplaceAllString(doc.Text(), "")
	return DecodeEntities(CollapseWhitespace(text))
}

// CollapseWhitespace replaces every whitespace run with one space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max characters, appending "..." when anything was cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
