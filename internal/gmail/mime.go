package gmail

import (
	"encoding/base64"
	"strings"

	"dayboard/internal/util"

	gmailv1 "google.golang.org/api/gmail/v1"
)

// extractBody returns the plain text of a part tree: the part's own data,
// else its first text/plain child with text, else the first non-empty result
// of recursing into the children in order. A part whose markup strips to
// nothing counts as empty, so the walk moves on to its siblings.
func extractBody(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}
	if part.Body != nil && part.Body.Data != "" {
		return bodyText(part.Body.Data)
	}
	for _, sub := range part.Parts {
		if sub != nil && strings.EqualFold(sub.MimeType, "text/plain") && sub.Body != nil && sub.Body.Data != "" {
			if text := bodyText(sub.Body.Data); text != "" {
				return text
			}
		}
	}
	for _, sub := range part.Parts {
		if body := extractBody(sub); body != "" {
			return body
		}
	}
	return ""
}

// bodyText decodes one part's data into single-line text.
func bodyText(data string) string {
	return util.HTMLToText(decodeBase64URL(data))
}

func decodeBase64URL(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail uses unpadded base64url
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(b)
}
