package util

import (
	"net/mail"
	"regexp"
	"strings"

	"dayboard/internal/model"
)

// UnknownSender is the display name used when a From header cannot be read.
const UnknownSender = "Unknown"

// angleAddr matches `Name <addr>` and `"Name" <addr>` with an optional name.
var angleAddr = regexp.MustCompile(`^(?:"?([^"<]*)"?\s*)?<([^<>]+)>$`)

// ParseFrom splits a From header into display name and address.
// - RFC 5322 values are parsed with net/mail first (quoted names, encoded words)
// - Otherwise a lenient `name <addr>` or bare address form is accepted
// - A missing name falls back to the address local part
// Anything else yields the Unknown sender with the raw header as address.
func ParseFrom(fromHeader string) model.Person {
	h := strings.TrimSpace(fromHeader)
	if h == "" {
		return model.Person{Name: UnknownSender}
	}

	if addr, err := mail.ParseAddress(h); err == nil && addr.Address != "" {
		return person(addr.Name, addr.Address)
	}

	if m := angleAddr.FindStringSubmatch(h); m != nil {
		return person(m[1], strings.TrimSpace(m[2]))
	}

	if !strings.Contains(h, "@") {
		return model.Person{Name: UnknownSender, Email: h}
	}
	// Bare address, possibly malformed. Keep it verbatim.
	return person("", h)
}

func person(name, email string) model.Person {
	name = strings.TrimSpace(name)
	if name == "" {
		name = LocalPart(email)
	}
	if name == "" {
		name = UnknownSender
	}
	return model.Person{Name: DecodeEntities(name), Email: email}
}

// LocalPart returns the text before the last '@' in an address, or the whole
// value when there is none.
func LocalPart(email string) string {
	if at := strings.LastIndexByte(email, '@'); at >= 0 {
		return email[:at]
	}
	return email
}
