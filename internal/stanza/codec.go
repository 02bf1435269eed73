// Package stanza reads and writes the profile stanza dialect: blocks opened
// by a "[type: name]" header followed by "key = value" lines, with comments
// and blank lines preserved per profile for lossless re-emission.
package stanza

import (
	"fmt"
	"strings"

	"github.com/slicekit/profilectl/internal/profile"
)

// Parse scans text into the ordered profiles it declares. Content appearing
// before any stanza header is attributed to an implicit default profile named
// defaultName; an empty input yields that single empty default profile.
// Headers of other profile types are not stanza boundaries here and survive
// as plain retained lines.
func Parse(text string, typ profile.Type, defaultName string) []*profile.Profile {
	current := profile.New(typ, defaultName)
	current.Default = true

	var out []*profile.Profile
	flush := func(headerFollows bool) {
		// An empty implicit default stanza is only kept when it is the
		// whole file.
		if current.Default && current.Empty() && (headerFollows || len(out) > 0) {
			return
		}
		out = append(out, current)
	}

	for _, line := range strings.Split(text, "\n") {
		bare := stripInlineComment(line)

		if name, ok := matchHeader(bare, typ); ok {
			flush(true)
			current = profile.New(typ, name)
			current.RawLines = append(current.RawLines, line)
			continue
		}

		current.RawLines = append(current.RawLines, line)
		if key, val, ok := matchProperty(bare); ok {
			current.Properties[key] = val
			continue
		}
		if strings.TrimSpace(line) != "" && strings.Contains(line, "#") {
			current.Comments = append(current.Comments, line)
		}
	}
	flush(false)
	return out
}

// Render serializes profiles back to file content. Properties are emitted in
// ascending key order; profiles are separated by exactly one blank line and
// never reordered. The header is omitted for a file whose entire content is
// one empty default profile.
func Render(profiles []*profile.Profile) []byte {
	var b strings.Builder
	for i, p := range profiles {
		if i > 0 {
			b.WriteString("\n")
		}
		if !(len(profiles) == 1 && p.Default && p.Empty()) {
			b.WriteString(Header(p) + "\n")
		}
		for _, comment := range p.Comments {
			b.WriteString(comment + "\n")
		}
		for _, key := range p.PropertyKeys() {
			fmt.Fprintf(&b, "%s = %s\n", key, p.Properties[key])
		}
	}
	return []byte(b.String())
}

// Header formats a stanza header line. Privatized names follow the slicer's
// bundle convention of no space after the colon.
func Header(p *profile.Profile) string {
	if strings.Contains(p.Name, "*") {
		return fmt.Sprintf("[%s:%s]", p.Type, p.Name)
	}
	return fmt.Sprintf("[%s: %s]", p.Type, p.Name)
}

// stripInlineComment drops everything from the first '#' on, so comments
// never leak into header or property matching.
func stripInlineComment(line string) string {
	if idx := strings.Index(line, "#"); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

func matchHeader(bare string, typ profile.Type) (string, bool) {
	if !strings.HasPrefix(bare, "[") || !strings.HasSuffix(bare, "]") {
		return "", false
	}
	inner := bare[1 : len(bare)-1]
	head, rest, ok := strings.Cut(inner, ":")
	if !ok || strings.TrimSpace(head) != typ.String() {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

func matchProperty(bare string) (key, value string, ok bool) {
	if bare == "" || strings.HasPrefix(bare, "[") {
		return "", "", false
	}
	rawKey, rawValue, found := strings.Cut(bare, "=")
	if !found {
		return "", "", false
	}
	key = strings.TrimSpace(rawKey)
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(rawValue), true
}
