package profile

import (
	"regexp"
	"strings"
)

var (
	typePrefixRe = regexp.MustCompile(`^\s*(print|filament)\s*:`)
	tagRe        = regexp.MustCompile(`@[^\s*@]+`)
)

// NormalizedName is a display name decomposed into its comparable parts.
type NormalizedName struct {
	Base    string   // free text with prefix, tags and privatization marks removed
	Tags    []string // @tokens in order of appearance, without the @
	Private bool     // name was wrapped in a pair of asterisks
}

// Normalize decomposes a profile name or inheritance reference. The base name
// is whitespace-collapsed so hand-edited spacing never affects matching.
func Normalize(name string) NormalizedName {
	rest := typePrefixRe.ReplaceAllString(name, "")
	rest = strings.TrimSpace(rest)

	out := NormalizedName{}
	if len(rest) > 1 && strings.HasPrefix(rest, "*") && strings.HasSuffix(rest, "*") {
		out.Private = true
		rest = rest[1 : len(rest)-1]
	}

	rest = tagRe.ReplaceAllStringFunc(rest, func(tag string) string {
		out.Tags = append(out.Tags, strings.TrimPrefix(tag, "@"))
		return " "
	})

	out.Base = strings.Join(strings.Fields(rest), " ")
	return out
}

// StripTypePrefix removes a leading "print:" or "filament:" qualifier.
func StripTypePrefix(name string) string {
	return typePrefixRe.ReplaceAllString(name, "")
}

// CoreNameEquals reports whether two names refer to the same profile once
// prefixes, tags, privatization marks and spacing are ignored.
func CoreNameEquals(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	return na.Base != "" && na.Base == nb.Base
}

// RefMatches tests an inheritance reference against a candidate profile name
// using graduated matching: exact, trimmed, prefix-stripped, and
// prefix-stripped plus trimmed. Source files are hand-edited and inconsistent
// about prefixes and whitespace, so each step tolerates one more variant.
// Tag-stripped (core name) matching is deliberately not part of this ladder.
func RefMatches(ref, name string) bool {
	if ref == "" {
		return false
	}
	if ref == name {
		return true
	}
	if strings.TrimSpace(ref) == strings.TrimSpace(name) {
		return true
	}
	refBare, nameBare := StripTypePrefix(ref), StripTypePrefix(name)
	if refBare == nameBare {
		return true
	}
	return strings.TrimSpace(refBare) == strings.TrimSpace(nameBare)
}

// InheritsFrom reports whether the child's declared parent matches parentName.
func InheritsFrom(child *Profile, parentName string) bool {
	return RefMatches(child.Inherits(), parentName)
}

// Privatize wraps a display name in asterisks, marking it bundle-internal.
// Already-privatized names are returned unchanged.
func Privatize(name string) string {
	trimmed := strings.TrimSpace(name)
	if Normalize(trimmed).Private {
		return trimmed
	}
	return "*" + trimmed + "*"
}
