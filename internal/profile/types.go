package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Type identifies which profile family a stanza belongs to.
type Type int

const (
	TypePrint Type = iota
	TypeFilament
)

func (t Type) String() string {
	switch t {
	case TypePrint:
		return "print"
	case TypeFilament:
		return "filament"
	default:
		return "unknown"
	}
}

// ParseType resolves the CLI-facing type name once, at the boundary.
func ParseType(raw string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "print":
		return TypePrint, nil
	case "filament":
		return TypeFilament, nil
	default:
		return 0, fmt.Errorf("unsupported profile type %q (supported: print, filament)", raw)
	}
}

// InheritsKey is the property that names a profile's parent.
const InheritsKey = "inherits"

// Profile represents one named settings stanza read from a file.
type Profile struct {
	File       string // path of the file the profile was read from
	Type       Type
	Name       string // display name as written in the header, tags and asterisks included
	Properties map[string]string
	Comments   []string // original comment lines, in order
	RawLines   []string // every original line attributed to this profile
	Default    bool     // implicit profile named after the file, no header in the source
}

// New returns an empty profile with an initialized property map.
func New(typ Type, name string) *Profile {
	return &Profile{
		Type:       typ,
		Name:       name,
		Properties: make(map[string]string),
	}
}

// QualifiedName is the type-tagged identity used for corpus-wide resolution.
func (p *Profile) QualifiedName() string {
	return p.Type.String() + ":" + p.Name
}

// Inherits returns the raw parent reference, or "" when the profile is a root.
func (p *Profile) Inherits() string {
	return p.Properties[InheritsKey]
}

func (p *Profile) SetInherits(ref string) {
	p.Properties[InheritsKey] = ref
}

// IsPrivate reports whether the display name carries the asterisk wrapping
// that marks a bundle-internal profile.
func (p *Profile) IsPrivate() bool {
	return Normalize(p.Name).Private
}

// Empty reports whether the profile carries no properties and no comments.
func (p *Profile) Empty() bool {
	return len(p.Properties) == 0 && len(p.Comments) == 0
}

// PropertyKeys returns the property keys in ascending order, the only order
// profiles are ever written in.
func (p *Profile) PropertyKeys() []string {
	keys := make([]string, 0, len(p.Properties))
	for key := range p.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone copies the profile so one corpus pass can restructure it without
// disturbing the original file's in-memory state.
func (p *Profile) Clone() *Profile {
	out := &Profile{
		File:     p.File,
		Type:     p.Type,
		Name:     p.Name,
		Default:  p.Default,
		Comments: append([]string(nil), p.Comments...),
		RawLines: append([]string(nil), p.RawLines...),
	}
	out.Properties = make(map[string]string, len(p.Properties))
	for key, value := range p.Properties {
		out.Properties[key] = value
	}
	return out
}
