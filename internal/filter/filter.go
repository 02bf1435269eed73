// Package filter narrows a loaded corpus down to the profiles an operation
// should act on. Simple field filters cover the common cases; an expr
// expression over the profile environment covers the rest.
package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/slicekit/profilectl/internal/profile"
	"github.com/slicekit/profilectl/internal/value"
)

// Env defines the variables available during filter expression evaluation.
type Env struct {
	Name        string   `expr:"name"`
	Type        string   `expr:"type"`
	Tags        []string `expr:"tags"`
	Private     bool     `expr:"private"`
	Inherits    string   `expr:"inherits"`
	File        string   `expr:"file"`
	Vendor      string   `expr:"vendor"`
	Material    string   `expr:"material"`
	Nozzle      float64  `expr:"nozzle"`
	LayerHeight float64  `expr:"layer_height"`
}

// EnvFor projects a profile into the expression environment. Numeric fields
// default to zero when the underlying property is absent or non-numeric.
func EnvFor(p *profile.Profile) Env {
	normalized := profile.Normalize(p.Name)
	return Env{
		Name:        normalized.Base,
		Type:        p.Type.String(),
		Tags:        normalized.Tags,
		Private:     normalized.Private,
		Inherits:    p.Inherits(),
		File:        p.File,
		Vendor:      p.Properties["filament_vendor"],
		Material:    p.Properties["filament_type"],
		Nozzle:      numericProperty(p, "nozzle_diameter"),
		LayerHeight: numericProperty(p, "layer_height"),
	}
}

func numericProperty(p *profile.Profile, key string) float64 {
	raw, ok := p.Properties[key]
	if !ok {
		return 0
	}
	// Multi-extruder properties hold comma-separated lists; the first entry
	// is the one filters compare against.
	raw, _, _ = strings.Cut(raw, ",")
	v, err := value.Parse(raw)
	if err != nil {
		return 0
	}
	return v.Float()
}

// Selection accumulates filter criteria and evaluates them per profile.
// A zero Selection matches everything.
type Selection struct {
	nameContains string
	tag          string
	vendor       string
	material     string
	nozzle       string
	layerHeight  string
	program      *vm.Program
}

func New() *Selection {
	return &Selection{}
}

// WithNameContains keeps profiles whose core name contains the substring,
// case-insensitively.
func (s *Selection) WithNameContains(sub string) *Selection {
	s.nameContains = strings.ToLower(strings.TrimSpace(sub))
	return s
}

// WithTag keeps profiles carrying the @tag (sub-profile selector).
func (s *Selection) WithTag(tag string) *Selection {
	s.tag = strings.TrimPrefix(strings.TrimSpace(tag), "@")
	return s
}

// WithVendor keeps filament profiles from the given vendor.
func (s *Selection) WithVendor(vendor string) *Selection {
	s.vendor = strings.TrimSpace(vendor)
	return s
}

// WithMaterial keeps filament profiles of the given material type.
func (s *Selection) WithMaterial(material string) *Selection {
	s.material = strings.TrimSpace(material)
	return s
}

// WithNozzle keeps print profiles whose nozzle_diameter equals the value.
func (s *Selection) WithNozzle(nozzle string) *Selection {
	s.nozzle = strings.TrimSpace(nozzle)
	return s
}

// WithLayerHeight keeps print profiles whose layer_height equals the value.
func (s *Selection) WithLayerHeight(height string) *Selection {
	s.layerHeight = strings.TrimSpace(height)
	return s
}

// WithExpression compiles an expr source for advanced filtering.
func (s *Selection) WithExpression(src string) error {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}
	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("invalid filter expression: %w", err)
	}
	s.program = program
	return nil
}

// Match evaluates all criteria against one profile.
func (s *Selection) Match(p *profile.Profile) (bool, error) {
	env := EnvFor(p)

	if s.nameContains != "" && !strings.Contains(strings.ToLower(env.Name), s.nameContains) {
		return false, nil
	}
	if s.tag != "" && !containsString(env.Tags, s.tag) {
		return false, nil
	}
	if s.vendor != "" && !strings.EqualFold(env.Vendor, s.vendor) {
		return false, nil
	}
	if s.material != "" && !strings.EqualFold(env.Material, s.material) {
		return false, nil
	}
	if s.nozzle != "" && !numericEquals(s.nozzle, env.Nozzle) {
		return false, nil
	}
	if s.layerHeight != "" && !numericEquals(s.layerHeight, env.LayerHeight) {
		return false, nil
	}

	if s.program != nil {
		output, err := expr.Run(s.program, env)
		if err != nil {
			return false, fmt.Errorf("filter expression failed on %s: %w", p.QualifiedName(), err)
		}
		matched, ok := output.(bool)
		if !ok {
			return false, fmt.Errorf("filter expression did not return a boolean for %s", p.QualifiedName())
		}
		return matched, nil
	}
	return true, nil
}

// Apply returns the profiles matching every criterion, preserving order.
func (s *Selection) Apply(profiles []*profile.Profile) ([]*profile.Profile, error) {
	var out []*profile.Profile
	for _, p := range profiles {
		matched, err := s.Match(p)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, p)
		}
	}
	return out, nil
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if strings.EqualFold(item, want) {
			return true
		}
	}
	return false
}

func numericEquals(raw string, got float64) bool {
	want, err := value.Parse(raw)
	if err != nil {
		return false
	}
	return want.Float() == got
}
