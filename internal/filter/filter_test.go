package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicekit/profilectl/internal/profile"
)

func mk(typ profile.Type, name string, props map[string]string) *profile.Profile {
	p := profile.New(typ, name)
	for key, val := range props {
		p.Properties[key] = val
	}
	return p
}

func TestEnvFor(t *testing.T) {
	p := mk(profile.TypeFilament, "Prusament PLA @MK4", map[string]string{
		"filament_vendor": "Prusa Polymers",
		"filament_type":   "PLA",
		"nozzle_diameter": "0.4,0.4",
	})
	p.File = "filament/pla.ini"

	env := EnvFor(p)
	assert.Equal(t, "Prusament PLA", env.Name)
	assert.Equal(t, "filament", env.Type)
	assert.Equal(t, []string{"MK4"}, env.Tags)
	assert.Equal(t, "Prusa Polymers", env.Vendor)
	assert.Equal(t, "PLA", env.Material)
	assert.InDelta(t, 0.4, env.Nozzle, 1e-9, "first entry of a multi-extruder list")
	assert.False(t, env.Private)
}

func TestFieldFilters(t *testing.T) {
	pla := mk(profile.TypeFilament, "Generic PLA", map[string]string{"filament_type": "PLA", "filament_vendor": "Generic"})
	petg := mk(profile.TypeFilament, "Prusament PETG", map[string]string{"filament_type": "PETG", "filament_vendor": "Prusa Polymers"})
	all := []*profile.Profile{pla, petg}

	got, err := New().WithMaterial("pla").Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []*profile.Profile{pla}, got)

	got, err = New().WithVendor("Prusa Polymers").Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []*profile.Profile{petg}, got)

	got, err = New().WithNameContains("prusament").Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []*profile.Profile{petg}, got)
}

func TestPrintFilters(t *testing.T) {
	draft := mk(profile.TypePrint, "Draft @0.6 nozzle", map[string]string{"nozzle_diameter": "0.6", "layer_height": "0.3"})
	detail := mk(profile.TypePrint, "Detail", map[string]string{"nozzle_diameter": "0.4", "layer_height": "0.1"})
	all := []*profile.Profile{draft, detail}

	got, err := New().WithNozzle("0.6").Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []*profile.Profile{draft}, got)

	got, err = New().WithLayerHeight("0.1").Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []*profile.Profile{detail}, got)

	got, err = New().WithTag("@0.6").Apply(all)
	require.NoError(t, err)
	assert.Equal(t, []*profile.Profile{draft}, got)
}

func TestExpressionFilter(t *testing.T) {
	coarse := mk(profile.TypePrint, "Coarse", map[string]string{"layer_height": "0.3"})
	fine := mk(profile.TypePrint, "Fine", map[string]string{"layer_height": "0.1"})

	s := New()
	require.NoError(t, s.WithExpression(`layer_height < 0.2 && type == "print"`))

	got, err := s.Apply([]*profile.Profile{coarse, fine})
	require.NoError(t, err)
	assert.Equal(t, []*profile.Profile{fine}, got)
}

func TestExpressionFilterCompileError(t *testing.T) {
	assert.Error(t, New().WithExpression("layer_height <"))
	assert.Error(t, New().WithExpression("no_such_field == 1"))
}

func TestZeroSelectionMatchesAll(t *testing.T) {
	all := []*profile.Profile{mk(profile.TypePrint, "A", nil), mk(profile.TypePrint, "B", nil)}
	got, err := New().Apply(all)
	require.NoError(t, err)
	assert.Equal(t, all, got)
}
