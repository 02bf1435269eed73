package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/profile"
	"github.com/slicekit/profilectl/internal/stanza"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadCorpus(t *testing.T, dir string) *corpus.Corpus {
	t.Helper()
	c, err := corpus.Load(dir, profile.TypePrint, nil)
	require.NoError(t, err)
	return c
}

func newBundleFile(t *testing.T, dir string) *corpus.File {
	t.Helper()
	path := filepath.Join(dir, "bundle", "vendor.ini")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	bf, err := LoadOrCreateBundleFile(path, profile.TypePrint, stanza.NewVendorInfo("test-repo", "Test Vendor", "1.0.0"))
	require.NoError(t, err)
	return bf
}

func TestBundleScenarioSingleInternalParent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parent.ini", "[print: Parent]\nfill_density = 20%\nlayer_height = 0.2\n")
	childPath := writeFile(t, dir, "child.ini", "[print: Child]\nfirst_layer_height = 0.3\ninherits = Parent\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)

	result, err := Bundle(c, bf, c.Profiles(), "B")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProfilesMoved)

	bundleContent, err := os.ReadFile(bf.Path)
	require.NoError(t, err)
	text := string(bundleContent)
	assert.Contains(t, text, "[print:*Parent*]")
	assert.Contains(t, text, "layer_height = 0.2")
	assert.Contains(t, text, "fill_density = 20%")
	assert.NotContains(t, text, "[print:*B*]", "a lone internal profile gets no synthesized parent")

	childContent, err := os.ReadFile(childPath)
	require.NoError(t, err)
	assert.Contains(t, string(childContent), "inherits = *Parent*")
	assert.NotContains(t, string(childContent), "[print: Parent]")

	_, err = os.Stat(filepath.Join(dir, "parent.ini"))
	assert.True(t, os.IsNotExist(err), "emptied original file must be deleted")
	assert.Equal(t, []string{filepath.Join(dir, "parent.ini")}, result.FilesDeleted)
}

func TestBundleScenarioTaggedParentCoreNameMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parent.ini", "[print: Parent @test]\nlayer_height = 0.2\n")
	childPath := writeFile(t, dir, "child.ini", "[print: Child]\ninherits = Parent\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)

	result, err := Bundle(c, bf, c.Profiles(), "B")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ProfilesMoved)

	bundleContent, err := os.ReadFile(bf.Path)
	require.NoError(t, err)
	assert.Contains(t, string(bundleContent), "[print:*Parent @test*]")

	childContent, err := os.ReadFile(childPath)
	require.NoError(t, err)
	assert.Contains(t, string(childContent), "inherits = *Parent @test*")
}

func TestBundleSynthesizesParentForSiblingInternals(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bases.ini",
		"[print: Base A]\nfill_density = 20%\nlayer_height = 0.2\ninherits = Common Root\n\n"+
			"[print: Base B]\nfill_density = 20%\nlayer_height = 0.3\ninherits = Common Root\n")
	writeFile(t, dir, "leaves.ini",
		"[print: Leaf A]\ninherits = Base A\n\n[print: Leaf B]\ninherits = Base B\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)

	result, err := Bundle(c, bf, c.Profiles(), "Shared")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ProfilesMoved)
	assert.Equal(t, "*Shared*", result.ParentName)

	parent := findByName(bf.Profiles, "*Shared*")
	require.NotNil(t, parent)
	assert.Equal(t, "20%", parent.Properties["fill_density"])
	assert.Equal(t, "Common Root", parent.Inherits(), "identical child inherits is hoisted")

	movedA := findByName(bf.Profiles, "*Base A*")
	require.NotNil(t, movedA)
	assert.Equal(t, "*Shared*", movedA.Inherits())
	assert.Equal(t, "0.2", movedA.Properties["layer_height"])
	assert.NotContains(t, movedA.Properties, "fill_density", "hoisted keys leave the children")
}

func TestBundleIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parent.ini", "[print: Parent]\nlayer_height = 0.2\n")
	writeFile(t, dir, "child.ini", "[print: Child]\ninherits = Parent\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)
	_, err := Bundle(c, bf, c.Profiles(), "B")
	require.NoError(t, err)

	// Second run over the rewritten corpus plus the existing bundle.
	c2 := loadCorpus(t, dir)
	bf2, err := LoadOrCreateBundleFile(bf.Path, profile.TypePrint, nil)
	require.NoError(t, err)
	selection := append(c2.Profiles(), bf2.Profiles...)
	result, err := Bundle(c2, bf2, selection, "B")
	require.NoError(t, err)
	assert.Zero(t, result.ProfilesMoved, "already-bundled profiles must not be duplicated")

	content, err := os.ReadFile(bf.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "[print:*Parent*]"))
}

func TestBundleRewiresTaggedSiblingsToTheirOwnParents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bases.ini",
		"[print: Base @MK3]\nfill_density = 20%\nlayer_height = 0.2\n\n"+
			"[print: Base @MK4]\nfill_density = 20%\nlayer_height = 0.25\n")
	kidsPath := writeFile(t, dir, "kids.ini",
		"[print: Kid3]\ninherits = Base @MK3\n\n[print: Kid4]\ninherits = Base @MK4\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)

	result, err := Bundle(c, bf, c.Profiles(), "B")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ProfilesMoved)

	content, err := os.ReadFile(kidsPath)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "inherits = *Base @MK3*")
	assert.Contains(t, text, "inherits = *Base @MK4*",
		"an exact reference must not be captured by a sibling sharing its core name")
}

func TestBundleNoInternalProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.ini", "[print: A]\nlayer_height = 0.2\n")
	writeFile(t, dir, "b.ini", "[print: B]\nlayer_height = 0.3\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)

	_, err := Bundle(c, bf, c.Profiles(), "B")
	assert.ErrorIs(t, err, ErrNothingToBundle)
}

func TestBundleRequiresName(t *testing.T) {
	dir := t.TempDir()
	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)
	_, err := Bundle(c, bf, nil, "")
	assert.ErrorContains(t, err, "bundle name")
}

func TestBundleRewiresReferencesOutsideSelection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parent.ini", "[print: Parent]\nlayer_height = 0.2\n")
	writeFile(t, dir, "child.ini", "[print: Child]\ninherits = Parent\n")
	otherPath := writeFile(t, dir, "other.ini", "[print: Outsider]\ninherits = print: Parent\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)

	// Selection excludes Outsider; its reference must still be rewired.
	var selection []*profile.Profile
	for _, p := range c.Profiles() {
		if p.Name != "Outsider" {
			selection = append(selection, p)
		}
	}

	result, err := Bundle(c, bf, selection, "B")
	require.NoError(t, err)
	assert.Equal(t, 2, result.ReferencesRewired)

	content, err := os.ReadFile(otherPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "inherits = *Parent*")
}

func TestBundleFilePreservesVendorStanza(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "parent.ini", "[print: Parent]\nlayer_height = 0.2\n")
	writeFile(t, dir, "child.ini", "[print: Child]\ninherits = Parent\n")

	c := loadCorpus(t, dir)
	bf := newBundleFile(t, dir)
	_, err := Bundle(c, bf, c.Profiles(), "B")
	require.NoError(t, err)

	content, err := os.ReadFile(bf.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "[vendor]\nrepo_id = test-repo\n"),
		"vendor stanza must lead the bundle file")
}
