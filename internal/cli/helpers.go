package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/filter"
	"github.com/slicekit/profilectl/internal/graph"
	"github.com/slicekit/profilectl/internal/profile"
	"github.com/slicekit/profilectl/internal/stanza"
)

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "select profiles whose core name contains this substring")
	cmd.Flags().String("filter", "", "expression over name, type, tags, vendor, material, nozzle, layer_height")
	cmd.Flags().String("sub-profile", "", "print: select profiles carrying this @tag")
	cmd.Flags().String("nozzle", "", "print: select profiles with this nozzle_diameter")
	cmd.Flags().String("layer-height", "", "print: select profiles with this layer_height")
	cmd.Flags().String("vendor", "", "filament: select profiles from this vendor")
	cmd.Flags().String("material", "", "filament: select profiles of this material type")
}

func parseTypeFlag(cmd *cobra.Command) (profile.Type, error) {
	raw, err := cmd.Flags().GetString("type")
	if err != nil {
		return 0, fmt.Errorf("failed to read --type flag: %w", err)
	}
	return profile.ParseType(raw)
}

func resolveProfileDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return "", fmt.Errorf("failed to read --dir flag: %w", err)
	}
	if dir == "" {
		dir = viper.GetString("profile_dir")
	}
	if dir == "" {
		dir = "."
	}
	return dir, nil
}

func loadCorpus(cmd *cobra.Command) (*corpus.Corpus, error) {
	typ, err := parseTypeFlag(cmd)
	if err != nil {
		return nil, err
	}
	dir, err := resolveProfileDir(cmd)
	if err != nil {
		return nil, err
	}
	exclude, err := cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, fmt.Errorf("failed to read --exclude flag: %w", err)
	}
	return corpus.Load(dir, typ, corpus.NewMatcher(exclude))
}

// buildSelection resolves the filter flags once, at the boundary. The
// per-type flags are only meaningful for their profile type.
func buildSelection(cmd *cobra.Command, typ profile.Type) (*filter.Selection, error) {
	stringFlag := func(name string) (string, error) {
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
		}
		return v, nil
	}

	printOnly := []string{"sub-profile", "nozzle", "layer-height"}
	filamentOnly := []string{"vendor", "material"}
	var wrongType []string
	if typ == profile.TypePrint {
		wrongType = filamentOnly
	} else {
		wrongType = printOnly
	}
	for _, name := range wrongType {
		v, err := stringFlag(name)
		if err != nil {
			return nil, err
		}
		if v != "" {
			return nil, fmt.Errorf("--%s does not apply to %s profiles", name, typ)
		}
	}

	sel := filter.New()
	if v, err := stringFlag("name"); err != nil {
		return nil, err
	} else if v != "" {
		sel.WithNameContains(v)
	}
	if typ == profile.TypePrint {
		if v, err := stringFlag("sub-profile"); err != nil {
			return nil, err
		} else if v != "" {
			sel.WithTag(v)
		}
		if v, err := stringFlag("nozzle"); err != nil {
			return nil, err
		} else if v != "" {
			sel.WithNozzle(v)
		}
		if v, err := stringFlag("layer-height"); err != nil {
			return nil, err
		} else if v != "" {
			sel.WithLayerHeight(v)
		}
	} else {
		if v, err := stringFlag("vendor"); err != nil {
			return nil, err
		} else if v != "" {
			sel.WithVendor(v)
		}
		if v, err := stringFlag("material"); err != nil {
			return nil, err
		} else if v != "" {
			sel.WithMaterial(v)
		}
	}
	if v, err := stringFlag("filter"); err != nil {
		return nil, err
	} else if v != "" {
		if err := sel.WithExpression(v); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

// selectProfiles applies the command's filter flags to the corpus, optionally
// widening the selection to all descendants of the matched profiles.
func selectProfiles(cmd *cobra.Command, c *corpus.Corpus) ([]*profile.Profile, int, error) {
	sel, err := buildSelection(cmd, c.Type)
	if err != nil {
		return nil, 0, err
	}
	selected, err := sel.Apply(c.Profiles())
	if err != nil {
		return nil, 0, err
	}

	withDescendants := false
	if cmd.Flags().Lookup("with-descendants") != nil {
		withDescendants, err = cmd.Flags().GetBool("with-descendants")
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read --with-descendants flag: %w", err)
		}
	}
	if !withDescendants {
		return selected, 0, nil
	}

	seeds := make([]string, 0, len(selected))
	inSelection := make(map[string]bool, len(selected))
	for _, p := range selected {
		seeds = append(seeds, p.Name)
		inSelection[p.QualifiedName()] = true
	}

	added := 0
	for _, d := range graph.Descendants(c.Profiles(), seeds) {
		if inSelection[d.QualifiedName()] {
			continue
		}
		inSelection[d.QualifiedName()] = true
		selected = append(selected, d)
		added++
	}
	return selected, added, nil
}

func resolveBundleDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("bundle-dir")
	if err != nil {
		return "", fmt.Errorf("failed to read --bundle-dir flag: %w", err)
	}
	if dir == "" {
		dir = viper.GetString("bundle_dir")
	}
	if dir == "" {
		profileDir, err := resolveProfileDir(cmd)
		if err != nil {
			return "", err
		}
		dir = filepath.Join(profileDir, "bundle")
	}
	return dir, nil
}

// vendorInfo builds the metadata stanza for a freshly created bundle file
// from config, falling back to placeholders the user can edit afterwards.
func vendorInfo(bundleName string) *stanza.VendorInfo {
	repoID := viper.GetString("vendor.repo_id")
	if repoID == "" {
		repoID = bundleName
	}
	name := viper.GetString("vendor.name")
	if name == "" {
		name = bundleName
	}
	version := viper.GetString("vendor.config_version")
	if version == "" {
		version = "0.1.0"
	}
	return stanza.NewVendorInfo(repoID, name, version)
}
