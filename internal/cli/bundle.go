package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/slicekit/profilectl/internal/bundle"
	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/fileutil"
)

func RunBundle(cmd *cobra.Command, args []string) error {
	bundleName := args[0]

	c, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	selection, descendantsAdded, err := selectProfiles(cmd, c)
	if err != nil {
		return err
	}
	if len(selection) == 0 {
		return errors.New("no profiles matched the selection")
	}

	bundleDir, err := resolveBundleDir(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(bundleDir, 0755); err != nil {
		return fmt.Errorf("failed to create bundle directory %s: %w", bundleDir, err)
	}
	bundlePath := filepath.Join(bundleDir, bundleName+corpus.ProfileExt)

	bundleFile, err := bundle.LoadOrCreateBundleFile(bundlePath, c.Type, vendorInfo(bundleName))
	if err != nil {
		return err
	}

	result, err := bundle.Bundle(c, bundleFile, selection, bundleName)
	if errors.Is(err, bundle.ErrNothingToBundle) {
		fmt.Println("bundle: selection has no internal profiles, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	if asJSON {
		return fileutil.PrintJSON(result)
	}

	fmt.Printf("bundle: moved %d profiles into %s\n", result.ProfilesMoved, result.BundlePath)
	if result.ParentName != "" {
		fmt.Printf("bundle: synthesized parent %q\n", result.ParentName)
	}
	fmt.Printf("bundle: rewired %d references\n", result.ReferencesRewired)
	if descendantsAdded > 0 {
		fmt.Printf("bundle: selection included %d descendants\n", descendantsAdded)
	}
	for _, path := range result.FilesRewritten {
		fmt.Printf("  rewrote %s\n", path)
	}
	for _, path := range result.FilesDeleted {
		fmt.Printf("  deleted %s\n", path)
	}
	return nil
}
