package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slicekit/profilectl/internal/clean"
	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/fileutil"
)

func RunClean(cmd *cobra.Command, _ []string) error {
	c, err := loadCorpus(cmd)
	if err != nil {
		return err
	}

	bundlePath, err := cmd.Flags().GetString("bundle-file")
	if err != nil {
		return fmt.Errorf("failed to read --bundle-file flag: %w", err)
	}
	var bundleFile *corpus.File
	if bundlePath != "" {
		bundleFile, err = corpus.LoadFile(bundlePath, c.Type)
		if err != nil {
			return fmt.Errorf("failed to load bundle file %s: %w", bundlePath, err)
		}
	}

	result, err := clean.Run(c, bundleFile)
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

	fmt.Printf("clean: removed %d redundant properties from %d profiles\n",
		result.PropertiesRemoved, result.ProfilesCleaned)
	if result.PropertiesHoisted > 0 {
		fmt.Printf("clean: re-hoisted %d properties into bundle parents\n", result.PropertiesHoisted)
	}
	for _, path := range result.FilesRewritten {
		fmt.Printf("  rewrote %s\n", path)
	}
	return nil
}
