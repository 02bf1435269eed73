package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slicekit/profilectl/internal/bundle"
	"github.com/slicekit/profilectl/internal/fileutil"
)

func RunCombine(cmd *cobra.Command, args []string) error {
	parentName := args[0]

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

	result, err := bundle.Combine(c, selection, parentName)
	if errors.Is(err, bundle.ErrNothingToCombine) {
		fmt.Println("combine: selection has no common properties, nothing to do")
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

	fmt.Printf("combine: wrote parent %q to %s\n", result.ParentName, result.ParentPath)
	fmt.Printf("combine: hoisted %d properties out of %d profiles\n", result.PropertiesHoisted, result.ProfilesUpdated)
	if descendantsAdded > 0 {
		fmt.Printf("combine: selection included %d descendants\n", descendantsAdded)
	}
	for _, path := range result.FilesRewritten {
		fmt.Printf("  rewrote %s\n", path)
	}
	return nil
}
