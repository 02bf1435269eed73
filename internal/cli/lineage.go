package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slicekit/profilectl/internal/fileutil"
	"github.com/slicekit/profilectl/internal/graph"
)

func RunAncestors(cmd *cobra.Command, args []string) error {
	c, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	p := c.Find(args[0])
	if p == nil {
		return fmt.Errorf("profile %q not found", args[0])
	}

	chain := graph.AncestorChain(p, c.Profiles())

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	if asJSON {
		return fileutil.PrintJSON(map[string]any{
			"profile":   p.QualifiedName(),
			"ancestors": profileNames(chain),
		})
	}

	fmt.Printf("ancestors of %s (%d)\n", p.QualifiedName(), len(chain))
	for i, ancestor := range chain {
		fmt.Printf("%*s%s (%s)\n", (i+1)*2, "", ancestor.Name, ancestor.File)
	}
	if p.Inherits() != "" && len(chain) == 0 {
		fmt.Printf("  parent %q is not part of this corpus\n", p.Inherits())
	}
	return nil
}

func RunDescendants(cmd *cobra.Command, args []string) error {
	c, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	p := c.Find(args[0])
	if p == nil {
		return fmt.Errorf("profile %q not found", args[0])
	}

	descendants := graph.Descendants(c.Profiles(), []string{p.Name})

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	if asJSON {
		return fileutil.PrintJSON(map[string]any{
			"profile":     p.QualifiedName(),
			"descendants": profileNames(descendants),
		})
	}

	fmt.Printf("descendants of %s (%d)\n", p.QualifiedName(), len(descendants))
	for _, d := range descendants {
		fmt.Printf("- %s (%s)\n", d.Name, d.File)
	}
	return nil
}
