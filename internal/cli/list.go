package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slicekit/profilectl/internal/fileutil"
	"github.com/slicekit/profilectl/internal/graph"
	"github.com/slicekit/profilectl/internal/profile"
)

// ProfileRecord is the machine-readable row list emits per profile.
type ProfileRecord struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	File       string `json:"file"`
	Inherits   string `json:"inherits,omitempty"`
	Parent     string `json:"parent,omitempty"` // resolved parent, when found
	Private    bool   `json:"private,omitempty"`
	Properties int    `json:"properties"`
}

func RunList(cmd *cobra.Command, _ []string) error {
	c, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	selection, _, err := selectProfiles(cmd, c)
	if err != nil {
		return err
	}

	all := c.Profiles()
	records := make([]ProfileRecord, 0, len(selection))
	for _, p := range selection {
		record := ProfileRecord{
			Name:       p.Name,
			Type:       p.Type.String(),
			File:       p.File,
			Inherits:   p.Inherits(),
			Private:    p.IsPrivate(),
			Properties: len(p.Properties),
		}
		if parent := graph.FindParent(all, p); parent != nil {
			record.Parent = parent.QualifiedName()
		}
		records = append(records, record)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	if asJSON {
		return fileutil.PrintJSON(map[string]any{
			"type":     c.Type.String(),
			"dir":      c.Dir,
			"profiles": records,
		})
	}

	fmt.Printf("%d profiles in %s\n", len(records), c.Dir)
	for _, record := range records {
		fmt.Printf("- %s (%d properties) %s\n", formatName(record), record.Properties, record.File)
		if record.Inherits != "" {
			status := "unresolved"
			if record.Parent != "" {
				status = record.Parent
			}
			fmt.Printf("  inherits %s -> %s\n", record.Inherits, status)
		}
	}
	return nil
}

func formatName(record ProfileRecord) string {
	if record.Private {
		return record.Name + " (private)"
	}
	return record.Name
}

func profileNames(profiles []*profile.Profile) []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	return names
}
