package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/profile"
	"github.com/slicekit/profilectl/internal/value"
)

const editDone = "(done)"

// RunEdit drives an interactive single-property edit session. A value
// starting with "=" is a relative adjustment applied to the current value;
// unit mismatches are reported and the edit is skipped.
func RunEdit(cmd *cobra.Command, _ []string) error {
	c, err := loadCorpus(cmd)
	if err != nil {
		return err
	}
	profiles := c.Profiles()
	if len(profiles) == 0 {
		return errors.New("no profiles found to edit")
	}

	for {
		target, err := pickProfile(profiles)
		if err != nil {
			return err
		}
		if target == nil {
			return nil
		}

		if err := editProfile(c, target); err != nil {
			return err
		}
	}
}

func pickProfile(profiles []*profile.Profile) (*profile.Profile, error) {
	options := make([]huh.Option[*profile.Profile], 0, len(profiles)+1)
	for _, p := range profiles {
		options = append(options, huh.NewOption(p.QualifiedName(), p))
	}
	options = append(options, huh.NewOption(editDone, (*profile.Profile)(nil)))

	var picked *profile.Profile
	err := huh.NewSelect[*profile.Profile]().
		Title("Profile to edit").
		Options(options...).
		Value(&picked).
		Run()
	if err != nil {
		return nil, err
	}
	return picked, nil
}

func editProfile(c *corpus.Corpus, p *profile.Profile) error {
	for {
		keys := p.PropertyKeys()
		options := make([]huh.Option[string], 0, len(keys)+2)
		for _, key := range keys {
			options = append(options, huh.NewOption(fmt.Sprintf("%s = %s", key, p.Properties[key]), key))
		}
		options = append(options,
			huh.NewOption("(add property)", "(add)"),
			huh.NewOption(editDone, editDone),
		)

		var key string
		err := huh.NewSelect[string]().
			Title(fmt.Sprintf("Property of %s", p.QualifiedName())).
			Options(options...).
			Value(&key).
			Run()
		if err != nil {
			return err
		}

		switch key {
		case editDone:
			return nil
		case "(add)":
			if err := addProperty(p); err != nil {
				return err
			}
		default:
			if err := editProperty(p, key); err != nil {
				return err
			}
		}

		if f := c.FileOf(p); f != nil {
			if _, err := f.Write(); err != nil {
				return fmt.Errorf("failed to write %s: %w", f.Path, err)
			}
		}
	}
}

func editProperty(p *profile.Profile, key string) error {
	current := p.Properties[key]

	var input string
	err := huh.NewInput().
		Title(fmt.Sprintf("%s (currently %q, use =+N / =-N for relative changes, empty to delete)", key, current)).
		Value(&input).
		Run()
	if err != nil {
		return err
	}

	input = strings.TrimSpace(input)
	switch {
	case input == "":
		delete(p.Properties, key)
		fmt.Printf("deleted %s\n", key)
	case value.IsAdjustment(input):
		adjustment, err := value.ParseAdjustment(input)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", key, err)
			return nil
		}
		updated, err := value.Apply(current, adjustment)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", key, err)
			return nil
		}
		p.Properties[key] = updated
		fmt.Printf("%s = %s\n", key, updated)
	default:
		p.Properties[key] = input
		fmt.Printf("%s = %s\n", key, input)
	}
	return nil
}

func addProperty(p *profile.Profile) error {
	var key, val string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Property key").Value(&key),
			huh.NewInput().Title("Value").Value(&val),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, " \t=") {
		fmt.Printf("skipping: %q is not a valid property key\n", key)
		return nil
	}
	p.Properties[key] = strings.TrimSpace(val)
	fmt.Printf("%s = %s\n", key, p.Properties[key])
	return nil
}
