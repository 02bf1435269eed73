package stanza

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VendorInfo is the metadata stanza a bundle file opens with. Its lines are
// preserved verbatim so non-standard keys and comments survive a rewrite.
type VendorInfo struct {
	RepoID        string
	Name          string
	ConfigVersion string
	Lines         []string // original lines including the [vendor] header
}

// NewVendorInfo builds a vendor stanza for a freshly created bundle file.
func NewVendorInfo(repoID, name, configVersion string) *VendorInfo {
	return &VendorInfo{
		RepoID:        repoID,
		Name:          name,
		ConfigVersion: configVersion,
		Lines: []string{
			"[vendor]",
			"repo_id = " + repoID,
			"name = " + name,
			"config_version = " + configVersion,
		},
	}
}

// SplitVendor separates a leading [vendor] stanza from the rest of a bundle
// file's content. When the file does not open with one, vendor is nil and
// rest is the full input.
func SplitVendor(text string) (vendor *VendorInfo, rest string) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		bare := stripInlineComment(line)
		if bare == "" {
			continue
		}
		if bare == "[vendor]" {
			start = i
		}
		break
	}
	if start < 0 {
		return nil, text
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if bare := stripInlineComment(lines[i]); strings.HasPrefix(bare, "[") {
			end = i
			break
		}
	}

	vendor = &VendorInfo{Lines: append([]string(nil), lines[:end]...)}
	for _, line := range vendor.Lines {
		if key, val, ok := matchProperty(stripInlineComment(line)); ok {
			switch key {
			case "repo_id":
				vendor.RepoID = val
			case "name":
				vendor.Name = val
			case "config_version":
				vendor.ConfigVersion = val
			}
		}
	}
	return vendor, strings.Join(lines[end:], "\n")
}

// Validate checks the semantic version carried by config_version.
func (v *VendorInfo) Validate() error {
	if v.ConfigVersion == "" {
		return fmt.Errorf("vendor stanza is missing config_version")
	}
	if _, err := semver.NewVersion(v.ConfigVersion); err != nil {
		return fmt.Errorf("vendor config_version %q is not a semantic version: %w", v.ConfigVersion, err)
	}
	return nil
}

// Render emits the vendor stanza followed by a separating blank line.
func (v *VendorInfo) Render() []byte {
	body := strings.Join(v.Lines, "\n")
	body = strings.TrimRight(body, "\n \t")
	return []byte(body + "\n\n")
}
