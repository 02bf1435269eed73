// Package bundle factors shared structure out of profile selections: hoisting
// common properties into synthesized parents and relocating internal profiles
// into a vendor bundle under privatized names.
package bundle

import (
	"github.com/slicekit/profilectl/internal/profile"
)

// protectedKeys are structurally profile-specific and must never be hoisted
// into a synthesized parent, even when accidentally identical across
// siblings.
var protectedKeys = []string{
	"compatible_printers_condition",
	"compatible_printers",
	"filament_vendor",
	"printer_model",
	"nozzle_diameter",
	profile.InheritsKey,
}

// CommonProperties returns the key/value pairs string-identical across every
// profile in the set, minus the protected keys. An empty set yields an empty
// mapping.
func CommonProperties(profiles []*profile.Profile) map[string]string {
	common := make(map[string]string)
	if len(profiles) == 0 {
		return common
	}

	for key, val := range profiles[0].Properties {
		common[key] = val
	}
	for _, p := range profiles[1:] {
		for key, val := range common {
			if p.Properties[key] != val {
				delete(common, key)
			}
		}
	}
	for _, key := range protectedKeys {
		delete(common, key)
	}
	return common
}

// Classify partitions a selection into internal profiles (inherited from by
// at least one other in-set profile) and leaves. Reference matching tolerates
// tag differences: a child naming a tagged parent without its tags still
// marks that parent internal.
func Classify(selection []*profile.Profile) (internal, leaves []*profile.Profile) {
	for _, candidate := range selection {
		if hasInSetChild(selection, candidate) {
			internal = append(internal, candidate)
		} else {
			leaves = append(leaves, candidate)
		}
	}
	return internal, leaves
}

func hasInSetChild(selection []*profile.Profile, parent *profile.Profile) bool {
	for _, other := range selection {
		if other == parent {
			continue
		}
		if profile.InheritsFrom(other, parent.Name) {
			return true
		}
		if other.Inherits() != "" && profile.CoreNameEquals(other.Inherits(), parent.Name) {
			return true
		}
	}
	return false
}

// sharedInherits returns the inherits value common to every profile in the
// set, or "" when any profile disagrees or lacks one.
func sharedInherits(profiles []*profile.Profile) string {
	if len(profiles) == 0 {
		return ""
	}
	first := profiles[0].Inherits()
	if first == "" {
		return ""
	}
	for _, p := range profiles[1:] {
		if p.Inherits() != first {
			return ""
		}
	}
	return first
}
