// Package corpus loads every profile file under a directory into memory so
// inheritance can be resolved with complete information, and writes mutated
// files back wholesale.
package corpus

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/slicekit/profilectl/internal/fileutil"
	"github.com/slicekit/profilectl/internal/profile"
	"github.com/slicekit/profilectl/internal/stanza"
)

// ProfileExt is the extension profile files are discovered by.
const ProfileExt = ".ini"

// File is one profile file and the ordered profiles parsed from it.
type File struct {
	Path     string
	Vendor   *stanza.VendorInfo // non-nil when the file opens with a [vendor] stanza
	Profiles []*profile.Profile
}

// Corpus is the set of profile files loaded for one operation.
type Corpus struct {
	Dir   string
	Type  profile.Type
	Files []*File
}

// Load parses every profile file under dir, walking in lexicographic path
// order so that duplicate profile names resolve deterministically: the first
// occurrence is canonical. Unreadable files are reported and skipped.
func Load(dir string, typ profile.Type, matcher *Matcher) (*Corpus, error) {
	if matcher == nil {
		matcher = NewMatcher(nil)
	}

	c := &Corpus{Dir: dir, Type: typ}
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if matcher.ShouldSkip(relPath, entry.IsDir()) {
			if entry.IsDir() {
				// The subtree is pruned wholesale, so a negation rule
				// cannot re-include individual files under an excluded
				// directory.
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ProfileExt) {
			return nil
		}

		file, err := LoadFile(path, typ)
		if err != nil {
			slog.Warn("skipping unreadable profile file", "path", path, "error", err)
			return nil
		}
		c.Files = append(c.Files, file)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile directory %s: %w", dir, err)
	}
	return c, nil
}

// LoadFile parses a single profile file. A leading [vendor] stanza is split
// off and preserved for re-emission.
func LoadFile(path string, typ profile.Type) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	vendor, rest := stanza.SplitVendor(string(content))
	profiles := stanza.Parse(rest, typ, defaultProfileName(path))
	for _, p := range profiles {
		p.File = path
	}
	return &File{Path: path, Vendor: vendor, Profiles: profiles}, nil
}

// Write replaces the file's content on disk. The vendor stanza, when
// present, is emitted verbatim ahead of the profile stanzas.
func (f *File) Write() (bool, error) {
	var data []byte
	if f.Vendor != nil {
		data = append(data, f.Vendor.Render()...)
	}
	data = append(data, stanza.Render(f.Profiles)...)
	return fileutil.WriteIfChangedTracked(f.Path, data)
}

// Remove drops the named profiles from the file, matching by exact qualified
// name. It reports how many were removed.
func (f *File) Remove(qualifiedNames map[string]bool) int {
	kept := f.Profiles[:0]
	removed := 0
	for _, p := range f.Profiles {
		if qualifiedNames[p.QualifiedName()] {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	f.Profiles = kept
	return removed
}

// Empty reports whether no profiles with content remain in the file.
func (f *File) Empty() bool {
	for _, p := range f.Profiles {
		if !p.Default || !p.Empty() {
			return false
		}
	}
	return true
}

// Profiles flattens the corpus preserving file order, then stanza order.
func (c *Corpus) Profiles() []*profile.Profile {
	var out []*profile.Profile
	for _, f := range c.Files {
		out = append(out, f.Profiles...)
	}
	return out
}

// FileOf returns the loaded file a profile belongs to.
func (c *Corpus) FileOf(p *profile.Profile) *File {
	for _, f := range c.Files {
		if f.Path == p.File {
			return f
		}
	}
	return nil
}

// Find returns the first profile whose name matches ref under graduated
// reference matching, or nil. First occurrence in load order is canonical.
func (c *Corpus) Find(ref string) *profile.Profile {
	for _, p := range c.Profiles() {
		if profile.RefMatches(ref, p.Name) || ref == p.QualifiedName() {
			return p
		}
	}
	return nil
}

// AddFile registers a file created during an operation, keeping it available
// for subsequent lookups within the same run.
func (c *Corpus) AddFile(f *File) {
	c.Files = append(c.Files, f)
}

func defaultProfileName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
