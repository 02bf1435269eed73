package bundle

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/fileutil"
	"github.com/slicekit/profilectl/internal/profile"
)

// ErrNothingToCombine signals that the selection shares no hoistable
// properties, so no parent is worth synthesizing.
var ErrNothingToCombine = errors.New("selection has no common properties to combine")

// CombineResult reports what a combine run touched.
type CombineResult struct {
	ParentPath        string   `json:"parent_path"`
	ParentName        string   `json:"parent_name"`
	PropertiesHoisted int      `json:"properties_hoisted"`
	ProfilesUpdated   int      `json:"profiles_updated"`
	FilesRewritten    []string `json:"files_rewritten"`
}

// Combine factors the properties common to the selection into a new parent
// stanza written to its own file, and points every selected profile at it.
// Profiles keep their names and files; nothing is privatized.
func Combine(c *corpus.Corpus, selection []*profile.Profile, parentName string) (*CombineResult, error) {
	if parentName == "" {
		return nil, errors.New("combine requires a parent name")
	}
	if len(selection) < 2 {
		return nil, fmt.Errorf("combine requires at least two profiles, got %d", len(selection))
	}

	common := CommonProperties(selection)
	hoistedInherits := sharedInherits(selection)
	if len(common) == 0 && hoistedInherits == "" {
		return nil, ErrNothingToCombine
	}

	parent := profile.New(c.Type, parentName)
	for key, val := range common {
		parent.Properties[key] = val
	}
	if hoistedInherits != "" {
		parent.SetInherits(hoistedInherits)
	}

	parentPath := filepath.Join(c.Dir, parentName+corpus.ProfileExt)
	parent.File = parentPath
	parentFile := &corpus.File{Path: parentPath, Profiles: []*profile.Profile{parent}}
	if _, err := parentFile.Write(); err != nil {
		return nil, fmt.Errorf("failed to write parent profile %s: %w", parentPath, err)
	}
	c.AddFile(parentFile)

	result := &CombineResult{
		ParentPath:        parentPath,
		ParentName:        parentName,
		PropertiesHoisted: len(common),
		ProfilesUpdated:   len(selection),
		FilesRewritten:    []string{},
	}

	dirty := make(map[string]*corpus.File)
	for _, p := range selection {
		for key := range common {
			delete(p.Properties, key)
		}
		p.SetInherits(parentName)
		if f := c.FileOf(p); f != nil {
			dirty[f.Path] = f
		}
	}

	for _, path := range fileutil.MapKeysSorted(pathSet(dirty)) {
		wrote, err := dirty[path].Write()
		if err != nil {
			slog.Warn("failed to rewrite profile file", "path", path, "error", err)
			continue
		}
		if wrote {
			result.FilesRewritten = append(result.FilesRewritten, path)
		}
	}
	return result, nil
}

func pathSet(files map[string]*corpus.File) map[string]bool {
	out := make(map[string]bool, len(files))
	for path := range files {
		out[path] = true
	}
	return out
}
