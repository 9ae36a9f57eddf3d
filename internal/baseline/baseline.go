// Package baseline reads and writes BASELINE.toml, which pins the baseline
// build every group is diffed against.
package baseline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	cverrors "probecov/internal/errors"
)

// DeclarationFile is the default filename for baseline declarations
const DeclarationFile = "BASELINE.toml"

// Entry pins one group to a baseline build
type Entry struct {
	// Group is the agent group or service the baseline applies to
	Group string `toml:"group"`

	// Build is the build identifier of the baseline
	Build string `toml:"build"`

	// Inventory is the method inventory fingerprint of the baseline build
	Inventory string `toml:"inventory,omitempty"`

	// Model is the root-relative path of the baseline structural model
	Model string `toml:"model,omitempty"`

	// PinnedAt records when the baseline was pinned
	PinnedAt time.Time `toml:"pinned_at"`

	Note string `toml:"note,omitempty"`
}

// File represents the root structure of BASELINE.toml
type File struct {
	// Version is the schema version
	Version int `toml:"version"`

	Baselines []Entry `toml:"baseline"`
}

// Load parses a BASELINE.toml file. A missing file yields an empty declaration.
func Load(filePath string) (*File, error) {
	data, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return &File{Version: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(filePath), err)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, cverrors.New(cverrors.InvalidInput, "failed to parse "+filepath.Base(filePath), err)
	}
	if f.Version < 1 {
		f.Version = 1
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Save writes the declaration to filePath, creating the directory if needed
func (f *File) Save(filePath string) error {
	if err := f.Validate(); err != nil {
		return err
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(filePath), err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(filePath), err)
	}
	return nil
}

// Validate checks required fields and group uniqueness
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Baselines))
	for i, e := range f.Baselines {
		if e.Group == "" {
			return cverrors.Newf(cverrors.InvalidInput, "baseline %d: missing required 'group' field", i)
		}
		if e.Build == "" {
			return cverrors.Newf(cverrors.InvalidInput, "baseline %q: missing required 'build' field", e.Group)
		}
		if seen[e.Group] {
			return cverrors.Newf(cverrors.InvalidInput, "baseline %q declared twice", e.Group)
		}
		seen[e.Group] = true
	}
	return nil
}

// Get returns the baseline pinned for group
func (f *File) Get(group string) (Entry, bool) {
	for _, e := range f.Baselines {
		if e.Group == group {
			return e, true
		}
	}
	return Entry{}, false
}

// Pin sets the baseline of e.Group, replacing any previous pin. A zero
// PinnedAt is set to now. It reports whether an existing pin was replaced.
func (f *File) Pin(e Entry) (bool, error) {
	if e.Group == "" || e.Build == "" {
		return false, cverrors.Newf(cverrors.InvalidInput, "baseline pin needs a group and a build")
	}
	if e.PinnedAt.IsZero() {
		e.PinnedAt = time.Now().UTC().Truncate(time.Second)
	}

	replaced := false
	for i := range f.Baselines {
		if f.Baselines[i].Group == e.Group {
			f.Baselines[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		f.Baselines = append(f.Baselines, e)
	}
	sort.Slice(f.Baselines, func(i, j int) bool {
		return f.Baselines[i].Group < f.Baselines[j].Group
	})
	return replaced, nil
}

// Unpin removes the baseline of group and reports whether one existed
func (f *File) Unpin(group string) bool {
	for i, e := range f.Baselines {
		if e.Group == group {
			f.Baselines = append(f.Baselines[:i], f.Baselines[i+1:]...)
			return true
		}
	}
	return false
}
