package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	cverrors "probecov/internal/errors"
)

// File is the on-disk form of a structural model.
type File struct {
	Build   string      `json:"build,omitempty" yaml:"build,omitempty" toml:"build,omitempty"`
	Classes []ClassInfo `json:"classes" yaml:"classes" toml:"classes"`
}

// fileModel mirrors File on disk. A method written without a probes entry owns
// no probes, as for abstract and interface methods.
type fileModel struct {
	Build   string      `json:"build,omitempty" yaml:"build,omitempty" toml:"build,omitempty"`
	Classes []fileClass `json:"classes" yaml:"classes" toml:"classes"`
}

type fileClass struct {
	Path       string       `json:"path" yaml:"path" toml:"path"`
	ProbeCount int          `json:"probeCount" yaml:"probeCount" toml:"probeCount"`
	Methods    []fileMethod `json:"methods" yaml:"methods" toml:"methods"`
}

type fileMethod struct {
	OwnerClass   string            `json:"ownerClass" yaml:"ownerClass" toml:"ownerClass"`
	Name         string            `json:"name" yaml:"name" toml:"name"`
	Desc         string            `json:"desc" yaml:"desc" toml:"desc"`
	Decl         string            `json:"decl" yaml:"decl" toml:"decl"`
	Hash         string            `json:"hash" yaml:"hash" toml:"hash"`
	Probes       *ProbeRange       `json:"probes" yaml:"probes" toml:"probes"`
	LambdaHashes map[string]string `json:"lambdaHashes" yaml:"lambdaHashes" toml:"lambdaHashes"`
}

func (f fileModel) file() *File {
	out := &File{Build: f.Build, Classes: make([]ClassInfo, len(f.Classes))}
	for i, c := range f.Classes {
		info := ClassInfo{Path: c.Path, ProbeCount: c.ProbeCount, Methods: make([]Method, len(c.Methods))}
		next := 0
		for j, m := range c.Methods {
			r := EmptyRange(next)
			if m.Probes != nil {
				r = *m.Probes
			}
			if !r.IsEmpty() {
				next = r.Last + 1
			}
			info.Methods[j] = Method{
				OwnerClass:   m.OwnerClass,
				Name:         m.Name,
				Desc:         m.Desc,
				Decl:         m.Decl,
				Hash:         m.Hash,
				Probes:       r,
				LambdaHashes: m.LambdaHashes,
			}
		}
		out.Classes[i] = info
	}
	return out
}

// LoadFile reads a structural model from a .json, .yaml/.yml or .toml file
// and returns the grouped package tree.
func LoadFile(path string) (*PackageTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", path, err)
	}

	f, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, cverrors.New(cverrors.InvalidInput, "failed to parse model "+path, err)
	}
	return NewPackageTree(f.Build, f.Classes), nil
}

// Decode parses model bytes according to the file extension.
func Decode(data []byte, ext string) (*File, error) {
	var f fileModel
	switch strings.ToLower(ext) {
	case ".json", "":
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported model format %q", ext)
	}
	return f.file(), nil
}
