// Package bundle rolls merged probe data up through the structural model into a
// bundle > package > class > method counter tree.
package bundle

import (
	"probecov/internal/calc"
	cverrors "probecov/internal/errors"
	"probecov/internal/model"
)

// Counter is implemented by the four counter levels only.
type Counter interface {
	Label() string
	Coverage() calc.Count
	counter()
}

// MethodCounter is the coverage of one method.
type MethodCounter struct {
	Name  string     `json:"name"`
	Desc  string     `json:"desc"`
	Decl  string     `json:"decl,omitempty"`
	Count calc.Count `json:"count"`
}

// ClassCounter is the coverage of one class and its methods.
type ClassCounter struct {
	Path        string          `json:"path"`
	Name        string          `json:"name"`
	Count       calc.Count      `json:"count"`
	MethodCount calc.Count      `json:"methodCount"`
	Methods     []MethodCounter `json:"methods"`
}

// PackageCounter is the coverage of one package.
type PackageCounter struct {
	Name        string         `json:"name"`
	Count       calc.Count     `json:"count"`
	ClassCount  calc.Count     `json:"classCount"`
	MethodCount calc.Count     `json:"methodCount"`
	Classes     []ClassCounter `json:"classes"`
}

// BundleCounter is the root of an aggregation result.
type BundleCounter struct {
	Name         string             `json:"name"`
	Count        calc.Count         `json:"count"`
	MethodCount  calc.Count         `json:"methodCount"`
	ClassCount   calc.Count         `json:"classCount"`
	PackageCount calc.Count         `json:"packageCount"`
	Packages     []PackageCounter   `json:"packages"`
	Warnings     []cverrors.Warning `json:"warnings,omitempty"`
}

func (m *MethodCounter) Label() string        { return m.Name + m.Desc }
func (m *MethodCounter) Coverage() calc.Count { return m.Count }
func (*MethodCounter) counter()               {}

func (c *ClassCounter) Label() string        { return c.Path }
func (c *ClassCounter) Coverage() calc.Count { return c.Count }
func (*ClassCounter) counter()               {}

func (p *PackageCounter) Label() string        { return p.Name }
func (p *PackageCounter) Coverage() calc.Count { return p.Count }
func (*PackageCounter) counter()               {}

func (b *BundleCounter) Label() string        { return b.Name }
func (b *BundleCounter) Coverage() calc.Count { return b.Count }
func (*BundleCounter) counter()               {}

// Class finds a class counter by its full path.
func (b *BundleCounter) Class(path string) (*ClassCounter, bool) {
	pkgName := model.PackageOf(path)
	for p := range b.Packages {
		if b.Packages[p].Name != pkgName {
			continue
		}
		for c := range b.Packages[p].Classes {
			if b.Packages[p].Classes[c].Path == path {
				return &b.Packages[p].Classes[c], true
			}
		}
	}
	return nil, false
}

// MethodCounts flattens the tree into per-method counts.
func (b *BundleCounter) MethodCounts() map[model.MethodKey]calc.Count {
	out := make(map[model.MethodKey]calc.Count)
	for _, pkg := range b.Packages {
		for _, c := range pkg.Classes {
			for _, m := range c.Methods {
				out[model.MethodKey{OwnerClass: c.Path, Name: m.Name, Desc: m.Desc}] = m.Count
			}
		}
	}
	return out
}

// Walk visits every counter depth first, parents before children.
func (b *BundleCounter) Walk(fn func(Counter)) {
	fn(b)
	for p := range b.Packages {
		pkg := &b.Packages[p]
		fn(pkg)
		for c := range pkg.Classes {
			cls := &pkg.Classes[c]
			fn(cls)
			for m := range cls.Methods {
				fn(&cls.Methods[m])
			}
		}
	}
}
