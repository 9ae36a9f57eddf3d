package model

import (
	"sort"

	cverrors "probecov/internal/errors"
)

// NewPackageTree groups classes into packages, sorts packages and classes by name,
// fills missing owner classes and probe counts, and computes the total probe count.
func NewPackageTree(build string, classes []ClassInfo) *PackageTree {
	byPackage := make(map[string][]ClassInfo)
	for _, c := range classes {
		c = normalizeClass(c)
		byPackage[c.Package()] = append(byPackage[c.Package()], c)
	}

	tree := &PackageTree{Build: build, Packages: make([]PackageInfo, 0, len(byPackage))}
	for name, group := range byPackage {
		sort.SliceStable(group, func(i, j int) bool { return group[i].Path < group[j].Path })
		tree.Packages = append(tree.Packages, PackageInfo{Name: name, Classes: group})
		for _, c := range group {
			tree.TotalCount += int64(c.ProbeCount)
		}
	}
	sort.Slice(tree.Packages, func(i, j int) bool { return tree.Packages[i].Name < tree.Packages[j].Name })
	return tree
}

func normalizeClass(c ClassInfo) ClassInfo {
	methods := make([]Method, len(c.Methods))
	derived := 0
	for i, m := range c.Methods {
		if m.OwnerClass == "" {
			m.OwnerClass = c.Path
		}
		if !m.Probes.IsEmpty() && m.Probes.Last+1 > derived {
			derived = m.Probes.Last + 1
		}
		methods[i] = m
	}
	c.Methods = methods
	if c.ProbeCount == 0 {
		c.ProbeCount = derived
	}
	return c
}

// Classes returns every class in package then class order.
func (t *PackageTree) Classes() []ClassInfo {
	var classes []ClassInfo
	for _, pkg := range t.Packages {
		classes = append(classes, pkg.Classes...)
	}
	return classes
}

// ClassCount returns the number of classes in the tree.
func (t *PackageTree) ClassCount() int {
	n := 0
	for _, pkg := range t.Packages {
		n += len(pkg.Classes)
	}
	return n
}

// Methods flattens the tree into its method inventory in deterministic order.
func (t *PackageTree) Methods() []Method {
	var methods []Method
	for _, pkg := range t.Packages {
		for _, c := range pkg.Classes {
			methods = append(methods, c.Methods...)
		}
	}
	return methods
}

// Index maps full class names to classes for probe lookup.
type Index struct {
	classes map[string]*ClassInfo
}

// Index builds the class lookup. Later duplicates win; Validate reports them.
func (t *PackageTree) Index() *Index {
	ix := &Index{classes: make(map[string]*ClassInfo, t.ClassCount())}
	for p := range t.Packages {
		pkg := &t.Packages[p]
		for c := range pkg.Classes {
			ix.classes[pkg.Classes[c].Path] = &pkg.Classes[c]
		}
	}
	return ix
}

// Class looks up a class by its full name.
func (ix *Index) Class(name string) (*ClassInfo, bool) {
	c, ok := ix.classes[name]
	return c, ok
}

// Len returns the number of indexed classes.
func (ix *Index) Len() int {
	return len(ix.classes)
}

// Validate checks the tree invariants: unique class paths, methods owned by the
// class they are filed under, method ranges tiling [0, ProbeCount) in declaration
// order, and TotalCount equal to the sum of classes.
func (t *PackageTree) Validate() error {
	seen := make(map[string]bool)
	var total int64
	for _, pkg := range t.Packages {
		for _, c := range pkg.Classes {
			if seen[c.Path] {
				return cverrors.Newf(cverrors.InvalidModel, "duplicate class %q", c.Path)
			}
			seen[c.Path] = true
			if c.Package() != pkg.Name {
				return cverrors.Newf(cverrors.InvalidModel, "class %q filed under package %q", c.Path, pkg.Name)
			}
			for _, m := range c.Methods {
				if m.OwnerClass != c.Path {
					return cverrors.Newf(cverrors.InvalidModel, "%s filed under class %q", m.Key(), c.Path)
				}
			}
			if err := c.ValidateRanges(); err != nil {
				return err
			}
			total += int64(c.ProbeCount)
		}
	}
	if total != t.TotalCount {
		return cverrors.Newf(cverrors.InvalidModel, "total count %d does not match class probe sum %d", t.TotalCount, total)
	}
	return nil
}

// ValidateRanges checks that non-empty method ranges are in bounds, do not overlap,
// and together cover the whole probe vector. Empty ranges may appear anywhere
// within [0, ProbeCount].
func (c ClassInfo) ValidateRanges() error {
	next := 0
	for _, m := range c.Methods {
		r := m.Probes
		if r.IsEmpty() {
			if r.First < 0 || r.First > c.ProbeCount {
				return cverrors.Newf(cverrors.InvalidModel, "%s: empty range at %d outside %d probes", m.Key(), r.First, c.ProbeCount)
			}
			continue
		}
		switch {
		case r.First < next:
			return cverrors.Newf(cverrors.InvalidModel, "%s: range [%d,%d] overlaps previous method", m.Key(), r.First, r.Last)
		case r.First > next:
			return cverrors.Newf(cverrors.InvalidModel, "%s: probes [%d,%d] belong to no method", c.Path, next, r.First-1)
		}
		next = r.Last + 1
	}
	if next > c.ProbeCount {
		return cverrors.Newf(cverrors.InvalidModel, "%s: methods use %d probes, class declares %d", c.Path, next, c.ProbeCount)
	}
	if next < c.ProbeCount {
		return cverrors.Newf(cverrors.InvalidModel, "%s: probes [%d,%d] belong to no method", c.Path, next, c.ProbeCount-1)
	}
	return nil
}
