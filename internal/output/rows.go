package output

import (
	"probecov/internal/bundle"
	"probecov/internal/calc"
)

// Depth limits how far Rows descends
type Depth int

const (
	DepthBundle Depth = iota
	DepthPackage
	DepthClass
	DepthMethod
)

// ParseDepth maps a flag value to a depth; unknown values mean DepthPackage
func ParseDepth(s string) Depth {
	switch s {
	case "bundle":
		return DepthBundle
	case "class":
		return DepthClass
	case "method":
		return DepthMethod
	default:
		return DepthPackage
	}
}

type rowKey struct {
	kind RowKind
	name string
}

// Rows flattens b in tree order down to depth. prev may be nil.
func Rows(b *bundle.BundleCounter, prev *bundle.BundleCounter, depth Depth) []Row {
	var previous map[rowKey]calc.Count
	if prev != nil {
		previous = make(map[rowKey]calc.Count)
		for _, r := range Rows(prev, nil, depth) {
			previous[rowKey{r.Kind, r.Name}] = calc.NewCount(r.Covered, r.Total)
		}
	}

	var rows []Row
	add := func(kind RowKind, name, parent string, c calc.Count) {
		row := Row{
			Kind:    kind,
			Name:    name,
			Parent:  parent,
			Covered: c.Covered,
			Total:   c.Total,
			Percent: RoundFloat(c.Percentage()),
		}
		if p, ok := previous[rowKey{kind, name}]; ok {
			p := p
			row.Previous = &p
			row.Arrow = calc.Arrow(p, c)
		}
		rows = append(rows, row)
	}

	add(RowBundle, b.Name, "", b.Count)
	if depth < DepthPackage {
		return rows
	}
	for _, pkg := range b.Packages {
		add(RowPackage, pkg.Name, b.Name, pkg.Count)
		if depth < DepthClass {
			continue
		}
		for _, cls := range pkg.Classes {
			add(RowClass, cls.Path, pkg.Name, cls.Count)
			if depth < DepthMethod {
				continue
			}
			for i := range cls.Methods {
				m := &cls.Methods[i]
				add(RowMethod, cls.Path+"."+m.Label(), cls.Path, m.Count)
			}
		}
	}
	return rows
}
