package bundle

import (
	"probecov/internal/calc"
	cverrors "probecov/internal/errors"
)

// Verify checks that every parent count equals the sum of its children and
// that every count is well formed.
func Verify(b *BundleCounter) error {
	var pkgSum, methodSum, classSum calc.Count
	for _, pkg := range b.Packages {
		var clsSum, pkgMethods calc.Count
		for _, cls := range pkg.Classes {
			var mSum calc.Count
			for _, m := range cls.Methods {
				if !m.Count.Valid() {
					return cverrors.Newf(cverrors.InternalError, "%s.%s%s: malformed count %s", cls.Path, m.Name, m.Desc, m.Count)
				}
				mSum = mSum.Add(m.Count)
			}
			if mSum != cls.Count {
				return invalid(cls.Path, cls.Count, mSum)
			}
			clsSum = clsSum.Add(cls.Count)
			pkgMethods = pkgMethods.Add(cls.MethodCount)
		}
		if clsSum != pkg.Count {
			return invalid(pkg.Name, pkg.Count, clsSum)
		}
		if pkgMethods != pkg.MethodCount {
			return invalid(pkg.Name+" methods", pkg.MethodCount, pkgMethods)
		}
		pkgSum = pkgSum.Add(pkg.Count)
		methodSum = methodSum.Add(pkg.MethodCount)
		classSum = classSum.Add(pkg.ClassCount)
	}
	if pkgSum != b.Count {
		return invalid(b.Name, b.Count, pkgSum)
	}
	if methodSum != b.MethodCount {
		return invalid(b.Name+" methods", b.MethodCount, methodSum)
	}
	if classSum != b.ClassCount {
		return invalid(b.Name+" classes", b.ClassCount, classSum)
	}
	return nil
}

func invalid(subject string, have, sum calc.Count) error {
	return cverrors.Newf(cverrors.InternalError, "%s: count %s does not match children %s", subject, have, sum)
}
