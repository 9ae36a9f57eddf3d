// Package model describes the static structure of one build: packages, classes and
// methods, each method owning a contiguous range of its class's probe vector.
package model

import (
	"regexp"
	"strconv"
	"strings"
)

// ProbeRange is an inclusive [First, Last] slice of a class probe vector.
// A range with Last < First is empty (abstract or native methods).
type ProbeRange struct {
	First int `json:"first" yaml:"first" toml:"first"`
	Last  int `json:"last" yaml:"last" toml:"last"`
}

// EmptyRange returns a zero-length range positioned at index at.
func EmptyRange(at int) ProbeRange {
	return ProbeRange{First: at, Last: at - 1}
}

// Len returns the number of probes in the range.
func (r ProbeRange) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// IsEmpty reports whether the range holds no probes.
func (r ProbeRange) IsEmpty() bool {
	return r.Len() == 0
}

// MethodKey is the identity of a method across builds.
type MethodKey struct {
	OwnerClass string `json:"ownerClass"`
	Name       string `json:"name"`
	Desc       string `json:"desc"`
}

func (k MethodKey) String() string {
	return k.OwnerClass + "." + k.Name + k.Desc
}

// Less orders keys by owner, name, then descriptor.
func (k MethodKey) Less(other MethodKey) bool {
	if k.OwnerClass != other.OwnerClass {
		return k.OwnerClass < other.OwnerClass
	}
	if k.Name != other.Name {
		return k.Name < other.Name
	}
	return k.Desc < other.Desc
}

// Method is one method of a class in a given build.
type Method struct {
	OwnerClass   string            `json:"ownerClass" yaml:"ownerClass" toml:"ownerClass"`
	Name         string            `json:"name" yaml:"name" toml:"name"`
	Desc         string            `json:"desc" yaml:"desc" toml:"desc"`
	Decl         string            `json:"decl,omitempty" yaml:"decl,omitempty" toml:"decl,omitempty"`
	Hash         string            `json:"hash,omitempty" yaml:"hash,omitempty" toml:"hash,omitempty"`
	Probes       ProbeRange        `json:"probes" yaml:"probes" toml:"probes"`
	LambdaHashes map[string]string `json:"lambdaHashes,omitempty" yaml:"lambdaHashes,omitempty" toml:"lambdaHashes,omitempty"`
}

// Key returns the identity of the method.
func (m Method) Key() MethodKey {
	return MethodKey{OwnerClass: m.OwnerClass, Name: m.Name, Desc: m.Desc}
}

// lambda$<enclosing>$<n>, as emitted by javac for lambda bodies.
var lambdaNameRegex = regexp.MustCompile(`^lambda\$(.+)\$(\d+)$`)

// IsLambda reports whether the method is a synthetic lambda body.
func (m Method) IsLambda() bool {
	return lambdaNameRegex.MatchString(m.Name)
}

// Enclosing returns the name of the method a lambda body was generated from,
// or "" for regular methods.
func (m Method) Enclosing() string {
	match := lambdaNameRegex.FindStringSubmatch(m.Name)
	if match == nil {
		return ""
	}
	return match[1]
}

// LambdaIndex returns the synthetic index of a lambda body, or -1.
func (m Method) LambdaIndex() int {
	match := lambdaNameRegex.FindStringSubmatch(m.Name)
	if match == nil {
		return -1
	}
	n, err := strconv.Atoi(match[2])
	if err != nil {
		return -1
	}
	return n
}

// ClassInfo is one class with its probe vector length and declared methods.
type ClassInfo struct {
	// Path is the fully qualified, slash separated class name (com/example/Foo).
	Path       string   `json:"path" yaml:"path" toml:"path"`
	ProbeCount int      `json:"probeCount" yaml:"probeCount" toml:"probeCount"`
	Methods    []Method `json:"methods" yaml:"methods" toml:"methods"`
}

// Package returns the package part of the class path.
func (c ClassInfo) Package() string {
	return PackageOf(c.Path)
}

// SimpleName returns the class name without its package.
func (c ClassInfo) SimpleName() string {
	return SimpleNameOf(c.Path)
}

// PackageOf returns the substring before the last '/', or "" for the default package.
func PackageOf(className string) string {
	i := strings.LastIndexByte(className, '/')
	if i < 0 {
		return ""
	}
	return className[:i]
}

// SimpleNameOf returns the substring after the last '/'.
func SimpleNameOf(className string) string {
	return className[strings.LastIndexByte(className, '/')+1:]
}

// PackageInfo groups the classes of one package.
type PackageInfo struct {
	Name    string      `json:"name"`
	Classes []ClassInfo `json:"classes"`
}

// PackageTree is the structural model of one build.
type PackageTree struct {
	Build      string        `json:"build,omitempty"`
	TotalCount int64         `json:"totalCount"`
	Packages   []PackageInfo `json:"packages"`
}
