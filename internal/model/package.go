package model

import (
	"maps"
	"slices"
)

// SourceFile groups the classes compiled from one source file. It is not
// emitted on its own; its classes are listed under the owning package.
type SourceFile struct {
	Name string

	classes map[string]*Class
}

// NewSourceFile creates an empty source file.
func NewSourceFile(name string) *SourceFile {
	return &SourceFile{Name: name, classes: make(map[string]*Class)}
}

// Class returns the class with the given name, creating it on first use.
func (sf *SourceFile) Class(name string) *Class {
	c, ok := sf.classes[name]
	if !ok {
		c = NewClass(name, sf.Name)
		sf.classes[name] = c
	}
	return c
}

// Classes returns the file's classes ordered by name.
func (sf *SourceFile) Classes() []*Class {
	out := make([]*Class, 0, len(sf.classes))
	for _, name := range slices.Sorted(maps.Keys(sf.classes)) {
		out = append(out, sf.classes[name])
	}
	return out
}

// Package holds the coverage of one package.
type Package struct {
	Name string

	files map[string]*SourceFile
}

// NewPackage creates an empty package.
func NewPackage(name string) *Package {
	return &Package{Name: name, files: make(map[string]*SourceFile)}
}

// SourceFile returns the source file with the given name, creating it on
// first use.
func (p *Package) SourceFile(name string) *SourceFile {
	sf, ok := p.files[name]
	if !ok {
		sf = NewSourceFile(name)
		p.files[name] = sf
	}
	return sf
}

// SourceFiles returns the package's source files ordered by name.
func (p *Package) SourceFiles() []*SourceFile {
	out := make([]*SourceFile, 0, len(p.files))
	for _, name := range slices.Sorted(maps.Keys(p.files)) {
		out = append(out, p.files[name])
	}
	return out
}

func (p *Package) count() counter {
	var cnt counter
	for _, sf := range p.files {
		for _, c := range sf.classes {
			cnt.add(c.count())
		}
	}
	return cnt
}

// LineRate is the fraction of the package's lines that were executed.
func (p *Package) LineRate() float64 {
	cnt := p.count()
	return Rate(cnt.linesCovered, cnt.linesValid)
}

// BranchRate is the fraction of the package's branch outcomes that were taken.
func (p *Package) BranchRate() float64 {
	cnt := p.count()
	return Rate(cnt.branchesCovered, cnt.branchesValid)
}

func (p *Package) merge(other *Package) {
	for name, osf := range other.files {
		sf := p.SourceFile(name)
		for cname, oc := range osf.classes {
			sf.Class(cname).merge(oc)
		}
	}
}
