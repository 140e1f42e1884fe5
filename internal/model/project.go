// Package model is the in-memory coverage tree the reporters read from:
// project, packages, source files, classes, methods, lines and branch
// conditions. Rates are derived from the recorded hits on demand.
package model

import (
	"maps"
	"slices"
)

// Project is the root of the coverage tree.
type Project struct {
	packages   map[string]*Package
	sourceDirs []string
}

// NewProject creates an empty project.
func NewProject() *Project {
	return &Project{packages: make(map[string]*Package)}
}

// Package returns the package with the given name, creating it on first use.
func (p *Project) Package(name string) *Package {
	pkg, ok := p.packages[name]
	if !ok {
		pkg = NewPackage(name)
		p.packages[name] = pkg
	}
	return pkg
}

// Packages returns the project's packages ordered by name.
func (p *Project) Packages() []*Package {
	out := make([]*Package, 0, len(p.packages))
	for _, name := range slices.Sorted(maps.Keys(p.packages)) {
		out = append(out, p.packages[name])
	}
	return out
}

// AddSourceDirectory remembers a source root declared by an input.
// Duplicates are ignored and the first-seen order is kept.
func (p *Project) AddSourceDirectory(dir string) {
	if dir == "" || slices.Contains(p.sourceDirs, dir) {
		return
	}
	p.sourceDirs = append(p.sourceDirs, dir)
}

// SourceDirectories returns the source roots declared by the inputs.
func (p *Project) SourceDirectories() []string {
	return slices.Clone(p.sourceDirs)
}

func (p *Project) count() counter {
	var cnt counter
	for _, pkg := range p.packages {
		cnt.add(pkg.count())
	}
	return cnt
}

// LineRate is the fraction of all lines that were executed.
func (p *Project) LineRate() float64 {
	cnt := p.count()
	return Rate(cnt.linesCovered, cnt.linesValid)
}

// BranchRate is the fraction of all branch outcomes that were taken.
func (p *Project) BranchRate() float64 {
	cnt := p.count()
	return Rate(cnt.branchesCovered, cnt.branchesValid)
}

// NumberOfCoveredLines counts the lines executed at least once.
func (p *Project) NumberOfCoveredLines() int { return p.count().linesCovered }

// NumberOfValidLines counts every tracked line.
func (p *Project) NumberOfValidLines() int { return p.count().linesValid }

// NumberOfCoveredBranches counts the branch outcomes taken.
func (p *Project) NumberOfCoveredBranches() int { return p.count().branchesCovered }

// NumberOfValidBranches counts every branch outcome.
func (p *Project) NumberOfValidBranches() int { return p.count().branchesValid }

// Merge folds the coverage of other into p. Packages, source files and
// classes are matched by name and lines by number; hits add up.
func (p *Project) Merge(other *Project) {
	if other == nil {
		return
	}
	for name, opkg := range other.packages {
		p.Package(name).merge(opkg)
	}
	for _, dir := range other.sourceDirs {
		p.AddSourceDirectory(dir)
	}
}
