// Package complexity supplies the cyclomatic complexity figures of the
// Cobertura report. Method values come from a chain of sources; class,
// package and project values are the average over every method whose
// complexity is known, the way Cobertura computes them.
package complexity

import (
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
)

// Source looks up the cyclomatic complexity of a single method.
type Source interface {
	MethodComplexity(class *model.Class, name, signature string) (int, bool)
}

// Calculator asks its sources in order and uses the first known value.
type Calculator struct {
	sources []Source
}

// NewCalculator creates a Calculator over the given sources.
func NewCalculator(sources ...Source) *Calculator {
	return &Calculator{sources: sources}
}

func (c *Calculator) lookup(class *model.Class, name, signature string) (int, bool) {
	for _, s := range c.sources {
		if ccn, ok := s.MethodComplexity(class, name, signature); ok {
			return ccn, true
		}
	}
	return 0, false
}

// MethodComplexity returns the method's complexity, or 0 when no source knows it.
func (c *Calculator) MethodComplexity(class *model.Class, name, signature string) int {
	ccn, _ := c.lookup(class, name, signature)
	return ccn
}

// ClassComplexity averages the known method complexities of class.
func (c *Calculator) ClassComplexity(class *model.Class) float64 {
	var acc average
	c.addClass(&acc, class)
	return acc.value()
}

// PackageComplexity averages the known method complexities of every class in pkg.
func (c *Calculator) PackageComplexity(pkg *model.Package) float64 {
	var acc average
	c.addPackage(&acc, pkg)
	return acc.value()
}

// ProjectComplexity averages the known method complexities of the whole project.
func (c *Calculator) ProjectComplexity(project *model.Project) float64 {
	var acc average
	for _, pkg := range project.Packages() {
		c.addPackage(&acc, pkg)
	}
	return acc.value()
}

func (c *Calculator) addPackage(acc *average, pkg *model.Package) {
	for _, sf := range pkg.SourceFiles() {
		for _, class := range sf.Classes() {
			c.addClass(acc, class)
		}
	}
}

func (c *Calculator) addClass(acc *average, class *model.Class) {
	for _, key := range class.MethodKeys() {
		name, signature, err := model.SplitMethodKey(key)
		if err != nil {
			continue
		}
		if ccn, ok := c.lookup(class, name, signature); ok {
			acc.sum += ccn
			acc.n++
		}
	}
}

type average struct {
	sum, n int
}

// value is 0 when nothing is known.
func (a average) value() float64 {
	if a.n == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.n)
}

// Recorded serves complexities stored on the model by the input reader.
type Recorded struct{}

func (Recorded) MethodComplexity(class *model.Class, name, signature string) (int, bool) {
	return class.RecordedComplexity(model.MethodKey(name, signature))
}
