package model

import "fmt"

// Class holds the coverage of one class (for Go inputs, one source file).
// It owns every line it tracks; each method owns the subset of those lines
// whose MethodKey matches.
type Class struct {
	Name           string
	SourceFileName string

	methods      map[string]struct{}
	complexities map[string]int
	lines        map[int]*Line
}

// NewClass creates an empty class.
func NewClass(name, sourceFileName string) *Class {
	return &Class{
		Name:           name,
		SourceFileName: sourceFileName,
		methods:        make(map[string]struct{}),
		complexities:   make(map[string]int),
		lines:          make(map[int]*Line),
	}
}

// AddMethod registers a "name(signature)" method key. Registering the same
// key twice is a no-op.
func (c *Class) AddMethod(key string) error {
	if _, _, err := SplitMethodKey(key); err != nil {
		return fmt.Errorf("class %s: %w", c.Name, err)
	}
	c.methods[key] = struct{}{}
	return nil
}

// RecordComplexity stores a cyclomatic complexity reported by the input for a
// method of this class.
func (c *Class) RecordComplexity(key string, ccn int) {
	c.complexities[key] = ccn
}

// RecordedComplexity returns the complexity stored by RecordComplexity.
func (c *Class) RecordedComplexity(key string) (int, bool) {
	ccn, ok := c.complexities[key]
	return ccn, ok
}

// AddLine returns the line with the given number, creating it on first use.
// A non-empty methodKey attributes the line to that method and registers the
// method if needed.
func (c *Class) AddLine(number int, methodKey string) (*Line, error) {
	if methodKey != "" {
		if err := c.AddMethod(methodKey); err != nil {
			return nil, err
		}
	}
	l, ok := c.lines[number]
	if !ok {
		l = &Line{Number: number, MethodKey: methodKey}
		c.lines[number] = l
	} else if l.MethodKey == "" {
		l.MethodKey = methodKey
	}
	return l, nil
}

// Line returns the line with the given number, or nil.
func (c *Class) Line(number int) *Line {
	return c.lines[number]
}

// MethodKeys returns the registered method keys in no particular order.
func (c *Class) MethodKeys() []string {
	keys := make([]string, 0, len(c.methods))
	for k := range c.methods {
		keys = append(keys, k)
	}
	return keys
}

// Lines returns every line of the class in no particular order.
func (c *Class) Lines() []*Line {
	lines := make([]*Line, 0, len(c.lines))
	for _, l := range c.lines {
		lines = append(lines, l)
	}
	return lines
}

// MethodLines returns the lines attributed to the given method key.
func (c *Class) MethodLines(key string) []*Line {
	var lines []*Line
	for _, l := range c.lines {
		if l.MethodKey == key {
			lines = append(lines, l)
		}
	}
	return lines
}

func (c *Class) count() counter {
	var cnt counter
	for _, l := range c.lines {
		cnt.addLine(l)
	}
	return cnt
}

func (c *Class) methodCount(key string) counter {
	var cnt counter
	for _, l := range c.MethodLines(key) {
		cnt.addLine(l)
	}
	return cnt
}

// LineRate is the fraction of the class's lines that were executed.
func (c *Class) LineRate() float64 {
	cnt := c.count()
	return Rate(cnt.linesCovered, cnt.linesValid)
}

// BranchRate is the fraction of the class's branch outcomes that were taken.
func (c *Class) BranchRate() float64 {
	cnt := c.count()
	return Rate(cnt.branchesCovered, cnt.branchesValid)
}

// MethodLineRate is LineRate restricted to one method.
func (c *Class) MethodLineRate(key string) float64 {
	cnt := c.methodCount(key)
	return Rate(cnt.linesCovered, cnt.linesValid)
}

// MethodBranchRate is BranchRate restricted to one method.
func (c *Class) MethodBranchRate(key string) float64 {
	cnt := c.methodCount(key)
	return Rate(cnt.branchesCovered, cnt.branchesValid)
}

// merge folds other into c.
func (c *Class) merge(other *Class) {
	if c.SourceFileName == "" {
		c.SourceFileName = other.SourceFileName
	}
	for k := range other.methods {
		c.methods[k] = struct{}{}
	}
	for k, v := range other.complexities {
		if _, ok := c.complexities[k]; !ok {
			c.complexities[k] = v
		}
	}
	for n, ol := range other.lines {
		if l, ok := c.lines[n]; ok {
			l.merge(ol)
			continue
		}
		cp := *ol
		cp.conditions = append([]Condition(nil), ol.conditions...)
		c.lines[n] = &cp
	}
}
