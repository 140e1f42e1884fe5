package model

import "fmt"

// Line is the coverage record of a single source line inside a class.
type Line struct {
	Number int
	Hits   int64
	// MethodKey is the "name(signature)" of the method the line belongs to,
	// empty for lines outside any method body.
	MethodKey string

	conditions []Condition
}

// Hit records n more executions of the line.
func (l *Line) Hit(n int64) {
	if n > 0 {
		l.Hits += n
	}
}

// AddCondition appends a branch point. Conditions keep insertion order and
// are addressed by position.
func (l *Line) AddCondition(c Condition) {
	l.conditions = append(l.conditions, c)
}

// HasBranch reports whether the line carries at least one branch point.
func (l *Line) HasBranch() bool {
	return len(l.conditions) > 0
}

// ConditionCount returns the number of branch points on the line.
func (l *Line) ConditionCount() int {
	return len(l.conditions)
}

// ConditionAt returns the branch point at position i.
func (l *Line) ConditionAt(i int) Condition {
	return l.conditions[i]
}

// ConditionCoverageAt returns the coverage of the branch point at position i
// as a percentage string.
func (l *Line) ConditionCoverageAt(i int) string {
	c := l.conditions[i]
	return PercentString(Rate(c.CoveredBranches(), c.ValidBranches()))
}

// CoveredBranches sums the taken outcomes of every branch point.
func (l *Line) CoveredBranches() int {
	n := 0
	for _, c := range l.conditions {
		n += c.CoveredBranches()
	}
	return n
}

// ValidBranches sums the possible outcomes of every branch point.
func (l *Line) ValidBranches() int {
	n := 0
	for _, c := range l.conditions {
		n += c.ValidBranches()
	}
	return n
}

// BranchRate is the fraction of branch outcomes taken on this line.
func (l *Line) BranchRate() float64 {
	return Rate(l.CoveredBranches(), l.ValidBranches())
}

// ConditionCoverage summarises the line's branches as "50% (1/2)". A line
// without branches reads "100% (0/0)".
func (l *Line) ConditionCoverage() string {
	covered, valid := l.CoveredBranches(), l.ValidBranches()
	return fmt.Sprintf("%s (%d/%d)", PercentString(Rate(covered, valid)), covered, valid)
}

// merge folds other into l. Branch points are matched by position; the ones
// that do not line up are appended.
func (l *Line) merge(other *Line) {
	l.Hit(other.Hits)
	if l.MethodKey == "" {
		l.MethodKey = other.MethodKey
	}
	for i, oc := range other.conditions {
		if i < len(l.conditions) {
			if merged, ok := mergeCondition(l.conditions[i], oc); ok {
				l.conditions[i] = merged
				continue
			}
		}
		l.conditions = append(l.conditions, oc)
	}
}
