package model

// Condition is the coverage record of one branch point on a line. It is a
// closed set: the only implementations are JumpCondition and SwitchCondition,
// so callers dispatch on it with a type switch.
type Condition interface {
	// CoveredBranches returns how many outcomes of the condition were taken.
	CoveredBranches() int
	// ValidBranches returns how many outcomes the condition has.
	ValidBranches() int

	isCondition()
}

// JumpCondition is a two-way branch (if/for/&&/||).
type JumpCondition struct {
	Number    int
	TrueHits  int64
	FalseHits int64
}

func (JumpCondition) isCondition() {}

// CoveredBranches counts the taken outcomes of the jump.
func (j JumpCondition) CoveredBranches() int {
	covered := 0
	if j.TrueHits > 0 {
		covered++
	}
	if j.FalseHits > 0 {
		covered++
	}
	return covered
}

// ValidBranches is always 2 for a jump.
func (j JumpCondition) ValidBranches() int {
	return 2
}

// SwitchCondition is a multi-way branch. The default arm counts as one
// outcome in addition to the explicit cases.
type SwitchCondition struct {
	Number      int
	DefaultHits int64
	CaseHits    []int64
}

func (SwitchCondition) isCondition() {}

// CoveredBranches counts the cases (default included) that were taken.
func (s SwitchCondition) CoveredBranches() int {
	covered := 0
	if s.DefaultHits > 0 {
		covered++
	}
	for _, h := range s.CaseHits {
		if h > 0 {
			covered++
		}
	}
	return covered
}

// ValidBranches is the number of explicit cases plus the default arm.
func (s SwitchCondition) ValidBranches() int {
	return len(s.CaseHits) + 1
}

// mergeCondition folds the hits of other into c when both describe the same
// branch point. ok is false when the two conditions are not comparable.
func mergeCondition(c, other Condition) (merged Condition, ok bool) {
	switch cur := c.(type) {
	case JumpCondition:
		o, isJump := other.(JumpCondition)
		if !isJump || o.Number != cur.Number {
			return c, false
		}
		cur.TrueHits += o.TrueHits
		cur.FalseHits += o.FalseHits
		return cur, true
	case SwitchCondition:
		o, isSwitch := other.(SwitchCondition)
		if !isSwitch || o.Number != cur.Number {
			return c, false
		}
		hits := make([]int64, max(len(cur.CaseHits), len(o.CaseHits)))
		copy(hits, cur.CaseHits)
		for i, h := range o.CaseHits {
			hits[i] += h
		}
		cur.CaseHits = hits
		cur.DefaultHits += o.DefaultHits
		return cur, true
	}
	return c, false
}
