package model

import (
	"fmt"
	"math"
)

// Rate returns covered/valid. Nothing to cover counts as fully covered.
func Rate(covered, valid int) float64 {
	if valid == 0 {
		return 1.0
	}
	return float64(covered) / float64(valid)
}

// PercentString renders a rate in [0,1] as a whole percentage ("50%"),
// rounding down so a partially covered element never shows as 100%.
func PercentString(rate float64) string {
	// the epsilon absorbs representation error such as 0.29*100 = 28.999...
	return fmt.Sprintf("%d%%", int(math.Floor(rate*100+1e-9)))
}

// counter accumulates covered/valid pairs for lines and branches.
type counter struct {
	linesCovered    int
	linesValid      int
	branchesCovered int
	branchesValid   int
}

func (c *counter) addLine(l *Line) {
	c.linesValid++
	if l.Hits > 0 {
		c.linesCovered++
	}
	c.branchesCovered += l.CoveredBranches()
	c.branchesValid += l.ValidBranches()
}

func (c *counter) add(other counter) {
	c.linesCovered += other.linesCovered
	c.linesValid += other.linesValid
	c.branchesCovered += other.branchesCovered
	c.branchesValid += other.branchesValid
}
