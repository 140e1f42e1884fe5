package cobertura

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser"
	report "github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reporter/cobertura"
)

// conditionCoverageRegex captures the "(covered/valid)" tail of a
// condition-coverage attribute such as "50% (1/2)".
var conditionCoverageRegex = regexp.MustCompile(`\((\d+)/(\d+)\)\s*$`)

const conditionTypeSwitch = "switch"

type processingOrchestrator struct {
	config parser.ParserConfig
}

func newProcessingOrchestrator(config parser.ParserConfig) *processingOrchestrator {
	return &processingOrchestrator{config: config}
}

func (o *processingOrchestrator) process(ctx context.Context, doc *report.Coverage) (*model.Project, error) {
	project := model.NewProject()
	for _, src := range doc.Sources.Source {
		project.AddSourceDirectory(strings.TrimSpace(src.Path))
	}

	for _, pkg := range doc.Packages.Package {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !o.config.PackageFilters().IsElementIncludedInReport(pkg.Name) {
			continue
		}
		for _, cls := range pkg.Classes.Class {
			if !o.config.FileFilters().IsElementIncludedInReport(cls.Filename) ||
				!o.config.ClassFilters().IsElementIncludedInReport(cls.Name) {
				continue
			}
			class := project.Package(pkg.Name).SourceFile(cls.Filename).Class(cls.Name)
			if err := fillClass(class, cls); err != nil {
				return nil, fmt.Errorf("package %s, class %s: %w", pkg.Name, cls.Name, err)
			}
		}
	}
	return project, nil
}

// fillClass copies methods and lines of cls into class. The class-level
// <lines> hold the hits; method <lines> only tell which method owns a line,
// unless a line appears nowhere else.
func fillClass(class *model.Class, cls report.Class) error {
	owner := make(map[int]string)
	for _, m := range cls.Methods.Method {
		key := model.MethodKey(m.Name, m.Signature)
		if err := class.AddMethod(key); err != nil {
			return err
		}
		if ccn, ok := parseComplexity(m.Complexity); ok {
			class.RecordComplexity(key, ccn)
		}
		for _, l := range m.Lines.Line {
			number, err := parseLineNumber(l.Number)
			if err != nil {
				return err
			}
			if _, taken := owner[number]; !taken {
				owner[number] = key
			}
		}
	}

	seen := make(map[int]bool)
	for _, l := range cls.Lines.Line {
		number, err := addLine(class, l, owner)
		if err != nil {
			return err
		}
		seen[number] = true
	}
	for _, m := range cls.Methods.Method {
		for _, l := range m.Lines.Line {
			number, _ := parseLineNumber(l.Number)
			if seen[number] {
				continue
			}
			if _, err := addLine(class, l, owner); err != nil {
				return err
			}
			seen[number] = true
		}
	}
	return nil
}

func addLine(class *model.Class, l report.Line, owner map[int]string) (int, error) {
	number, err := parseLineNumber(l.Number)
	if err != nil {
		return 0, err
	}
	hits, err := strconv.ParseInt(strings.TrimSpace(l.Hits), 10, 64)
	if err != nil || hits < 0 {
		return 0, fmt.Errorf("%w: line %d has hits %q", ErrInvalidReport, number, l.Hits)
	}
	line, err := class.AddLine(number, owner[number])
	if err != nil {
		return 0, err
	}
	line.Hit(hits)
	for _, c := range lineConditions(l) {
		line.AddCondition(c)
	}
	return number, nil
}

func parseLineNumber(s string) (int, error) {
	number, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || number < 1 {
		return 0, fmt.Errorf("%w: line number %q", ErrInvalidReport, s)
	}
	return number, nil
}

// parseComplexity accepts integer and decimal values; empty or NaN means unknown.
func parseComplexity(s string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(math.Round(v)), true
}

// lineConditions rebuilds the branch points of a line. The XML only keeps
// which outcomes were taken, so every taken outcome gets one hit. A switch
// learns its number of outcomes from the line's "(covered/valid)" totals.
func lineConditions(l report.Line) []model.Condition {
	covered, valid, hasTotals := branchTotals(l.ConditionCoverage)
	conds := l.Conditions.Condition
	if len(conds) == 0 {
		if l.Branch != "true" || !hasTotals || valid == 0 {
			return nil
		}
		return synthesizeConditions(covered, valid)
	}

	out := make([]model.Condition, len(conds))
	var switches []int
	jumps, jumpCovered := 0, 0
	for i, c := range conds {
		number, _ := strconv.Atoi(strings.TrimSpace(c.Number))
		if c.Type == conditionTypeSwitch {
			switches = append(switches, i)
			continue
		}
		j := jumpCondition(number, outcomes(percent(c.Coverage), 2))
		jumps++
		jumpCovered += j.CoveredBranches()
		out[i] = j
	}
	if len(switches) == 0 {
		return out
	}

	remValid, remCovered := valid-2*jumps, covered-jumpCovered
	if !hasTotals || remValid < 2*len(switches) || remCovered < 0 {
		// Totals unknown or inconsistent: assume one case plus default each.
		remValid, remCovered = 2*len(switches), -1
	}
	for k, i := range switches {
		c := conds[i]
		number, _ := strconv.Atoi(strings.TrimSpace(c.Number))
		n := remValid / len(switches)
		if k == len(switches)-1 {
			n += remValid % len(switches)
		}
		taken := outcomes(percent(c.Coverage), n)
		if len(switches) == 1 && remCovered >= 0 {
			taken = min(remCovered, n)
		}
		out[i] = switchCondition(number, n, taken)
	}
	return out
}

// synthesizeConditions covers lines that carry condition-coverage but no
// <condition> elements: an even number of outcomes becomes jumps, an odd
// one a single switch.
func synthesizeConditions(covered, valid int) []model.Condition {
	if valid%2 == 1 {
		return []model.Condition{switchCondition(0, valid, min(covered, valid))}
	}
	var out []model.Condition
	remaining := covered
	for i := range valid / 2 {
		taken := min(remaining, 2)
		remaining -= taken
		out = append(out, jumpCondition(i, taken))
	}
	return out
}

func jumpCondition(number, taken int) model.JumpCondition {
	j := model.JumpCondition{Number: number}
	if taken >= 1 {
		j.TrueHits = 1
	}
	if taken >= 2 {
		j.FalseHits = 1
	}
	return j
}

// switchCondition builds a switch with n outcomes (default included) of
// which the first taken were hit.
func switchCondition(number, n, taken int) model.SwitchCondition {
	s := model.SwitchCondition{Number: number, CaseHits: make([]int64, max(n-1, 0))}
	if taken > 0 {
		s.DefaultHits = 1
	}
	for i := 0; i < taken-1 && i < len(s.CaseHits); i++ {
		s.CaseHits[i] = 1
	}
	return s
}

// outcomes converts a coverage percentage of n outcomes into a count.
func outcomes(pct, n int) int {
	taken := int(math.Round(float64(pct) * float64(n) / 100))
	return max(0, min(taken, n))
}

func percent(s string) int {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '%'); i >= 0 {
		s = s[:i]
	}
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return p
}

func branchTotals(conditionCoverage string) (covered, valid int, ok bool) {
	m := conditionCoverageRegex.FindStringSubmatch(conditionCoverage)
	if m == nil {
		return 0, 0, false
	}
	covered, _ = strconv.Atoi(m[1])
	valid, _ = strconv.Atoi(m[2])
	return covered, valid, true
}
