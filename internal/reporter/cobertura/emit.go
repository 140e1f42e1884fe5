package cobertura

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
)

// conditionTypeSwitch marks switch conditions; jumps carry no type.
const conditionTypeSwitch = "switch"

func (b *ReportBuilder) buildPackage(pkg *model.Package) (Package, error) {
	xmlPkg := Package{
		Name:       pkg.Name,
		LineRate:   formatDouble(pkg.LineRate()),
		BranchRate: formatDouble(pkg.BranchRate()),
		Complexity: formatDouble(b.complexity.PackageComplexity(pkg)),
	}

	// Classes are listed file by file in the order the package exposes them.
	for _, sf := range pkg.SourceFiles() {
		for _, class := range sf.Classes() {
			xmlClass, err := b.buildClass(class)
			if err != nil {
				return Package{}, fmt.Errorf("package %s: %w", pkg.Name, err)
			}
			xmlPkg.Classes.Class = append(xmlPkg.Classes.Class, xmlClass)
		}
	}
	return xmlPkg, nil
}

func (b *ReportBuilder) buildClass(class *model.Class) (Class, error) {
	xmlClass := Class{
		Name:       class.Name,
		Filename:   class.SourceFileName,
		LineRate:   formatDouble(class.LineRate()),
		BranchRate: formatDouble(class.BranchRate()),
		Complexity: formatDouble(b.complexity.ClassComplexity(class)),
	}

	keys := sortedMethodKeys(class.MethodKeys())
	for _, key := range keys {
		method, err := b.buildMethod(class, key)
		if err != nil {
			return Class{}, fmt.Errorf("class %s: %w", class.Name, err)
		}
		xmlClass.Methods.Method = append(xmlClass.Methods.Method, method)
	}

	xmlClass.Lines = buildLines(class.Lines())
	return xmlClass, nil
}

func (b *ReportBuilder) buildMethod(class *model.Class, key string) (Method, error) {
	name, signature, err := model.SplitMethodKey(key)
	if err != nil {
		return Method{}, err
	}

	// encoding/xml escapes '<' and '>' in attribute values, so name and
	// signature are passed through unmodified to avoid escaping them twice.
	return Method{
		Name:       name,
		Signature:  signature,
		LineRate:   formatDouble(class.MethodLineRate(key)),
		BranchRate: formatDouble(class.MethodBranchRate(key)),
		Complexity: formatInt(b.complexity.MethodComplexity(class, name, signature)),
		Lines:      buildLines(class.MethodLines(key)),
	}, nil
}

// sortedMethodKeys returns the keys deduplicated and in ascending byte order.
func sortedMethodKeys(keys []string) []string {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, strings.Compare)
	return slices.Compact(sorted)
}

func compareLines(a, b *model.Line) int {
	return cmp.Compare(a.Number, b.Number)
}

func buildLines(lines []*model.Line) Lines {
	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, compareLines)

	var xmlLines Lines
	for _, l := range sorted {
		xmlLines.Line = append(xmlLines.Line, buildLine(l))
	}
	return xmlLines
}

func buildLine(l *model.Line) Line {
	line := Line{
		Number:            formatInt(l.Number),
		Hits:              formatInt64(l.Hits),
		Branch:            formatBool(l.HasBranch()),
		ConditionCoverage: l.ConditionCoverage(),
	}
	for i := 0; i < l.ConditionCount(); i++ {
		line.Conditions.Condition = append(line.Conditions.Condition,
			buildCondition(l.ConditionCoverageAt(i), l.ConditionAt(i)))
	}
	return line
}

func buildCondition(coverage string, c model.Condition) Condition {
	switch cond := c.(type) {
	case model.JumpCondition:
		return Condition{Coverage: coverage, Number: formatInt(cond.Number)}
	case model.SwitchCondition:
		return Condition{Coverage: coverage, Number: formatInt(cond.Number), Type: conditionTypeSwitch}
	}
	panic(fmt.Sprintf("cobertura: unknown condition type %T", c))
}
