// Package cobertura writes a coverage model as a Cobertura coverage.xml
// report (coverage-04.dtd).
package cobertura

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filesystem"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
)

const (
	// ReportFileName is the name of the file written into the output directory.
	ReportFileName = "coverage.xml"

	coverageDTD = "coverage-04.dtd"
	prolog      = "<?xml version=\"1.0\"?>\n" +
		"<!DOCTYPE coverage SYSTEM \"http://cobertura.sourceforge.net/xml/" + coverageDTD + "\">\n"
)

// ComplexityCalculator provides the cyclomatic complexity figures written
// at every level of the report.
type ComplexityCalculator interface {
	ProjectComplexity(project *model.Project) float64
	PackageComplexity(pkg *model.Package) float64
	ClassComplexity(class *model.Class) float64
	MethodComplexity(class *model.Class, name, signature string) int
}

// SourceRoots lists the source directories written to <sources>, in order.
type SourceRoots interface {
	SourceDirectories() []string
}

// Summary holds the project-level figures of a written report.
type Summary struct {
	Path            string
	LineRate        float64
	BranchRate      float64
	LinesCovered    int
	LinesValid      int
	BranchesCovered int
	BranchesValid   int
	Complexity      float64
	Timestamp       int64
}

// ReportBuilder renders a model.Project as coverage.xml.
type ReportBuilder struct {
	outputDir  string
	complexity ComplexityCalculator
	sources    SourceRoots
	version    string
	now        func() time.Time
}

// Option customises a ReportBuilder.
type Option func(*ReportBuilder)

// WithVersion sets the version attribute of the report.
func WithVersion(version string) Option {
	return func(b *ReportBuilder) { b.version = version }
}

// WithClock replaces the time source used for the timestamp attribute.
func WithClock(now func() time.Time) Option {
	return func(b *ReportBuilder) { b.now = now }
}

// NewReportBuilder creates a builder writing into outputDir.
func NewReportBuilder(outputDir string, complexity ComplexityCalculator, sources SourceRoots, opts ...Option) *ReportBuilder {
	b := &ReportBuilder{
		outputDir:  outputDir,
		complexity: complexity,
		sources:    sources,
		version:    "unknown",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateReport builds the document for project and writes it to
// <outputDir>/coverage.xml. The file is replaced only when the whole
// document was written; on failure any previous report is left untouched.
func (b *ReportBuilder) CreateReport(project *model.Project) (*Summary, error) {
	doc, summary, err := b.build(project)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(b.outputDir, ReportFileName)
	err = filesystem.WriteFileAtomic(path, func(w io.Writer) error {
		return Encode(w, doc)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write Cobertura report %s: %w", path, err)
	}
	summary.Path = path

	slog.Info("Cobertura report written", "path", path, "packages", len(doc.Packages.Package))
	return summary, nil
}

// BuildDocument builds the report document without writing it.
func (b *ReportBuilder) BuildDocument(project *model.Project) (*Coverage, error) {
	doc, _, err := b.build(project)
	return doc, err
}

// Encode writes the XML prolog, the DOCTYPE declaration and the indented
// document to w.
func Encode(w io.Writer, doc *Coverage) error {
	if _, err := io.WriteString(w, prolog); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal coverage document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (b *ReportBuilder) build(project *model.Project) (*Coverage, *Summary, error) {
	summary := &Summary{
		LineRate:        project.LineRate(),
		BranchRate:      project.BranchRate(),
		LinesCovered:    project.NumberOfCoveredLines(),
		LinesValid:      project.NumberOfValidLines(),
		BranchesCovered: project.NumberOfCoveredBranches(),
		BranchesValid:   project.NumberOfValidBranches(),
		Complexity:      b.complexity.ProjectComplexity(project),
		Timestamp:       b.now().UnixMilli(),
	}

	doc := &Coverage{
		LineRate:        formatDouble(summary.LineRate),
		BranchRate:      formatDouble(summary.BranchRate),
		LinesCovered:    formatInt(summary.LinesCovered),
		LinesValid:      formatInt(summary.LinesValid),
		BranchesCovered: formatInt(summary.BranchesCovered),
		BranchesValid:   formatInt(summary.BranchesValid),
		Complexity:      formatDouble(summary.Complexity),
		Version:         b.version,
		Timestamp:       formatInt64(summary.Timestamp),
	}

	for _, dir := range b.sources.SourceDirectories() {
		doc.Sources.Source = append(doc.Sources.Source, Source{Path: dir})
	}

	for _, pkg := range project.Packages() {
		xmlPkg, err := b.buildPackage(pkg)
		if err != nil {
			return nil, nil, err
		}
		doc.Packages.Package = append(doc.Packages.Package, xmlPkg)
	}

	return doc, summary, nil
}
