// Package reporting runs a complete report generation: expand the input
// patterns, load and merge the coverage inputs, write coverage.xml and
// optionally record the run in the history database.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/complexity"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filereader"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filesystem"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/glob"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/history"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser"
	coberturaparser "github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser/cobertura"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser/gocover"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser/modeldump"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reportconfig"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reporter/cobertura"
)

// ErrNoInputFiles is returned when no pattern matched a file.
var ErrNoInputFiles = errors.New("no coverage input files found")

// Result describes a finished run.
type Result struct {
	Summary           *cobertura.Summary
	InputFiles        []string
	InvalidPatterns   []string
	SourceDirectories []string
	// HistoryID is the id of the recorded run, 0 when history is disabled.
	HistoryID int64
}

// ReportContext carries the configuration and I/O dependencies of a run.
type ReportContext struct {
	cfg    *reportconfig.ReportConfiguration
	fs     filesystem.Filesystem
	reader filereader.Reader
}

// NewReportContext creates a context working on the host filesystem.
func NewReportContext(cfg *reportconfig.ReportConfiguration) *ReportContext {
	return &ReportContext{cfg: cfg, fs: filesystem.DefaultFS{}, reader: filereader.NewDiskReader()}
}

// Generate performs the run.
func (rc *ReportContext) Generate(ctx context.Context) (*Result, error) {
	if err := rc.cfg.Validate(); err != nil {
		return nil, err
	}
	settings, err := rc.cfg.ParserSettings()
	if err != nil {
		return nil, err
	}

	files, invalid := rc.expandInputs()
	if len(files) == 0 {
		return nil, fmt.Errorf("%w (patterns: %s)", ErrNoInputFiles, strings.Join(rc.cfg.Reports, ", "))
	}

	loaded, err := parser.LoadAll(ctx, rc.factory(), files, settings, rc.cfg.Parallel)
	if err != nil {
		return nil, err
	}

	sourceDirs := rc.cfg.SourceDirectories
	if len(sourceDirs) == 0 && len(loaded.SourceDirectories) > 0 {
		slog.Info("Using source directories declared by the coverage inputs", "directories", loaded.SourceDirectories)
		sourceDirs = loaded.SourceDirectories
	}
	finder := filesystem.NewSourceFinder(rc.fs, sourceDirs)
	calculator := complexity.NewCalculator(complexity.Recorded{}, complexity.NewGoCyclo(finder))

	if err := os.MkdirAll(rc.cfg.TargetDirectory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	builder := cobertura.NewReportBuilder(rc.cfg.TargetDirectory, calculator, finder,
		cobertura.WithVersion(rc.cfg.Version),
		cobertura.WithClock(rc.cfg.Clock()))
	summary, err := builder.CreateReport(loaded.Project)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Summary:           summary,
		InputFiles:        loaded.LoadedFiles,
		InvalidPatterns:   invalid,
		SourceDirectories: finder.SourceDirectories(),
	}
	if rc.cfg.HistoryDB != "" {
		if result.HistoryID, err = rc.recordHistory(ctx, summary); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// expandInputs resolves the configured patterns into distinct files, in
// pattern order. Patterns that fail or match nothing are reported back.
func (rc *ReportContext) expandInputs() (files, invalid []string) {
	for _, pattern := range rc.cfg.Reports {
		for _, p := range glob.SplitPatterns(pattern) {
			matches, err := glob.ExpandFiles(rc.fs, p)
			if err != nil {
				slog.Warn("Error expanding report file pattern", "pattern", p, "error", err)
				invalid = append(invalid, p)
				continue
			}
			if len(matches) == 0 {
				slog.Warn("No files found for report pattern", "pattern", p)
				invalid = append(invalid, p)
				continue
			}
			for _, m := range matches {
				if !slices.Contains(files, m) {
					files = append(files, m)
				}
			}
		}
	}
	return files, invalid
}

func (rc *ReportContext) factory() *parser.Factory {
	goCover := gocover.NewGoCoverParser(rc.reader, rc.fs)
	dump := modeldump.NewModelDumpParser()
	xmlReport := coberturaparser.NewCoberturaParser()
	switch strings.ToLower(rc.cfg.Format) {
	case reportconfig.FormatGoCover:
		return parser.NewFactory(goCover)
	case reportconfig.FormatModelDump:
		return parser.NewFactory(dump)
	case reportconfig.FormatCobertura:
		return parser.NewFactory(xmlReport)
	}
	return parser.NewFactory(goCover, dump, xmlReport)
}

func (rc *ReportContext) recordHistory(ctx context.Context, summary *cobertura.Summary) (int64, error) {
	store, err := history.Open(ctx, rc.cfg.HistoryDB)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	id, err := store.Record(ctx, history.Run{
		Timestamp:       time.UnixMilli(summary.Timestamp),
		Version:         rc.cfg.Version,
		ReportPath:      summary.Path,
		LineRate:        summary.LineRate,
		BranchRate:      summary.BranchRate,
		LinesCovered:    summary.LinesCovered,
		LinesValid:      summary.LinesValid,
		BranchesCovered: summary.BranchesCovered,
		BranchesValid:   summary.BranchesValid,
		Complexity:      summary.Complexity,
	})
	if err != nil {
		return 0, err
	}
	slog.Info("Run recorded in history", "database", store.Path(), "id", id)
	return id, nil
}
