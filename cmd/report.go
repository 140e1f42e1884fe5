package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/logging"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reportconfig"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reporting"
)

type reportOptions struct {
	configFile   string
	reports      []string
	output       string
	sourceDirs   []string
	format       string
	verbosity    string
	filters      []string
	classFilters []string
	fileFilters  []string
	historyDB    string
	timestamp    int64
	parallel     int
}

func newReportCommand() *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Merge coverage inputs and write coverage.xml",
		Long: `Merge coverage inputs and write coverage.xml.

Settings are read from defaults, the --config file and COBERTURA_* environment
variables. Flags given on the command line override all of them.

Patterns are separated by ';' and may use *, ?, ** and {a,b}. Filters are
separated by ';' and start with '+' (include) or '-' (exclude).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configFile, "config", "", "Configuration file (YAML, JSON or TOML)")
	f.StringArrayVar(&opts.reports, "report", nil, "Coverage input files or patterns, semicolon separated (repeatable)")
	f.StringVar(&opts.output, "output", "coverage-report", "Output directory for coverage.xml")
	f.StringSliceVar(&opts.sourceDirs, "sourcedirs", nil, "Source directories (comma separated)")
	f.StringVar(&opts.format, "format", reportconfig.FormatAuto, "Input format: auto, gocover, modeldump, cobertura")
	f.StringVar(&opts.verbosity, "verbosity", "Info", "Logging verbosity (Verbose, Info, Warning, Error, Off)")
	f.StringArrayVar(&opts.filters, "filters", nil, "Package filters, e.g. \"+example.com/*;-*/internal/*\"")
	f.StringArrayVar(&opts.classFilters, "classfilters", nil, "Class filters")
	f.StringArrayVar(&opts.fileFilters, "filefilters", nil, "File filters")
	f.StringVar(&opts.historyDB, "history-db", "", "SQLite database that records every run")
	f.Int64Var(&opts.timestamp, "timestamp", 0, "Fixed report timestamp in epoch milliseconds (0 = now)")
	f.IntVar(&opts.parallel, "parallel", 0, "Maximum inputs parsed concurrently (0 = one per CPU)")
	return cmd
}

func runReport(cmd *cobra.Command, opts *reportOptions) error {
	start := time.Now()

	cfg, err := loadConfiguration(opts)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)
	cfg.Version = version

	if err := cfg.Validate(); err != nil {
		return err
	}
	logging.Configure(cmd.ErrOrStderr(), cfg.VerbosityLevel())

	result, err := reporting.NewReportContext(cfg).Generate(cmd.Context())
	if err != nil {
		return err
	}
	if len(result.InvalidPatterns) > 0 {
		slog.Warn("Some report patterns matched no file", "patterns", result.InvalidPatterns)
	}

	s := result.Summary
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report written to %s\n", s.Path)
	fmt.Fprintf(out, "  Inputs:      %d\n", len(result.InputFiles))
	fmt.Fprintf(out, "  Lines:       %s (%d of %d)\n", model.PercentString(s.LineRate), s.LinesCovered, s.LinesValid)
	fmt.Fprintf(out, "  Branches:    %s (%d of %d)\n", model.PercentString(s.BranchRate), s.BranchesCovered, s.BranchesValid)
	fmt.Fprintf(out, "  Complexity:  %.2f\n", s.Complexity)
	if result.HistoryID > 0 {
		fmt.Fprintf(out, "  History run: %d\n", result.HistoryID)
	}
	slog.Info("Report generation completed", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func loadConfiguration(opts *reportOptions) (*reportconfig.ReportConfiguration, error) {
	if opts.configFile == "" {
		return reportconfig.Load()
	}
	return reportconfig.Load(opts.configFile)
}

// applyFlags copies the flags the user actually set over cfg.
func applyFlags(cmd *cobra.Command, opts *reportOptions, cfg *reportconfig.ReportConfiguration) {
	changed := cmd.Flags().Changed
	if changed("report") {
		cfg.Reports = opts.reports
	}
	if changed("output") {
		cfg.TargetDirectory = opts.output
	}
	if changed("sourcedirs") {
		cfg.SourceDirectories = trimAll(opts.sourceDirs)
	}
	if changed("format") {
		cfg.Format = opts.format
	}
	if changed("verbosity") {
		cfg.Verbosity = opts.verbosity
	}
	if changed("filters") {
		cfg.PackageFilters = splitList(opts.filters)
	}
	if changed("classfilters") {
		cfg.ClassFilters = splitList(opts.classFilters)
	}
	if changed("filefilters") {
		cfg.FileFilters = splitList(opts.fileFilters)
	}
	if changed("history-db") {
		cfg.HistoryDB = opts.historyDB
	}
	if changed("timestamp") {
		cfg.Timestamp = opts.timestamp
	}
	if changed("parallel") {
		cfg.Parallel = opts.parallel
	}
}

// splitList splits semicolon separated values and drops empty entries.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ";") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
