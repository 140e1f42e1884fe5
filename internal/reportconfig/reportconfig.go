// Package reportconfig holds the settings of a report run. Values come from
// defaults, an optional YAML/JSON/TOML file and COBERTURA_* environment
// variables (in that order), and the command line overrides them last.
package reportconfig

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/jinzhu/configor"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/logging"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser/filtering"
)

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "COBERTURA"

// Input formats accepted by the Format setting.
const (
	FormatAuto      = "auto"
	FormatGoCover   = "gocover"
	FormatModelDump = "modeldump"
	FormatCobertura = "cobertura"
)

var (
	ErrConfigNotFound     = errors.New("configuration file not found")
	ErrNoReports          = errors.New("no coverage input given")
	ErrNoTargetDirectory  = errors.New("no output directory given")
	ErrUnsupportedFormat  = errors.New("unsupported input format")
	ErrInvalidParallelism = errors.New("parallelism must not be negative")
	ErrInvalidTimestamp   = errors.New("timestamp must not be negative")
)

// ReportConfiguration is the complete configuration of one report run.
type ReportConfiguration struct {
	// Reports are file names or glob patterns of coverage inputs.
	Reports           []string `yaml:"reports" json:"reports" toml:"reports"`
	Format            string   `yaml:"format" json:"format" toml:"format" default:"auto" env:"COBERTURA_FORMAT"`
	TargetDirectory   string   `yaml:"output" json:"output" toml:"output" default:"coverage-report" env:"COBERTURA_OUTPUT"`
	SourceDirectories []string `yaml:"sourcedirs" json:"sourcedirs" toml:"sourcedirs"`
	PackageFilters    []string `yaml:"filters" json:"filters" toml:"filters"`
	ClassFilters      []string `yaml:"classfilters" json:"classfilters" toml:"classfilters"`
	FileFilters       []string `yaml:"filefilters" json:"filefilters" toml:"filefilters"`
	Verbosity         string   `yaml:"verbosity" json:"verbosity" toml:"verbosity" default:"Info" env:"COBERTURA_VERBOSITY"`
	// Timestamp fixes the report timestamp (epoch milliseconds); 0 means now.
	Timestamp int64  `yaml:"timestamp" json:"timestamp" toml:"timestamp" env:"COBERTURA_TIMESTAMP"`
	HistoryDB string `yaml:"historydb" json:"historydb" toml:"historydb" env:"COBERTURA_HISTORY_DB"`
	Parallel  int    `yaml:"parallel" json:"parallel" toml:"parallel" env:"COBERTURA_PARALLEL"`
	// Version is written into the report; it is set by the binary.
	Version string `yaml:"-" json:"-" toml:"-"`
}

// Load builds a configuration from defaults, the given files and the
// environment. Listed files must exist.
func Load(files ...string) (*ReportConfiguration, error) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, f)
		}
	}
	cfg := &ReportConfiguration{}
	loader := configor.New(&configor.Config{
		ENVPrefix:            EnvPrefix,
		ErrorOnUnmatchedKeys: true,
		Silent:               true,
	})
	if err := loader.Load(cfg, files...); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and returns every problem found.
func (rc *ReportConfiguration) Validate() error {
	var errs []error
	if len(rc.Reports) == 0 {
		errs = append(errs, ErrNoReports)
	}
	if strings.TrimSpace(rc.TargetDirectory) == "" {
		errs = append(errs, ErrNoTargetDirectory)
	}
	if !slices.Contains([]string{FormatAuto, FormatGoCover, FormatModelDump, FormatCobertura}, strings.ToLower(rc.Format)) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnsupportedFormat, rc.Format))
	}
	if _, err := logging.ParseVerbosityLevel(rc.Verbosity); err != nil {
		errs = append(errs, err)
	}
	if rc.Parallel < 0 {
		errs = append(errs, ErrInvalidParallelism)
	}
	if rc.Timestamp < 0 {
		errs = append(errs, ErrInvalidTimestamp)
	}
	if _, err := rc.ParserSettings(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// VerbosityLevel returns the parsed verbosity, Info when it is invalid.
func (rc *ReportConfiguration) VerbosityLevel() logging.VerbosityLevel {
	v, err := logging.ParseVerbosityLevel(rc.Verbosity)
	if err != nil {
		return logging.Info
	}
	return v
}

// Clock returns the time source for the report timestamp.
func (rc *ReportConfiguration) Clock() func() time.Time {
	if rc.Timestamp > 0 {
		fixed := time.UnixMilli(rc.Timestamp)
		return func() time.Time { return fixed }
	}
	return time.Now
}

// ParserSettings compiles the filters into the settings handed to parsers.
func (rc *ReportConfiguration) ParserSettings() (*ParserSettings, error) {
	pkg, err := filtering.NewDefaultFilter(rc.PackageFilters, false)
	if err != nil {
		return nil, fmt.Errorf("package filters: %w", err)
	}
	class, err := filtering.NewDefaultFilter(rc.ClassFilters, false)
	if err != nil {
		return nil, fmt.Errorf("class filters: %w", err)
	}
	file, err := filtering.NewDefaultFilter(rc.FileFilters, true)
	if err != nil {
		return nil, fmt.Errorf("file filters: %w", err)
	}
	return &ParserSettings{
		sourceDirs: slices.Clone(rc.SourceDirectories),
		packages:   pkg,
		classes:    class,
		files:      file,
	}, nil
}

// ParserSettings is the parser-facing view of the configuration.
type ParserSettings struct {
	sourceDirs []string
	packages   filtering.IFilter
	classes    filtering.IFilter
	files      filtering.IFilter
}

func (ps *ParserSettings) SourceDirectories() []string       { return ps.sourceDirs }
func (ps *ParserSettings) PackageFilters() filtering.IFilter { return ps.packages }
func (ps *ParserSettings) ClassFilters() filtering.IFilter   { return ps.classes }
func (ps *ParserSettings) FileFilters() filtering.IFilter    { return ps.files }
