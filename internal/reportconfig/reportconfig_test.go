package reportconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/logging"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, FormatAuto, cfg.Format)
	assert.Equal(t, "coverage-report", cfg.TargetDirectory)
	assert.Equal(t, "Info", cfg.Verbosity)
	assert.Zero(t, cfg.Parallel)
	assert.Empty(t, cfg.Reports)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "cobertura.yml", `reports:
  - "coverage/*.out"
format: gocover
output: build/reports
sourcedirs: [/src/app]
filters: ["+example.com/*"]
verbosity: Verbose
timestamp: 1700000000000
historydb: history.db
parallel: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"coverage/*.out"}, cfg.Reports)
	assert.Equal(t, FormatGoCover, cfg.Format)
	assert.Equal(t, "build/reports", cfg.TargetDirectory)
	assert.Equal(t, []string{"/src/app"}, cfg.SourceDirectories)
	assert.Equal(t, []string{"+example.com/*"}, cfg.PackageFilters)
	assert.Equal(t, logging.Verbose, cfg.VerbosityLevel())
	assert.Equal(t, int64(1700000000000), cfg.Timestamp)
	assert.Equal(t, "history.db", cfg.HistoryDB)
	assert.Equal(t, 4, cfg.Parallel)
	require.NoError(t, cfg.Validate())
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "cobertura.json", `{"reports": ["a.out"], "output": "out"}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.out"}, cfg.Reports)
	assert.Equal(t, "out", cfg.TargetDirectory)
	assert.Equal(t, "Info", cfg.Verbosity, "defaults fill what the file leaves out")
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "cobertura.yml", "output: from-file\n")
	t.Setenv("COBERTURA_OUTPUT", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TargetDirectory)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)

	_, err = Load(writeConfig(t, "bad.yml", "unknown_key: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestValidate(t *testing.T) {
	valid := func() *ReportConfiguration {
		return &ReportConfiguration{
			Reports:         []string{"cover.out"},
			Format:          FormatAuto,
			TargetDirectory: "out",
			Verbosity:       "Info",
		}
	}
	require.NoError(t, valid().Validate())

	testCases := []struct {
		name   string
		modify func(*ReportConfiguration)
		target error
	}{
		{"no reports", func(c *ReportConfiguration) { c.Reports = nil }, ErrNoReports},
		{"no output", func(c *ReportConfiguration) { c.TargetDirectory = " " }, ErrNoTargetDirectory},
		{"format", func(c *ReportConfiguration) { c.Format = "lcov" }, ErrUnsupportedFormat},
		{"verbosity", func(c *ReportConfiguration) { c.Verbosity = "loud" }, logging.ErrInvalidVerbosity},
		{"parallel", func(c *ReportConfiguration) { c.Parallel = -1 }, ErrInvalidParallelism},
		{"timestamp", func(c *ReportConfiguration) { c.Timestamp = -5 }, ErrInvalidTimestamp},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.target)
		})
	}

	t.Run("filters", func(t *testing.T) {
		cfg := valid()
		cfg.ClassFilters = []string{"noSign"}
		assert.Error(t, cfg.Validate())
	})
}

func TestParserSettings(t *testing.T) {
	cfg := &ReportConfiguration{
		SourceDirectories: []string{"/src"},
		PackageFilters:    []string{"-vendor*"},
		FileFilters:       []string{"-*/gen/*"},
	}
	ps, err := cfg.ParserSettings()
	require.NoError(t, err)

	assert.Equal(t, []string{"/src"}, ps.SourceDirectories())
	assert.False(t, ps.PackageFilters().IsElementIncludedInReport("vendor/x"))
	assert.True(t, ps.ClassFilters().IsElementIncludedInReport("anything"))
	assert.False(t, ps.FileFilters().IsElementIncludedInReport(`a\gen\b.go`))
}

func TestClock(t *testing.T) {
	cfg := &ReportConfiguration{Timestamp: 1700000000123}
	assert.Equal(t, int64(1700000000123), cfg.Clock()().UnixMilli())

	cfg.Timestamp = 0
	assert.WithinDuration(t, time.Now(), cfg.Clock()(), time.Minute)
}
