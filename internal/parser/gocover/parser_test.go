package gocover

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filereader"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser/filtering"
)

// MockFileInfo implements fs.FileInfo for testing.
type MockFileInfo struct {
	name  string
	isDir bool
}

func (m MockFileInfo) Name() string       { return m.name }
func (m MockFileInfo) Size() int64        { return 0 }
func (m MockFileInfo) Mode() fs.FileMode  { return 0 }
func (m MockFileInfo) ModTime() time.Time { return time.Now() }
func (m MockFileInfo) IsDir() bool        { return m.isDir }
func (m MockFileInfo) Sys() interface{}   { return nil }

// MockSources serves file contents and stat results from memory.
type MockSources struct {
	Files map[string]string
}

func (m *MockSources) ReadFile(path string) ([]byte, error) {
	content, ok := m.Files[path]
	if !ok {
		return nil, errors.New("file not found: " + path)
	}
	return []byte(content), nil
}

func (m *MockSources) ReadLines(path string) ([]string, error) {
	data, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return filereader.SplitLines(data)
}

func (m *MockSources) Stat(name string) (fs.FileInfo, error) {
	name = filepath.Clean(name)
	if _, ok := m.Files[name]; ok {
		return MockFileInfo{name: filepath.Base(name)}, nil
	}
	for p := range m.Files {
		if strings.HasPrefix(p, name+string(filepath.Separator)) {
			return MockFileInfo{name: filepath.Base(name), isDir: true}, nil
		}
	}
	return nil, os.ErrNotExist
}

func (m *MockSources) ReadDir(string) ([]fs.DirEntry, error) { return nil, nil }
func (m *MockSources) Getwd() (string, error)                { return "/", nil }
func (m *MockSources) Abs(path string) (string, error)       { return path, nil }

// mockParserConfig provides test configuration.
type mockParserConfig struct {
	srcDirs       []string
	packageFilter filtering.IFilter
	classFilter   filtering.IFilter
	fileFilter    filtering.IFilter
}

func (m *mockParserConfig) SourceDirectories() []string       { return m.srcDirs }
func (m *mockParserConfig) PackageFilters() filtering.IFilter { return m.packageFilter }
func (m *mockParserConfig) ClassFilters() filtering.IFilter   { return m.classFilter }
func (m *mockParserConfig) FileFilters() filtering.IFilter    { return m.fileFilter }

func newTestConfig() *mockParserConfig {
	return &mockParserConfig{
		srcDirs:       []string{"/project/src"},
		packageFilter: filtering.IncludeAll(),
		classFilter:   filtering.IncludeAll(),
		fileFilter:    filtering.IncludeAll(),
	}
}

const calculatorSource = `package calculator

// Add performs addition
func Add(a, b int) int {
	return a + b
}

// Subtract performs subtraction
func Subtract(a, b int) int {
	return a - b
}

// Multiply performs multiplication
func Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a * b
}
func Divide(a, b int) int {
	return a / b
}
`

const calculatorProfile = `mode: count
example.com/shop/calculator/calculator.go:4.24,6.2 1 3
example.com/shop/calculator/calculator.go:9.29,11.2 1 0
example.com/shop/calculator/calculator.go:14.29,15.22 1 1
example.com/shop/calculator/calculator.go:15.22,17.3 1 0
example.com/shop/calculator/calculator.go:18.2,18.14 1 1
example.com/shop/calculator/calculator.go:20.27,22.2 1 0
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cover.out")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newCalculatorSources() *MockSources {
	return &MockSources{Files: map[string]string{
		"/project/src/go.mod":                   "module example.com/shop\n\ngo 1.22\n",
		"/project/src/calculator/calculator.go": calculatorSource,
	}}
}

func lineHits(class *model.Class) map[int]int64 {
	hits := make(map[int]int64)
	for _, l := range class.Lines() {
		hits[l.Number] = l.Hits
	}
	return hits
}

func TestSupportsFile(t *testing.T) {
	p := NewGoCoverParser(nil, nil)

	t.Run("ValidGoCoverFile", func(t *testing.T) {
		assert.True(t, p.SupportsFile(writeProfile(t, "mode: set\nfile.go:1.1,2.2 1 1\n")))
	})
	t.Run("LeadingBlankLines", func(t *testing.T) {
		assert.True(t, p.SupportsFile(writeProfile(t, "\n\nmode: atomic\n")))
	})
	t.Run("InvalidFile_WrongPrefix", func(t *testing.T) {
		assert.False(t, p.SupportsFile(writeProfile(t, "not mode: set\n")))
	})
	t.Run("InvalidFile_Empty", func(t *testing.T) {
		assert.False(t, p.SupportsFile(writeProfile(t, "")))
	})
	t.Run("MissingFile", func(t *testing.T) {
		assert.False(t, p.SupportsFile(filepath.Join(t.TempDir(), "nope.out")))
	})
}

func TestParse(t *testing.T) {
	sources := newCalculatorSources()
	p := NewGoCoverParser(sources, sources)

	result, err := p.Parse(context.Background(), writeProfile(t, calculatorProfile), newTestConfig())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "GoCover", result.ParserName)
	assert.Equal(t, []string{"/project/src"}, result.SourceDirectories, "module root is reported as a source directory")

	project := result.Project
	packages := project.Packages()
	require.Len(t, packages, 1)
	assert.Equal(t, "example.com/shop/calculator", packages[0].Name)

	files := packages[0].SourceFiles()
	require.Len(t, files, 1)
	assert.Equal(t, "calculator/calculator.go", files[0].Name)

	classes := files[0].Classes()
	require.Len(t, classes, 1)
	class := classes[0]
	assert.Equal(t, "example.com/shop/calculator/calculator", class.Name)
	assert.Equal(t, "calculator/calculator.go", class.SourceFileName)

	// Closing braces that end a block (6, 11, 17, 22) are not lines.
	assert.Equal(t, map[int]int64{
		4: 3, 5: 3,
		9: 0, 10: 0,
		14: 1, 15: 1, 16: 0, 18: 1,
		20: 0, 21: 0,
	}, lineHits(class))

	assert.Equal(t, 5, project.NumberOfCoveredLines())
	assert.Equal(t, 10, project.NumberOfValidLines())
	assert.Equal(t, 0, project.NumberOfValidBranches(), "go cover has no branch data")

	assert.ElementsMatch(t, []string{
		"Add(int, int) int",
		"Subtract(int, int) int",
		"Multiply(int, int) int",
		"Divide(int, int) int",
	}, class.MethodKeys())
	assert.Len(t, class.MethodLines("Multiply(int, int) int"), 4)
	assert.Equal(t, 0.75, class.MethodLineRate("Multiply(int, int) int"))
	assert.Equal(t, 1.0, class.MethodLineRate("Add(int, int) int"))
}

func TestParseWithoutSources(t *testing.T) {
	sources := &MockSources{Files: map[string]string{}}
	p := NewGoCoverParser(sources, sources)

	result, err := p.Parse(context.Background(), writeProfile(t, calculatorProfile), newTestConfig())
	require.NoError(t, err)
	assert.Empty(t, result.SourceDirectories)

	class := result.Project.Package("example.com/shop/calculator").
		SourceFile("example.com/shop/calculator/calculator.go").
		Class("example.com/shop/calculator/calculator")
	assert.Empty(t, class.MethodKeys(), "methods need the source")
	assert.Len(t, class.Lines(), 14, "without source every block line is kept")
	assert.Equal(t, int64(3), class.Line(6).Hits)
}

func TestParseFallsBackToWorkingDirectory(t *testing.T) {
	sources := &MockSources{Files: map[string]string{
		"/go.mod":                   "module example.com/shop\n\ngo 1.22\n",
		"/calculator/calculator.go": calculatorSource,
	}}
	p := NewGoCoverParser(sources, sources)
	config := newTestConfig()
	config.srcDirs = nil

	result, err := p.Parse(context.Background(), writeProfile(t, calculatorProfile), config)
	require.NoError(t, err)
	assert.Equal(t, []string{"/"}, result.SourceDirectories)

	class := result.Project.Package("example.com/shop/calculator").
		SourceFile("calculator/calculator.go").
		Class("example.com/shop/calculator/calculator")
	assert.Len(t, class.MethodKeys(), 4)
}

func TestParseWarnsWhenSourceLinesCannotBeSplit(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	sources := newCalculatorSources()
	sources.Files["/project/src/calculator/calculator.go"] = calculatorSource + "// " + strings.Repeat("x", 17<<20) + "\n"
	p := NewGoCoverParser(sources, sources)

	result, err := p.Parse(context.Background(), writeProfile(t, calculatorProfile), newTestConfig())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "could not be split into lines")

	class := result.Project.Package("example.com/shop/calculator").
		SourceFile("calculator/calculator.go").
		Class("example.com/shop/calculator/calculator")
	assert.NotContains(t, lineHits(class), 6, "lines read before the long line are still filtered")
}

func TestParseFilters(t *testing.T) {
	sources := newCalculatorSources()
	p := NewGoCoverParser(sources, sources)
	profile := writeProfile(t, calculatorProfile)

	exclude := func(rule string) filtering.IFilter {
		f, err := filtering.NewDefaultFilter([]string{rule}, true)
		require.NoError(t, err)
		return f
	}

	testCases := map[string]func(c *mockParserConfig){
		"file filter":    func(c *mockParserConfig) { c.fileFilter = exclude("-*/calculator.go") },
		"package filter": func(c *mockParserConfig) { c.packageFilter = exclude("-*calculator") },
		"class filter":   func(c *mockParserConfig) { c.classFilter = exclude("-*/calculator/calculator") },
	}
	for name, configure := range testCases {
		t.Run(name, func(t *testing.T) {
			config := newTestConfig()
			configure(config)
			result, err := p.Parse(context.Background(), profile, config)
			require.NoError(t, err)
			assert.Empty(t, result.Project.Packages())
		})
	}
}

func TestParseInvalidProfile(t *testing.T) {
	p := NewGoCoverParser(nil, nil)
	_, err := p.Parse(context.Background(), writeProfile(t, "mode: set\nbroken line\n"), newTestConfig())
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestParseCancelled(t *testing.T) {
	sources := newCalculatorSources()
	p := NewGoCoverParser(sources, sources)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Parse(ctx, writeProfile(t, calculatorProfile), newTestConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
