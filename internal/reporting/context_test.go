package reporting

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/history"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reportconfig"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reporter/cobertura"
)

const calcSource = `package calc

func Add(a, b int) int {
	return a + b
}

func Sign(x int) int {
	if x < 0 {
		return -1
	}
	return 1
}
`

const calcProfile = `mode: count
example.com/shop/calc/calc.go:3.24,5.2 1 2
example.com/shop/calc/calc.go:7.22,8.11 1 1
example.com/shop/calc/calc.go:8.11,10.3 1 0
example.com/shop/calc/calc.go:11.2,11.10 1 1
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readReport(t *testing.T, path string) cobertura.Coverage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc cobertura.Coverage
	require.NoError(t, xml.Unmarshal(data, &doc))
	return doc
}

func newConfig(out string, reports ...string) *reportconfig.ReportConfiguration {
	return &reportconfig.ReportConfiguration{
		Reports:         reports,
		Format:          reportconfig.FormatAuto,
		TargetDirectory: out,
		Verbosity:       "Info",
		Timestamp:       1700000000000,
		Version:         "test",
	}
}

func TestGenerateFromGoProfile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module example.com/shop\n\ngo 1.22\n")
	writeFile(t, filepath.Join(root, "calc", "calc.go"), calcSource)
	writeFile(t, filepath.Join(root, "cover.out"), calcProfile)
	t.Chdir(root)

	out := filepath.Join(t.TempDir(), "report")
	cfg := newConfig(out, "*.out")
	cfg.HistoryDB = filepath.Join(t.TempDir(), "history.db")

	res, err := NewReportContext(cfg).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(root, "cover.out")}, res.InputFiles)
	assert.Equal(t, []string{root}, res.SourceDirectories, "module root is used when no source directory is configured")
	assert.Equal(t, 5, res.Summary.LinesCovered)
	assert.Equal(t, 6, res.Summary.LinesValid)
	assert.NotZero(t, res.HistoryID)

	doc := readReport(t, filepath.Join(out, cobertura.ReportFileName))
	assert.Equal(t, "0.8333333333333334", doc.LineRate)
	assert.Equal(t, "1.0", doc.BranchRate)
	assert.Equal(t, "1.5", doc.Complexity)
	assert.Equal(t, "1700000000000", doc.Timestamp)
	assert.Equal(t, "test", doc.Version)
	assert.Equal(t, []cobertura.Source{{Path: root}}, doc.Sources.Source)

	require.Len(t, doc.Packages.Package, 1)
	pkg := doc.Packages.Package[0]
	assert.Equal(t, "example.com/shop/calc", pkg.Name)
	require.Len(t, pkg.Classes.Class, 1)
	class := pkg.Classes.Class[0]
	assert.Equal(t, "example.com/shop/calc/calc", class.Name)
	assert.Equal(t, "calc/calc.go", class.Filename)

	require.Len(t, class.Methods.Method, 2)
	add, sign := class.Methods.Method[0], class.Methods.Method[1]
	assert.Equal(t, []string{"Add", "(int, int) int", "1", "1.0"}, []string{add.Name, add.Signature, add.Complexity, add.LineRate})
	assert.Equal(t, []string{"Sign", "(int) int", "2", "0.75"}, []string{sign.Name, sign.Signature, sign.Complexity, sign.LineRate})

	var numbers []string
	for _, l := range class.Lines.Line {
		numbers = append(numbers, l.Number+":"+l.Hits)
	}
	assert.Equal(t, []string{"3:2", "4:2", "7:1", "8:1", "9:0", "11:1"}, numbers)

	store, err := history.Open(context.Background(), cfg.HistoryDB)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, filepath.Join(out, cobertura.ReportFileName), runs[0].ReportPath)
	assert.Equal(t, int64(1700000000000), runs[0].Timestamp.UnixMilli())
}

func TestGenerateFromModelDump(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.yaml"), `sources: [/src/main/java]
packages:
  - name: pkg
    files:
      - name: pkg/Foo.java
        classes:
          - name: pkg.Foo
            methods:
              - {key: "bar()V", complexity: 4}
            lines:
              - {number: 10, hits: 3, method: "bar()V"}
`)
	writeFile(t, filepath.Join(dir, "b.yaml"), `packages:
  - name: pkg
    files:
      - name: pkg/Foo.java
        classes:
          - name: pkg.Foo
            lines:
              - {number: 10, hits: 2, method: "bar()V"}
              - {number: 11, hits: 0, method: "bar()V"}
`)

	out := t.TempDir()
	cfg := newConfig(out, filepath.Join(dir, "{a,b}.yaml"))
	cfg.Format = reportconfig.FormatModelDump

	res, err := NewReportContext(cfg).Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.InputFiles, 2)
	assert.Zero(t, res.HistoryID)

	doc := readReport(t, filepath.Join(out, cobertura.ReportFileName))
	assert.Equal(t, []cobertura.Source{{Path: "/src/main/java"}}, doc.Sources.Source)
	class := doc.Packages.Package[0].Classes.Class[0]
	require.Len(t, class.Methods.Method, 1)
	method := class.Methods.Method[0]
	assert.Equal(t, "bar", method.Name)
	assert.Equal(t, "()V", method.Signature)
	assert.Equal(t, "4", method.Complexity)
	assert.Equal(t, "0.5", method.LineRate)
	require.Len(t, method.Lines.Line, 2)
	assert.Equal(t, "5", method.Lines.Line[0].Hits, "hits of merged inputs are summed")
}

func TestGenerateMergesCoberturaReports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "dump.yaml"), `packages:
  - name: pkg
    files:
      - name: pkg/Foo.java
        classes:
          - name: pkg.Foo
            methods:
              - {key: "bar()V", complexity: 2}
            lines:
              - {number: 10, hits: 3, method: "bar()V", conditions: [{jump: {number: 0, true_hits: 3}}]}
              - {number: 11, hits: 0, method: "bar()V"}
`)
	first := t.TempDir()
	_, err := NewReportContext(newConfig(first, filepath.Join(dir, "dump.yaml"))).Generate(context.Background())
	require.NoError(t, err)

	second := t.TempDir()
	previous := filepath.Join(first, cobertura.ReportFileName)
	res, err := NewReportContext(newConfig(second, previous, filepath.Join(dir, "dump.yaml"))).Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.InputFiles, 2)

	doc := readReport(t, filepath.Join(second, cobertura.ReportFileName))
	method := doc.Packages.Package[0].Classes.Class[0].Methods.Method[0]
	assert.Equal(t, "2", method.Complexity)
	require.Len(t, method.Lines.Line, 2)
	assert.Equal(t, "6", method.Lines.Line[0].Hits)
	assert.Equal(t, "50% (1/2)", method.Lines.Line[0].ConditionCoverage)
	assert.Equal(t, "0", method.Lines.Line[1].Hits)
}

func TestGenerateWithoutInputs(t *testing.T) {
	cfg := newConfig(t.TempDir(), filepath.Join(t.TempDir(), "*.out"))
	_, err := NewReportContext(cfg).Generate(context.Background())
	assert.ErrorIs(t, err, ErrNoInputFiles)
}

func TestGenerateRejectsInvalidConfiguration(t *testing.T) {
	cfg := newConfig(t.TempDir())
	_, err := NewReportContext(cfg).Generate(context.Background())
	assert.ErrorIs(t, err, reportconfig.ErrNoReports)
}

func TestExpandInputsReportsInvalidPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.out"), "mode: set\n")
	cfg := newConfig(t.TempDir(), filepath.Join(dir, "x.out")+";"+filepath.Join(dir, "none.out"), filepath.Join(dir, "*.out"))

	files, invalid := NewReportContext(cfg).expandInputs()
	assert.Equal(t, []string{filepath.Join(dir, "x.out")}, files)
	assert.Equal(t, []string{filepath.Join(dir, "none.out")}, invalid)
}
