package complexity

import (
	"go/parser"
	"go/token"
	"log/slog"
	"strings"
	"sync"

	"github.com/fzipp/gocyclo"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
)

// FileResolver maps a file name recorded in coverage data to a readable path.
type FileResolver interface {
	FindFile(path string) (string, error)
}

// GoCyclo computes the complexity of Go functions with gocyclo. Every source
// file is analyzed once; results are cached by the class's file name.
type GoCyclo struct {
	resolver FileResolver

	mu    sync.Mutex
	cache map[string]map[string]int
}

// NewGoCyclo creates a GoCyclo source resolving files through resolver.
func NewGoCyclo(resolver FileResolver) *GoCyclo {
	return &GoCyclo{resolver: resolver, cache: make(map[string]map[string]int)}
}

func (g *GoCyclo) MethodComplexity(class *model.Class, name, _ string) (int, bool) {
	if !strings.HasSuffix(strings.ToLower(class.SourceFileName), ".go") {
		return 0, false
	}
	ccn, ok := g.fileStats(class.SourceFileName)[name]
	return ccn, ok
}

func (g *GoCyclo) fileStats(fileName string) map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if stats, ok := g.cache[fileName]; ok {
		return stats
	}
	stats := make(map[string]int)
	g.cache[fileName] = stats

	path, err := g.resolver.FindFile(fileName)
	if err != nil {
		slog.Debug("Skipping complexity analysis, source file not found", "file", fileName, "error", err)
		return stats
	}

	// gocyclo.Analyze exits the process on a syntax error, so the file is
	// parsed here and only the AST is handed over.
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		slog.Warn("Skipping complexity analysis, source file does not parse", "file", path, "error", err)
		return stats
	}
	for _, s := range gocyclo.AnalyzeASTFile(f, fset, nil) {
		name := FuncName(s.FuncName)
		if s.Complexity > stats[name] {
			stats[name] = s.Complexity
		}
	}
	return stats
}

// FuncName turns a gocyclo function name such as "(*Stack[T]).Push" into the
// "Stack.Push" form used for Go method names in the model.
func FuncName(name string) string {
	if !strings.HasPrefix(name, "(") {
		return name
	}
	recv, fn, ok := strings.Cut(name[1:], ").")
	if !ok {
		return name
	}
	recv = strings.TrimLeft(recv, "*")
	if i := strings.IndexByte(recv, '['); i >= 0 {
		recv = recv[:i]
	}
	return recv + "." + fn
}
