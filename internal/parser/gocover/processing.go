package gocover

import (
	"cmp"
	"context"
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filereader"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filesystem"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser"
)

// rootPackageName names the package of files that sit directly in the
// module root when the module path is unknown.
const rootPackageName = "(root)"

// processingOrchestrator holds dependencies and state for a single parse.
type processingOrchestrator struct {
	reader filereader.Reader
	fs     filesystem.Filesystem
	config parser.ParserConfig
	finder *filesystem.SourceFinder

	modulePath string
	moduleRoot string
}

// goFunc is a function declaration found in a source file.
type goFunc struct {
	name      string
	signature string
	startLine int
	endLine   int
}

type lineInfo struct {
	hits          int64
	isLastInBlock bool
}

func newProcessingOrchestrator(reader filereader.Reader, fsys filesystem.Filesystem, config parser.ParserConfig) *processingOrchestrator {
	return &processingOrchestrator{reader: reader, fs: fsys, config: config}
}

func (o *processingOrchestrator) process(ctx context.Context, prof *Profile) (*model.Project, error) {
	project := model.NewProject()
	fileNames := prof.FileNames()
	if len(fileNames) == 0 {
		return project, nil
	}

	dirs := o.config.SourceDirectories()
	if len(dirs) == 0 {
		// Profiles are usually written from the module root.
		if wd, err := o.fs.Getwd(); err == nil {
			dirs = []string{wd}
		}
	}
	o.finder = filesystem.NewSourceFinder(o.fs, dirs)
	o.discoverModule(fileNames[0])
	if o.moduleRoot != "" {
		project.AddSourceDirectory(o.moduleRoot)
	}

	blocksByFile := prof.BlocksByFile()

	for _, fileName := range fileNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := o.processFile(project, fileName, blocksByFile[fileName]); err != nil {
			return nil, fmt.Errorf("file %s: %w", fileName, err)
		}
	}
	return project, nil
}

// discoverModule looks for the go.mod above the first profiled file. Profile
// file names are import paths, so knowing the module lets them be mapped back
// to paths relative to the module root.
func (o *processingOrchestrator) discoverModule(fileName string) {
	resolved, err := o.finder.FindFile(fileName)
	if err != nil {
		slog.Warn("Could not locate profiled source, module discovery skipped.", "file", fileName)
		return
	}

	dir := filepath.Dir(resolved)
	for {
		goMod := filepath.Join(dir, "go.mod")
		if _, err := o.fs.Stat(goMod); err == nil {
			modulePath, err := o.readModulePath(goMod)
			if err != nil {
				slog.Warn("Could not read module path.", "file", goMod, "error", err)
				return
			}
			if !strings.HasPrefix(fileName, modulePath+"/") {
				slog.Warn("Profiled file is not part of the discovered module.", "file", fileName, "module", modulePath)
				return
			}
			o.modulePath, o.moduleRoot = modulePath, dir
			slog.Info("Discovered Go module", "module", modulePath, "root", dir)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			slog.Warn("go.mod not found above profiled source.", "file", resolved)
			return
		}
		dir = parent
	}
}

func (o *processingOrchestrator) readModulePath(goMod string) (string, error) {
	lines, err := o.reader.ReadLines(goMod)
	if err != nil {
		return "", err
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "module"); ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t') {
			mod := strings.TrimSpace(rest)
			if unquoted, err := strconv.Unquote(mod); err == nil {
				mod = unquoted
			}
			return mod, nil
		}
	}
	return "", fmt.Errorf("'module' directive not found in %s", goMod)
}

// relativeName strips the module path from an import-path file name.
func (o *processingOrchestrator) relativeName(fileName string) string {
	if o.modulePath != "" {
		if rel, ok := strings.CutPrefix(fileName, o.modulePath+"/"); ok {
			return rel
		}
	}
	return fileName
}

func (o *processingOrchestrator) packageName(fileName string) string {
	dir := path.Dir(fileName)
	if dir != "." {
		return dir
	}
	if o.modulePath != "" {
		return o.modulePath
	}
	return rootPackageName
}

func (o *processingOrchestrator) resolve(fileName string) (string, error) {
	if o.moduleRoot != "" {
		candidate := filepath.Join(o.moduleRoot, filepath.FromSlash(o.relativeName(fileName)))
		if info, err := o.fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return o.finder.FindFile(fileName)
}

func (o *processingOrchestrator) processFile(project *model.Project, fileName string, blocks []ProfileBlock) error {
	if !o.config.FileFilters().IsElementIncludedInReport(fileName) {
		return nil
	}
	pkgName := o.packageName(fileName)
	if !o.config.PackageFilters().IsElementIncludedInReport(pkgName) {
		return nil
	}
	className := strings.TrimSuffix(fileName, ".go")
	if !o.config.ClassFilters().IsElementIncludedInReport(className) {
		return nil
	}

	lineData := make(map[int]lineInfo)
	for _, block := range blocks {
		for line := block.StartLine; line <= block.EndLine; line++ {
			info := lineData[line]
			info.hits = max(info.hits, block.Count)
			if line == block.EndLine {
				info.isLastInBlock = true
			}
			lineData[line] = info
		}
	}

	var sourceLines []string
	var funcs []goFunc
	if resolved, err := o.resolve(fileName); err != nil {
		slog.Warn("Source file not found, methods will be missing.", "file", fileName, "error", err)
	} else if src, err := o.reader.ReadFile(resolved); err != nil {
		slog.Warn("Source file could not be read, methods will be missing.", "file", resolved, "error", err)
	} else {
		if sourceLines, err = filereader.SplitLines(src); err != nil {
			slog.Warn("Source file could not be split into lines, closing braces will be kept.", "file", resolved, "error", err)
		}
		if funcs, err = parseGoFunctions(resolved, src); err != nil {
			slog.Warn("Failed to parse Go source, methods will be missing.", "file", resolved, "error", err)
		}
	}

	class := project.Package(pkgName).SourceFile(o.relativeName(fileName)).Class(className)
	for _, num := range slices.Sorted(maps.Keys(lineData)) {
		info := lineData[num]
		// A closing brace that only ends a block is not an executable line.
		if info.isLastInBlock && num <= len(sourceLines) && strings.TrimSpace(sourceLines[num-1]) == "}" {
			continue
		}
		var methodKey string
		if fn, ok := funcAt(funcs, num); ok {
			methodKey = model.MethodKey(fn.name, fn.signature)
		}
		l, err := class.AddLine(num, methodKey)
		if err != nil {
			return err
		}
		l.Hit(info.hits)
	}
	return nil
}

// funcAt returns the function declaration spanning line. Function
// literals belong to the declaration that contains them.
func funcAt(funcs []goFunc, line int) (goFunc, bool) {
	i, found := slices.BinarySearchFunc(funcs, line, func(f goFunc, line int) int {
		switch {
		case line < f.startLine:
			return 1
		case line > f.endLine:
			return -1
		}
		return 0
	})
	if !found {
		return goFunc{}, false
	}
	return funcs[i], true
}

// parseGoFunctions lists the top-level function declarations of a source
// file ordered by position.
func parseGoFunctions(fileName string, src []byte) ([]goFunc, error) {
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, fileName, src, goparser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go source: %w", err)
	}

	var funcs []goFunc
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		name := fn.Name.Name
		if fn.Recv != nil && len(fn.Recv.List) > 0 {
			if recv := receiverTypeName(fn.Recv.List[0].Type); recv != "" {
				name = recv + "." + name
			}
		}
		funcs = append(funcs, goFunc{
			name:      name,
			signature: signature(fn.Type),
			startLine: fset.Position(fn.Pos()).Line,
			endLine:   fset.Position(fn.End()).Line,
		})
	}
	slices.SortFunc(funcs, func(a, b goFunc) int { return cmp.Compare(a.startLine, b.startLine) })
	return funcs, nil
}

// receiverTypeName reduces "*Stack[T]" to "Stack".
func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.ParenExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	}
	return ""
}

// signature renders parameter and result types, e.g. "(int, int) (int, error)".
func signature(ft *ast.FuncType) string {
	sig := "(" + strings.Join(fieldTypes(ft.Params), ", ") + ")"
	results := fieldTypes(ft.Results)
	switch len(results) {
	case 0:
	case 1:
		sig += " " + results[0]
	default:
		sig += " (" + strings.Join(results, ", ") + ")"
	}
	return sig
}

func fieldTypes(fields *ast.FieldList) []string {
	if fields == nil {
		return nil
	}
	var out []string
	for _, f := range fields.List {
		typ := types.ExprString(f.Type)
		for range max(len(f.Names), 1) {
			out = append(out, typ)
		}
	}
	return out
}
