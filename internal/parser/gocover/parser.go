// Package gocover reads Go cover profiles (`go test -coverprofile`) into
// the coverage model. Every Go source file becomes one class; its functions
// and methods, found with go/ast, become the class's methods.
package gocover

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filereader"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filesystem"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser"
)

// GoCoverParser implements parser.IParser for Go cover profiles.
type GoCoverParser struct {
	reader filereader.Reader
	fs     filesystem.Filesystem
}

// NewGoCoverParser creates a parser reading sources through reader and
// looking them up on fsys. Nil arguments select the disk implementations.
func NewGoCoverParser(reader filereader.Reader, fsys filesystem.Filesystem) *GoCoverParser {
	if reader == nil {
		reader = filereader.NewDiskReader()
	}
	if fsys == nil {
		fsys = filesystem.DefaultFS{}
	}
	return &GoCoverParser{reader: reader, fs: fsys}
}

func (p *GoCoverParser) Name() string {
	return "GoCover"
}

// SupportsFile reports whether the first non-empty line is a mode line.
func (p *GoCoverParser) SupportsFile(filePath string) bool {
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return strings.HasPrefix(line, modePrefix)
	}
	return false
}

func (p *GoCoverParser) Parse(ctx context.Context, filePath string, config parser.ParserConfig) (*parser.ParserResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cover profile %s: %w", filePath, err)
	}
	defer f.Close()

	prof, err := ParseProfile(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read cover profile %s: %w", filePath, err)
	}

	o := newProcessingOrchestrator(p.reader, p.fs, config)
	project, err := o.process(ctx, prof)
	if err != nil {
		return nil, err
	}

	result := &parser.ParserResult{Project: project, ParserName: p.Name()}
	if o.moduleRoot != "" {
		result.SourceDirectories = []string{o.moduleRoot}
	}
	return result, nil
}
