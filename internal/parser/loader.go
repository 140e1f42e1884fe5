package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
)

// ErrNoCoverageData is returned when none of the inputs could be read.
var ErrNoCoverageData = errors.New("no coverage data could be loaded")

// LoadResult is the merged outcome of loading several inputs.
type LoadResult struct {
	Project *model.Project
	// SourceDirectories collects the directories declared by the inputs, in
	// input order and without duplicates.
	SourceDirectories []string
	ParserNames       []string
	LoadedFiles       []string
}

// LoadAll parses every file with the parser the factory selects for it.
// Files are parsed concurrently, at most parallel at a time (one per CPU when
// parallel < 1), and merged in input order so the result does not depend on
// scheduling. Files no parser accepts are skipped with a warning; a parse
// failure aborts the load.
func LoadAll(ctx context.Context, factory *Factory, files []string, config ParserConfig, parallel int) (*LoadResult, error) {
	results := make([]*ParserResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(parallel))
	for i, file := range files {
		p, err := factory.FindParserForFile(file)
		if err != nil {
			slog.Warn("Skipping coverage input", "file", file, "error", err)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slog.Debug("Parsing coverage input", "file", file, "parser", p.Name())
			res, err := p.Parse(gctx, file, config)
			if err != nil {
				return fmt.Errorf("failed to parse %s with %s parser: %w", file, p.Name(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &LoadResult{Project: model.NewProject()}
	for i, res := range results {
		if res == nil || res.Project == nil {
			continue
		}
		merged.Project.Merge(res.Project)
		merged.LoadedFiles = append(merged.LoadedFiles, files[i])
		if !slices.Contains(merged.ParserNames, res.ParserName) {
			merged.ParserNames = append(merged.ParserNames, res.ParserName)
		}
		for _, dir := range res.SourceDirectories {
			if !slices.Contains(merged.SourceDirectories, dir) {
				merged.SourceDirectories = append(merged.SourceDirectories, dir)
			}
		}
	}
	if len(merged.LoadedFiles) == 0 {
		return nil, ErrNoCoverageData
	}

	slog.Info("Coverage inputs loaded", "files", len(merged.LoadedFiles), "parsers", merged.ParserNames)
	return merged, nil
}

// workerLimit is parallel, or the number of usable CPUs when parallel < 1.
func workerLimit(parallel int) int {
	if parallel < 1 {
		return runtime.GOMAXPROCS(0)
	}
	return parallel
}
