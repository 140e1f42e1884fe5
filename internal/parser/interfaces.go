// Package parser turns coverage input files into the coverage model.
// Concrete readers live in sub-packages and are selected per file by a
// Factory.
package parser

import (
	"context"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser/filtering"
)

// ParserResult holds the data read from a single coverage input.
type ParserResult struct {
	Project *model.Project
	// SourceDirectories are source roots the input itself declares or
	// implies, such as the module root of a Go profile.
	SourceDirectories []string
	ParserName        string
}

// ParserConfig is the part of the report configuration a parser needs.
type ParserConfig interface {
	SourceDirectories() []string
	PackageFilters() filtering.IFilter
	ClassFilters() filtering.IFilter
	FileFilters() filtering.IFilter
}

// IParser defines the contract for all coverage input parsers.
type IParser interface {
	Name() string
	SupportsFile(filePath string) bool
	Parse(ctx context.Context, filePath string, config ParserConfig) (*ParserResult, error)
}
