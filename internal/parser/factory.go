package parser

import (
	"errors"
	"fmt"
)

// ErrNoParser is returned when no registered parser accepts a file.
var ErrNoParser = errors.New("no suitable parser found")

// Factory selects the parser for an input file.
type Factory struct {
	parsers []IParser
}

// NewFactory creates a Factory over the given parsers, tried in order.
func NewFactory(parsers ...IParser) *Factory {
	f := &Factory{}
	for _, p := range parsers {
		f.Register(p)
	}
	return f
}

// Register adds a parser. Registering two parsers with the same name is a
// programming error and panics.
func (f *Factory) Register(p IParser) {
	for _, existing := range f.parsers {
		if existing.Name() == p.Name() {
			panic(fmt.Sprintf("parser %q registered twice", p.Name()))
		}
	}
	f.parsers = append(f.parsers, p)
}

// FindParserForFile returns the first parser whose SupportsFile accepts filePath.
func (f *Factory) FindParserForFile(filePath string) (IParser, error) {
	for _, p := range f.parsers {
		if p.SupportsFile(filePath) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w for file: %s", ErrNoParser, filePath)
}
