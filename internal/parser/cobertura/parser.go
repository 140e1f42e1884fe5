// Package cobertura reads existing Cobertura coverage.xml reports back into
// the coverage model, so reports produced elsewhere can be merged with other
// inputs.
package cobertura

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser"
	report "github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/reporter/cobertura"
)

// ErrInvalidReport is returned for XML that is not a usable Cobertura report.
var ErrInvalidReport = errors.New("invalid cobertura report")

// CoberturaParser implements parser.IParser for Cobertura XML reports.
type CoberturaParser struct{}

// NewCoberturaParser creates a new CoberturaParser.
func NewCoberturaParser() *CoberturaParser {
	return &CoberturaParser{}
}

func (cp *CoberturaParser) Name() string {
	return "Cobertura"
}

// SupportsFile accepts .xml files whose root element is <coverage>.
func (cp *CoberturaParser) SupportsFile(filePath string) bool {
	if !strings.HasSuffix(strings.ToLower(filePath), ".xml") {
		return false
	}
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	decoder := newDecoder(f)
	for {
		token, err := decoder.Token()
		if err != nil {
			return false
		}
		if se, ok := token.(xml.StartElement); ok {
			return se.Name.Local == "coverage"
		}
	}
}

func (cp *CoberturaParser) Parse(ctx context.Context, filePath string, config parser.ParserConfig) (*parser.ParserResult, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Cobertura report %s: %w", filePath, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Cobertura report %s: %w", filePath, err)
	}

	o := newProcessingOrchestrator(config)
	project, err := o.process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("cobertura report %s: %w", filePath, err)
	}
	return &parser.ParserResult{
		Project:           project,
		SourceDirectories: project.SourceDirectories(),
		ParserName:        cp.Name(),
	}, nil
}

// Decode reads a coverage document. Encodings other than UTF-8 are honoured
// when the XML declaration names them.
func Decode(r io.Reader) (*report.Coverage, error) {
	var doc report.Coverage
	if err := newDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return &doc, nil
}

func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}
