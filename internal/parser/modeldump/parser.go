// Package modeldump reads a coverage model serialized as YAML or JSON, as
// written by external collectors that already know classes, methods and
// branch conditions.
package modeldump

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/model"
	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/parser"
)

var (
	// ErrInvalidCondition is returned for a condition that is neither a
	// jump nor a switch, or claims to be both.
	ErrInvalidCondition = errors.New("condition must be exactly one of jump or switch")
	// ErrInvalidLine is returned for line numbers below 1 or negative hits.
	ErrInvalidLine = errors.New("invalid line")
)

var supportedExtensions = []string{".yaml", ".yml", ".json"}

// ModelDumpParser implements parser.IParser for model dumps.
type ModelDumpParser struct{}

func NewModelDumpParser() *ModelDumpParser {
	return &ModelDumpParser{}
}

func (p *ModelDumpParser) Name() string {
	return "ModelDump"
}

// SupportsFile accepts YAML and JSON files with a top-level packages key.
func (p *ModelDumpParser) SupportsFile(filePath string) bool {
	if !slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(filePath))) {
		return false
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false
	}
	var head struct {
		Packages yaml.Node `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return false
	}
	return head.Packages.Kind == yaml.SequenceNode
}

func (p *ModelDumpParser) Parse(ctx context.Context, filePath string, config parser.ParserConfig) (*parser.ParserResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model dump %s: %w", filePath, err)
	}
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode model dump %s: %w", filePath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	project, err := Build(doc, config)
	if err != nil {
		return nil, fmt.Errorf("model dump %s: %w", filePath, err)
	}
	return &parser.ParserResult{
		Project:           project,
		SourceDirectories: project.SourceDirectories(),
		ParserName:        p.Name(),
	}, nil
}

// Decode reads a Document, rejecting unknown fields.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &doc, nil
}

// Build turns a Document into a project, applying the configured filters.
func Build(doc *Document, config parser.ParserConfig) (*model.Project, error) {
	project := model.NewProject()
	for _, dir := range doc.Sources {
		project.AddSourceDirectory(dir)
	}

	for _, pd := range doc.Packages {
		if !config.PackageFilters().IsElementIncludedInReport(pd.Name) {
			continue
		}
		for _, fd := range pd.Files {
			if !config.FileFilters().IsElementIncludedInReport(fd.Name) {
				continue
			}
			for _, cd := range fd.Classes {
				if !config.ClassFilters().IsElementIncludedInReport(cd.Name) {
					continue
				}
				class := project.Package(pd.Name).SourceFile(fd.Name).Class(cd.Name)
				if err := fillClass(class, cd); err != nil {
					return nil, fmt.Errorf("class %s: %w", cd.Name, err)
				}
			}
		}
	}
	return project, nil
}

func fillClass(class *model.Class, cd ClassDump) error {
	for _, md := range cd.Methods {
		key := md.Key
		if key == "" {
			key = model.MethodKey(md.Name, md.Signature)
		}
		if err := class.AddMethod(key); err != nil {
			return err
		}
		if md.Complexity != nil {
			class.RecordComplexity(key, *md.Complexity)
		}
	}

	for _, ld := range cd.Lines {
		if ld.Number < 1 || ld.Hits < 0 {
			return fmt.Errorf("%w: number %d, hits %d", ErrInvalidLine, ld.Number, ld.Hits)
		}
		line, err := class.AddLine(ld.Number, ld.Method)
		if err != nil {
			return err
		}
		line.Hit(ld.Hits)
		for _, c := range ld.Conditions {
			cond, err := c.condition()
			if err != nil {
				return fmt.Errorf("line %d: %w", ld.Number, err)
			}
			line.AddCondition(cond)
		}
	}
	return nil
}

func (c ConditionDump) condition() (model.Condition, error) {
	switch {
	case c.Jump != nil && c.Switch == nil:
		return model.JumpCondition{Number: c.Jump.Number, TrueHits: c.Jump.TrueHits, FalseHits: c.Jump.FalseHits}, nil
	case c.Switch != nil && c.Jump == nil:
		return model.SwitchCondition{Number: c.Switch.Number, DefaultHits: c.Switch.DefaultHits, CaseHits: c.Switch.CaseHits}, nil
	}
	return nil, ErrInvalidCondition
}
