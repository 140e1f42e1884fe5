package cobertura

import "encoding/xml"

// The element types below mirror coverage-04.dtd. Field order fixes the
// attribute and child order of the emitted document. Wrapper elements are
// values, not pointers, so they are always written even when empty.

// Coverage is the document root.
type Coverage struct {
	XMLName         xml.Name `xml:"coverage"`
	LineRate        string   `xml:"line-rate,attr"`
	BranchRate      string   `xml:"branch-rate,attr"`
	LinesCovered    string   `xml:"lines-covered,attr"`
	LinesValid      string   `xml:"lines-valid,attr"`
	BranchesCovered string   `xml:"branches-covered,attr"`
	BranchesValid   string   `xml:"branches-valid,attr"`
	Complexity      string   `xml:"complexity,attr"`
	Version         string   `xml:"version,attr"`
	Timestamp       string   `xml:"timestamp,attr"`
	Sources         Sources  `xml:"sources"`
	Packages        Packages `xml:"packages"`
}

type Sources struct {
	Source []Source `xml:"source"`
}

type Source struct {
	Path string `xml:",chardata"`
}

type Packages struct {
	Package []Package `xml:"package"`
}

type Package struct {
	Name       string  `xml:"name,attr"`
	LineRate   string  `xml:"line-rate,attr"`
	BranchRate string  `xml:"branch-rate,attr"`
	Complexity string  `xml:"complexity,attr"`
	Classes    Classes `xml:"classes"`
}

type Classes struct {
	Class []Class `xml:"class"`
}

type Class struct {
	Name       string  `xml:"name,attr"`
	Filename   string  `xml:"filename,attr"`
	LineRate   string  `xml:"line-rate,attr"`
	BranchRate string  `xml:"branch-rate,attr"`
	Complexity string  `xml:"complexity,attr"`
	Methods    Methods `xml:"methods"`
	Lines      Lines   `xml:"lines"`
}

type Methods struct {
	Method []Method `xml:"method"`
}

type Method struct {
	Name       string `xml:"name,attr"`
	Signature  string `xml:"signature,attr"`
	LineRate   string `xml:"line-rate,attr"`
	BranchRate string `xml:"branch-rate,attr"`
	Complexity string `xml:"complexity,attr"`
	Lines      Lines  `xml:"lines"`
}

type Lines struct {
	Line []Line `xml:"line"`
}

type Line struct {
	Number            string     `xml:"number,attr"`
	Hits              string     `xml:"hits,attr"`
	Branch            string     `xml:"branch,attr"`
	ConditionCoverage string     `xml:"condition-coverage,attr"`
	Conditions        Conditions `xml:"conditions"`
}

type Conditions struct {
	Condition []Condition `xml:"condition"`
}

// Condition describes one branch point. Type is only set for switches; a
// missing type means a jump.
type Condition struct {
	Coverage string `xml:"coverage,attr"`
	Number   string `xml:"number,attr"`
	Type     string `xml:"type,attr,omitempty"`
}
