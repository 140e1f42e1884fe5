package modeldump

// Document is the serialized coverage model. JSON documents use the same
// field names.
type Document struct {
	Sources  []string      `yaml:"sources"`
	Packages []PackageDump `yaml:"packages"`
}

type PackageDump struct {
	Name  string     `yaml:"name"`
	Files []FileDump `yaml:"files"`
}

type FileDump struct {
	Name    string      `yaml:"name"`
	Classes []ClassDump `yaml:"classes"`
}

type ClassDump struct {
	Name    string       `yaml:"name"`
	Methods []MethodDump `yaml:"methods"`
	Lines   []LineDump   `yaml:"lines"`
}

// MethodDump names a method either by Key ("name(signature)") or by Name
// and Signature.
type MethodDump struct {
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	Signature  string `yaml:"signature"`
	Complexity *int   `yaml:"complexity"`
}

type LineDump struct {
	Number     int             `yaml:"number"`
	Hits       int64           `yaml:"hits"`
	Method     string          `yaml:"method"`
	Conditions []ConditionDump `yaml:"conditions"`
}

// ConditionDump holds exactly one of Jump or Switch.
type ConditionDump struct {
	Jump   *JumpDump   `yaml:"jump"`
	Switch *SwitchDump `yaml:"switch"`
}

type JumpDump struct {
	Number    int   `yaml:"number"`
	TrueHits  int64 `yaml:"true_hits"`
	FalseHits int64 `yaml:"false_hits"`
}

type SwitchDump struct {
	Number      int     `yaml:"number"`
	DefaultHits int64   `yaml:"default_hits"`
	CaseHits    []int64 `yaml:"case_hits"`
}
