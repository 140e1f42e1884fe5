package gocover

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidProfile is returned for input that is not a Go cover profile.
var ErrInvalidProfile = errors.New("invalid go cover profile")

const modePrefix = "mode:"

// ProfileBlock is one line of a cover profile:
//
//	import/path/file.go:startLine.startCol,endLine.endCol numStmt count
type ProfileBlock struct {
	FileName  string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	NumStmt   int
	Count     int64
}

// Profile is a parsed cover profile.
type Profile struct {
	Mode   string
	Blocks []ProfileBlock
}

// ParseProfile reads a profile written by `go test -coverprofile`. Several
// profiles concatenated into one file are accepted; later mode lines are
// skipped.
func ParseProfile(r io.Reader) (*Profile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var prof *Profile
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, modePrefix) {
			if prof == nil {
				prof = &Profile{Mode: strings.TrimSpace(strings.TrimPrefix(line, modePrefix))}
			}
			continue
		}
		if prof == nil {
			return nil, fmt.Errorf("%w: first line should be 'mode: <mode>'", ErrInvalidProfile)
		}
		block, err := parseBlock(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidProfile, lineNum, err)
		}
		prof.Blocks = append(prof.Blocks, block)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cover profile: %w", err)
	}
	if prof == nil {
		return nil, fmt.Errorf("%w: missing mode line", ErrInvalidProfile)
	}
	return prof, nil
}

func parseBlock(line string) (ProfileBlock, error) {
	// The last colon separates the file name, which may carry a drive letter.
	colon := strings.LastIndexByte(line, ':')
	if colon < 0 {
		return ProfileBlock{}, errors.New("missing colon separator")
	}
	fields := strings.Fields(line[colon+1:])
	if len(fields) != 3 {
		return ProfileBlock{}, fmt.Errorf("expected 3 fields after colon, got %d", len(fields))
	}
	start, end, ok := strings.Cut(fields[0], ",")
	if !ok {
		return ProfileBlock{}, errors.New("invalid position: missing comma")
	}

	b := ProfileBlock{FileName: line[:colon]}
	var err error
	if b.StartLine, b.StartCol, err = parsePosition(start); err != nil {
		return ProfileBlock{}, fmt.Errorf("start position: %w", err)
	}
	if b.EndLine, b.EndCol, err = parsePosition(end); err != nil {
		return ProfileBlock{}, fmt.Errorf("end position: %w", err)
	}
	if b.NumStmt, err = strconv.Atoi(fields[1]); err != nil {
		return ProfileBlock{}, fmt.Errorf("statement count: %w", err)
	}
	if b.Count, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
		return ProfileBlock{}, fmt.Errorf("execution count: %w", err)
	}
	if b.EndLine < b.StartLine {
		return ProfileBlock{}, fmt.Errorf("block ends on line %d before it starts on line %d", b.EndLine, b.StartLine)
	}
	return b, nil
}

func parsePosition(s string) (line, col int, err error) {
	l, c, ok := strings.Cut(s, ".")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not line.column", s)
	}
	if line, err = strconv.Atoi(l); err != nil {
		return 0, 0, err
	}
	if col, err = strconv.Atoi(c); err != nil {
		return 0, 0, err
	}
	return line, col, nil
}

// FileNames returns the distinct file names of the profile in order of
// first appearance.
func (p *Profile) FileNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, b := range p.Blocks {
		if _, ok := seen[b.FileName]; !ok {
			seen[b.FileName] = struct{}{}
			names = append(names, b.FileName)
		}
	}
	return names
}

// BlocksByFile groups the blocks by file name, keeping profile order.
func (p *Profile) BlocksByFile() map[string][]ProfileBlock {
	blocks := make(map[string][]ProfileBlock)
	for _, b := range p.Blocks {
		blocks[b.FileName] = append(blocks[b.FileName], b)
	}
	return blocks
}
