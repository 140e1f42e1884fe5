// Package glob expands the input file patterns given on the command line.
// Supported syntax:
//   - `?` matches one character of a name.
//   - `*` matches any run of characters inside a name.
//   - `**` matches zero or more directories.
//   - `[...]` matches a character class, `[!...]` its complement.
//   - `{a,b}` expands to one pattern per alternative; groups may nest.
//
// Matching ignores case by default.
package glob

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/IgorBayerl/ReportGenerator/cobertura_writer/internal/filesystem"
)

const globChars = "*?[{"

// Glob is a compiled-on-demand file pattern.
type Glob struct {
	pattern    string
	IgnoreCase bool
	fs         filesystem.Filesystem
}

// NewGlob creates a case-insensitive Glob. A nil fsys means the host filesystem.
func NewGlob(pattern string, fsys filesystem.Filesystem) *Glob {
	if fsys == nil {
		fsys = filesystem.DefaultFS{}
	}
	return &Glob{pattern: pattern, IgnoreCase: true, fs: fsys}
}

func (g *Glob) String() string {
	return g.pattern
}

// Expand returns the absolute paths of every file and directory matching the
// pattern, sorted and without duplicates. Unreadable directories are skipped
// with a warning; malformed patterns are errors.
func (g *Glob) Expand() ([]string, error) {
	patterns, err := ungroup(g.pattern)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var matches []string
	for _, p := range patterns {
		abs, err := g.fs.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pattern %q: %w", p, err)
		}
		vol := filepath.VolumeName(abs)
		root := vol + string(filepath.Separator)
		rest := strings.Trim(abs[len(vol):], string(filepath.Separator))
		var segments []string
		if rest != "" {
			segments = strings.Split(rest, string(filepath.Separator))
		}

		found, err := g.walk(root, segments)
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				matches = append(matches, m)
			}
		}
	}
	slices.Sort(matches)
	return matches, nil
}

func (g *Glob) walk(dir string, segments []string) ([]string, error) {
	if len(segments) == 0 {
		if _, err := g.fs.Stat(dir); err != nil {
			return nil, nil
		}
		return []string{dir}, nil
	}

	seg, rest := segments[0], segments[1:]
	if seg == "**" {
		matches, err := g.walk(dir, rest)
		if err != nil {
			return nil, err
		}
		entries, _ := g.fs.ReadDir(dir)
		for _, e := range entries {
			child := filepath.Join(dir, e.Name())
			if !e.IsDir() {
				// a trailing ** also matches the files below it
				if len(rest) == 0 {
					matches = append(matches, child)
				}
				continue
			}
			deeper, err := g.walk(child, segments)
			if err != nil {
				return nil, err
			}
			matches = append(matches, deeper...)
		}
		return matches, nil
	}

	if !strings.ContainsAny(seg, globChars) {
		next := filepath.Join(dir, seg)
		if _, err := g.fs.Stat(next); err != nil {
			return nil, nil
		}
		return g.walk(next, rest)
	}

	re, err := segmentRegexp(seg, g.IgnoreCase)
	if err != nil {
		return nil, err
	}
	entries, err := g.fs.ReadDir(dir)
	if err != nil {
		slog.Warn("Skipping unreadable directory during glob expansion", "directory", dir, "error", err)
		return nil, nil
	}
	var matches []string
	for _, e := range entries {
		if !re.MatchString(e.Name()) {
			continue
		}
		child := filepath.Join(dir, e.Name())
		if len(rest) == 0 {
			matches = append(matches, child)
			continue
		}
		if e.IsDir() {
			deeper, err := g.walk(child, rest)
			if err != nil {
				return nil, err
			}
			matches = append(matches, deeper...)
		}
	}
	return matches, nil
}

// segmentRegexp converts one path segment of a pattern into an anchored regexp.
func segmentRegexp(seg string, ignoreCase bool) (*regexp.Regexp, error) {
	var sb strings.Builder
	if ignoreCase {
		sb.WriteString("(?i)")
	}
	sb.WriteByte('^')
	for i := 0; i < len(seg); i++ {
		switch c := seg[i]; c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteByte('.')
		case '[':
			end := strings.IndexByte(seg[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated character class in glob segment %q", seg)
			}
			class := seg[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			sb.WriteString("[" + class + "]")
			i += end + 1
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteByte('$')
	return regexp.Compile(sb.String())
}

// ungroup expands brace groups: "a{b,c}d" becomes "abd" and "acd".
func ungroup(pattern string) ([]string, error) {
	open := strings.IndexByte(pattern, '{')
	if open < 0 {
		if strings.ContainsRune(pattern, '}') {
			return nil, fmt.Errorf("unbalanced braces in pattern %q", pattern)
		}
		return []string{pattern}, nil
	}

	depth, start := 0, open+1
	var alternatives []string
	for i := open; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth++
		case ',':
			if depth == 1 {
				alternatives = append(alternatives, pattern[start:i])
				start = i + 1
			}
		case '}':
			depth--
			if depth > 0 {
				continue
			}
			alternatives = append(alternatives, pattern[start:i])
			prefix, suffix := pattern[:open], pattern[i+1:]
			var out []string
			for _, alt := range alternatives {
				expanded, err := ungroup(prefix + alt + suffix)
				if err != nil {
					return nil, err
				}
				out = append(out, expanded...)
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("unbalanced braces in pattern %q", pattern)
}

// ExpandFiles expands pattern against fsys and keeps only regular files.
func ExpandFiles(fsys filesystem.Filesystem, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil
	}
	matches, err := NewGlob(pattern, fsys).Expand()
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		if info, err := fsys.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	return files, nil
}

// SplitPatterns splits a list of patterns on ';' and ',' but never inside a
// brace group, so "{a,b}.out;c.out" yields "{a,b}.out" and "c.out".
func SplitPatterns(s string) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	flush := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			parts = append(parts, p)
		}
		current.Reset()
	}
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case (r == ';' || r == ',') && depth == 0:
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return parts
}
