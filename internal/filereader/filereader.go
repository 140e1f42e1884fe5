// Package filereader reads source files referenced by coverage data,
// decoding them to UTF-8 whatever encoding they were saved in.
package filereader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffLen is how many leading bytes are inspected to guess the encoding.
const sniffLen = 1024

// Reader reads source files as UTF-8 text.
type Reader interface {
	ReadFile(path string) ([]byte, error)
	ReadLines(path string) ([]string, error)
}

// DiskReader implements Reader on top of the operating system.
type DiskReader struct{}

// NewDiskReader creates a DiskReader.
func NewDiskReader() *DiskReader {
	return &DiskReader{}
}

// ReadFile returns the whole file decoded to UTF-8 with any byte order mark removed.
func (r *DiskReader) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(Decode(f))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return data, nil
}

// ReadLines returns the lines of the file without their line terminators.
func (r *DiskReader) ReadLines(path string) ([]string, error) {
	data, err := r.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(data)
}

// Decode wraps r so that reading from it yields UTF-8. The encoding is
// detected from a byte order mark or, failing that, from the content itself.
func Decode(r io.Reader) io.Reader {
	br := bufio.NewReaderSize(r, sniffLen)
	head, _ := br.Peek(sniffLen)

	enc, _, _ := charset.DetermineEncoding(head, "text/plain")
	// A leading byte order mark wins over the guess and is dropped.
	return transform.NewReader(br, unicode.BOMOverride(enc.NewDecoder()))
}

// SplitLines splits decoded text into lines. Both "\n" and "\r\n" end a line.
func SplitLines(data []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}
