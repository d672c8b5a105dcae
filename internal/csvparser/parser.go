// =============================================================================
// Sales Report Generator - Delimited Line Parser
// =============================================================================
//
// This module reads the semicolon-delimited files consumed by the tool:
//   - the salespeople file
//   - the products file
//   - the per-salesperson transaction files
//
// Every physical line is one record. Fields are split on a single delimiter
// character with no quoting rules, so a garbled line can never swallow the
// lines that follow it. This is why encoding/csv is not used here: its quote
// handling joins lines across a stray quote character.
//
// NORMALISATION:
//   - A UTF-8 byte order mark on the first line is removed
//   - A trailing carriage return is removed (CRLF input)
//   - Trailing empty fields are dropped ("a;b;;" has 2 fields)
//   - A blank line has 0 fields
//   - A line longer than MaxLineSize is consumed up to its newline and
//     reported by Oversized with 0 fields; reading continues
//
// =============================================================================

package csvparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultDelimiter separates fields in every input and output file.
const DefaultDelimiter = ';'

const utf8BOM = "\ufeff"

// MaxLineSize bounds a single line, terminator included. Longer lines are
// discarded without buffering them.
const MaxLineSize = 1024 * 1024

// =============================================================================
// FIELD SPLITTING
// =============================================================================

// SplitFields splits a line on the delimiter and drops trailing empty fields.
func SplitFields(line string, delimiter rune) []string {
	fields := strings.Split(line, string(delimiter))
	end := len(fields)
	for end > 0 && fields[end-1] == "" {
		end--
	}
	return fields[:end]
}

// JoinFields is the inverse of SplitFields for writing output records.
func JoinFields(delimiter rune, fields ...string) string {
	return strings.Join(fields, string(delimiter))
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads a delimited file one line at a time.
//
// USAGE:
//
//	parser, err := csvparser.Open(path, ';')
//	if err != nil {
//	    return err
//	}
//	defer parser.Close()
//
//	for parser.Next() {
//	    fields := parser.Fields()
//	    // Process the record...
//	}
//
//	if err := parser.Err(); err != nil {
//	    return err
//	}
type StreamingParser struct {
	closer    io.Closer
	reader    *bufio.Reader
	delimiter rune
	line      string
	fields    []string
	oversized bool
	rowNumber int
	eof       bool
	err       error
}

// Open opens a file for streaming. The returned error wraps the os error so
// callers can test it with errors.Is(err, fs.ErrNotExist).
func Open(filePath string, delimiter rune) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser := NewStreamingParser(file, delimiter)
	parser.closer = file
	return parser, nil
}

// NewStreamingParser wraps an arbitrary reader.
func NewStreamingParser(r io.Reader, delimiter rune) *StreamingParser {
	return &StreamingParser{
		reader:    bufio.NewReaderSize(r, 64*1024),
		delimiter: delimiter,
	}
}

// Next advances to the next line. Returns false at end of input or on a
// read error (see Err).
func (p *StreamingParser) Next() bool {
	if p.err != nil || p.eof {
		return false
	}

	var buf []byte
	read := 0
	oversized := false

	for {
		chunk, err := p.reader.ReadSlice('\n')
		read += len(chunk)
		if !oversized {
			if read > MaxLineSize {
				oversized = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err == io.EOF {
			p.eof = true
			if read == 0 {
				return false
			}
			break
		}
		p.err = fmt.Errorf("error reading line %d: %w", p.rowNumber+1, err)
		return false
	}

	p.rowNumber++
	p.oversized = oversized

	if oversized {
		p.line = ""
		p.fields = nil
		return true
	}

	line := strings.TrimSuffix(string(buf), "\n")
	if p.rowNumber == 1 {
		line = strings.TrimPrefix(line, utf8BOM)
	}
	line = strings.TrimSuffix(line, "\r")

	p.line = line
	p.fields = SplitFields(line, p.delimiter)
	return true
}

// Fields returns the fields of the current line.
func (p *StreamingParser) Fields() []string {
	return p.fields
}

// Line returns the current line without its terminator.
func (p *StreamingParser) Line() string {
	return p.line
}

// IsBlank reports whether the current line has no content. An oversized
// line is never blank.
func (p *StreamingParser) IsBlank() bool {
	return !p.oversized && strings.TrimSpace(p.line) == ""
}

// Oversized reports whether the current line exceeded MaxLineSize. Its
// content was discarded and Fields is empty.
func (p *StreamingParser) Oversized() bool {
	return p.oversized
}

// RowNumber returns the current line number (1-indexed).
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns any error that occurred during reading.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file, if the parser owns one.
func (p *StreamingParser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
