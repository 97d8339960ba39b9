// Package normalize turns the body of a log object into a sequence of JSON
// values. A body is either one JSON document (an array contributes its
// elements) or line-delimited JSON, where unparseable lines are dropped and
// reported.
package normalize

import (
	"bytes"
	"encoding/json"
)

// MaxExcerpt is the longest excerpt kept for a malformed line.
const MaxExcerpt = 120

// Encoding describes how a body was interpreted.
type Encoding int

const (
	EncodingEmpty Encoding = iota
	EncodingArray
	EncodingDocument
	EncodingLines
)

func (e Encoding) String() string {
	switch e {
	case EncodingEmpty:
		return "empty"
	case EncodingArray:
		return "array"
	case EncodingDocument:
		return "document"
	case EncodingLines:
		return "lines"
	}
	return "unknown"
}

// MalformedLine is a line-delimited entry that failed to parse.
type MalformedLine struct {
	// Line is the 1-based line number in the original body
	Line int

	// Excerpt is the start of the trimmed line, at most MaxExcerpt bytes
	Excerpt string

	// Err is the parse error
	Err error
}

// Result is the outcome of Normalize.
type Result struct {
	Values    []Value
	Encoding  Encoding
	Malformed []MalformedLine
}

// Normalize parses raw into JSON values.
func Normalize(raw []byte) Result {
	text := bytes.TrimSpace(raw)
	if len(text) == 0 {
		return Result{Encoding: EncodingEmpty}
	}

	if json.Valid(text) {
		if text[0] == '[' {
			var elems []json.RawMessage
			if err := json.Unmarshal(text, &elems); err == nil {
				values := make([]Value, 0, len(elems))
				for _, elem := range elems {
					if v, err := NewValue(elem); err == nil {
						values = append(values, v)
					}
				}
				return Result{Values: values, Encoding: EncodingArray}
			}
		}
		if v, err := NewValue(text); err == nil {
			return Result{Values: []Value{v}, Encoding: EncodingDocument}
		}
	}

	return normalizeLines(text)
}

func normalizeLines(text []byte) Result {
	result := Result{Encoding: EncodingLines}
	for i, line := range bytes.Split(text, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		v, err := NewValue(line)
		if err != nil {
			result.Malformed = append(result.Malformed, MalformedLine{
				Line:    i + 1,
				Excerpt: excerpt(line),
				Err:     err,
			})
			continue
		}
		result.Values = append(result.Values, v)
	}
	return result
}

func excerpt(line []byte) string {
	if len(line) <= MaxExcerpt {
		return string(line)
	}
	return string(line[:MaxExcerpt])
}
