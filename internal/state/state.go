// Package state persists what one build hands to the next: the notebook
// hash record, the skip list and the per-notebook execution metadata
// sidecars.
//
// All three are JSON files with fixed shapes shared with the page
// generator. Writes replace whole files atomically; a build is assumed to
// be the only writer.
package state

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Sentinel errors for state files.
var (
	ErrSkipListNotFound = errors.New("skip list not found")
	ErrSkipListParse    = errors.New("invalid skip list")
	ErrHashFileParse    = errors.New("invalid hash file")
	ErrMetadataParse    = errors.New("invalid notebook metadata")
)

// jsonIndent matches the four-space layout of the files committed to the
// textbook repository.
const jsonIndent = "    "

// marshalJSON encodes v without escaping HTML characters, since sidecars
// embed rendered HTML verbatim.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// indentJSON lays out compact JSON with jsonIndent, keeping key order.
func indentJSON(compact []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", jsonIndent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
