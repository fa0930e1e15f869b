package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alnah/go-textbook/internal/fileutil"
)

// Sidecar field names shared with the page generator.
const (
	keyFullyExecuted = "full_executed"
	keyVersion       = "hnn_version"
	keyCommit        = "commit"
)

// Metadata is the execution state recorded for one notebook.
// Commit is empty when absent.
type Metadata struct {
	FullyExecuted bool
	Version       VersionRecord
	Commit        string
}

// NoMetadata is what Read returns for a notebook without a sidecar.
func NoMetadata() Metadata {
	return Metadata{Version: AbsentVersion()}
}

// Section is one heading-delimited slice of a notebook's rendered HTML.
// The untitled preamble has an empty Title and Level 0.
type Section struct {
	Title string
	Level int
	HTML  string
}

// Sidecar is the full content of a notebook's JSON output file: its
// execution metadata followed by the rendered sections keyed under the
// notebook file name.
type Sidecar struct {
	Metadata Metadata
	Notebook string
	Sections []Section
}

// SidecarPath returns <dir>/<stem>.json for the notebook file name.
func SidecarPath(dir, notebookName string) string {
	return filepath.Join(dir, fileutil.Stem(notebookName)+".json")
}

// ReadMetadata reads the execution fields of the sidecar at path. A missing
// sidecar yields NoMetadata and found=false. Missing fields default to
// not-executed, absent version and absent commit.
func ReadMetadata(path string) (meta Metadata, found bool, err error) {
	data, err := os.ReadFile(path) // #nosec G304 -- derived sidecar path
	if errors.Is(err, fs.ErrNotExist) {
		return NoMetadata(), false, nil
	}
	if err != nil {
		return NoMetadata(), false, fmt.Errorf("reading metadata: %w", err)
	}

	var fields struct {
		FullyExecuted *bool   `json:"full_executed"`
		Version       *string `json:"hnn_version"`
		Commit        *string `json:"commit"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return NoMetadata(), false, fmt.Errorf("%w: %s: %v", ErrMetadataParse, path, err)
	}

	meta = Metadata{Version: AbsentVersion()}
	if fields.FullyExecuted != nil {
		meta.FullyExecuted = *fields.FullyExecuted
	}
	if fields.Version != nil {
		meta.Version = ParseVersionRecord(*fields.Version, true)
	}
	if fields.Commit != nil {
		meta.Commit = *fields.Commit
	}
	return meta, true, nil
}

// WriteSidecar replaces the sidecar at path. Keys keep the order
// full_executed, hnn_version, commit (when set), then the notebook entry
// with sections in document order.
func WriteSidecar(path string, s Sidecar) error {
	data, err := EncodeSidecar(s)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, fileutil.FilePermissions); err != nil {
		return fmt.Errorf("writing sidecar: %w", err)
	}
	return nil
}

// EncodeSidecar returns the indented JSON for s.
func EncodeSidecar(s Sidecar) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	field := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(key)
		if err != nil {
			return err
		}
		v, err := marshalJSON(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := field(keyFullyExecuted, s.Metadata.FullyExecuted); err != nil {
		return nil, fmt.Errorf("encoding sidecar: %w", err)
	}
	if err := field(keyVersion, s.Metadata.Version.Wire()); err != nil {
		return nil, fmt.Errorf("encoding sidecar: %w", err)
	}
	if s.Metadata.Commit != "" {
		if err := field(keyCommit, s.Metadata.Commit); err != nil {
			return nil, fmt.Errorf("encoding sidecar: %w", err)
		}
	}
	if s.Notebook != "" {
		sections, err := encodeSections(s.Sections)
		if err != nil {
			return nil, fmt.Errorf("encoding sidecar: %w", err)
		}
		if err := field(s.Notebook, json.RawMessage(sections)); err != nil {
			return nil, fmt.Errorf("encoding sidecar: %w", err)
		}
	}
	buf.WriteByte('}')

	out, err := indentJSON(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encoding sidecar: %w", err)
	}
	return out, nil
}

// encodeSections writes sections as an object keyed by title, in order.
// A repeated title keeps its first position and its last content.
func encodeSections(sections []Section) ([]byte, error) {
	type body struct {
		Level int    `json:"level"`
		HTML  string `json:"html"`
	}

	order := make([]string, 0, len(sections))
	byTitle := make(map[string]body, len(sections))
	for _, sec := range sections {
		if _, seen := byTitle[sec.Title]; !seen {
			order = append(order, sec.Title)
		}
		byTitle[sec.Title] = body{Level: sec.Level, HTML: sec.HTML}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, title := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalJSON(title)
		if err != nil {
			return nil, err
		}
		v, err := marshalJSON(byTitle[title])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
