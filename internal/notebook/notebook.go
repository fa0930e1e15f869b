// Package notebook reads Jupyter notebooks (nbformat v4) and derives the
// facts the build needs from them: a content fingerprint that ignores
// execution state, and whether every code cell ran.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Extension is the file extension of notebook files.
const Extension = ".ipynb"

// minMajorFormat is the oldest nbformat major version accepted.
const minMajorFormat = 4

// Sentinel errors for notebook parsing.
var (
	ErrMalformedNotebook = errors.New("malformed notebook")
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported nbformat", ErrMalformedNotebook)
)

// CellType is the nbformat cell_type.
type CellType string

// Cell types defined by nbformat v4.
const (
	CellCode     CellType = "code"
	CellMarkdown CellType = "markdown"
	CellRaw      CellType = "raw"
)

// Text is a multiline nbformat string. On disk it is either a single string
// or a list of lines which are concatenated as-is.
type Text string

// UnmarshalJSON accepts both the string and the list-of-lines encoding.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return err
		}
		*t = Text(strings.Join(lines, ""))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = Text(s)
	return nil
}

// Output is one entry of a code cell's outputs.
type Output struct {
	OutputType string                     `json:"output_type"`
	Name       string                     `json:"name,omitempty"`
	Text       Text                       `json:"text,omitempty"`
	Data       map[string]json.RawMessage `json:"data,omitempty"`
	EName      string                     `json:"ename,omitempty"`
	EValue     string                     `json:"evalue,omitempty"`
	Traceback  []string                   `json:"traceback,omitempty"`
}

// DataText decodes a text-like mime bundle entry (string or list of lines).
// ok is false when the mime type is absent or not textual.
func (o Output) DataText(mime string) (text string, ok bool) {
	raw, found := o.Data[mime]
	if !found {
		return "", false
	}
	var t Text
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", false
	}
	return string(t), true
}

// Cell is a single notebook cell.
type Cell struct {
	Type           CellType        `json:"cell_type"`
	Source         Text            `json:"source"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
	Outputs        []Output        `json:"outputs,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// Notebook is a parsed notebook. Name is the file name (unique within a
// build) and Path the location it was read from; both are empty for
// notebooks parsed from memory.
type Notebook struct {
	Name        string
	Path        string
	Format      int
	FormatMinor int
	Cells       []Cell
	Metadata    json.RawMessage
}

// document mirrors the top-level JSON object.
type document struct {
	Format      *int            `json:"nbformat"`
	FormatMinor int             `json:"nbformat_minor"`
	Cells       *[]Cell         `json:"cells"`
	Metadata    json.RawMessage `json:"metadata"`
}

// Parse decodes notebook JSON. Any structural problem is reported as
// ErrMalformedNotebook.
func Parse(data []byte) (*Notebook, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedNotebook, err)
	}
	if doc.Cells == nil {
		return nil, fmt.Errorf("%w: missing cells", ErrMalformedNotebook)
	}
	if doc.Format != nil && *doc.Format < minMajorFormat {
		return nil, fmt.Errorf("%w: v%d (need v%d)", ErrUnsupportedFormat, *doc.Format, minMajorFormat)
	}

	nb := &Notebook{
		FormatMinor: doc.FormatMinor,
		Cells:       *doc.Cells,
		Metadata:    doc.Metadata,
	}
	if doc.Format != nil {
		nb.Format = *doc.Format
	}

	for i, c := range nb.Cells {
		switch c.Type {
		case CellCode, CellMarkdown, CellRaw:
		default:
			return nil, fmt.Errorf("%w: cell %d has unknown type %q", ErrMalformedNotebook, i, c.Type)
		}
	}

	return nb, nil
}

// Load reads and parses the notebook at path.
func Load(path string) (*Notebook, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- discovered notebook path
	if err != nil {
		return nil, fmt.Errorf("reading notebook: %w", err)
	}
	nb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	nb.Path = path
	nb.Name = baseName(path)
	return nb, nil
}

// IsFullyExecuted reports whether every code cell with non-empty source
// carries an execution count.
func (nb *Notebook) IsFullyExecuted() bool {
	for _, c := range nb.Cells {
		if c.Type == CellCode && c.ExecutionCount == nil && c.Source != "" {
			return false
		}
	}
	return true
}

// ExecutedCells returns how many code cells with non-empty source carry an
// execution count. It equals CodeCells exactly when IsFullyExecuted holds.
func (nb *Notebook) ExecutedCells() int {
	n := 0
	for _, c := range nb.Cells {
		if c.Type == CellCode && c.Source != "" && c.ExecutionCount != nil {
			n++
		}
	}
	return n
}

// CodeCells returns the number of code cells with non-empty source.
func (nb *Notebook) CodeCells() int {
	n := 0
	for _, c := range nb.Cells {
		if c.Type == CellCode && c.Source != "" {
			n++
		}
	}
	return n
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
