package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-textbook/internal/yamlutil"
)

type execution struct {
	Filter  string   `yaml:"filter"`
	Workers int      `yaml:"workers"`
	Command []string `yaml:"command"`
}

type document struct {
	Content   string    `yaml:"content"`
	Execution execution `yaml:"execution"`
}

// ---------------------------------------------------------------------------
// TestDecode - Strict decoding of textbook.yaml
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("nested document", func(t *testing.T) {
		t.Parallel()

		var doc document
		err := yamlutil.Decode([]byte("content: book\nexecution:\n  workers: 2\n  command: [jupyter, nbconvert]\n"), &doc)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if doc.Content != "book" || doc.Execution.Workers != 2 || len(doc.Execution.Command) != 2 {
			t.Errorf("Decode() = %+v", doc)
		}
	})

	tests := []struct {
		name    string
		data    string
		dest    any
		wantErr error
		wantMsg string
	}{
		{name: "empty", data: "", dest: &document{}, wantErr: yamlutil.ErrEmpty},
		{name: "nil destination", data: "content: x", dest: nil, wantErr: yamlutil.ErrNilTarget},
		{name: "unknown nested key", data: "execution:\n  filtre: no-execution\n", dest: &document{}, wantErr: yamlutil.ErrDecode, wantMsg: "filtre"},
		{name: "duplicate key", data: "content: a\ncontent: b\n", dest: &document{}, wantErr: yamlutil.ErrDecode},
		{name: "wrong type", data: "execution:\n  workers: two\n", dest: &document{}, wantErr: yamlutil.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Decode([]byte(tt.data), tt.dest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not quote %q", err, tt.wantMsg)
			}
		})
	}
}

func TestDecode_InputTooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("content: " + strings.Repeat("x", yamlutil.MaxInputSize))
	if err := yamlutil.Decode(data, &document{}); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("error = %v, want ErrInputTooLarge", err)
	}
}
