package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/alnah/go-textbook/internal/fileutil"
)

// HashRecord maps notebook file names to their last recorded fingerprint.
type HashRecord map[string]string

// Clone returns an independent copy of r.
func (r HashRecord) Clone() HashRecord {
	out := make(HashRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Names returns the recorded notebook names in sorted order.
func (r HashRecord) Names() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// HashStore reads and writes the hash file.
type HashStore struct {
	path string
}

// NewHashStore returns a store backed by the file at path.
func NewHashStore(path string) *HashStore {
	return &HashStore{path: path}
}

// Path returns the backing file path.
func (s *HashStore) Path() string {
	return s.path
}

// Load reads the hash record. A missing file yields an empty record, so the
// first build of a checkout treats every notebook as new.
func (s *HashStore) Load() (HashRecord, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 -- configured state path
	if errors.Is(err, fs.ErrNotExist) {
		return HashRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading hash file: %w", err)
	}

	record := HashRecord{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHashFileParse, s.path, err)
	}
	return record, nil
}

// Save replaces the hash file with record. Keys are written sorted.
func (s *HashStore) Save(record HashRecord) error {
	if record == nil {
		record = HashRecord{}
	}
	data, err := json.MarshalIndent(record, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("encoding hash record: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(s.path, data, fileutil.FilePermissions); err != nil {
		return fmt.Errorf("saving hash file: %w", err)
	}
	return nil
}
