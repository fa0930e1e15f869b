package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

// SkipList holds the notebooks exempted from automatic execution, per
// build mode.
type SkipList struct {
	Dev    []string `json:"skip_if_dev"`
	Stable []string `json:"skip_if_stable"`
}

// LoadSkipList reads the skip-list file. Unlike the hash file, a missing
// skip list is a configuration error.
func LoadSkipList(path string) (*SkipList, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- configured state path
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSkipListNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading skip list: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSkipListParse, path, err)
	}
	for _, key := range []string{"skip_if_dev", "skip_if_stable"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: %s: missing %q", ErrSkipListParse, path, key)
		}
	}

	var list SkipList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSkipListParse, path, err)
	}
	return &list, nil
}

// ForMode returns the active set for a dev or stable build.
func (l *SkipList) ForMode(dev bool) SkipSet {
	names := l.Stable
	if dev {
		names = l.Dev
	}
	set := make(SkipSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// SkipSet is the set of notebook file names skipped in the current build.
type SkipSet map[string]struct{}

// Contains reports whether name is skipped. A nil set contains nothing.
func (s SkipSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in sorted order.
func (s SkipSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
