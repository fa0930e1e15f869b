package textbook

import (
	"fmt"
	"strings"
)

// ExecutionFilter is the operator's blanket execution policy for a build.
// The zero value is NoExecution.
type ExecutionFilter int

const (
	// NoExecution never executes; it only reports what is out of date.
	NoExecution ExecutionFilter = iota
	// ExecuteUpdatedUnskipped executes new, changed, stale-commit and
	// previously incomplete notebooks outside the skip list.
	ExecuteUpdatedUnskipped
	// ExecuteAllUnskipped executes every notebook outside the skip list.
	ExecuteAllUnskipped
	// ExecuteAbsolutelyAll executes every notebook, skip list included.
	ExecuteAbsolutelyAll
)

var filterNames = [...]string{
	NoExecution:             "no-execution",
	ExecuteUpdatedUnskipped: "execute-updated-unskipped",
	ExecuteAllUnskipped:     "execute-all-unskipped",
	ExecuteAbsolutelyAll:    "execute-absolutely-all",
}

// legacySuffix is appended to the filter names accepted by older build
// scripts, e.g. "execute-all-unskipped-notebooks".
const legacySuffix = "-notebooks"

func (f ExecutionFilter) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("ExecutionFilter(%d)", int(f))
	}
	return filterNames[f]
}

// Valid reports whether f is one of the defined filters.
func (f ExecutionFilter) Valid() bool {
	return f >= NoExecution && f <= ExecuteAbsolutelyAll
}

// ExecutionFilterNames returns the accepted filter names.
func ExecutionFilterNames() []string {
	return append([]string(nil), filterNames[:]...)
}

// ParseExecutionFilter parses a filter name. Legacy names with a
// "-notebooks" suffix are accepted.
func ParseExecutionFilter(s string) (ExecutionFilter, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), legacySuffix)
	for i, n := range filterNames {
		if n == name {
			return ExecutionFilter(i), nil
		}
	}
	return NoExecution, fmt.Errorf("%w: %q", ErrInvalidExecutionFilter, s)
}

// MarshalText implements encoding.TextMarshaler.
func (f ExecutionFilter) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidExecutionFilter, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ExecutionFilter) UnmarshalText(text []byte) error {
	parsed, err := ParseExecutionFilter(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
