package version

import (
	"sort"
)

// Recorded is the version found in one notebook's sidecar.
type Recorded struct {
	Notebook string
	Version  string // wire value, may be the never-executed marker
	Missing  bool   // sidecar or version field absent
}

// Audit summarises the versions notebooks were last executed with.
type Audit struct {
	Latest   string
	Versions []string // distinct recorded versions, sorted
	Missing  []string // notebooks without a recorded version, sorted
	Passed   bool
}

// AuditVersions passes when every audited notebook recorded exactly the
// same version and that version is latest.
func AuditVersions(records []Recorded, latest string) Audit {
	seen := make(map[string]struct{})
	a := Audit{Latest: latest}
	for _, r := range records {
		if r.Missing {
			a.Missing = append(a.Missing, r.Notebook)
			continue
		}
		if _, ok := seen[r.Version]; !ok {
			seen[r.Version] = struct{}{}
			a.Versions = append(a.Versions, r.Version)
		}
	}
	sort.Strings(a.Versions)
	sort.Strings(a.Missing)

	a.Passed = latest != "" && len(a.Versions) == 1 && sameVersion(a.Versions[0], latest)
	return a
}

func sameVersion(a, b string) bool {
	if c, ok := Compare(a, b); ok {
		return c == 0
	}
	return a == b
}
