package state

import "fmt"

// NeverExecutedMarker is written in place of a version when a notebook has
// metadata but no execution on record.
const NeverExecutedMarker = "NA"

// VersionOrigin says where a VersionRecord's value came from.
type VersionOrigin int

const (
	// VersionAbsent means no metadata exists for the notebook.
	VersionAbsent VersionOrigin = iota
	// VersionNeverExecuted means metadata exists but records no execution.
	VersionNeverExecuted
	// VersionRecorded is a real version read back from a sidecar.
	VersionRecorded
	// VersionFresh is the installed version, used by an execution this run.
	VersionFresh
	// VersionCarriedForward is a prior real version kept because the
	// notebook was not executed this run.
	VersionCarriedForward
)

var originNames = [...]string{"absent", "never-executed", "recorded", "fresh", "carried-forward"}

func (o VersionOrigin) String() string {
	if o < 0 || int(o) >= len(originNames) {
		return fmt.Sprintf("VersionOrigin(%d)", int(o))
	}
	return originNames[o]
}

// VersionRecord is the toolchain version attached to a notebook's
// metadata. The origin keeps the never-executed marker apart from real
// version strings.
type VersionRecord struct {
	origin  VersionOrigin
	version string
}

// AbsentVersion is the record of a notebook without metadata.
func AbsentVersion() VersionRecord { return VersionRecord{origin: VersionAbsent} }

// NeverExecuted is the record of a notebook with metadata but no execution.
func NeverExecuted() VersionRecord { return VersionRecord{origin: VersionNeverExecuted} }

// Recorded wraps a version read from disk.
func Recorded(v string) VersionRecord { return VersionRecord{origin: VersionRecorded, version: v} }

// Fresh wraps the version used by an execution in this build.
func Fresh(v string) VersionRecord { return VersionRecord{origin: VersionFresh, version: v} }

// CarriedForward wraps a prior version kept unchanged.
func CarriedForward(v string) VersionRecord {
	return VersionRecord{origin: VersionCarriedForward, version: v}
}

// ParseVersionRecord interprets the version field of a sidecar. present is
// false when the field is missing.
func ParseVersionRecord(value string, present bool) VersionRecord {
	switch {
	case !present:
		return AbsentVersion()
	case value == NeverExecutedMarker:
		return NeverExecuted()
	default:
		return Recorded(value)
	}
}

// Origin returns where the record came from.
func (v VersionRecord) Origin() VersionOrigin { return v.origin }

// Version returns the real version string, if the record holds one.
func (v VersionRecord) Version() (string, bool) {
	switch v.origin {
	case VersionRecorded, VersionFresh, VersionCarriedForward:
		return v.version, true
	default:
		return "", false
	}
}

// IsNeverExecuted reports whether the record is the never-executed marker.
func (v VersionRecord) IsNeverExecuted() bool { return v.origin == VersionNeverExecuted }

// IsAbsent reports whether no metadata existed.
func (v VersionRecord) IsAbsent() bool { return v.origin == VersionAbsent }

// Wire returns the value stored in the sidecar's version field.
func (v VersionRecord) Wire() string {
	if s, ok := v.Version(); ok {
		return s
	}
	return NeverExecutedMarker
}

func (v VersionRecord) String() string {
	if s, ok := v.Version(); ok {
		return fmt.Sprintf("%s(%s)", v.origin, s)
	}
	return v.origin.String()
}

// NextVersion decides the version to write after processing a notebook.
// An execution records the installed version; otherwise a prior real
// version is carried forward and anything else becomes never-executed.
func NextVersion(executed bool, installed string, prior VersionRecord) VersionRecord {
	if executed {
		return Fresh(installed)
	}
	if v, ok := prior.Version(); ok {
		return CarriedForward(v)
	}
	return NeverExecuted()
}
