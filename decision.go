package textbook

import (
	"fmt"

	"github.com/alnah/go-textbook/internal/notebook"
	"github.com/alnah/go-textbook/internal/state"
	"github.com/alnah/go-textbook/internal/version"
)

// Action is what a build does with a notebook.
type Action int

const (
	Skip Action = iota
	Execute
)

func (a Action) String() string {
	if a == Execute {
		return "execute"
	}
	return "skip"
}

// Reason records which rule produced a decision.
type Reason int

const (
	ReasonForcedAll Reason = iota
	ReasonNoExecution
	ReasonSkipListed
	ReasonAllUnskipped
	ReasonNew
	ReasonChanged
	ReasonDevCommitMismatch
	ReasonPreviouslyIncomplete
	ReasonUpToDate
)

var reasonNames = [...]string{
	ReasonForcedAll:            "forced by execute-absolutely-all",
	ReasonNoExecution:          "execution disabled",
	ReasonSkipListed:           "on the skip list",
	ReasonAllUnskipped:         "not on the skip list",
	ReasonNew:                  "new notebook",
	ReasonChanged:              "content changed",
	ReasonDevCommitMismatch:    "last executed on another dev commit",
	ReasonPreviouslyIncomplete: "previous execution incomplete",
	ReasonUpToDate:             "up to date",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return fmt.Sprintf("Reason(%d)", int(r))
	}
	return reasonNames[r]
}

// Decision is the per-notebook execution verdict.
type Decision struct {
	Action Action
	Reason Reason
}

// Execute reports whether the notebook should be executed.
func (d Decision) Execute() bool { return d.Action == Execute }

func (d Decision) String() string {
	return d.Action.String() + " (" + d.Reason.String() + ")"
}

// Facts is everything the decision depends on. The decision is a pure
// function of Facts.
type Facts struct {
	Notebook         string
	Fingerprint      notebook.Fingerprint
	StoredHash       string
	HasStoredHash    bool
	Prior            state.Metadata
	SkipListed       bool
	Filter           ExecutionFilter
	Mode             BuildMode
	InstalledVersion string
}

func (f Facts) isNew() bool { return !f.HasStoredHash }

func (f Facts) isChanged() bool {
	return f.HasStoredHash && f.StoredHash != string(f.Fingerprint)
}

func (f Facts) isStaleVersion() bool {
	recorded, ok := f.Prior.Version.Version()
	return ok && version.IsNewer(f.InstalledVersion, recorded)
}

// Outcome is a decision plus the advisories raised while reaching it.
type Outcome struct {
	Decision   Decision
	Advisories []Advisory
}

// rule is one step of the ordered decision chain. The first rule whose
// guard matches decides.
type rule struct {
	guard  func(Facts) bool
	decide func(Facts) Outcome
}

var rules = []rule{
	{
		guard:  func(f Facts) bool { return f.Filter == ExecuteAbsolutelyAll },
		decide: executeBecause(ReasonForcedAll),
	},
	{
		guard:  func(f Facts) bool { return f.Filter == NoExecution },
		decide: decideNoExecution,
	},
	{
		guard:  func(f Facts) bool { return f.SkipListed },
		decide: decideSkipListed,
	},
	{
		guard:  func(f Facts) bool { return f.Filter == ExecuteAllUnskipped },
		decide: executeBecause(ReasonAllUnskipped),
	},
	{
		guard:  Facts.isNew,
		decide: executeBecause(ReasonNew),
	},
	{
		guard:  Facts.isChanged,
		decide: executeBecause(ReasonChanged),
	},
	{
		guard:  func(f Facts) bool { return f.Mode.IsDev() && f.Prior.Commit != f.Mode.Commit() },
		decide: executeBecause(ReasonDevCommitMismatch),
	},
	{
		guard:  func(f Facts) bool { return !f.Prior.FullyExecuted },
		decide: executeBecause(ReasonPreviouslyIncomplete),
	},
}

// Decide returns whether the notebook described by f should be executed.
func Decide(f Facts) Outcome {
	for _, r := range rules {
		if r.guard(f) {
			return r.decide(f)
		}
	}
	return Outcome{Decision: Decision{Action: Skip, Reason: ReasonUpToDate}}
}

func executeBecause(reason Reason) func(Facts) Outcome {
	return func(Facts) Outcome {
		return Outcome{Decision: Decision{Action: Execute, Reason: reason}}
	}
}

// decideNoExecution never executes but reports the first reason the
// notebook would be executed under another filter.
func decideNoExecution(f Facts) Outcome {
	out := Outcome{Decision: Decision{Action: Skip, Reason: ReasonNoExecution}}
	var kind AdvisoryKind
	switch {
	case f.isNew():
		kind = AdvisoryNew
	case f.isChanged():
		kind = AdvisoryChanged
	case f.isStaleVersion():
		kind = AdvisoryStaleVersion
	case !f.Prior.FullyExecuted:
		kind = AdvisoryPreviouslyIncomplete
	default:
		return out
	}
	out.Advisories = []Advisory{newAdvisory(kind, f)}
	return out
}

func decideSkipListed(f Facts) Outcome {
	out := Outcome{Decision: Decision{Action: Skip, Reason: ReasonSkipListed}}
	switch {
	case !f.Prior.FullyExecuted:
		out.Advisories = []Advisory{newAdvisory(AdvisorySkippedIncomplete, f)}
	case f.Prior.Version.IsNeverExecuted():
		out.Advisories = []Advisory{newAdvisory(AdvisorySkippedNeverExecuted, f)}
	}
	return out
}
