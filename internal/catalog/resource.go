package catalog

import (
	"vpdkit/internal/timeline"
	"vpdkit/internal/vpd"
)

// State tracks a resource through the reconciliation lifecycle. Organize and
// repair advance resources along disjoint branches after linking.
type State string

const (
	StateDiscovered State = "discovered"
	StateLinked     State = "linked"
	StateUnused     State = "unused"

	// Organize path.
	StateSequenced State = "sequenced"
	StatePlanned   State = "planned"
	StateCopied    State = "copied"
	StateMoved     State = "moved"
	StateSkipped   State = "skipped"
	StateErrored   State = "errored"

	// Repair path.
	StateVerified   State = "verified"
	StateMissing    State = "missing"
	StateResolved   State = "resolved"
	StateAmbiguous  State = "ambiguous"
	StateUnresolved State = "unresolved"
)

// MediaResource is one media asset referenced by the project.
type MediaResource struct {
	// UUID is the normalized identifier; RawUUID the document spelling,
	// retained for targeted manifest mutation.
	UUID     UUID
	RawUUID  string
	Kind     vpd.Kind
	Path     string
	Title    string
	Duration float64

	// Seq is the assigned ordinal, 0 until the sequencer runs. A resource
	// carries a sequence number if and only if it has at least one
	// timeline use.
	Seq int
	// Uses are the timeline blocks resolved to this resource.
	Uses []*timeline.Block
	// TargetPath is the computed destination once organize has planned.
	TargetPath string

	State State
}

// Used reports whether the resource appears on the timeline.
func (r *MediaResource) Used() bool {
	return len(r.Uses) > 0
}

// earliestUse returns the use with the smallest start offset, preferring the
// earliest-encountered track when offsets tie. Nil when unused.
func (r *MediaResource) earliestUse() *timeline.Block {
	var best *timeline.Block
	for _, use := range r.Uses {
		if best == nil ||
			use.Start < best.Start ||
			(use.Start == best.Start && use.TrackIndex < best.TrackIndex) {
			best = use
		}
	}
	return best
}

// EarliestStart returns the smallest start offset among the resource's uses.
// Only meaningful when Used.
func (r *MediaResource) EarliestStart() float64 {
	if use := r.earliestUse(); use != nil {
		return use.Start
	}
	return 0
}

// TrackName returns the owning track of the earliest use, or an empty string
// when unused.
func (r *MediaResource) TrackName() string {
	if use := r.earliestUse(); use != nil {
		return use.Track
	}
	return ""
}
