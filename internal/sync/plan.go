package sync

import (
	"github.com/jardilio/august-guesty-integration/internal/reservation"
)

// Action classifies what the executor must do for one identity key.
type Action int

const (
	// ActionSkip means the downstream record already reflects the source.
	ActionSkip Action = iota
	// ActionCreate means no downstream record exists for a confirmed source.
	ActionCreate
	// ActionUpdate means the downstream record's content is stale.
	ActionUpdate
	// ActionDelete means the downstream record belongs to a cancelled source.
	ActionDelete
)

// String returns the uppercase name of the action.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "CREATE"
	case ActionUpdate:
		return "UPDATE"
	case ActionDelete:
		return "DELETE"
	default:
		return "SKIP"
	}
}

// Source is the planner's projection of an upstream reservation: its
// identity, normalized status and the downstream payload it should render
// to. Building the projection up front keeps the planner free of provider
// concerns and lets the same planner serve every downstream system.
type Source struct {
	ID      string
	NameKey string
	Status  reservation.Status
	Payload EventPayload
}

// Key returns the identity key used to correlate the source with
// downstream records: the upstream ID when present, else the name key.
func (s Source) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.NameKey
}

// PlanEntry is one decision of a reconciliation plan.
type PlanEntry struct {
	Key      string
	Action   Action
	Source   Source
	Existing *DownstreamRecord
}

// Plan classifies every source against the downstream system's current
// records. It is a pure function: no I/O, deterministic given its inputs,
// and emits at most one entry per identity key.
//
// Decision table:
//
//	no match + confirmed            => CREATE
//	no match + cancelled/tentative  => no entry
//	match + confirmed + same digest => SKIP
//	match + confirmed + new digest  => UPDATE
//	match + cancelled               => DELETE
//	match + tentative               => SKIP
func Plan(sources []Source, existing []DownstreamRecord) []PlanEntry {
	var plan []PlanEntry
	seen := make(map[string]bool, len(sources))

	for _, src := range sources {
		key := src.Key()
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		match := FindMatch(src, existing)

		if match == nil {
			if src.Status == reservation.StatusConfirmed {
				plan = append(plan, PlanEntry{Key: key, Action: ActionCreate, Source: src})
			}
			// Cancelled or tentative with nothing downstream: nothing to do,
			// and no entry is emitted.
			continue
		}

		entry := PlanEntry{Key: key, Source: src, Existing: match}
		switch src.Status {
		case reservation.StatusCancelled:
			entry.Action = ActionDelete
		case reservation.StatusConfirmed:
			if match.Fingerprint == Fingerprint(src.Payload) {
				entry.Action = ActionSkip
			} else {
				entry.Action = ActionUpdate
			}
		default:
			entry.Action = ActionSkip
		}
		plan = append(plan, entry)
	}

	return plan
}
