package sync

import "strings"

// DownstreamRecord is a previously created resource in a target system.
type DownstreamRecord struct {
	// ID is the target system's own identifier for the record.
	ID string
	// SourceID is the upstream reservation ID, when the target system
	// preserves it. Empty for systems that only store guest names.
	SourceID string
	// NameKey is the normalized guest-name identity key.
	NameKey string
	// Fingerprint is the content digest stored at last sync, if any.
	Fingerprint string
}

// NameKey normalizes a guest name into an identity key: trimmed,
// lower-cased first and last name concatenated with interior whitespace
// removed, so "Jane Doe", " jane  doe " and "JANE DOE" all key to
// "janedoe".
func NameKey(first, last string) string {
	return collapse(first) + collapse(last)
}

func collapse(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// FindMatch locates the existing downstream record corresponding to a
// source, preferring an exact upstream-ID match and falling back to the
// normalized-name key for systems that do not retain upstream IDs.
//
// When two existing records normalize to the same name key (guests with
// identical names) the first encountered wins. That imprecision is a known
// limitation of name-based matching, not something this function attempts
// to resolve.
func FindMatch(src Source, existing []DownstreamRecord) *DownstreamRecord {
	if src.ID != "" {
		for i := range existing {
			if existing[i].SourceID == src.ID {
				return &existing[i]
			}
		}
	}
	if src.NameKey == "" {
		return nil
	}
	for i := range existing {
		if existing[i].SourceID == "" && existing[i].NameKey == src.NameKey {
			return &existing[i]
		}
	}
	return nil
}
