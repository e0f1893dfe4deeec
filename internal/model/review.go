package model

// EntryState is the interaction state of a review-queue entry. Every
// action goes through a two-step arm/confirm cycle: the first request
// only arms the entry, and a second matching request performs the call.
type EntryState int

// Entry states.
const (
	EntryIdle EntryState = iota
	EntryArmedAccept
	EntryArmedDeny
	EntryInFlight
	EntryFailed
)

// String returns a human-readable state name.
func (s EntryState) String() string {
	switch s {
	case EntryIdle:
		return "idle"
	case EntryArmedAccept:
		return "armed-accept"
	case EntryArmedDeny:
		return "armed-deny"
	case EntryInFlight:
		return "in-flight"
	case EntryFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Armed reports whether the state is one of the armed states.
func (s EntryState) Armed() bool {
	return s == EntryArmedAccept || s == EntryArmedDeny
}

// ReviewEntry wraps a confirmation item awaiting manual review. Entries
// are created when a poll classifies an item as manual and destroyed when
// an action succeeds, the user dismisses the entry, or a later poll no
// longer lists the item.
type ReviewEntry struct {
	ID           string
	AccountID    string
	Item         ConfirmationItem
	State        EntryState
	FailedAction ConfirmationAction
}
