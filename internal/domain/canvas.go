package domain

// NoteState is the autosave lifecycle of a single note.
type NoteState int

const (
	NoteClean        NoteState = iota // local state equals the last persisted write
	NoteDirtyPending                  // edits waiting for the debounce timer, a queued write or the end of a drag
	NoteSaving                        // a write is in flight
	NoteDirty                         // unsaved edits with nothing scheduled, e.g. after a failed write
)

func (s NoteState) String() string {
	switch s {
	case NoteClean:
		return "clean"
	case NoteDirtyPending:
		return "dirty_pending"
	case NoteSaving:
		return "saving"
	case NoteDirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// NoteSnapshot is a point-in-time copy of a note as the canvas controller sees it.
type NoteSnapshot struct {
	Note  Note
	State NoteState
	Saved bool // transient "saved" indicator
}
