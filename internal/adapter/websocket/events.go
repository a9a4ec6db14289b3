package websocket

import "github.com/pscheid92/notecanvas/internal/domain"

// Inbound event types sent by the canvas page.
const (
	eventCreate    = "create"
	eventContent   = "content"
	eventDragStart = "drag_start"
	eventDragMove  = "drag_move"
	eventDragEnd   = "drag_end"
	eventSave      = "save"
	eventDelete    = "delete"
)

// Outbound event types.
const (
	eventNotes   = "notes"
	eventCreated = "created"
	eventDeleted = "deleted"
	eventState   = "state"
	eventError   = "error"
)

type inboundEvent struct {
	Type    string  `json:"type"`
	NoteID  string  `json:"note_id,omitempty"`
	Content string  `json:"content,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
}

type noteDTO struct {
	ID      string  `json:"id"`
	Content string  `json:"content"`
	Color   string  `json:"color"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	State   string  `json:"state"`
	Saved   bool    `json:"saved"`
}

func toNoteDTO(s domain.NoteSnapshot) noteDTO {
	return noteDTO{
		ID:      s.Note.ID,
		Content: s.Note.Content,
		Color:   s.Note.Color,
		X:       s.Note.Position.X,
		Y:       s.Note.Position.Y,
		State:   s.State.String(),
		Saved:   s.Saved,
	}
}

type notesEvent struct {
	Type  string    `json:"type"`
	Notes []noteDTO `json:"notes"`
}

type noteEvent struct {
	Type string  `json:"type"`
	Note noteDTO `json:"note"`
}

type noteRefEvent struct {
	Type   string `json:"type"`
	NoteID string `json:"note_id"`
}

// stateEvent carries lifecycle changes only; positions and content are
// already known to the page that produced them.
type stateEvent struct {
	Type   string `json:"type"`
	NoteID string `json:"note_id"`
	State  string `json:"state"`
	Saved  bool   `json:"saved"`
}

type errorEvent struct {
	Type    string `json:"type"`
	NoteID  string `json:"note_id,omitempty"`
	Message string `json:"message"`
}

func newNotesEvent(snaps []domain.NoteSnapshot) notesEvent {
	notes := make([]noteDTO, 0, len(snaps))
	for _, s := range snaps {
		notes = append(notes, toNoteDTO(s))
	}
	return notesEvent{Type: eventNotes, Notes: notes}
}

func newStateEvent(s domain.NoteSnapshot) stateEvent {
	return stateEvent{Type: eventState, NoteID: s.Note.ID, State: s.State.String(), Saved: s.Saved}
}
