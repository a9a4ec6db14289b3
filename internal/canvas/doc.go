// Package canvas implements the note canvas autosave controller.
//
// The Controller is an actor: one goroutine owns the per-note state, the
// debounce timers and the drag state, and processes commands from a channel.
// Timer firings and write completions come back as commands, so no lock
// guards note state. Each note moves through Clean, DirtyPending, Saving and
// back to Clean; a failed write leaves it Dirty until the next edit or save.
package canvas
