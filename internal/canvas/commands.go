package canvas

import "github.com/pscheid92/notecanvas/internal/domain"

// controllerCmd is the command interface for the Controller actor.
type controllerCmd interface{ isControllerCmd() }

type baseControllerCmd struct{}

func (baseControllerCmd) isControllerCmd() {}

type loadCmd struct {
	baseControllerCmd
	notes []domain.Note
	reply chan error
}

type createdCmd struct {
	baseControllerCmd
	note  domain.Note
	reply chan domain.NoteSnapshot
}

type contentCmd struct {
	baseControllerCmd
	noteID  string
	content string
	reply   chan error
}

type dragStartCmd struct {
	baseControllerCmd
	noteID  string
	pointer domain.Position
	reply   chan error
}

type dragMoveCmd struct {
	baseControllerCmd
	pointer domain.Position
	reply   chan error
}

type dragEndCmd struct {
	baseControllerCmd
	reply chan error
}

type saveCmd struct {
	baseControllerCmd
	noteID string
	result chan error // outcome of the write
	reply  chan error // acknowledgement
}

type deleteCmd struct {
	baseControllerCmd
	noteID string
	reply  chan error
}

type snapshotCmd struct {
	baseControllerCmd
	noteID string
	reply  chan *domain.NoteSnapshot
}

type listCmd struct {
	baseControllerCmd
	reply chan []domain.NoteSnapshot
}

type closeCmd struct {
	baseControllerCmd
}

// Internal commands, posted by timers and write goroutines.

type debounceFiredCmd struct {
	baseControllerCmd
	noteID     string
	generation uint64
}

type savedExpiredCmd struct {
	baseControllerCmd
	noteID     string
	generation uint64
}

type writeDoneCmd struct {
	baseControllerCmd
	noteID  string
	patch   domain.NotePatch
	err     error
	waiters []chan error
}

func (c *loadCmd) ack() chan error      { return c.reply }
func (c *contentCmd) ack() chan error   { return c.reply }
func (c *dragStartCmd) ack() chan error { return c.reply }
func (c *dragMoveCmd) ack() chan error  { return c.reply }
func (c *dragEndCmd) ack() chan error   { return c.reply }
func (c *saveCmd) ack() chan error      { return c.reply }
func (c *deleteCmd) ack() chan error    { return c.reply }
