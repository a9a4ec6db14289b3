package canvas

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/domain"
)

const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultSavedIndicator = 2 * time.Second

	commandBufferSize = 256
)

type Config struct {
	Debounce       time.Duration
	SavedIndicator time.Duration
	Recorder       Recorder
	Random         func() float64 // [0,1); nil uses math/rand/v2
}

// Observer receives a snapshot whenever a note's lifecycle state or saved
// indicator changes. It runs on the controller goroutine and must neither
// block nor call back into the Controller.
type Observer func(domain.NoteSnapshot)

// Recorder counts controller activity. metrics.CanvasMetrics implements it.
type Recorder interface {
	WriteFinished(kind string, err error)
	EditCoalesced()
}

type nopRecorder struct{}

func (nopRecorder) WriteFinished(string, error) {}
func (nopRecorder) EditCoalesced()              {}

// Controller keeps one user's canvas in memory and reconciles local edits
// with debounced writes to the note store. A single goroutine owns all note
// state; public methods post commands to it and wait for the acknowledgement,
// so the effect of a call is visible once it returns.
type Controller struct {
	owner    uuid.UUID
	store    domain.NoteStore
	clock    clockwork.Clock
	debounce time.Duration
	savedFor time.Duration
	recorder Recorder
	observer Observer
	random   func() float64

	writeCtx context.Context
	cmdCh    chan controllerCmd
	done     chan struct{}

	closeOnce sync.Once

	// Owned by run.
	notes map[string]*noteState
	order []string
	drag  *dragState
}

type noteState struct {
	note domain.Note

	dirtyContent  bool
	dirtyPosition bool
	held          bool // position owned by the active drag

	timer      clockwork.Timer // pending debounce, nil when none
	generation uint64

	inFlight    bool
	flushQueued bool
	waiters     []chan error

	saved      bool
	savedTimer clockwork.Timer
	savedGen   uint64

	published     domain.NoteState
	publishedSave bool
}

type dragState struct {
	noteID string
	offset domain.Position
}

// New starts a controller for the given owner. Writes inherit the values of
// ctx (correlation ID) but not its cancellation. Call Close to stop it.
func New(ctx context.Context, owner uuid.UUID, store domain.NoteStore, clock clockwork.Clock, cfg Config, observer Observer) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.SavedIndicator <= 0 {
		cfg.SavedIndicator = DefaultSavedIndicator
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if observer == nil {
		observer = func(domain.NoteSnapshot) {}
	}

	c := &Controller{
		owner:    owner,
		store:    store,
		clock:    clock,
		debounce: cfg.Debounce,
		savedFor: cfg.SavedIndicator,
		recorder: cfg.Recorder,
		observer: observer,
		random:   cfg.Random,
		writeCtx: context.WithoutCancel(ctx),
		cmdCh:    make(chan controllerCmd, commandBufferSize),
		done:     make(chan struct{}),
		notes:    make(map[string]*noteState),
	}
	go c.run()
	return c
}

// Load replaces the in-memory canvas with the owner's notes, newest first.
// Pending timers of previously loaded notes are cancelled.
func (c *Controller) Load(ctx context.Context) error {
	notes, err := c.store.ListNotes(ctx, c.owner)
	if err != nil {
		return err
	}
	return c.call(&loadCmd{notes: notes, reply: make(chan error, 1)})
}

// Create inserts a new empty note with a random palette colour and position.
func (c *Controller) Create(ctx context.Context) (domain.NoteSnapshot, error) {
	note, err := c.store.CreateNote(ctx, NewDraft(c.owner, c.random))
	if err != nil {
		return domain.NoteSnapshot{}, err
	}

	cmd := &createdCmd{note: *note, reply: make(chan domain.NoteSnapshot, 1)}
	if err := c.send(cmd); err != nil {
		return domain.NoteSnapshot{}, err
	}
	select {
	case snap := <-cmd.reply:
		return snap, nil
	case <-c.done:
		return domain.NoteSnapshot{}, domain.ErrControllerClosed
	}
}

// ContentChanged applies an edit locally and (re)schedules the debounced write.
func (c *Controller) ContentChanged(noteID, content string) error {
	return c.call(&contentCmd{noteID: noteID, content: content, reply: make(chan error, 1)})
}

// DragStart records the pointer offset within the note at grab time.
func (c *Controller) DragStart(noteID string, pointerX, pointerY float64) error {
	return c.call(&dragStartCmd{noteID: noteID, pointer: domain.Position{X: pointerX, Y: pointerY}, reply: make(chan error, 1)})
}

// DragMove moves the dragged note under the pointer. It never writes.
// Without an active drag it does nothing.
func (c *Controller) DragMove(pointerX, pointerY float64) error {
	return c.call(&dragMoveCmd{pointer: domain.Position{X: pointerX, Y: pointerY}, reply: make(chan error, 1)})
}

// DragEnd writes the final position of the dragged note exactly once.
func (c *Controller) DragEnd() error {
	return c.call(&dragEndCmd{reply: make(chan error, 1)})
}

// Save cancels any pending debounced write of the note and writes it now.
// It returns once the write has completed, with the write's error.
func (c *Controller) Save(ctx context.Context, noteID string) error {
	cmd := &saveCmd{noteID: noteID, result: make(chan error, 1), reply: make(chan error, 1)}
	if err := c.call(cmd); err != nil {
		return err
	}

	select {
	case err := <-cmd.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return domain.ErrControllerClosed
	}
}

// Delete drops the note locally, cancelling its pending write, and then
// deletes it from the store.
func (c *Controller) Delete(ctx context.Context, noteID string) error {
	if err := c.call(&deleteCmd{noteID: noteID, reply: make(chan error, 1)}); err != nil {
		return err
	}
	return c.store.DeleteNote(ctx, c.owner, noteID)
}

func (c *Controller) Snapshot(noteID string) (domain.NoteSnapshot, bool) {
	cmd := &snapshotCmd{noteID: noteID, reply: make(chan *domain.NoteSnapshot, 1)}
	if err := c.send(cmd); err != nil {
		return domain.NoteSnapshot{}, false
	}
	select {
	case snap := <-cmd.reply:
		if snap == nil {
			return domain.NoteSnapshot{}, false
		}
		return *snap, true
	case <-c.done:
		return domain.NoteSnapshot{}, false
	}
}

// Notes returns all notes in display order (newest first).
func (c *Controller) Notes() []domain.NoteSnapshot {
	cmd := &listCmd{reply: make(chan []domain.NoteSnapshot, 1)}
	if err := c.send(cmd); err != nil {
		return nil
	}
	select {
	case snaps := <-cmd.reply:
		return snaps
	case <-c.done:
		return nil
	}
}

// Close cancels every pending timer and stops the controller. Writes already
// in flight finish, but their results are discarded. Safe to call twice.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		select {
		case c.cmdCh <- closeCmd{}:
		case <-c.done:
		}
	})
	<-c.done
}

// send posts a command unless the controller has stopped.
func (c *Controller) send(cmd controllerCmd) error {
	select {
	case c.cmdCh <- cmd:
		return nil
	case <-c.done:
		return domain.ErrControllerClosed
	}
}

type ackCmd interface {
	controllerCmd
	ack() chan error
}

func (c *Controller) call(cmd ackCmd) error {
	if err := c.send(cmd); err != nil {
		return err
	}
	select {
	case err := <-cmd.ack():
		return err
	case <-c.done:
		return domain.ErrControllerClosed
	}
}

// post is used by timer callbacks and write goroutines.
func (c *Controller) post(cmd controllerCmd) {
	_ = c.send(cmd)
}

func (c *Controller) run() {
	defer close(c.done)

	for cmd := range c.cmdCh {
		switch cmd := cmd.(type) {
		case *loadCmd:
			c.handleLoad(cmd)
		case *createdCmd:
			c.handleCreated(cmd)
		case *contentCmd:
			cmd.reply <- c.handleContent(cmd)
		case *dragStartCmd:
			cmd.reply <- c.handleDragStart(cmd)
		case *dragMoveCmd:
			c.handleDragMove(cmd)
			cmd.reply <- nil
		case *dragEndCmd:
			c.handleDragEnd()
			cmd.reply <- nil
		case *saveCmd:
			cmd.reply <- c.handleSave(cmd)
		case *deleteCmd:
			cmd.reply <- c.handleDelete(cmd)
		case *snapshotCmd:
			if n, ok := c.notes[cmd.noteID]; ok {
				snap := n.snapshot()
				cmd.reply <- &snap
			} else {
				cmd.reply <- nil
			}
		case *listCmd:
			cmd.reply <- c.snapshots()
		case debounceFiredCmd:
			c.handleDebounceFired(cmd)
		case writeDoneCmd:
			c.handleWriteDone(cmd)
		case savedExpiredCmd:
			c.handleSavedExpired(cmd)
		case closeCmd:
			c.shutdown()
			return
		}
	}
}

func (c *Controller) handleLoad(cmd *loadCmd) {
	c.stopAll(domain.ErrNoteNotFound)
	c.notes = make(map[string]*noteState, len(cmd.notes))
	c.order = make([]string, 0, len(cmd.notes))
	c.drag = nil
	for _, note := range cmd.notes {
		c.notes[note.ID] = &noteState{note: note}
		c.order = append(c.order, note.ID)
	}
	cmd.reply <- nil
}

func (c *Controller) handleCreated(cmd *createdCmd) {
	n := &noteState{note: cmd.note}
	c.notes[cmd.note.ID] = n
	c.order = append([]string{cmd.note.ID}, c.order...)
	cmd.reply <- n.snapshot()
}

func (c *Controller) handleContent(cmd *contentCmd) error {
	n, ok := c.notes[cmd.noteID]
	if !ok {
		return domain.ErrNoteNotFound
	}

	n.note.Content = cmd.content
	n.dirtyContent = true
	c.clearSaved(n)

	if n.timer != nil {
		n.timer.Stop()
		c.recorder.EditCoalesced()
	}
	c.schedule(n)
	c.publish(n)
	return nil
}

func (c *Controller) schedule(n *noteState) {
	n.generation++
	gen, id := n.generation, n.note.ID
	n.timer = c.clock.AfterFunc(c.debounce, func() {
		c.post(debounceFiredCmd{noteID: id, generation: gen})
	})
}

// cancelTimer stops the debounce timer and invalidates a firing that is
// already on its way to the command channel.
func (n *noteState) cancelTimer() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.generation++
}

func (c *Controller) handleDebounceFired(cmd debounceFiredCmd) {
	n, ok := c.notes[cmd.noteID]
	if !ok || n.generation != cmd.generation || n.timer == nil {
		return
	}
	n.timer = nil
	c.flush(n, nil)
}

func (c *Controller) handleDragStart(cmd *dragStartCmd) error {
	n, ok := c.notes[cmd.noteID]
	if !ok {
		return domain.ErrNoteNotFound
	}
	if c.drag != nil && c.drag.noteID != cmd.noteID {
		c.handleDragEnd()
	}
	n.held = true
	c.drag = &dragState{
		noteID: cmd.noteID,
		offset: domain.Position{
			X: cmd.pointer.X - n.note.Position.X,
			Y: cmd.pointer.Y - n.note.Position.Y,
		},
	}
	return nil
}

func (c *Controller) handleDragMove(cmd *dragMoveCmd) {
	if c.drag == nil {
		return
	}
	n, ok := c.notes[c.drag.noteID]
	if !ok {
		c.drag = nil
		return
	}
	n.note.Position = domain.Position{
		X: cmd.pointer.X - c.drag.offset.X,
		Y: cmd.pointer.Y - c.drag.offset.Y,
	}
	n.dirtyPosition = true
	c.clearSaved(n)
	c.publish(n)
}

func (c *Controller) handleDragEnd() {
	if c.drag == nil {
		return
	}
	id := c.drag.noteID
	c.drag = nil

	n, ok := c.notes[id]
	if !ok {
		return
	}
	n.held = false
	n.dirtyPosition = true
	c.flush(n, nil)
}

func (c *Controller) handleSave(cmd *saveCmd) error {
	n, ok := c.notes[cmd.noteID]
	if !ok {
		return domain.ErrNoteNotFound
	}
	n.cancelTimer()
	n.dirtyContent = true
	c.flush(n, cmd.result)
	return nil
}

func (c *Controller) handleDelete(cmd *deleteCmd) error {
	n, ok := c.notes[cmd.noteID]
	if !ok {
		return domain.ErrNoteNotFound
	}
	c.stopNote(n, domain.ErrNoteNotFound)
	if c.drag != nil && c.drag.noteID == cmd.noteID {
		c.drag = nil
	}
	delete(c.notes, cmd.noteID)
	for i, id := range c.order {
		if id == cmd.noteID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// flush starts a write of the note's dirty fields, or queues one behind the
// write already in flight.
func (c *Controller) flush(n *noteState, waiter chan error) {
	if waiter != nil {
		n.waiters = append(n.waiters, waiter)
	}
	if n.inFlight {
		n.flushQueued = true
		c.publish(n)
		return
	}
	c.startWrite(n)
}

func (c *Controller) startWrite(n *noteState) {
	// The pending debounce is superseded: its content rides along.
	if n.timer != nil && n.dirtyContent {
		n.cancelTimer()
	}

	var patch domain.NotePatch
	if n.dirtyContent {
		content := n.note.Content
		patch.Content = &content
		n.dirtyContent = false
	}
	if n.dirtyPosition && !n.held {
		pos := n.note.Position
		patch.Position = &pos
		n.dirtyPosition = false
	}

	waiters := n.waiters
	n.waiters = nil

	if patch.IsEmpty() {
		for _, w := range waiters {
			w <- nil
		}
		c.publish(n)
		return
	}

	n.inFlight = true
	id := n.note.ID
	go func() {
		err := c.store.UpdateNote(c.writeCtx, c.owner, id, patch)
		c.post(writeDoneCmd{noteID: id, patch: patch, err: err, waiters: waiters})
	}()
	c.publish(n)
}

func (c *Controller) handleWriteDone(cmd writeDoneCmd) {
	c.recorder.WriteFinished(cmd.patch.Kind(), cmd.err)

	n, ok := c.notes[cmd.noteID]
	if !ok {
		// Deleted while the write was in flight.
		for _, w := range cmd.waiters {
			w <- cmd.err
		}
		return
	}
	n.inFlight = false

	if cmd.err != nil {
		slog.WarnContext(c.writeCtx, "Canvas write failed",
			"note_id", cmd.noteID,
			"kind", cmd.patch.Kind(),
			"error", cmd.err)
		if cmd.patch.Content != nil {
			n.dirtyContent = true
		}
		if cmd.patch.Position != nil {
			n.dirtyPosition = true
		}
	} else if !n.flushQueued && n.timer == nil && !n.dirtyContent && n.positionSettled(len(cmd.waiters) > 0) {
		c.markSaved(n)
	}

	for _, w := range cmd.waiters {
		w <- cmd.err
	}

	if n.flushQueued {
		n.flushQueued = false
		c.startWrite(n)
		return
	}
	c.publish(n)
}

// positionSettled reports whether the position needs no further write. For an
// explicit save a position still held by the drag counts as settled.
func (n *noteState) positionSettled(explicit bool) bool {
	return !n.dirtyPosition || (explicit && n.held)
}

func (c *Controller) markSaved(n *noteState) {
	if n.savedTimer != nil {
		n.savedTimer.Stop()
	}
	n.saved = true
	n.savedGen++
	gen, id := n.savedGen, n.note.ID
	n.savedTimer = c.clock.AfterFunc(c.savedFor, func() {
		c.post(savedExpiredCmd{noteID: id, generation: gen})
	})
}

func (c *Controller) clearSaved(n *noteState) {
	if n.savedTimer != nil {
		n.savedTimer.Stop()
		n.savedTimer = nil
	}
	n.savedGen++
	n.saved = false
}

func (c *Controller) handleSavedExpired(cmd savedExpiredCmd) {
	n, ok := c.notes[cmd.noteID]
	if !ok || n.savedGen != cmd.generation {
		return
	}
	n.saved = false
	n.savedTimer = nil
	c.publish(n)
}

// stopNote cancels the note's timers and releases Save callers waiting on it.
func (c *Controller) stopNote(n *noteState, err error) {
	n.cancelTimer()
	c.clearSaved(n)
	n.flushQueued = false
	for _, w := range n.waiters {
		w <- err
	}
	n.waiters = nil
}

func (c *Controller) stopAll(err error) {
	for _, n := range c.notes {
		c.stopNote(n, err)
	}
}

func (c *Controller) shutdown() {
	c.stopAll(domain.ErrControllerClosed)
	slog.DebugContext(c.writeCtx, "Canvas controller closed",
		"owner", c.owner,
		"notes", len(c.notes))
}

func (c *Controller) publish(n *noteState) {
	state := n.state()
	if state == n.published && n.saved == n.publishedSave {
		return
	}
	n.published, n.publishedSave = state, n.saved
	c.observer(n.snapshot())
}

func (c *Controller) snapshots() []domain.NoteSnapshot {
	out := make([]domain.NoteSnapshot, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.notes[id].snapshot())
	}
	return out
}

func (n *noteState) state() domain.NoteState {
	switch {
	case n.timer != nil || n.flushQueued || (n.held && n.dirtyPosition):
		return domain.NoteDirtyPending
	case n.inFlight:
		return domain.NoteSaving
	case n.dirtyContent || n.dirtyPosition:
		return domain.NoteDirty
	default:
		return domain.NoteClean
	}
}

func (n *noteState) snapshot() domain.NoteSnapshot {
	return domain.NoteSnapshot{Note: n.note, State: n.state(), Saved: n.saved}
}
