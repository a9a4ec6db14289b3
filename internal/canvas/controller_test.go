package canvas

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/notecanvas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const waitFor = 2 * time.Second

type recordedWrite struct {
	noteID string
	patch  domain.NotePatch
}

// fakeStore is an in-memory note store that records every update.
type fakeStore struct {
	mu      sync.Mutex
	notes   []domain.Note
	writes  []recordedWrite
	started int
	deleted []string
	nextID  int
	failErr error         // returned by the next update, then cleared
	gate    chan struct{} // when set, updates block until it yields
}

func (s *fakeStore) ListNotes(_ context.Context, _ uuid.UUID) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Note(nil), s.notes...), nil
}

func (s *fakeStore) CreateNote(_ context.Context, n domain.NewNote) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	note := domain.Note{
		ID:       fmt.Sprintf("new-%d", s.nextID),
		OwnerID:  n.OwnerID,
		Content:  n.Content,
		Color:    n.Color,
		Position: n.Position,
	}
	s.notes = append([]domain.Note{note}, s.notes...)
	return &note, nil
}

func (s *fakeStore) UpdateNote(_ context.Context, _ uuid.UUID, noteID string, patch domain.NotePatch) error {
	s.mu.Lock()
	s.started++
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		err := s.failErr
		s.failErr = nil
		return err
	}
	s.writes = append(s.writes, recordedWrite{noteID: noteID, patch: patch})
	return nil
}

func (s *fakeStore) DeleteNote(_ context.Context, _ uuid.UUID, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, noteID)
	return nil
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *fakeStore) startedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

func (s *fakeStore) lastWrite() recordedWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[len(s.writes)-1]
}

func (s *fakeStore) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *fakeStore) setGate(gate chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = gate
}

func newTestController(t *testing.T, store *fakeStore, observer Observer) (*Controller, *clockwork.FakeClock) {
	t.Helper()

	clock := clockwork.NewFakeClock()
	c := New(context.Background(), uuid.New(), store, clock, Config{}, observer)
	t.Cleanup(c.Close)

	require.NoError(t, c.Load(context.Background()))
	return c, clock
}

func storeWithNotes(notes ...domain.Note) *fakeStore {
	return &fakeStore{notes: notes}
}

func requireWrites(t *testing.T, store *fakeStore, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return store.writeCount() == n }, waitFor, time.Millisecond)
}

func requireState(t *testing.T, c *Controller, noteID string, want domain.NoteState) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap, ok := c.Snapshot(noteID)
		return ok && snap.State == want
	}, waitFor, time.Millisecond)
}

func TestContentChanged_BurstCoalescesIntoOneWrite(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, clock := newTestController(t, store, nil)

	require.NoError(t, c.ContentChanged("n1", "abc"))
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, c.ContentChanged("n1", "abcd"))
	clock.Advance(100 * time.Millisecond)
	require.NoError(t, c.ContentChanged("n1", "abcde"))

	snap, ok := c.Snapshot("n1")
	require.True(t, ok)
	assert.Equal(t, "abcde", snap.Note.Content)
	assert.Equal(t, domain.NoteDirtyPending, snap.State)

	// 699ms after the first edit: still quiet.
	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, 0, store.startedCount())

	clock.Advance(time.Millisecond)
	requireWrites(t, store, 1)

	w := store.lastWrite()
	assert.Equal(t, "n1", w.noteID)
	require.NotNil(t, w.patch.Content)
	assert.Equal(t, "abcde", *w.patch.Content)
	assert.Nil(t, w.patch.Position)

	requireState(t, c, "n1", domain.NoteClean)
	assert.Equal(t, 1, store.writeCount())
}

func TestContentChanged_UnknownNote(t *testing.T) {
	c, _ := newTestController(t, storeWithNotes(), nil)

	err := c.ContentChanged("missing", "x")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestContentChanged_NotesAreIndependent(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "a"}, domain.Note{ID: "b"})
	c, clock := newTestController(t, store, nil)

	require.NoError(t, c.ContentChanged("a", "first"))
	clock.Advance(300 * time.Millisecond)
	require.NoError(t, c.ContentChanged("b", "second"))

	clock.Advance(200 * time.Millisecond)
	requireWrites(t, store, 1)
	assert.Equal(t, "a", store.lastWrite().noteID)

	clock.Advance(300 * time.Millisecond)
	requireWrites(t, store, 2)
	assert.Equal(t, "b", store.lastWrite().noteID)
}

func TestDrag_WritesOnceOnRelease(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1", Position: domain.Position{X: 10, Y: 10}})
	c, clock := newTestController(t, store, nil)

	require.NoError(t, c.DragStart("n1", 10, 10))
	for _, p := range []domain.Position{{X: 20, Y: 24}, {X: 30, Y: 38}, {X: 40, Y: 52}, {X: 45, Y: 66}, {X: 50, Y: 80}} {
		require.NoError(t, c.DragMove(p.X, p.Y))
	}

	clock.Advance(time.Second)
	assert.Equal(t, 0, store.startedCount())

	snap, _ := c.Snapshot("n1")
	assert.Equal(t, domain.Position{X: 50, Y: 80}, snap.Note.Position)

	require.NoError(t, c.DragEnd())
	requireWrites(t, store, 1)

	w := store.lastWrite()
	require.NotNil(t, w.patch.Position)
	assert.Equal(t, domain.Position{X: 50, Y: 80}, *w.patch.Position)
	assert.Nil(t, w.patch.Content)
}

func TestDrag_KeepsGrabOffset(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1", Position: domain.Position{X: 100, Y: 100}})
	c, _ := newTestController(t, store, nil)

	require.NoError(t, c.DragStart("n1", 110, 105))
	require.NoError(t, c.DragMove(200, 200))

	snap, _ := c.Snapshot("n1")
	assert.Equal(t, domain.Position{X: 190, Y: 195}, snap.Note.Position)
}

func TestDrag_MoveWithoutStartIsIgnored(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1", Position: domain.Position{X: 5, Y: 5}})
	c, _ := newTestController(t, store, nil)

	require.NoError(t, c.DragMove(200, 200))
	require.NoError(t, c.DragEnd())

	snap, _ := c.Snapshot("n1")
	assert.Equal(t, domain.Position{X: 5, Y: 5}, snap.Note.Position)
	assert.Equal(t, domain.NoteClean, snap.State)
	assert.Equal(t, 0, store.startedCount())
}

func TestDrag_ReleaseDoesNotDropPendingContent(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, clock := newTestController(t, store, nil)

	require.NoError(t, c.ContentChanged("n1", "typed"))
	require.NoError(t, c.DragStart("n1", 0, 0))
	require.NoError(t, c.DragMove(40, 40))
	require.NoError(t, c.DragEnd())

	requireWrites(t, store, 1)
	w := store.lastWrite()
	require.NotNil(t, w.patch.Content)
	assert.Equal(t, "typed", *w.patch.Content)
	require.NotNil(t, w.patch.Position)

	clock.Advance(time.Second)
	requireState(t, c, "n1", domain.NoteClean)
	assert.Equal(t, 1, store.writeCount())
}

func TestSave_CancelsPendingWriteAndShowsIndicator(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, clock := newTestController(t, store, nil)

	require.NoError(t, c.ContentChanged("n1", "draft"))
	require.NoError(t, c.Save(context.Background(), "n1"))

	// Save is synchronous: the write is done and the indicator is on.
	assert.Equal(t, 1, store.writeCount())
	snap, _ := c.Snapshot("n1")
	assert.True(t, snap.Saved)
	assert.Equal(t, domain.NoteClean, snap.State)
	require.NotNil(t, store.lastWrite().patch.Content)
	assert.Equal(t, "draft", *store.lastWrite().patch.Content)

	clock.Advance(DefaultSavedIndicator - time.Millisecond)
	snap, _ = c.Snapshot("n1")
	assert.True(t, snap.Saved)

	clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool {
		snap, _ := c.Snapshot("n1")
		return !snap.Saved
	}, waitFor, time.Millisecond)

	// The cancelled debounce never writes.
	assert.Equal(t, 1, store.writeCount())
}

func TestSave_DuringDragShowsIndicator(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, _ := newTestController(t, store, nil)

	require.NoError(t, c.ContentChanged("n1", "draft"))
	require.NoError(t, c.DragStart("n1", 0, 0))
	require.NoError(t, c.DragMove(10, 10))
	require.NoError(t, c.Save(context.Background(), "n1"))

	assert.Equal(t, 1, store.writeCount())
	w := store.lastWrite()
	require.NotNil(t, w.patch.Content)
	assert.Nil(t, w.patch.Position)

	snap, _ := c.Snapshot("n1")
	assert.True(t, snap.Saved)
	assert.Equal(t, domain.NoteDirtyPending, snap.State)

	require.NoError(t, c.DragEnd())
	requireWrites(t, store, 2)
	require.NotNil(t, store.lastWrite().patch.Position)
	assert.Equal(t, domain.Position{X: 10, Y: 10}, *store.lastWrite().patch.Position)
	requireState(t, c, "n1", domain.NoteClean)
}

func TestDrag_HeldNoteIsPending(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, _ := newTestController(t, store, nil)

	require.NoError(t, c.DragStart("n1", 0, 0))
	snap, _ := c.Snapshot("n1")
	assert.Equal(t, domain.NoteClean, snap.State)

	require.NoError(t, c.DragMove(5, 5))
	snap, _ = c.Snapshot("n1")
	assert.Equal(t, domain.NoteDirtyPending, snap.State)
}

func TestSave_CleanNoteStillWritesContent(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1", Content: "stored"})
	c, _ := newTestController(t, store, nil)

	require.NoError(t, c.Save(context.Background(), "n1"))

	require.Equal(t, 1, store.writeCount())
	require.NotNil(t, store.lastWrite().patch.Content)
	assert.Equal(t, "stored", *store.lastWrite().patch.Content)
}

func TestSave_ReturnsWriteError(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, _ := newTestController(t, store, nil)
	boom := errors.New("boom")
	store.setFail(boom)

	require.NoError(t, c.ContentChanged("n1", "x"))
	err := c.Save(context.Background(), "n1")

	assert.ErrorIs(t, err, boom)
	snap, _ := c.Snapshot("n1")
	assert.Equal(t, domain.NoteDirty, snap.State)
	assert.False(t, snap.Saved)
}

func TestSave_UnknownNote(t *testing.T) {
	c, _ := newTestController(t, storeWithNotes(), nil)

	err := c.Save(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
}

func TestEditClearsSavedIndicator(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, _ := newTestController(t, store, nil)

	require.NoError(t, c.Save(context.Background(), "n1"))
	require.NoError(t, c.ContentChanged("n1", "more"))

	snap, _ := c.Snapshot("n1")
	assert.False(t, snap.Saved)
	assert.Equal(t, domain.NoteDirtyPending, snap.State)
}

func TestFailedWrite_IsNotRetried(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	c, clock := newTestController(t, store, nil)
	store.setFail(errors.New("network down"))

	require.NoError(t, c.ContentChanged("n1", "lost?"))
	clock.Advance(DefaultDebounce)

	requireState(t, c, "n1", domain.NoteDirty)
	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, store.startedCount())

	// The next edit tries again.
	require.NoError(t, c.ContentChanged("n1", "lost? no"))
	clock.Advance(DefaultDebounce)
	requireWrites(t, store, 1)
	assert.Equal(t, "lost? no", *store.lastWrite().patch.Content)
}

func TestEditWhileSaving_WritesAgainAfterCompletion(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	gate := make(chan struct{})
	store.setGate(gate)
	c, clock := newTestController(t, store, nil)

	require.NoError(t, c.ContentChanged("n1", "a"))
	clock.Advance(DefaultDebounce)
	requireState(t, c, "n1", domain.NoteSaving)

	require.NoError(t, c.ContentChanged("n1", "ab"))
	snap, _ := c.Snapshot("n1")
	assert.Equal(t, domain.NoteDirtyPending, snap.State)

	// The second debounce comes due while the first write is in flight.
	clock.Advance(DefaultDebounce)
	require.Eventually(t, func() bool {
		snap, _ := c.Snapshot("n1")
		return snap.State == domain.NoteDirtyPending
	}, waitFor, time.Millisecond)
	assert.Equal(t, 1, store.startedCount())

	close(gate)
	requireWrites(t, store, 2)
	assert.Equal(t, "ab", *store.lastWrite().patch.Content)
	requireState(t, c, "n1", domain.NoteClean)
}

func TestDelete_CancelsPendingWrite(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"}, domain.Note{ID: "n2"})
	c, clock := newTestController(t, store, nil)

	require.NoError(t, c.ContentChanged("n1", "doomed"))
	require.NoError(t, c.Delete(context.Background(), "n1"))

	clock.Advance(time.Second)
	_ = c.Notes()
	assert.Equal(t, 0, store.startedCount())
	assert.Equal(t, []string{"n1"}, store.deleted)

	_, ok := c.Snapshot("n1")
	assert.False(t, ok)
	assert.Len(t, c.Notes(), 1)
}

func TestDelete_UnknownNote(t *testing.T) {
	store := storeWithNotes()
	c, _ := newTestController(t, store, nil)

	err := c.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNoteNotFound)
	assert.Empty(t, store.deleted)
}

func TestCreate_PrependsNoteWithPaletteColour(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "old"})
	clock := clockwork.NewFakeClock()
	c := New(context.Background(), uuid.New(), store, clock, Config{Random: func() float64 { return 0.5 }}, nil)
	t.Cleanup(c.Close)
	require.NoError(t, c.Load(context.Background()))

	snap, err := c.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "#c9e4de", snap.Note.Color)
	assert.Equal(t, domain.Position{X: 150, Y: 100}, snap.Note.Position)
	assert.Empty(t, snap.Note.Content)
	assert.Equal(t, domain.NoteClean, snap.State)

	notes := c.Notes()
	require.Len(t, notes, 2)
	assert.Equal(t, snap.Note.ID, notes[0].Note.ID)
	assert.Equal(t, "old", notes[1].Note.ID)
}

func TestClose_CancelsTimersAndRejectsCalls(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	clock := clockwork.NewFakeClock()
	c := New(context.Background(), uuid.New(), store, clock, Config{}, nil)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.ContentChanged("n1", "unsaved"))
	c.Close()
	c.Close()

	clock.Advance(time.Second)
	assert.Equal(t, 0, store.startedCount())
	assert.ErrorIs(t, c.ContentChanged("n1", "more"), domain.ErrControllerClosed)
	assert.Nil(t, c.Notes())
}

func TestObserver_SeesLifecycle(t *testing.T) {
	var mu sync.Mutex
	var seen []domain.NoteSnapshot
	observer := func(s domain.NoteSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	}

	store := storeWithNotes(domain.Note{ID: "n1"})
	c, clock := newTestController(t, store, observer)

	require.NoError(t, c.ContentChanged("n1", "x"))
	require.NoError(t, c.ContentChanged("n1", "xy"))
	clock.Advance(DefaultDebounce)
	requireWrites(t, store, 1)
	requireState(t, c, "n1", domain.NoteClean)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(seen), 3)
	assert.Equal(t, domain.NoteDirtyPending, seen[0].State)
	assert.Equal(t, domain.NoteSaving, seen[1].State)
	last := seen[len(seen)-1]
	assert.Equal(t, domain.NoteClean, last.State)
	assert.True(t, last.Saved)
}

func TestConfig_CustomDurations(t *testing.T) {
	store := storeWithNotes(domain.Note{ID: "n1"})
	clock := clockwork.NewFakeClock()
	c := New(context.Background(), uuid.New(), store, clock, Config{Debounce: time.Second}, nil)
	t.Cleanup(c.Close)
	require.NoError(t, c.Load(context.Background()))

	require.NoError(t, c.ContentChanged("n1", "slow"))
	clock.Advance(DefaultDebounce)
	assert.Equal(t, 0, store.startedCount())

	clock.Advance(DefaultDebounce)
	requireWrites(t, store, 1)
}

func TestContentChanged_BurstProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		contents := rapid.SliceOfN(rapid.StringN(0, 12, -1), 1, 20).Draw(rt, "contents")
		gaps := rapid.SliceOfN(rapid.Int64Range(0, int64(DefaultDebounce/time.Millisecond)-1), len(contents), len(contents)).Draw(rt, "gaps")

		store := storeWithNotes(domain.Note{ID: "n1"})
		clock := clockwork.NewFakeClock()
		c := New(context.Background(), uuid.New(), store, clock, Config{}, nil)
		defer c.Close()
		require.NoError(rt, c.Load(context.Background()))

		for i, content := range contents {
			if i > 0 {
				clock.Advance(time.Duration(gaps[i]) * time.Millisecond)
			}
			require.NoError(rt, c.ContentChanged("n1", content))
		}
		assert.Equal(rt, 0, store.startedCount())

		clock.Advance(DefaultDebounce)
		require.Eventually(rt, func() bool { return store.writeCount() == 1 }, waitFor, time.Millisecond)
		_ = c.Notes()

		assert.Equal(rt, 1, store.writeCount())
		assert.Equal(rt, contents[len(contents)-1], *store.lastWrite().patch.Content)
	})
}
