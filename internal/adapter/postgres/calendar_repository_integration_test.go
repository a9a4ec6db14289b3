package postgres

import (
	"context"
	"testing"

	"github.com/pscheid92/notecanvas/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarRepo_AddListDelete(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewCalendarRepo(pool)
	user := createTestUser(t, pool, "cal@example.com")
	other := createTestUser(t, pool, "other@example.com")

	later, err := repo.Add(ctx, user.ID, "2026-03-14", "Pi day")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", later.Date)

	_, err = repo.Add(ctx, user.ID, "2026-01-02", "Dentist")
	require.NoError(t, err)

	notes, err := repo.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "2026-01-02", notes[0].Date)
	assert.Equal(t, "Pi day", notes[1].Text)

	require.ErrorIs(t, repo.Delete(ctx, other.ID, later.ID), domain.ErrCalendarNoteNotFound)
	require.NoError(t, repo.Delete(ctx, user.ID, later.ID))

	notes, err = repo.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}
