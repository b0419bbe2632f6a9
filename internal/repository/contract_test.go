package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// testTicketRepository checks the behavior every TicketRepository backend must share.
func testTicketRepository(t *testing.T, repo TicketRepository) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	first := &domain.Ticket{
		Title:       "Printer jammed",
		Description: "third floor",
		Status:      domain.TicketStatusOpen,
		CreatedAt:   created,
		UpdatedAt:   created,
		CreatedBy:   "alice",
	}
	require.NoError(t, repo.Insert(ctx, first))
	require.True(t, IsValidID(first.ID), "generated id %q", first.ID)

	second := &domain.Ticket{Title: "VPN down", Status: domain.TicketStatusInProgress, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, repo.Insert(ctx, second))

	t.Run("find by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Title, got.Title)
		assert.Equal(t, first.Description, got.Description)
		assert.Equal(t, "alice", got.CreatedBy)
		assert.True(t, created.Equal(got.CreatedAt))
		assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
	})

	t.Run("find returns inserted tickets", func(t *testing.T) {
		all, err := repo.Find(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(all))
		for _, ticket := range all {
			ids = append(ids, ticket.ID)
		}
		assert.Contains(t, ids, first.ID)
		assert.Contains(t, ids, second.ID)
	})

	t.Run("update merges provided fields", func(t *testing.T) {
		later := created.Add(time.Minute)
		updated, err := repo.UpdateByID(ctx, first.ID, domain.TicketChanges{
			Status:    ptr(domain.TicketStatusClosed),
			UpdatedAt: later,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusClosed, updated.Status)
		assert.Equal(t, "Printer jammed", updated.Title)
		assert.Equal(t, "third floor", updated.Description)
		assert.Equal(t, "alice", updated.CreatedBy)
		assert.True(t, later.Equal(updated.UpdatedAt))

		cleared, err := repo.UpdateByID(ctx, first.ID, domain.TicketChanges{
			Description: ptr(""),
			AssignedTo:  ptr("bob"),
			UpdatedAt:   later.Add(time.Minute),
		})
		require.NoError(t, err)
		assert.Empty(t, cleared.Description)
		assert.Equal(t, "bob", cleared.AssignedTo)
	})

	t.Run("missing records", func(t *testing.T) {
		missing := NewID()
		_, err := repo.FindByID(ctx, missing)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.UpdateByID(ctx, missing, domain.TicketChanges{UpdatedAt: created})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.DeleteByID(ctx, missing), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteByID(ctx, second.ID))
		_, err := repo.FindByID(ctx, second.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.DeleteByID(ctx, second.ID), ErrNotFound)
	})
}

// testUserRepository checks the behavior every UserRepository backend must share.
func testUserRepository(t *testing.T, repo UserRepository, email string) {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{Email: email, PasswordHash: "$2a$04$hash", CreatedAt: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, repo.Insert(ctx, user))
	assert.True(t, IsValidID(user.ID))

	got, err := repo.FindByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "$2a$04$hash", got.PasswordHash)

	dup := &domain.User{Email: email, PasswordHash: "other", CreatedAt: user.CreatedAt}
	assert.ErrorIs(t, repo.Insert(ctx, dup), ErrDuplicate)

	_, err = repo.FindByEmail(ctx, "nobody-"+email)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTicketRepository(t *testing.T) {
	testTicketRepository(t, NewMemoryTicketRepository())
}

func TestMemoryUserRepository(t *testing.T) {
	testUserRepository(t, NewMemoryUserRepository(), "mem@example.com")
}

func TestMemoryFindPreservesInsertionOrder(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		ticket := &domain.Ticket{Title: title, Status: domain.TicketStatusOpen}
		require.NoError(t, repo.Insert(ctx, ticket))
		ids = append(ids, ticket.ID)
	}
	require.NoError(t, repo.DeleteByID(ctx, ids[1]))

	all, err := repo.Find(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Title)
	assert.Equal(t, "c", all[1].Title)
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID(NewID()))
	assert.True(t, IsValidID("507f1f77bcf86cd799439011"))
	assert.False(t, IsValidID("507f1f77bcf86cd79943901"))
	assert.False(t, IsValidID("zzzzzzzzzzzzzzzzzzzzzzzz"))
	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("123"))
	assert.False(t, IsValidID("507F1F77BCF86CD799439011"))
	assert.False(t, IsValidID("507f1f77bcf86cd79943901A"))
}
