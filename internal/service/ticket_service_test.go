package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/validation"
)

var admin = domain.Identity{ID: "64b7f0c2a1b2c3d4e5f60718", Email: "admin@example.com"}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTicketFixture(t *testing.T) (*TicketService, *fakeClock, events.Dispatcher) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repository.NewMemoryTicketRepository(),
		Dispatcher: dispatcher,
		Clock:      clock.Now,
	})
	return svc, clock, dispatcher
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _, _ := newTicketFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTicket(ctx, admin, map[string]any{"title": "  Printer jammed  "})
	require.NoError(t, err)
	assert.True(t, repository.IsValidID(created.ID))
	assert.Equal(t, "Printer jammed", created.Title)
	assert.Equal(t, domain.TicketStatusOpen, created.Status)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, 0, created.CreatedAt.Nanosecond()%int(time.Millisecond))

	fetched, err := svc.GetTicket(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, fetched.Status)
	assert.Equal(t, fetched.CreatedAt, fetched.UpdatedAt)
}

func TestCreateTicketSanitizesStrings(t *testing.T) {
	svc, _, _ := newTicketFixture(t)

	created, err := svc.CreateTicket(context.Background(), admin, map[string]any{
		"title":       "<b>Outage</b>",
		"description": " a & b ",
		"createdBy":   "ops",
		"assignedTo":  "it's me",
		"status":      "in progress",
	})
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;Outage&lt;&#x2F;b&gt;", created.Title)
	assert.Equal(t, "a &amp; b", created.Description)
	assert.Equal(t, "ops", created.CreatedBy)
	assert.Equal(t, "it&#x27;s me", created.AssignedTo)
	assert.Equal(t, domain.TicketStatusInProgress, created.Status)
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _, _ := newTicketFixture(t)
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, admin, map[string]any{"title": "   ", "status": "pending", "description": 7})
	de := requireDomainError(t, err, "VALIDATION_FAILED", 400)

	details := de.Details.(validation.Errors)
	require.Len(t, details, 3)
	assert.Equal(t, validation.FieldError{Field: "title", Message: "Title is required"}, details[0])
	assert.Equal(t, "description", details[1].Field)
	assert.Equal(t, "status", details[2].Field)

	list, err := svc.ListTickets(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateTicketMissingTitle(t *testing.T) {
	svc, _, _ := newTicketFixture(t)

	_, err := svc.CreateTicket(context.Background(), admin, map[string]any{})
	de := requireDomainError(t, err, "VALIDATION_FAILED", 400)
	details := de.Details.(validation.Errors)
	require.Len(t, details, 1)
	assert.Equal(t, "title", details[0].Field)
}

func TestListTicketsInInsertionOrder(t *testing.T) {
	svc, _, _ := newTicketFixture(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := svc.CreateTicket(ctx, admin, map[string]any{"title": title})
		require.NoError(t, err)
	}

	list, err := svc.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].Title)
	assert.Equal(t, "three", list[2].Title)
}

func TestPatchTicketStatusOnly(t *testing.T) {
	svc, clock, _ := newTicketFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTicket(ctx, admin, map[string]any{
		"title":       "VPN down",
		"description": "since 9am",
		"assignedTo":  "sam",
	})
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Second)
	patched, err := svc.PatchTicket(ctx, admin, created.ID, map[string]any{"status": "closed"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusClosed, patched.Status)
	assert.Equal(t, "VPN down", patched.Title)
	assert.Equal(t, "since 9am", patched.Description)
	assert.Equal(t, "sam", patched.AssignedTo)
	assert.Equal(t, created.CreatedAt, patched.CreatedAt)
	assert.True(t, patched.UpdatedAt.After(patched.CreatedAt))
}

func TestUpdateWithinSameMillisecondStillAdvances(t *testing.T) {
	svc, _, _ := newTicketFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTicket(ctx, admin, map[string]any{"title": "fast"})
	require.NoError(t, err)

	updated, err := svc.ReplaceTicket(ctx, admin, created.ID, map[string]any{})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	assert.Equal(t, "fast", updated.Title)
}

func TestReplaceTicket(t *testing.T) {
	svc, clock, dispatcher := newTicketFixture(t)
	ctx := context.Background()

	var updates []events.Event
	dispatcher.Subscribe(events.EventTicketUpdated, func(_ context.Context, e events.Event) error {
		updates = append(updates, e)
		return nil
	})

	created, err := svc.CreateTicket(ctx, admin, map[string]any{"title": "old"})
	require.NoError(t, err)

	clock.t = clock.t.Add(time.Minute)
	updated, err := svc.ReplaceTicket(ctx, admin, created.ID, map[string]any{
		"title":  "new",
		"status": "in progress",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	require.Len(t, updates, 1)
	payload := updates[0].Payload.(events.TicketUpdatedPayload)
	assert.Equal(t, []string{"title", "status"}, payload.Fields)
	assert.False(t, payload.Partial)
}

func TestUpdateValidation(t *testing.T) {
	svc, _, _ := newTicketFixture(t)
	ctx := context.Background()

	created, err := svc.CreateTicket(ctx, admin, map[string]any{"title": "x"})
	require.NoError(t, err)

	_, err = svc.PatchTicket(ctx, admin, created.ID, map[string]any{"title": "", "status": "done"})
	de := requireDomainError(t, err, "VALIDATION_FAILED", 400)
	assert.Len(t, de.Details.(validation.Errors), 2)

	fetched, err := svc.GetTicket(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, fetched.UpdatedAt)
}

func TestMalformedIDIsValidationNotNotFound(t *testing.T) {
	svc, _, _ := newTicketFixture(t)
	ctx := context.Background()

	_, err := svc.GetTicket(ctx, "123")
	requireDomainError(t, err, "VALIDATION_FAILED", 400)
	_, err = svc.PatchTicket(ctx, admin, "123", map[string]any{"title": ""})
	de := requireDomainError(t, err, "VALIDATION_FAILED", 400)
	assert.Equal(t, "invalid ticket id", de.Message)
	err = svc.DeleteTicket(ctx, admin, "zzzzzzzzzzzzzzzzzzzzzzzz")
	requireDomainError(t, err, "VALIDATION_FAILED", 400)

	_, err = svc.GetTicket(ctx, "507F1F77BCF86CD799439011")
	requireDomainError(t, err, "VALIDATION_FAILED", 400)

	missing := repository.NewID()
	_, err = svc.GetTicket(ctx, missing)
	requireDomainError(t, err, "NOT_FOUND", 404)
	_, err = svc.ReplaceTicket(ctx, admin, missing, map[string]any{"title": "t"})
	requireDomainError(t, err, "NOT_FOUND", 404)
}

func TestDeleteTicket(t *testing.T) {
	svc, _, dispatcher := newTicketFixture(t)
	ctx := context.Background()

	var deleted []string
	dispatcher.Subscribe(events.EventTicketDeleted, func(_ context.Context, e events.Event) error {
		deleted = append(deleted, e.SubjectID)
		return nil
	})

	created, err := svc.CreateTicket(ctx, admin, map[string]any{"title": "bye"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTicket(ctx, admin, created.ID))
	assert.Equal(t, []string{created.ID}, deleted)

	_, err = svc.GetTicket(ctx, created.ID)
	requireDomainError(t, err, "NOT_FOUND", 404)
	err = svc.DeleteTicket(ctx, admin, created.ID)
	requireDomainError(t, err, "NOT_FOUND", 404)
}

type failingTickets struct {
	repository.TicketRepository
	err error
}

func (f failingTickets) Find(context.Context) ([]domain.Ticket, error) { return nil, f.err }

func (f failingTickets) Insert(context.Context, *domain.Ticket) error { return f.err }

func TestStoreFaults(t *testing.T) {
	svc := NewTicketService(TicketDependencies{
		TicketRepo: failingTickets{err: errors.New("connection reset")},
	})
	ctx := context.Background()

	_, err := svc.ListTickets(ctx)
	de := requireDomainError(t, err, "STORE_ERROR", 500)
	assert.Equal(t, "connection reset", de.Message)

	_, err = svc.CreateTicket(ctx, admin, map[string]any{"title": "t"})
	requireDomainError(t, err, "STORE_REJECTED", 400)
}

func TestSubscriberFailureDoesNotFailRequest(t *testing.T) {
	svc, _, dispatcher := newTicketFixture(t)
	dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		return errors.New("audit sink down")
	})

	_, err := svc.CreateTicket(context.Background(), admin, map[string]any{"title": "still works"})
	assert.NoError(t, err)
}
