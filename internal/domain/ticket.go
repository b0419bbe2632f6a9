package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every accepted status, in display order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
	AssignedTo  string
}

// TicketChanges carries the fields of an update. Nil fields are left untouched.
type TicketChanges struct {
	Title       *string
	Description *string
	Status      *TicketStatus
	CreatedBy   *string
	AssignedTo  *string
	UpdatedAt   time.Time
}

// Apply merges the non-nil changes into t and stamps UpdatedAt.
func (t *Ticket) Apply(ch TicketChanges) {
	if ch.Title != nil {
		t.Title = *ch.Title
	}
	if ch.Description != nil {
		t.Description = *ch.Description
	}
	if ch.Status != nil {
		t.Status = *ch.Status
	}
	if ch.CreatedBy != nil {
		t.CreatedBy = *ch.CreatedBy
	}
	if ch.AssignedTo != nil {
		t.AssignedTo = *ch.AssignedTo
	}
	t.UpdatedAt = ch.UpdatedAt
}
