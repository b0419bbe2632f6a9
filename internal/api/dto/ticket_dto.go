package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TimestampLayout renders UTC instants with millisecond precision, e.g. 2024-05-01T10:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TicketResponse is the wire form of a ticket. Empty optional strings are omitted.
type TicketResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      domain.TicketStatus `json:"status"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
	CreatedBy   string              `json:"createdBy,omitempty"`
	AssignedTo  string              `json:"assignedTo,omitempty"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedAt:   formatTimestamp(t.CreatedAt),
		UpdatedAt:   formatTimestamp(t.UpdatedAt),
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
	}
}

// NewTicketListResponse maps a slice, never returning nil so the body is [] when empty.
func NewTicketListResponse(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketResponse(&tickets[i]))
	}
	return items
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
