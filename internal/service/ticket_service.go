package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/validation"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const (
	msgTitleRequired = "Title is required"
	msgTitleString   = "Title must be a string"
	msgInvalidID     = "invalid ticket id"
)

var msgStatus = "Status must be one of " + validation.Allowed(domain.TicketStatuses)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles requirements for the ticket service. Clock
// overrides time.Now, mostly for tests.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// optionalStringFields are sanitized and stored verbatim when present.
var optionalStringFields = []string{"description", "createdBy", "assignedTo"}

func createRules() []validation.Field {
	return []validation.Field{
		validation.For("title",
			validation.Required(msgTitleRequired),
			validation.String(msgTitleString),
			validation.NotBlank(msgTitleRequired),
		),
		validation.For("description", validation.String("Description must be a string")),
		validation.For("status",
			validation.String(msgStatus),
			validation.OneOf(domain.TicketStatuses, msgStatus),
		),
		validation.For("createdBy", validation.String("createdBy must be a string")),
		validation.For("assignedTo", validation.String("assignedTo must be a string")),
	}
}

func updateRules() []validation.Field {
	fields := createRules()
	fields[0] = validation.For("title",
		validation.String(msgTitleString),
		validation.NotBlank("Title cannot be empty"),
	)
	return fields
}

// CreateTicket validates, sanitizes and persists a new ticket.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Identity, payload map[string]any) (*domain.Ticket, error) {
	if errs := validation.Validate(payload, createRules()...); len(errs) > 0 {
		return nil, apperrors.NewValidationError("validation failed", errs)
	}
	changes := changesFrom(payload)

	now := s.timestamp()
	ticket := &domain.Ticket{
		Status:    domain.TicketStatusOpen,
		CreatedAt: now,
	}
	changes.UpdatedAt = now
	ticket.Apply(changes)

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreRejected(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		Actor:     events.ActorFrom(actor),
		Payload: events.TicketCreatedPayload{
			Title:  ticket.Title,
			Status: ticket.Status,
		},
	})
	return ticket, nil
}

// ListTickets returns every ticket in store order.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.Find(ctx)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return tickets, nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err)
	}
	return ticket, nil
}

// ReplaceTicket handles PUT. Provided fields overwrite stored ones.
func (s *TicketService) ReplaceTicket(ctx context.Context, actor domain.Identity, id string, payload map[string]any) (*domain.Ticket, error) {
	return s.applyUpdate(ctx, actor, id, payload, false)
}

// PatchTicket handles PATCH. Only provided fields are merged.
func (s *TicketService) PatchTicket(ctx context.Context, actor domain.Identity, id string, payload map[string]any) (*domain.Ticket, error) {
	return s.applyUpdate(ctx, actor, id, payload, true)
}

// DeleteTicket removes a ticket.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Identity, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.tickets.DeleteByID(ctx, id); err != nil {
		return mutationError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTicketDeleted,
		SubjectID: id,
		Actor:     events.ActorFrom(actor),
	})
	return nil
}

func (s *TicketService) applyUpdate(ctx context.Context, actor domain.Identity, id string, payload map[string]any, partial bool) (*domain.Ticket, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if errs := validation.Validate(payload, updateRules()...); len(errs) > 0 {
		return nil, apperrors.NewValidationError("validation failed", errs)
	}

	existing, err := s.tickets.FindByID(ctx, id)
	if err != nil {
		return nil, readError(err)
	}

	changes := changesFrom(payload)
	changes.UpdatedAt = s.timestamp()
	// Millisecond precision can make a fast update collide with creation.
	if !changes.UpdatedAt.After(existing.CreatedAt) {
		changes.UpdatedAt = existing.CreatedAt.Add(time.Millisecond)
	}

	ticket, err := s.tickets.UpdateByID(ctx, id, changes)
	if err != nil {
		return nil, mutationError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:      events.EventTicketUpdated,
		SubjectID: ticket.ID,
		Actor:     events.ActorFrom(actor),
		Payload: events.TicketUpdatedPayload{
			Fields:    providedFields(payload),
			NewStatus: ticket.Status,
			Partial:   partial,
		},
	})
	return ticket, nil
}

func (s *TicketService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// changesFrom assumes payload already passed validation.
func changesFrom(payload map[string]any) domain.TicketChanges {
	var ch domain.TicketChanges
	if title, ok := payload["title"].(string); ok {
		v := validation.Sanitize(title)
		ch.Title = &v
	}
	if status, ok := payload["status"].(string); ok {
		v := domain.TicketStatus(status)
		ch.Status = &v
	}
	for _, key := range optionalStringFields {
		raw, ok := payload[key].(string)
		if !ok {
			continue
		}
		v := validation.Sanitize(raw)
		switch key {
		case "description":
			ch.Description = &v
		case "createdBy":
			ch.CreatedBy = &v
		case "assignedTo":
			ch.AssignedTo = &v
		}
	}
	return ch
}

func providedFields(payload map[string]any) []string {
	fields := []string{}
	for _, key := range append([]string{"title", "status"}, optionalStringFields...) {
		if _, ok := payload[key]; ok {
			fields = append(fields, key)
		}
	}
	return fields
}

func checkID(id string) error {
	if !repository.IsValidID(id) {
		return apperrors.NewValidationError(msgInvalidID, []validation.FieldError{
			{Field: "id", Message: msgInvalidID},
		})
	}
	return nil
}

func readError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket")
	}
	return apperrors.NewStoreError(err)
}

func mutationError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket")
	}
	return apperrors.NewStoreRejected(err)
}
