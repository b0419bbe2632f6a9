package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/spec-kit/helpdesk/internal/domain"
)

var (
	// ErrNotFound is returned when no record matches the identifier or key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique field.
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository defines persistence access for admin users.
type UserRepository interface {
	Insert(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TicketRepository encapsulates ticket persistence. Each call is a single
// atomic operation on one record, except Find.
type TicketRepository interface {
	Find(ctx context.Context) ([]domain.Ticket, error)
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	Insert(ctx context.Context, ticket *domain.Ticket) error
	UpdateByID(ctx context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error)
	DeleteByID(ctx context.Context, id string) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Users   UserRepository
	Tickets TicketRepository
	Pinger  func(ctx context.Context) error
}

// Ping checks backend connectivity.
func (s Store) Ping(ctx context.Context) error {
	if s.Pinger == nil {
		return nil
	}
	return s.Pinger(ctx)
}

// IsValidID reports whether id has the identifier format every backend uses:
// a 24 character lowercase hex object id. Uppercase is rejected because the
// memory and Postgres stores compare ids as plain strings.
func IsValidID(id string) bool {
	oid, err := bson.ObjectIDFromHex(id)
	return err == nil && oid.Hex() == id
}

// NewID generates an identifier for backends that do not assign their own.
func NewID() string {
	return bson.NewObjectID().Hex()
}
