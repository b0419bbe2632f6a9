package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const ticketsCollection = "tickets"

type ticketDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Description string        `bson:"description,omitempty"`
	Status      string        `bson:"status"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
	CreatedBy   string        `bson:"createdBy,omitempty"`
	AssignedTo  string        `bson:"assignedTo,omitempty"`
}

func (d ticketDocument) toDomain() domain.Ticket {
	return domain.Ticket{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TicketStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		CreatedBy:   d.CreatedBy,
		AssignedTo:  d.AssignedTo,
	}
}

type mongoTicketRepository struct {
	coll *mongo.Collection
}

// NewMongoTicketRepository returns a MongoDB-backed implementation.
func NewMongoTicketRepository(db *mongo.Database) TicketRepository {
	return &mongoTicketRepository{coll: db.Collection(ticketsCollection)}
}

func (r *mongoTicketRepository) Find(ctx context.Context) ([]domain.Ticket, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var docs []ticketDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	result := make([]domain.Ticket, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (r *mongoTicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc ticketDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ticket := doc.toDomain()
	return &ticket, nil
}

func (r *mongoTicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	doc := ticketDocument{
		ID:          bson.NewObjectID(),
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		CreatedBy:   ticket.CreatedBy,
		AssignedTo:  ticket.AssignedTo,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	ticket.ID = doc.ID.Hex()
	return nil
}

func (r *mongoTicketRepository) UpdateByID(ctx context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.D{{Key: "updatedAt", Value: changes.UpdatedAt}}
	var unset bson.D
	setString := func(key string, val *string) {
		if val == nil {
			return
		}
		// Empty optional strings are removed to mirror omitempty on insert.
		if *val == "" && key != "title" {
			unset = append(unset, bson.E{Key: key, Value: ""})
			return
		}
		set = append(set, bson.E{Key: key, Value: *val})
	}
	setString("title", changes.Title)
	setString("description", changes.Description)
	setString("createdBy", changes.CreatedBy)
	setString("assignedTo", changes.AssignedTo)
	if changes.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*changes.Status)})
	}

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ticketDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ticket := doc.toDomain()
	return &ticket, nil
}

func (r *mongoTicketRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
