package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/storefront/catalog-api/internal/core/domain"
)

// AuditRepository appends audit events to the audit_events collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(collectionAuditEvents)}
}

type auditDocument struct {
	Type       string            `bson:"type"`
	Subject    string            `bson:"subject"`
	Actor      string            `bson:"actor,omitempty"`
	Attributes map[string]string `bson:"attributes,omitempty"`
	OccurredAt time.Time         `bson:"occurred_at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := auditDocument{
		Type:       string(event.Type),
		Subject:    event.Subject,
		Actor:      event.Actor,
		Attributes: event.Attributes,
		OccurredAt: event.OccurredAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
