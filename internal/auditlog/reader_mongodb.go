package auditlog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"dlpgate/internal/core"
)

// MongoDBReader implements Reader for MongoDB.
type MongoDBReader struct {
	collection *mongo.Collection
}

// NewMongoDBReader creates a new MongoDB audit trail reader.
func NewMongoDBReader(database *mongo.Database) (*MongoDBReader, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &MongoDBReader{collection: database.Collection("audit_events")}, nil
}

// Metrics aggregates every event in [from, to].
func (r *MongoDBReader) Metrics(ctx context.Context, from, to time.Time) (*core.ComplianceMetrics, error) {
	filter := bson.M{}
	tsFilter := bson.M{}
	if !from.IsZero() {
		tsFilter["$gte"] = from.UTC()
	}
	if !to.IsZero() {
		tsFilter["$lt"] = to.AddDate(0, 0, 1).UTC()
	}
	if len(tsFilter) > 0 {
		filter["timestamp"] = tsFilter
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer cursor.Close(ctx)

	metrics := core.NewComplianceMetrics(from, to)
	for cursor.Next(ctx) {
		var e core.AuditEvent
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode audit event: %w", err)
		}
		metrics.Add(&e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}

	return metrics, nil
}

// EventsBySession returns one session's events in chronological order.
func (r *MongoDBReader) EventsBySession(ctx context.Context, sessionID string) ([]core.AuditEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events by session: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]core.AuditEvent, 0)
	for cursor.Next(ctx) {
		var e core.AuditEvent
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}

	return events, nil
}
