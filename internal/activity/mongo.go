package activity

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoInserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// MongoRecorder appends entries to a MongoDB collection
type MongoRecorder struct {
	client     *mongo.Client
	collection mongoInserter
}

// NewMongoRecorder connects to uri and writes into database.collection
func NewMongoRecorder(ctx context.Context, uri, database, collection string) (*MongoRecorder, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	return &MongoRecorder{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (r *MongoRecorder) Record(ctx context.Context, entry Entry) error {
	doc := bson.M{
		"_id":          entry.ID.String(),
		"session_id":   entry.SessionID.String(),
		"kind":         entry.Kind,
		"step":         entry.Step,
		"current_step": entry.CurrentStep,
		"progress":     entry.Progress,
		"created_at":   entry.CreatedAt,
	}
	if len(entry.Detail) > 0 {
		var detail bson.M
		if err := bson.UnmarshalExtJSON(entry.Detail, false, &detail); err != nil {
			return fmt.Errorf("failed to convert activity detail: %w", err)
		}
		doc["detail"] = detail
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// Close disconnects the client
func (r *MongoRecorder) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}
