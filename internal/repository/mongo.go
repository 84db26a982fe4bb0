package repository

import (
	"context"
	"errors"

	"github.com/civicline/backend/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const incidentsCollection = "incidents"

// MongoRepository keeps incidents as documents in the "incidents" collection,
// keyed by the same UUID string the SQL store uses.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{
		client:     client,
		collection: client.Database(database).Collection(incidentsCollection),
	}
}

func filterDocument(filter models.IncidentFilter) bson.M {
	doc := bson.M{}
	for k, v := range filter.Fields() {
		doc[k] = v
	}
	return doc
}

// idFilter matches a document by id. Documents written before ids were
// UUID strings carry an ObjectId _id, which List reports as its hex form.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

func (r *MongoRepository) Create(ctx context.Context, incident *models.Incident) error {
	incident.ID = uuid.NewString()
	incident.Resolved = false

	if _, err := r.collection.InsertOne(ctx, incident); err != nil {
		return storageError("create", err)
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, error) {
	cursor, err := r.collection.Find(ctx, filterDocument(filter))
	if err != nil {
		return nil, storageError("list", err)
	}
	defer cursor.Close(ctx)

	incidents := make([]models.Incident, 0)
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, storageError("list", err)
	}
	return incidents, nil
}

func (r *MongoRepository) Count(ctx context.Context, filter models.IncidentFilter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, filterDocument(filter))
	if err != nil {
		return 0, storageError("count", err)
	}
	return count, nil
}

func (r *MongoRepository) UpdateResolved(ctx context.Context, id string, resolved bool) (*models.Incident, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	result := r.collection.FindOneAndUpdate(ctx,
		idFilter(id),
		bson.M{"$set": bson.M{"resolved": resolved}},
		opts,
	)

	var incident models.Incident
	if err := result.Decode(&incident); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storageError("update resolved", err)
	}
	return &incident, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return storageError("ping", err)
	}
	return nil
}
