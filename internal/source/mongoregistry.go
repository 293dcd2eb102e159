package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agrisense-ai/agrisense/pkg/models"
)

// MongoRegistry implements DriverRegistry over a MongoDB "drivers"
// collection, for deployments where the fleet roster lives alongside
// the platform's other records.
type MongoRegistry struct {
	client  *mongo.Client
	drivers *mongo.Collection
}

// driverDoc is the collection schema for one driver.
type driverDoc struct {
	ID         string  `bson:"_id"`
	Name       string  `bson:"name"`
	CapacityKG float64 `bson:"capacity_kg"`
	Rating     float64 `bson:"rating"`
	Vehicle    string  `bson:"vehicle"`
	Status     string  `bson:"status"`
	Location   string  `bson:"location"`
}

// NewMongoRegistry connects to MongoDB and prepares the drivers
// collection with its capacity index.
func NewMongoRegistry(ctx context.Context, uri, db string) (*MongoRegistry, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	drivers := client.Database(db).Collection("drivers")
	if _, err := drivers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: 1}, {Key: "capacity_kg", Value: -1}},
	}); err != nil {
		return nil, fmt.Errorf("ensure driver index: %w", err)
	}

	return &MongoRegistry{client: client, drivers: drivers}, nil
}

// Name returns the data source name.
func (r *MongoRegistry) Name() string { return "Mongo Driver Registry" }

// Query returns candidates with at least the requested capacity,
// sorted by capacity descending. Distances are derived from registered
// locations the same way the static registry does it.
func (r *MongoRegistry) Query(ctx context.Context, location string, minCapacityKG float64) ([]models.DriverCandidate, error) {
	cur, err := r.drivers.Find(ctx,
		bson.M{"capacity_kg": bson.M{"$gte": minCapacityKG}},
		options.Find().SetSort(bson.D{{Key: "capacity_kg", Value: -1}}).SetLimit(100),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query drivers: %v", ErrUnavailable, err)
	}
	defer cur.Close(ctx)

	var out []models.DriverCandidate
	for cur.Next(ctx) {
		var doc driverDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode driver: %v", ErrUnavailable, err)
		}
		out = append(out, models.DriverCandidate{
			ID:         doc.ID,
			Name:       doc.Name,
			CapacityKG: doc.CapacityKG,
			Rating:     doc.Rating,
			Vehicle:    models.VehicleType(doc.Vehicle),
			Status:     models.DriverStatus(doc.Status),
			Location:   doc.Location,
			DistanceKM: registeredDistanceKM(doc.Location, location),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate drivers: %v", ErrUnavailable, err)
	}
	return out, nil
}

// HealthCheck pings the MongoDB deployment.
func (r *MongoRegistry) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (r *MongoRegistry) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
