package cart

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("cart not found")
	// ErrConflict means another writer saved the cart first.
	ErrConflict = errors.New("cart was modified concurrently")
)

type Repository interface {
	Get(ctx context.Context, owner string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, owner string) error
}

type MongoRepo struct{ coll *mongo.Collection }

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection("carts")}
}

// EnsureIndexes creates the one-cart-per-owner index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "ownerId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("carts_owner"),
	})
	return err
}

func (r *MongoRepo) Get(ctx context.Context, owner string) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Cart
	err := r.coll.FindOne(ctx, bson.M{"ownerId": owner}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return &c, nil
}

// Save writes c when its version still matches the stored one and bumps the
// version. A new cart (version 0) is inserted; losing the insert race to the
// owner index is also a conflict.
func (r *MongoRepo) Save(ctx context.Context, c *Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if c.Version == 0 {
		c.Version = 1
		res, err := r.coll.InsertOne(ctx, c)
		if mongo.IsDuplicateKeyError(err) {
			c.Version = 0
			return ErrConflict
		}
		if err != nil {
			c.Version = 0
			return err
		}
		c.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"ownerId": c.OwnerID, "version": c.Version},
		bson.M{
			"$set": bson.M{"items": c.Items, "updatedAt": c.UpdatedAt},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	c.Version++
	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, owner string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.DeleteOne(ctx, bson.M{"ownerId": owner})
	return err
}
