package order

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

var (
	ErrNotFound        = errors.New("order not found")
	ErrDuplicateNumber = errors.New("order number already used")

	// ErrStatusConflict means the status changed between read and write.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Filter struct {
	Module        module.Module
	Status        Status
	CustomerID    string
	CustomerEmail string // lower-cased
	VendorID      string
	Limit         int
	Offset        int
}

func (f Filter) Normalize() Filter {
	if f.Limit <= 0 || f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Order, error)
	AssignVendor(ctx context.Context, id, vendorID string) (*Order, error)
}

type MongoRepo struct{ coll *mongo.Collection }

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection("orders")}
}

func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetName("orders_number")},
		{Keys: bson.D{{Key: "module", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("orders_module_status")},
		{Keys: bson.D{{Key: "customer.id", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("orders_customer")},
		{Keys: bson.D{{Key: "vendorId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("orders_vendor")},
	})
	return err
}

func (r *MongoRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateNumber
	}
	if err != nil {
		return err
	}
	o.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// byID matches an ObjectID hex string or an order number.
func byID(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}
	}
	return bson.M{"orderNumber": id}
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := r.coll.FindOne(ctx, byID(id)).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MongoRepo) List(ctx context.Context, f Filter) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	f = f.Normalize()
	q := bson.M{}
	if f.Module != "" {
		q["module"] = f.Module
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.CustomerID != "" {
		q["customer.id"] = f.CustomerID
	}
	if f.CustomerEmail != "" {
		q["customer.email"] = f.CustomerEmail
	}
	if f.VendorID != "" {
		q["vendorId"] = f.VendorID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := r.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	out := []Order{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus writes to only if the stored status is still from.
func (r *MongoRepo) UpdateStatus(ctx context.Context, id string, from, to Status) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := byID(id)
	filter["status"] = from
	o, err := r.findAndSet(ctx, filter, bson.M{"status": to})
	if !errors.Is(err, ErrNotFound) {
		return o, err
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrStatusConflict
}

func (r *MongoRepo) AssignVendor(ctx context.Context, id, vendorID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.findAndSet(ctx, byID(id), bson.M{"vendorId": vendorID})
}

func (r *MongoRepo) findAndSet(ctx context.Context, filter, set bson.M) (*Order, error) {
	set["updatedAt"] = time.Now().UTC()
	var o Order
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
