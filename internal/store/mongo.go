package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/auth-service/internal/models"
)

const accountsCollection = "users"

type accountDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *accountDoc) model() *models.Account {
	return &models.Account{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoStore handles account persistence in MongoDB. Uniqueness relies on the
// indexes created by EnsureIndexes.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(accountsCollection)}
}

// EnsureIndexes creates the unique username and email indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return oops.Code("ACCOUNT_MIGRATE_FAILED").With("collection", accountsCollection).Wrap(err)
	}
	return nil
}

func (s *MongoStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.Account, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": strings.ToLower(email)},
		bson.M{"username": strings.ToLower(username)},
	}}
	return s.findOne(ctx, filter, "find by email or username")
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(email)}, "find by email")
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrAccountNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid}, "find by id")
}

func (s *MongoStore) InsertUnique(ctx context.Context, account *models.Account) (*models.Account, error) {
	doc := accountDoc{
		Username:  strings.ToLower(account.Username),
		Email:     strings.ToLower(account.Email),
		Password:  account.PasswordHash,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
	res, err := s.col.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, oops.Code("ACCOUNT_EXISTS").
			With("collection", accountsCollection).
			Wrap(models.ErrAccountExists)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_INSERT_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, oops.Code("ACCOUNT_INSERT_FAILED").Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.model(), nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M, operation string) (*models.Account, error) {
	var doc accountDoc
	err := s.col.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_LOOKUP_FAILED").
			With("operation", operation).
			Wrap(err)
	}
	return doc.model(), nil
}
