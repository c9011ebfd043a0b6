package mongodb

import (
	"context"

	"github.com/vinodjarare/shopgraph/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Address   string             `bson:"address"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password,omitempty"`
	CreatedAt primitive.DateTime `bson:"createdAt"`
	UpdatedAt primitive.DateTime `bson:"updatedAt"`
}

func (d userDoc) toModel() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Address:      d.Address,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt.Time().UTC(),
		UpdatedAt:    d.UpdatedAt.Time().UTC(),
	}
}

// withoutPassword is the default projection for user reads.
var withoutPassword = bson.D{{Key: "password", Value: 0}}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := s.timestamp()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Address:   user.Address,
		Email:     user.Email,
		Password:  user.PasswordHash,
		CreatedAt: primitive.NewDateTimeFromTime(now),
		UpdatedAt: primitive.NewDateTimeFromTime(now),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return mapError(err, "user with email "+user.Email)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *Store) findUser(ctx context.Context, filter bson.D, projection bson.D, what string) (models.User, error) {
	var doc userDoc
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	if err := s.users.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return models.User{}, mapError(err, what)
	}
	return doc.toModel(), nil
}

// GetUserByID retrieves a single user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	oid, err := objectID(id, "user")
	if err != nil {
		return models.User{}, err
	}
	return s.findUser(ctx, bson.D{{Key: "_id", Value: oid}}, withoutPassword, "user with ID "+id)
}

// GetUserByEmail retrieves a single user by their email, without the password hash.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}}, withoutPassword, "user with email "+email)
}

// GetCredentials retrieves a single user by their email, including the password hash.
func (s *Store) GetCredentials(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.D{{Key: "email", Value: email}}, nil, "user with email "+email)
}

// ListUsers returns every user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	n, err := s.users.CountDocuments(ctx, bson.D{})
	return int(n), err
}
