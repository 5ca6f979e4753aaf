package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/wastetrack/internal/common"
	"github.com/arzan03/wastetrack/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository persists users in MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{coll: database.Collection(UsersCollection)}
}

// withoutPassword keeps hashes out of listing queries.
var withoutPassword = bson.M{"password": 0}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: user already exists", common.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, bson.M{})
}

// ListPendingVolunteers returns users with an open volunteer application.
func (r *UserRepository) ListPendingVolunteers(ctx context.Context) ([]models.User, error) {
	return r.find(ctx, pendingFilter(bson.M{}))
}

func (r *UserRepository) find(ctx context.Context, filter bson.M) ([]models.User, error) {
	opts := options.Find().SetProjection(withoutPassword).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// SetPassword replaces the stored hash of user id.
func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password":   hash,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: user not found", common.ErrNotFound)
	}
	return nil
}

// ApproveVolunteer flips a pending user to volunteer in a single conditional
// update. A missing user is ErrNotFound; a user that is not pending is ErrConflict.
func (r *UserRepository) ApproveVolunteer(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, pendingFilter(bson.M{"_id": id}), bson.M{"$set": bson.M{
		"role":                      models.RoleVolunteer,
		"volunteer_request_pending": false,
		"updated_at":                time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("approve volunteer: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: user is not pending volunteer approval", common.ErrConflict)
}

func pendingFilter(filter bson.M) bson.M {
	filter["role"] = models.RoleUser
	filter["volunteer_request_pending"] = true
	return filter
}
