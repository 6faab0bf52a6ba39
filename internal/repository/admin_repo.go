package repository

import (
	"context"
	"time"

	"skm-backend/internal/database"
	"skm-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AdminRepo struct {
	collection *mongo.Collection
}

func NewAdminRepo() *AdminRepo {
	return &AdminRepo{
		collection: database.GetCollection("admins"),
	}
}

func (r *AdminRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&admin)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	admin.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, admin)
	if err != nil {
		return err
	}
	admin.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// EnsureIndexes creates necessary indexes for the admins collection
func (r *AdminRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
