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

type TokenRepo struct {
	collection *mongo.Collection
}

func NewTokenRepo() *TokenRepo {
	return &TokenRepo{
		collection: database.GetCollection("tokens"),
	}
}

func (r *TokenRepo) Insert(ctx context.Context, token *models.Token) error {
	result, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		return err
	}
	token.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *TokenRepo) FindByCode(ctx context.Context, code string) (*models.Token, error) {
	var token models.Token
	err := r.collection.FindOne(ctx, bson.M{"token_code": code}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Token, error) {
	var token models.Token
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepo) FindPage(ctx context.Context, page, limit int) ([]*models.Token, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	tokens := []*models.Token{}
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return tokens, total, nil
}

func (r *TokenRepo) FindActivePublic(ctx context.Context, now time.Time) ([]*models.Token, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"is_active":  true,
		"used_by":    nil,
		"expires_at": bson.M{"$gt": now},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tokens := []*models.Token{}
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *TokenRepo) Deactivate(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_active": false},
	})
	return err
}

// MarkUsed redeems a token for a respondent. The filter requires the token
// to still be active and unused, so concurrent redemptions flip it at most
// once; the return value reports whether this caller won.
func (r *TokenRepo) MarkUsed(ctx context.Context, code string, respondentID bson.ObjectID, usedAt time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(ctx, bson.M{
		"token_code": code,
		"is_active":  true,
		"used_by":    nil,
	}, bson.M{
		"$set": bson.M{
			"is_active": false,
			"used_by":   respondentID,
			"used_at":   usedAt,
		},
	})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *TokenRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *TokenRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the tokens collection
func (r *TokenRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index — auto-delete expired tokens
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
