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

type QuestionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo() *QuestionRepo {
	return &QuestionRepo{
		collection: database.GetCollection("questions"),
	}
}

func (r *QuestionRepo) Insert(ctx context.Context, question *models.Question) error {
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	result, err := r.collection.InsertOne(ctx, question)
	if err != nil {
		return err
	}
	question.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *QuestionRepo) FindByText(ctx context.Context, text string) (*models.Question, error) {
	var question models.Question
	err := r.collection.FindOne(ctx, bson.M{"question_text": text}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Question, error) {
	var question models.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepo) FindAll(ctx context.Context) ([]*models.Question, error) {
	return r.find(ctx, bson.M{})
}

func (r *QuestionRepo) FindActive(ctx context.Context) ([]*models.Question, error) {
	return r.find(ctx, bson.M{"is_active": true})
}

func (r *QuestionRepo) find(ctx context.Context, filter bson.M) ([]*models.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questions := []*models.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *QuestionRepo) Update(ctx context.Context, question *models.Question) error {
	question.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": question.ID}, bson.M{
		"$set": bson.M{
			"question_text": question.QuestionText,
			"is_active":     question.IsActive,
			"updated_at":    question.UpdatedAt,
		},
	})
	return err
}

func (r *QuestionRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// EnsureIndexes creates necessary indexes for the questions collection
func (r *QuestionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "question_text", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
