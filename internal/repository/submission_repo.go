package repository

import (
	"context"
	"time"

	"skm-backend/internal/database"
	"skm-backend/internal/models"
	"skm-backend/internal/service"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type SubmissionRepo struct {
	collection *mongo.Collection
}

func NewSubmissionRepo() *SubmissionRepo {
	return &SubmissionRepo{
		collection: database.GetCollection("submissions"),
	}
}

// Create persists an accepted submission. The unique
// (respondent_id, day_bucket) index turns a racing same-day insert into
// service.ErrDuplicateSubmission, closing the check-then-write gap.
func (r *SubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	result, err := r.collection.InsertOne(ctx, submission)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return service.ErrDuplicateSubmission
		}
		return err
	}
	submission.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *SubmissionRepo) FindByCorrelationToken(ctx context.Context, token string) (*models.Submission, error) {
	var submission models.Submission
	err := r.collection.FindOne(ctx, bson.M{"correlation_token": token}).Decode(&submission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepo) FindByRespondentBetween(ctx context.Context, respondentID bson.ObjectID, start, end time.Time) (*models.Submission, error) {
	var submission models.Submission
	err := r.collection.FindOne(ctx, bson.M{
		"respondent_id": respondentID,
		"submitted_at":  bson.M{"$gte": start, "$lte": end},
	}).Decode(&submission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

// FindByRespondent returns the respondent's submission for the admin
// detail view, newest first.
func (r *SubmissionRepo) FindByRespondent(ctx context.Context, respondentID bson.ObjectID) (*models.Submission, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	var submission models.Submission
	err := r.collection.FindOne(ctx, bson.M{"respondent_id": respondentID}, opts).Decode(&submission)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepo) FindAll(ctx context.Context) ([]*models.Submission, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	submissions := []*models.Submission{}
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// RemoveQuestionAnswers pulls a deleted question's answers out of every
// historical submission, leaving the rest of each document untouched.
func (r *SubmissionRepo) RemoveQuestionAnswers(ctx context.Context, questionID bson.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{"answers": bson.M{"question_id": questionID}},
	})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *SubmissionRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the submissions collection
func (r *SubmissionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "correlation_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			// One submission per respondent per server-local calendar day.
			Keys:    bson.D{{Key: "respondent_id", Value: 1}, {Key: "day_bucket", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "submitted_at", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
