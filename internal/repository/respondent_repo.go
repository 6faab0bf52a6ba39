package repository

import (
	"context"
	"regexp"
	"time"

	"skm-backend/internal/database"
	"skm-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type RespondentRepo struct {
	collection *mongo.Collection
}

func NewRespondentRepo() *RespondentRepo {
	return &RespondentRepo{
		collection: database.GetCollection("respondents"),
	}
}

// RespondentFilter narrows the admin listing. Nil/zero fields are ignored.
type RespondentFilter struct {
	Gender         string
	AgeMin         *int
	AgeMax         *int
	VisitFrequency string
	DateFrom       *time.Time
	DateTo         *time.Time
}

func (r *RespondentRepo) Create(ctx context.Context, respondent *models.Respondent) error {
	respondent.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, respondent)
	if err != nil {
		return err
	}
	respondent.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// FindByIdentity resolves the respondent identity tuple: name matched
// case-insensitively (anchored, quoted), everything else exact.
func (r *RespondentRepo) FindByIdentity(ctx context.Context, name, gender string, age int, visitFrequency string) (*models.Respondent, error) {
	var respondent models.Respondent
	err := r.collection.FindOne(ctx, bson.M{
		"name":            bson.M{"$regex": "^" + regexp.QuoteMeta(name) + "$", "$options": "i"},
		"gender":          gender,
		"age":             age,
		"visit_frequency": visitFrequency,
	}).Decode(&respondent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &respondent, nil
}

func (r *RespondentRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Respondent, error) {
	var respondent models.Respondent
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&respondent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &respondent, nil
}

func (r *RespondentRepo) FindPage(ctx context.Context, filter RespondentFilter, page, limit int) ([]*models.Respondent, int64, error) {
	query := bson.M{}
	if filter.Gender != "" {
		query["gender"] = filter.Gender
	}
	if filter.AgeMin != nil || filter.AgeMax != nil {
		age := bson.M{}
		if filter.AgeMin != nil {
			age["$gte"] = *filter.AgeMin
		}
		if filter.AgeMax != nil {
			age["$lte"] = *filter.AgeMax
		}
		query["age"] = age
	}
	if filter.VisitFrequency != "" {
		query["visit_frequency"] = filter.VisitFrequency
	}
	if filter.DateFrom != nil || filter.DateTo != nil {
		created := bson.M{}
		if filter.DateFrom != nil {
			created["$gte"] = *filter.DateFrom
		}
		if filter.DateTo != nil {
			created["$lte"] = *filter.DateTo
		}
		query["created_at"] = created
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	respondents := []*models.Respondent{}
	if err := cursor.All(ctx, &respondents); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return respondents, total, nil
}

func (r *RespondentRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *RespondentRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the respondents collection
func (r *RespondentRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			// Identity lookups filter on all four fields; name still needs
			// the case-insensitive regex scan within the matched range.
			Keys: bson.D{
				{Key: "gender", Value: 1},
				{Key: "age", Value: 1},
				{Key: "visit_frequency", Value: 1},
				{Key: "name", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
