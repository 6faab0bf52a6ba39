package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"

	VisitFirstTime    = "FirstTime"
	VisitMoreThanOnce = "MoreThanOnce"
	VisitOften        = "Often"
)

// Respondent identifies a survey participant. Two submissions with the same
// identity tuple (name case-insensitive, gender, age, visitFrequency)
// resolve to the same record.
type Respondent struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string        `bson:"name" json:"name"`
	Gender         string        `bson:"gender" json:"gender"`
	Age            int           `bson:"age" json:"age"`
	VisitFrequency string        `bson:"visit_frequency" json:"visitFrequency"`
	CreatedAt      time.Time     `bson:"created_at" json:"createdAt"`
}

func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale
}

func ValidVisitFrequency(v string) bool {
	return v == VisitFirstTime || v == VisitMoreThanOnce || v == VisitOften
}
