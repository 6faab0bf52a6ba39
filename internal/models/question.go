package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Question is a single survey question. Text is unique among questions;
// inactive questions stay in the store so historical results keep working.
type Question struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	QuestionText string        `bson:"question_text" json:"questionText"`
	IsActive     bool          `bson:"is_active" json:"isActive"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updatedAt"`
}
