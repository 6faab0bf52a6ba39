package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Admin is a dashboard user. PasswordHash is bcrypt and never serialized.
type Admin struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string        `bson:"username" json:"username"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	CreatedAt    time.Time     `bson:"created_at" json:"createdAt"`
}
