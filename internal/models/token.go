package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenCodeLength is the fixed length of survey access codes.
const TokenCodeLength = 5

// Token is a one-time survey access code. Lives at most 24 hours: the
// store's TTL index purges it after expires_at, and reads flip IsActive off
// once expiry passes (lazy expiry).
type Token struct {
	ID        bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	TokenCode string         `bson:"token_code" json:"tokenCode"`
	IsActive  bool           `bson:"is_active" json:"isActive"`
	ExpiresAt time.Time      `bson:"expires_at" json:"expiresAt"`
	UsedBy    *bson.ObjectID `bson:"used_by,omitempty" json:"usedBy,omitempty"`
	UsedAt    *time.Time     `bson:"used_at,omitempty" json:"usedAt,omitempty"`
	CreatedAt time.Time      `bson:"created_at" json:"createdAt"`
}

func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *Token) IsUsed() bool {
	return !t.IsActive || t.UsedBy != nil
}
