package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"skm-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const tokenLifetime = 24 * time.Hour

// TokenStore is the persistence surface the token lifecycle needs.
// Insert must fail on a token_code collision (unique index); the expired
// documents themselves are purged by the store's TTL index, so a FindByCode
// or FindByID miss on a previously issued code is normal, not an error.
type TokenStore interface {
	Insert(ctx context.Context, token *models.Token) error
	FindByCode(ctx context.Context, code string) (*models.Token, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Token, error)
	FindPage(ctx context.Context, page, limit int) ([]*models.Token, int64, error)
	FindActivePublic(ctx context.Context, now time.Time) ([]*models.Token, error)
	Deactivate(ctx context.Context, id bson.ObjectID) error
	MarkUsed(ctx context.Context, code string, respondentID bson.ObjectID, usedAt time.Time) (bool, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// TokenService implements the token lifecycle: batch generation with
// collision retry, advisory validation, single-use redemption and lazy
// expiry of anything a read touches.
type TokenService struct {
	store TokenStore
	now   func() time.Time
}

func NewTokenService(store TokenStore) *TokenService {
	return &TokenService{store: store, now: time.Now}
}

// GenerateBatch creates quantity tokens, each with a fresh unique 5-char
// code and a 24h expiry. Codes colliding with a live token are regenerated;
// the uniqueness loop is not atomic against concurrent batches, which is
// acceptable at this volume — the unique index is the final arbiter.
func (s *TokenService) GenerateBatch(ctx context.Context, quantity int) ([]*models.Token, error) {
	if quantity < 1 || quantity > 10 {
		return nil, ErrInvalidQuantity
	}

	now := s.now()
	expiresAt := now.Add(tokenLifetime)
	tokens := make([]*models.Token, 0, quantity)

	for i := 0; i < quantity; i++ {
		var code string
		for {
			c, err := generateTokenCode()
			if err != nil {
				return nil, err
			}
			existing, err := s.store.FindByCode(ctx, c)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				code = c
				break
			}
		}

		token := &models.Token{
			TokenCode: code,
			IsActive:  true,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		}
		if err := s.store.Insert(ctx, token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// Validate is a read-only, advisory check: it does not reserve the token.
// An expired token is deactivated as a side effect before the error is
// returned.
func (s *TokenService) Validate(ctx context.Context, code string) error {
	if len(code) != models.TokenCodeLength {
		return ErrTokenInvalidFormat
	}

	token, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrTokenNotFound
	}

	if token.IsExpired(s.now()) {
		if err := s.store.Deactivate(ctx, token.ID); err != nil {
			return err
		}
		return ErrTokenExpired
	}

	if token.IsUsed() {
		return ErrTokenAlreadyUsed
	}

	return nil
}

// Redeem flips a token to used on behalf of a respondent. The flip is a
// conditional single-document update, so under concurrent submissions only
// one caller wins; the others get false.
func (s *TokenService) Redeem(ctx context.Context, code string, respondentID bson.ObjectID) (bool, error) {
	return s.store.MarkUsed(ctx, code, respondentID, s.now())
}

// List returns a page of tokens for the admin view, lazily deactivating any
// expired-but-still-active token it touches.
func (s *TokenService) List(ctx context.Context, page, limit int) ([]*models.Token, int64, error) {
	tokens, total, err := s.store.FindPage(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, token := range tokens {
		if err := s.sweep(ctx, token); err != nil {
			return nil, 0, err
		}
	}
	return tokens, total, nil
}

// Get returns one token by id, applying the same lazy expiry as List. A
// TTL-purged id comes back as ErrNotFound.
func (s *TokenService) Get(ctx context.Context, id bson.ObjectID) (*models.Token, error) {
	token, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, ErrNotFound
	}
	if err := s.sweep(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *TokenService) Delete(ctx context.Context, id bson.ObjectID) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *TokenService) ResetAll(ctx context.Context) (int64, error) {
	return s.store.DeleteAll(ctx)
}

// ListActivePublic returns tokens that are still claimable: active, unused
// and unexpired. Served without auth for self-service code pickup.
func (s *TokenService) ListActivePublic(ctx context.Context) ([]*models.Token, error) {
	return s.store.FindActivePublic(ctx, s.now())
}

func (s *TokenService) sweep(ctx context.Context, token *models.Token) error {
	if token.IsExpired(s.now()) && token.IsActive && token.UsedBy == nil {
		if err := s.store.Deactivate(ctx, token.ID); err != nil {
			return err
		}
		token.IsActive = false
	}
	return nil
}

func generateTokenCode() (string, error) {
	code := make([]byte, models.TokenCodeLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = tokenAlphabet[n.Int64()]
	}
	return string(code), nil
}
