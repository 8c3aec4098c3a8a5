package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RecommendationCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type recommendationCacheKeyInput struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit"`
}

func RecommendationCacheKey(userID uuid.UUID, limit int) string {
	in := recommendationCacheKeyInput{UserID: userID.String(), Limit: limit}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return "recommendations:" + hex.EncodeToString(sum[:])
}
