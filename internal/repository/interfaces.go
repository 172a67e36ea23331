package repository

import (
	"context"

	"github.com/vytor/codetrail/internal/models"
)

// ProgressRepository stores one progression document per user.
type ProgressRepository interface {
	// Get returns nil, nil when the user has no document yet.
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	// Save replaces the whole document in a single transaction.
	Save(ctx context.Context, progress models.UserProgress) error
}

// ChallengeRepository handles the challenge catalog.
type ChallengeRepository interface {
	Get(ctx context.Context, id string) (*models.Challenge, error)
	List(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, error)
	Count(ctx context.Context, filter models.ChallengeFilter) (int, error)
	Upsert(ctx context.Context, challenge models.Challenge) error
}
