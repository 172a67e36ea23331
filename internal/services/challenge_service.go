package services

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/vytor/codetrail/internal/errors"
	"github.com/vytor/codetrail/internal/judge"
	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/ollama"
	"github.com/vytor/codetrail/internal/progression"
	"github.com/vytor/codetrail/internal/repository"
)

// XP awarded for a solved challenge that does not carry its own reward.
var defaultChallengeXP = map[string]int{
	"easy":   50,
	"medium": 75,
	"hard":   100,
}

// ChallengeService handles the challenge catalog and submission verification
type ChallengeService interface {
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
	ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, int, error)
	ImportChallenge(ctx context.Context, challenge models.Challenge) (*models.Challenge, error)
	Generate(ctx context.Context, difficulty, topic, language string) (*models.Challenge, error)
	Verify(ctx context.Context, sub models.Submission) (*models.VerifyResult, error)
}

// Verifier is the part of the judge the service depends on.
type Verifier interface {
	Verify(ctx context.Context, challenge models.Challenge, code string, cases []models.TestCase, method judge.Method) (models.Verdict, error)
}

type challengeService struct {
	repo        repository.ChallengeRepository
	verifier    Verifier
	progression progression.Service

	generator       ollama.ClientInterface
	generateTimeout time.Duration
}

// NewChallengeService creates a new ChallengeService
func NewChallengeService(repo repository.ChallengeRepository, verifier Verifier, progression progression.Service, opts ...ChallengeOption) ChallengeService {
	s := &challengeService{
		repo:            repo,
		verifier:        verifier,
		progression:     progression,
		generateTimeout: defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *challengeService) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting challenge: id=%s", id)

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get challenge: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if c == nil {
		return nil, errors.NewNotFoundError("challenge", id)
	}
	return c, nil
}

func (s *challengeService) ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, int, error) {
	log := logger.FromContext(ctx)

	challenges, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list challenges: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count challenges: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return challenges, total, nil
}

func (s *challengeService) ImportChallenge(ctx context.Context, c models.Challenge) (*models.Challenge, error) {
	log := logger.FromContext(ctx)

	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		c.ID = slug.Make(c.Title)
	}
	if !slug.IsSlug(c.ID) {
		return nil, errors.NewValidationError("id", "must be lowercase letters, digits and dashes")
	}
	c.Difficulty = strings.ToLower(strings.TrimSpace(c.Difficulty))
	c.Topic = strings.TrimSpace(c.Topic)
	if c.Language == "" {
		c.Language = "python"
	}
	if c.XPReward < 0 {
		return nil, errors.NewValidationError("xp_reward", "must not be negative")
	}
	if c.XPReward == 0 {
		c.XPReward = defaultChallengeXP[c.Difficulty]
	}
	if c.Examples == nil {
		c.Examples = []models.TestCase{}
	}

	if err := s.repo.Upsert(ctx, c); err != nil {
		log.Error("failed to import challenge %s: %v", c.ID, err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("imported challenge %s (%d examples)", c.ID, len(c.Examples))
	return s.GetChallenge(ctx, c.ID)
}

func (s *challengeService) Verify(ctx context.Context, sub models.Submission) (*models.VerifyResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"challenge_id": sub.ChallengeID,
		"user_id":      sub.UserID,
	})

	method, ok := judge.ParseMethod(sub.Method)
	if !ok {
		return nil, errors.NewValidationError("method", "use 'model' or 'local'")
	}

	c, err := s.GetChallenge(ctx, sub.ChallengeID)
	if err != nil {
		return nil, err
	}

	verdict, err := s.verifier.Verify(ctx, *c, sub.Code, c.Examples, method)
	if err != nil {
		return nil, err
	}

	result := &models.VerifyResult{
		Verdict:         verdict,
		NewAchievements: []models.AchievementDefinition{},
	}
	if !verdict.Correct || strings.TrimSpace(sub.UserID) == "" {
		log.Debug("nothing to award: correct=%t", verdict.Correct)
		return result, nil
	}

	award, err := s.progression.Award(ctx, models.AwardRequest{
		UserID: sub.UserID,
		Kind:   models.KindChallenge,
		Amount: c.XPReward,
		Metadata: models.ActivityMetadata{
			ChallengeID: c.ID,
			Topic:       c.Topic,
			Difficulty:  c.Difficulty,
		},
	})
	if err != nil {
		log.Error("verdict was correct but awarding failed: %v", err)
		return nil, err
	}

	result.Progress = &award.Progress
	result.NewAchievements = award.NewAchievements
	result.XPEarned = award.TotalXPEarned
	log.Info("challenge solved: xp=%d new_achievements=%d", result.XPEarned, len(result.NewAchievements))
	return result, nil
}
