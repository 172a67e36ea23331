package services

import (
	"context"

	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/progression"
)

const (
	DefaultFlashcardXP       = 10
	DefaultPerfectSolutionXP = 25
)

// ActivityService maps learning events outside the challenge flow onto
// progression awards.
type ActivityService interface {
	FlashcardLearned(ctx context.Context, userID, flashcardID string, xp int) (*models.AwardResult, error)
	FlashcardForgotten(ctx context.Context, userID, flashcardID string, xp int) (*models.AwardResult, error)
	LessonCompleted(ctx context.Context, userID, courseID, lessonID string, xp int) (*models.AwardResult, error)
	CourseCompleted(ctx context.Context, userID, courseID string, xp int) (*models.AwardResult, error)
	PerfectSolution(ctx context.Context, userID, challengeID string, xp int) (*models.AwardResult, error)
}

type activityService struct {
	progression progression.Service
}

// NewActivityService creates a new ActivityService
func NewActivityService(progression progression.Service) ActivityService {
	return &activityService{progression: progression}
}

func (s *activityService) FlashcardLearned(ctx context.Context, userID, flashcardID string, xp int) (*models.AwardResult, error) {
	logger.FromContext(ctx).Debug("flashcard learned: user_id=%s flashcard_id=%s xp=%d", userID, flashcardID, xp)
	return s.progression.Award(ctx, models.AwardRequest{
		UserID:   userID,
		Kind:     models.KindFlashcard,
		Amount:   xp,
		Metadata: models.ActivityMetadata{FlashcardID: flashcardID},
	})
}

func (s *activityService) FlashcardForgotten(ctx context.Context, userID, flashcardID string, xp int) (*models.AwardResult, error) {
	logger.FromContext(ctx).Debug("flashcard forgotten: user_id=%s flashcard_id=%s xp=%d", userID, flashcardID, xp)
	return s.progression.Deduct(ctx, userID, xp)
}

func (s *activityService) LessonCompleted(ctx context.Context, userID, courseID, lessonID string, xp int) (*models.AwardResult, error) {
	logger.FromContext(ctx).Debug("lesson completed: user_id=%s course_id=%s lesson_id=%s xp=%d", userID, courseID, lessonID, xp)
	return s.progression.Award(ctx, models.AwardRequest{
		UserID:   userID,
		Kind:     models.KindLesson,
		Amount:   xp,
		Metadata: models.ActivityMetadata{CourseID: courseID, LessonID: lessonID},
	})
}

func (s *activityService) CourseCompleted(ctx context.Context, userID, courseID string, xp int) (*models.AwardResult, error) {
	logger.FromContext(ctx).Debug("course completed: user_id=%s course_id=%s xp=%d", userID, courseID, xp)
	return s.progression.Award(ctx, models.AwardRequest{
		UserID:   userID,
		Kind:     models.KindCourse,
		Amount:   xp,
		Metadata: models.ActivityMetadata{CourseID: courseID},
	})
}

func (s *activityService) PerfectSolution(ctx context.Context, userID, challengeID string, xp int) (*models.AwardResult, error) {
	logger.FromContext(ctx).Debug("perfect solution: user_id=%s challenge_id=%s xp=%d", userID, challengeID, xp)
	return s.progression.Award(ctx, models.AwardRequest{
		UserID:   userID,
		Kind:     models.KindPerfectSolution,
		Amount:   xp,
		Metadata: models.ActivityMetadata{ChallengeID: challengeID},
	})
}
