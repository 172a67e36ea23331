package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/testutil/mocks"
)

func TestActivityService_RoutesEvents(t *testing.T) {
	ctx := context.Background()
	ok := &models.AwardResult{NewAchievements: []models.AchievementDefinition{}}

	tests := []struct {
		name string
		call func(ActivityService) (*models.AwardResult, error)
		want models.AwardRequest
	}{
		{
			name: "flashcard learned",
			call: func(s ActivityService) (*models.AwardResult, error) {
				return s.FlashcardLearned(ctx, "u1", "card-7", DefaultFlashcardXP)
			},
			want: models.AwardRequest{UserID: "u1", Kind: models.KindFlashcard, Amount: 10,
				Metadata: models.ActivityMetadata{FlashcardID: "card-7"}},
		},
		{
			name: "lesson completed",
			call: func(s ActivityService) (*models.AwardResult, error) {
				return s.LessonCompleted(ctx, "u1", "go-101", "intro", 30)
			},
			want: models.AwardRequest{UserID: "u1", Kind: models.KindLesson, Amount: 30,
				Metadata: models.ActivityMetadata{CourseID: "go-101", LessonID: "intro"}},
		},
		{
			name: "course completed",
			call: func(s ActivityService) (*models.AwardResult, error) {
				return s.CourseCompleted(ctx, "u1", "go-101", 200)
			},
			want: models.AwardRequest{UserID: "u1", Kind: models.KindCourse, Amount: 200,
				Metadata: models.ActivityMetadata{CourseID: "go-101"}},
		},
		{
			name: "perfect solution",
			call: func(s ActivityService) (*models.AwardResult, error) {
				return s.PerfectSolution(ctx, "u1", "sum", DefaultPerfectSolutionXP)
			},
			want: models.AwardRequest{UserID: "u1", Kind: models.KindPerfectSolution, Amount: 25,
				Metadata: models.ActivityMetadata{ChallengeID: "sum"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := &mocks.MockProgressionService{}
			prog.On("Award", mock.Anything, tt.want).Return(ok, nil)

			res, err := tt.call(NewActivityService(prog))
			require.NoError(t, err)
			assert.Same(t, ok, res)
			prog.AssertExpectations(t)
		})
	}
}

func TestActivityService_FlashcardForgottenDeducts(t *testing.T) {
	prog := &mocks.MockProgressionService{}
	want := &models.AwardResult{TotalXPEarned: -10}
	prog.On("Deduct", mock.Anything, "u1", 10).Return(want, nil)

	res, err := NewActivityService(prog).FlashcardForgotten(context.Background(), "u1", "card-7", 10)
	require.NoError(t, err)
	assert.Equal(t, -10, res.TotalXPEarned)
	prog.AssertExpectations(t)
}
