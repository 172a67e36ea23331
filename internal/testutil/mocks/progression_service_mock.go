package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/codetrail/internal/models"
)

// MockProgressionService is a mock implementation of progression.Service
type MockProgressionService struct {
	mock.Mock
}

func (m *MockProgressionService) Award(ctx context.Context, req models.AwardRequest) (*models.AwardResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AwardResult), args.Error(1)
}

func (m *MockProgressionService) Deduct(ctx context.Context, userID string, amount int) (*models.AwardResult, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AwardResult), args.Error(1)
}

func (m *MockProgressionService) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressionService) LevelInfo(ctx context.Context, userID string) (*models.LevelInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LevelInfo), args.Error(1)
}

func (m *MockProgressionService) Achievements(ctx context.Context, userID string) (*models.AchievementOverview, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AchievementOverview), args.Error(1)
}

func (m *MockProgressionService) Reset(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}
