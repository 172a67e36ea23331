package progression_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/codetrail/internal/achievement"
	"github.com/vytor/codetrail/internal/errors"
	"github.com/vytor/codetrail/internal/lock"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/progression"
	"github.com/vytor/codetrail/internal/repository"
	"github.com/vytor/codetrail/internal/repository/sqlite"
	"github.com/vytor/codetrail/internal/testutil"
	"github.com/vytor/codetrail/internal/testutil/mocks"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type ServiceSuite struct {
	suite.Suite
	db    *sql.DB
	repo  repository.ProgressRepository
	clock *fakeClock
	svc   progression.Service
}

func (s *ServiceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewProgressRepository(s.db)
	s.clock = &fakeClock{now: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)}
	s.svc = progression.NewService(s.repo, achievement.NewEngine(nil), lock.NewMemoryLocker(),
		progression.WithClock(s.clock.Now),
		progression.WithLocation(time.UTC),
	)
}

func (s *ServiceSuite) award(userID string, kind models.ActivityKind, xp int, md models.ActivityMetadata) *models.AwardResult {
	res, err := s.svc.Award(context.Background(), models.AwardRequest{UserID: userID, Kind: kind, Amount: xp, Metadata: md})
	s.Require().NoError(err)
	return res
}

func achievementIDs(defs []models.AchievementDefinition) []string {
	out := []string{}
	for _, d := range defs {
		out = append(out, d.ID)
	}
	return out
}

func (s *ServiceSuite) TestFirstChallengesScenario() {
	first := s.award("u1", models.KindChallenge, 50, models.ActivityMetadata{ChallengeID: "two-sum", Topic: "arrays", Difficulty: "easy"})

	s.Equal(50, first.Progress.TotalXP)
	s.Equal(1, first.Progress.Level)
	s.Equal(1, first.Progress.Streak)
	s.Equal([]string{"first_challenge"}, achievementIDs(first.NewAchievements))
	s.Equal(0, first.AchievementXPEarned)
	s.Equal(50, first.TotalXPEarned)

	second := s.award("u1", models.KindChallenge, 60, models.ActivityMetadata{ChallengeID: "reverse-list", Topic: "linked-lists", Difficulty: "medium"})

	s.Equal(110, second.Progress.TotalXP, "achievement rewards are not added to total xp")
	s.Equal(2, second.Progress.Level)
	s.Empty(second.NewAchievements)
	s.NotNil(second.NewAchievements)
	s.False(second.Progress.Achievements.Has("challenge_master_5"))
	s.Equal(2, second.Progress.AchievementProgress.ChallengesCompleted)
	s.Equal(2, second.Progress.AchievementProgress.DifferentTopics)
	s.Equal(2, second.Progress.AchievementProgress.DifferentDifficulties)

	stored, err := s.svc.Get(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal(110, stored.TotalXP)
	s.Equal([]string{"first_challenge"}, stored.Achievements.Sorted())
}

func (s *ServiceSuite) TestRepeatedChallengeDoesNotRecount() {
	md := models.ActivityMetadata{ChallengeID: "two-sum", Topic: "arrays"}
	s.award("u1", models.KindChallenge, 50, md)
	res := s.award("u1", models.KindChallenge, 50, md)

	s.Equal(100, res.Progress.TotalXP)
	s.Equal(1, res.Progress.AchievementProgress.ChallengesCompleted)
	s.Equal(1, res.Progress.CompletedChallenges.Len())
	s.Equal(1, res.Progress.AchievementProgress.DifferentTopics)
}

func (s *ServiceSuite) TestStreakAcrossDays() {
	s.award("u1", models.KindFlashcard, 10, models.ActivityMetadata{})
	s.award("u1", models.KindFlashcard, 10, models.ActivityMetadata{})

	s.clock.Advance(24 * time.Hour)
	s.award("u1", models.KindLesson, 20, models.ActivityMetadata{LessonID: "l1", CourseID: "c1"})
	s.clock.Advance(24 * time.Hour)
	res := s.award("u1", models.KindCourse, 30, models.ActivityMetadata{CourseID: "c1"})

	s.Equal(3, res.Progress.Streak)
	s.Contains(achievementIDs(res.NewAchievements), "streak_3_days")

	s.clock.Advance(72 * time.Hour)
	res = s.award("u1", models.KindPerfectSolution, 25, models.ActivityMetadata{})
	s.Equal(1, res.Progress.Streak)
	s.Equal(3, res.Progress.LongestStreak)
	s.Equal(1, res.Progress.AchievementProgress.PerfectSolutions)
}

func (s *ServiceSuite) TestLessonAndCourseCountersAreIdempotentPerID() {
	s.award("u1", models.KindLesson, 10, models.ActivityMetadata{LessonID: "l1"})
	s.award("u1", models.KindLesson, 10, models.ActivityMetadata{LessonID: "l1"})
	s.award("u1", models.KindLesson, 10, models.ActivityMetadata{})
	s.award("u1", models.KindCourse, 10, models.ActivityMetadata{CourseID: "c1"})
	res := s.award("u1", models.KindCourse, 10, models.ActivityMetadata{CourseID: "c1"})

	s.Equal(2, res.Progress.AchievementProgress.LessonsCompleted)
	s.Equal(1, res.Progress.AchievementProgress.CoursesCompleted)
	s.Equal(50, res.Progress.TotalXP)
}

func (s *ServiceSuite) TestConcurrentAwardsForOneUser() {
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Award(context.Background(), models.AwardRequest{UserID: "u1", Kind: models.KindFlashcard, Amount: 2})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	p, err := s.svc.Get(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal(20, p.TotalXP)
	s.Equal(10, p.AchievementProgress.FlashcardsLearned)
	s.True(p.Achievements.Has("flashcard_learner"))
}

func (s *ServiceSuite) TestConcurrentAwardsAcrossUsers() {
	var wg sync.WaitGroup
	for _, user := range []string{"a", "b", "c"} {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(user string) {
				defer wg.Done()
				_, err := s.svc.Award(context.Background(), models.AwardRequest{UserID: user, Kind: models.KindFlashcard, Amount: 3})
				s.NoError(err)
			}(user)
		}
	}
	wg.Wait()

	for _, user := range []string{"a", "b", "c"} {
		p, err := s.svc.Get(context.Background(), user)
		s.Require().NoError(err)
		s.Equal(15, p.TotalXP, user)
	}
}

func (s *ServiceSuite) TestDeductFloorsAtZero() {
	s.award("u1", models.KindFlashcard, 5, models.ActivityMetadata{})

	res, err := s.svc.Deduct(context.Background(), "u1", 10)
	s.Require().NoError(err)
	s.Equal(0, res.Progress.TotalXP)
	s.Equal(0, res.Progress.AchievementProgress.FlashcardsLearned)
	s.Equal(-10, res.TotalXPEarned)

	res, err = s.svc.Deduct(context.Background(), "u1", 10)
	s.Require().NoError(err)
	s.Equal(0, res.Progress.TotalXP)
	s.Equal(0, res.Progress.AchievementProgress.FlashcardsLearned)
}

func (s *ServiceSuite) TestDeductUnknownUserIsNoop() {
	res, err := s.svc.Deduct(context.Background(), "ghost", 10)
	s.Require().NoError(err)
	s.Equal(0, res.TotalXPEarned)
	s.Empty(res.NewAchievements)

	stored, err := s.repo.Get(context.Background(), "ghost")
	s.Require().NoError(err)
	s.Nil(stored)
}

func (s *ServiceSuite) TestGetDoesNotPersistOrTouchStreak() {
	p, err := s.svc.Get(context.Background(), "new-user")
	s.Require().NoError(err)
	s.Equal(1, p.Level)
	s.Equal(0, p.Streak)
	s.Nil(p.LastActiveDate)

	stored, err := s.repo.Get(context.Background(), "new-user")
	s.Require().NoError(err)
	s.Nil(stored)
}

func (s *ServiceSuite) TestLevelInfoAndAchievements() {
	s.award("u1", models.KindChallenge, 110, models.ActivityMetadata{ChallengeID: "c1"})

	info, err := s.svc.LevelInfo(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal(2, info.CurrentLevel)
	s.Equal(190, info.XPToNextLevel)

	overview, err := s.svc.Achievements(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal(1, overview.UnlockedCount)
	s.Equal(achievement.DefaultCatalog().Len(), overview.TotalAchievements)
}

func (s *ServiceSuite) TestReset() {
	s.award("u1", models.KindChallenge, 500, models.ActivityMetadata{ChallengeID: "c1", Topic: "arrays"})

	p, err := s.svc.Reset(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal(0, p.TotalXP)
	s.Equal(1, p.Level)
	s.Equal(0, p.Achievements.Len())
	s.Nil(p.LastActiveDate)

	stored, err := s.svc.Get(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal(0, stored.TotalXP)
	s.Equal(0, stored.TopicsCovered.Len())

	res := s.award("u1", models.KindChallenge, 50, models.ActivityMetadata{ChallengeID: "c1"})
	s.Equal([]string{"first_challenge"}, achievementIDs(res.NewAchievements))
}

func (s *ServiceSuite) TestValidation() {
	ctx := context.Background()

	_, err := s.svc.Award(ctx, models.AwardRequest{UserID: " ", Kind: models.KindFlashcard})
	s.True(errors.IsCode(err, errors.ErrCodeValidation))

	_, err = s.svc.Award(ctx, models.AwardRequest{UserID: "u1", Kind: "quiz"})
	s.True(errors.IsCode(err, errors.ErrCodeValidation))

	_, err = s.svc.Award(ctx, models.AwardRequest{UserID: "u1", Kind: models.KindFlashcard, Amount: -5})
	s.True(errors.IsCode(err, errors.ErrCodeValidation))

	_, err = s.svc.Deduct(ctx, "u1", -1)
	s.True(errors.IsCode(err, errors.ErrCodeValidation))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

type failingLocker struct{ err error }

func (l failingLocker) Lock(context.Context, string) (func(), error) { return nil, l.err }

func TestService_LockFailures(t *testing.T) {
	repo := &mocks.MockProgressRepository{}

	svc := progression.NewService(repo, nil, failingLocker{err: lock.ErrNotAcquired})
	_, err := svc.Award(context.Background(), models.AwardRequest{UserID: "u1", Kind: models.KindFlashcard, Amount: 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))

	svc = progression.NewService(repo, nil, failingLocker{err: stderrors.New("redis down")})
	_, err = svc.Award(context.Background(), models.AwardRequest{UserID: "u1", Kind: models.KindFlashcard, Amount: 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnavailable))

	repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_StoreFailures(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.MockProgressRepository{}
	repo.On("Get", mock.Anything, "u1").Return(nil, stderrors.New("disk on fire")).Once()
	svc := progression.NewService(repo, nil, nil)

	_, err := svc.Award(ctx, models.AwardRequest{UserID: "u1", Kind: models.KindFlashcard, Amount: 1})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	repo.On("Get", mock.Anything, "u1").Return(nil, nil).Once()
	repo.On("Save", mock.Anything, mock.AnythingOfType("models.UserProgress")).Return(stderrors.New("readonly")).Once()
	_, err = svc.Award(ctx, models.AwardRequest{UserID: "u1", Kind: models.KindFlashcard, Amount: 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
	repo.AssertExpectations(t)
}

func TestService_NormalizesLoadedDocuments(t *testing.T) {
	repo := &mocks.MockProgressRepository{}
	drifted := &models.UserProgress{UserID: "u1", TotalXP: 320, Level: 1}
	repo.On("Get", mock.Anything, "u1").Return(drifted, nil)

	svc := progression.NewService(repo, nil, nil)
	p, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Level)
	assert.NotNil(t, p.CompletedChallenges)
}
