package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/repository"
	"github.com/vytor/codetrail/internal/repository/sqlite"
	"github.com/vytor/codetrail/internal/testutil"
)

type ProgressRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ProgressRepository
}

func (s *ProgressRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewProgressRepository(s.db)
}

func (s *ProgressRepositorySuite) TestGetMissingReturnsNil() {
	p, err := s.repo.Get(context.Background(), "nobody")
	s.Require().NoError(err)
	s.Nil(p)
}

func (s *ProgressRepositorySuite) TestSaveAndGet() {
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	active := time.Date(2026, 2, 3, 18, 30, 0, 0, time.UTC)

	p := models.NewUserProgress("u1", created)
	p.TotalXP = 110
	p.Level = 2
	p.Streak = 2
	p.LongestStreak = 4
	p.LastActiveDate = &active
	p.CompletedChallenges.Add("two-sum")
	p.TopicsCovered.Add("arrays")
	p.Achievements.Add("first_challenge")
	p.AchievementProgress.ChallengesCompleted = 1

	s.Require().NoError(s.repo.Save(ctx, p))

	got, err := s.repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(110, got.TotalXP)
	s.Equal(2, got.Level)
	s.Equal(4, got.LongestStreak)
	s.Require().NotNil(got.LastActiveDate)
	s.True(active.Equal(*got.LastActiveDate))
	s.True(got.CompletedChallenges.Has("two-sum"))
	s.True(got.Achievements.Has("first_challenge"))
	s.Equal(1, got.AchievementProgress.ChallengesCompleted)

	var totalXP, level int
	s.Require().NoError(s.db.QueryRow(`SELECT total_xp, level FROM user_progress WHERE user_id = ?`, "u1").Scan(&totalXP, &level))
	s.Equal(110, totalXP)
	s.Equal(2, level)
}

func (s *ProgressRepositorySuite) TestSaveOverwritesWholeDocument() {
	ctx := context.Background()
	p := models.NewUserProgress("u1", time.Now().UTC())
	p.CompletedLessons.Add("l1")
	p.TotalXP = 40
	s.Require().NoError(s.repo.Save(ctx, p))

	reset := models.NewUserProgress("u1", time.Now().UTC())
	s.Require().NoError(s.repo.Save(ctx, reset))

	got, err := s.repo.Get(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(0, got.TotalXP)
	s.Equal(0, got.CompletedLessons.Len())

	var rows int
	s.Require().NoError(s.db.QueryRow(`SELECT COUNT(*) FROM user_progress`).Scan(&rows))
	s.Equal(1, rows)
}

func (s *ProgressRepositorySuite) TestGetToleratesOldDocuments() {
	_, err := s.db.Exec(`INSERT INTO user_progress (user_id, document) VALUES (?, ?)`,
		"legacy", `{"total_xp": 75, "completed_challenges": [1, 2], "retired": true}`)
	s.Require().NoError(err)

	got, err := s.repo.Get(context.Background(), "legacy")
	s.Require().NoError(err)
	s.Equal("legacy", got.UserID)
	s.Equal(75, got.TotalXP)
	s.Equal([]string{"1", "2"}, got.CompletedChallenges.Sorted())
}

func (s *ProgressRepositorySuite) TestGetCorruptDocument() {
	_, err := s.db.Exec(`INSERT INTO user_progress (user_id, document) VALUES (?, ?)`, "broken", `{not json`)
	s.Require().NoError(err)

	_, err = s.repo.Get(context.Background(), "broken")
	s.Error(err)
}

func TestProgressRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProgressRepositorySuite))
}
