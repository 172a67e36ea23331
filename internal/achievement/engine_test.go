package achievement_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codetrail/internal/achievement"
	"github.com/vytor/codetrail/internal/models"
)

func newProgress() models.UserProgress {
	return models.NewUserProgress("u1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func ids(defs []models.AchievementDefinition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.ID)
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	c := achievement.DefaultCatalog()
	assert.Equal(t, 25, c.Len())

	first, ok := c.Get("first_challenge")
	require.True(t, ok)
	assert.Equal(t, "First Steps", first.Title)
	assert.Equal(t, map[string]int{models.CounterChallengesCompleted: 1}, first.Requirement)
	assert.Equal(t, 50, first.XPReward)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCatalog_IsImmutable(t *testing.T) {
	c := achievement.DefaultCatalog()
	all := c.All()
	all[0].Requirement[models.CounterChallengesCompleted] = 999
	all[0].Title = "changed"

	first, _ := c.Get("first_challenge")
	assert.Equal(t, 1, first.Requirement[models.CounterChallengesCompleted])
	assert.Equal(t, "First Steps", first.Title)
}

func TestNewCatalog_DropsDuplicateIDs(t *testing.T) {
	c := achievement.NewCatalog([]models.AchievementDefinition{
		{ID: "a", Title: "first"},
		{ID: "a", Title: "second"},
	})
	assert.Equal(t, 1, c.Len())
	a, _ := c.Get("a")
	assert.Equal(t, "first", a.Title)
}

func TestEvaluate_FirstChallenge(t *testing.T) {
	e := achievement.NewEngine(nil)
	p := newProgress()
	p.AchievementProgress.ChallengesCompleted = 1

	assert.Equal(t, []string{"first_challenge"}, ids(e.Evaluate(&p)))

	p.Achievements.Add("first_challenge")
	assert.Empty(t, e.Evaluate(&p), "already unlocked achievements are not returned again")
}

func TestEvaluate_CatalogOrderAcrossCategories(t *testing.T) {
	e := achievement.NewEngine(nil)
	p := newProgress()
	p.AchievementProgress.ChallengesCompleted = 5
	p.AchievementProgress.StreakDays = 3
	p.AchievementProgress.Level = 3

	got := ids(e.Evaluate(&p))
	assert.Equal(t, []string{"first_challenge", "challenge_master_5", "streak_3_days", "level_3"}, got)
}

func TestEvaluate_AllRequirementsMustHold(t *testing.T) {
	e := achievement.NewEngine(achievement.NewCatalog([]models.AchievementDefinition{
		{ID: "combo", Requirement: map[string]int{
			models.CounterChallengesCompleted: 2,
			models.CounterDifferentTopics:     2,
		}},
		{ID: "unknown_counter", Requirement: map[string]int{"not_tracked": 1}},
		{ID: "no_requirement"},
	}))
	p := newProgress()
	p.AchievementProgress.ChallengesCompleted = 2
	p.AchievementProgress.DifferentTopics = 1

	assert.Equal(t, []string{"no_requirement"}, ids(e.Evaluate(&p)))

	p.AchievementProgress.DifferentTopics = 2
	assert.Equal(t, []string{"combo", "no_requirement"}, ids(e.Evaluate(&p)))
}

func TestOverview(t *testing.T) {
	e := achievement.NewEngine(nil)
	p := newProgress()
	p.Achievements.Add("first_challenge")
	p.Achievements.Add("retired_achievement")

	o := e.Overview(&p)
	assert.Equal(t, 25, o.TotalAchievements)
	assert.Equal(t, 1, o.UnlockedCount)
	require.Len(t, o.Unlocked, 1)
	assert.True(t, o.Unlocked[0].Unlocked)
	assert.Equal(t, "first_challenge", o.Unlocked[0].ID)
	assert.Len(t, o.Locked, 24)
}
