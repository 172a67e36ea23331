package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/codetrail/internal/models"
)

func TestStringSet_AddIsIdempotent(t *testing.T) {
	var s models.StringSet

	assert.True(t, s.Add("two-sum"))
	assert.False(t, s.Add("two-sum"))
	assert.False(t, s.Add(""), "empty ids are ignored")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("two-sum"))
}

func TestStringSet_SerializesSorted(t *testing.T) {
	s := models.NewStringSet("graphs", "arrays", "strings")

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["arrays","graphs","strings"]`, string(b))
}

func TestStringSet_LoadsLegacyArrays(t *testing.T) {
	var s models.StringSet
	require.NoError(t, json.Unmarshal([]byte(`[3, "7", 3, true]`), &s))
	assert.Equal(t, []string{"3", "7", "true"}, s.Sorted())

	var empty models.StringSet
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.Equal(t, 0, empty.Len())

	assert.Error(t, json.Unmarshal([]byte(`[{"a":1}]`), &s))
}

func TestTestCase_StringForm(t *testing.T) {
	var cases []models.TestCase
	err := json.Unmarshal([]byte(`[
		{"input": "1 2", "output": "3"},
		{"input": {"nums": [1, 2], "target": 3}, "output": [0, 1]},
		{"input": 5, "output": true}
	]`), &cases)
	require.NoError(t, err)
	require.Len(t, cases, 3)

	assert.Equal(t, "1 2", cases[0].Input)
	assert.Equal(t, "3", cases[0].Output)
	assert.Equal(t, `{"nums":[1,2],"target":3}`, cases[1].Input)
	assert.Equal(t, `[0,1]`, cases[1].Output)
	assert.Equal(t, "5", cases[2].Input)
	assert.Equal(t, "true", cases[2].Output)
}

func TestUserProgress_DocumentIsForwardCompatible(t *testing.T) {
	doc := `{
		"total_xp": 150,
		"completed_challenges": [1, 2],
		"some_future_field": {"x": 1},
		"achievement_progress": {"challenges_completed": 2}
	}`

	var p models.UserProgress
	require.NoError(t, json.Unmarshal([]byte(doc), &p))
	assert.Equal(t, 150, p.TotalXP)
	assert.Equal(t, 2, p.CompletedChallenges.Len())
	assert.Equal(t, 2, p.AchievementProgress.ChallengesCompleted)
	assert.Nil(t, p.LastActiveDate)
	assert.Equal(t, 0, p.CompletedCourses.Len())
}

func TestUserProgress_CloneIsDeep(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	p := models.NewUserProgress("u1", now)
	p.LastActiveDate = &now
	p.Achievements.Add("first_challenge")

	c := p.Clone()
	c.Achievements.Add("streak_3_days")
	later := now.Add(48 * time.Hour)
	*c.LastActiveDate = later

	assert.Equal(t, 1, p.Achievements.Len())
	assert.Equal(t, now, *p.LastActiveDate)
}

func TestAchievementProgress_Value(t *testing.T) {
	ap := models.AchievementProgress{ChallengesCompleted: 4, Level: 3, DifferentTopics: 2}
	assert.Equal(t, 4, ap.Value(models.CounterChallengesCompleted))
	assert.Equal(t, 3, ap.Value(models.CounterLevel))
	assert.Equal(t, 2, ap.Value(models.CounterDifferentTopics))
	assert.Equal(t, 0, ap.Value("unknown_counter"))
}

func TestFailedVerdict(t *testing.T) {
	cases := []models.TestCase{{Input: "1", Output: "2"}, {Input: "3", Output: "4"}}
	v := models.FailedVerdict(cases, "nope", "Code incomplete")

	assert.False(t, v.Correct)
	assert.Equal(t, "nope", v.Feedback)
	require.Len(t, v.TestResults, 2)
	assert.Equal(t, "3", v.TestResults[1].Input)
	assert.Equal(t, "4", v.TestResults[1].ExpectedOutput)
	assert.Equal(t, "Code incomplete", v.TestResults[1].ActualOutput)
	assert.Equal(t, 0, v.PassedCount())
}

func TestActivityKindValid(t *testing.T) {
	assert.True(t, models.KindPerfectSolution.Valid())
	assert.False(t, models.ActivityKind("quiz").Valid())
}
