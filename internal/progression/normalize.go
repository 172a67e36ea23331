package progression

import "github.com/vytor/codetrail/internal/models"

// Normalize repairs a loaded document in place: nil sets become empty,
// negative counters are clamped, and every derived value is recomputed from
// its source of truth (level from XP, different_* from their sets).
func Normalize(p *models.UserProgress) {
	for _, s := range []*models.StringSet{
		&p.CompletedChallenges,
		&p.CompletedCourses,
		&p.CompletedLessons,
		&p.Achievements,
		&p.TopicsCovered,
		&p.DifficultiesTried,
	} {
		if *s == nil {
			*s = models.StringSet{}
		}
	}

	p.TotalXP = nonNegative(p.TotalXP)
	p.Streak = nonNegative(p.Streak)
	p.LongestStreak = nonNegative(p.LongestStreak)
	if p.LongestStreak < p.Streak {
		p.LongestStreak = p.Streak
	}
	p.Level = LevelForXP(p.TotalXP)

	ap := &p.AchievementProgress
	ap.ChallengesCompleted = nonNegative(ap.ChallengesCompleted)
	if n := p.CompletedChallenges.Len(); ap.ChallengesCompleted < n {
		ap.ChallengesCompleted = n
	}
	ap.FlashcardsLearned = nonNegative(ap.FlashcardsLearned)
	ap.CoursesCompleted = nonNegative(ap.CoursesCompleted)
	if n := p.CompletedCourses.Len(); ap.CoursesCompleted < n {
		ap.CoursesCompleted = n
	}
	ap.LessonsCompleted = nonNegative(ap.LessonsCompleted)
	if n := p.CompletedLessons.Len(); ap.LessonsCompleted < n {
		ap.LessonsCompleted = n
	}
	ap.PerfectSolutions = nonNegative(ap.PerfectSolutions)
	ap.StreakDays = p.Streak
	ap.Level = p.Level
	ap.DifferentTopics = p.TopicsCovered.Len()
	ap.DifferentDifficulties = p.DifficultiesTried.Len()
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
