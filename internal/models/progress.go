package models

import "time"

// Counter names used by achievement requirements.
const (
	CounterChallengesCompleted   = "challenges_completed"
	CounterFlashcardsLearned     = "flashcards_learned"
	CounterCoursesCompleted      = "courses_completed"
	CounterLessonsCompleted      = "lessons_completed"
	CounterStreakDays            = "streak_days"
	CounterPerfectSolutions      = "perfect_solutions"
	CounterLevel                 = "level"
	CounterDifferentTopics       = "different_topics"
	CounterDifferentDifficulties = "different_difficulties"
)

// UserProgress is the durable per-user progression document.
type UserProgress struct {
	UserID              string              `json:"user_id"`
	TotalXP             int                 `json:"total_xp"`
	Level               int                 `json:"level"`
	Streak              int                 `json:"streak"`
	LongestStreak       int                 `json:"longest_streak"`
	LastActiveDate      *time.Time          `json:"last_active_date"`
	CompletedChallenges StringSet           `json:"completed_challenges"`
	CompletedCourses    StringSet           `json:"completed_courses"`
	CompletedLessons    StringSet           `json:"completed_lessons"`
	Achievements        StringSet           `json:"achievements"`
	AchievementProgress AchievementProgress `json:"achievement_progress"`
	TopicsCovered       StringSet           `json:"topics_covered"`
	DifficultiesTried   StringSet           `json:"difficulties_tried"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// AchievementProgress holds the counters achievement requirements are
// checked against.
type AchievementProgress struct {
	ChallengesCompleted   int `json:"challenges_completed"`
	FlashcardsLearned     int `json:"flashcards_learned"`
	CoursesCompleted      int `json:"courses_completed"`
	LessonsCompleted      int `json:"lessons_completed"`
	StreakDays            int `json:"streak_days"`
	PerfectSolutions      int `json:"perfect_solutions"`
	Level                 int `json:"level"`
	DifferentTopics       int `json:"different_topics"`
	DifferentDifficulties int `json:"different_difficulties"`
}

// Value returns the counter with the given name; unknown names are 0.
func (a AchievementProgress) Value(name string) int {
	switch name {
	case CounterChallengesCompleted:
		return a.ChallengesCompleted
	case CounterFlashcardsLearned:
		return a.FlashcardsLearned
	case CounterCoursesCompleted:
		return a.CoursesCompleted
	case CounterLessonsCompleted:
		return a.LessonsCompleted
	case CounterStreakDays:
		return a.StreakDays
	case CounterPerfectSolutions:
		return a.PerfectSolutions
	case CounterLevel:
		return a.Level
	case CounterDifferentTopics:
		return a.DifferentTopics
	case CounterDifferentDifficulties:
		return a.DifferentDifficulties
	default:
		return 0
	}
}

// NewUserProgress returns a zeroed document. LastActiveDate stays nil until
// the first activity is recorded.
func NewUserProgress(userID string, now time.Time) UserProgress {
	return UserProgress{
		UserID:              userID,
		Level:               1,
		CompletedChallenges: StringSet{},
		CompletedCourses:    StringSet{},
		CompletedLessons:    StringSet{},
		Achievements:        StringSet{},
		TopicsCovered:       StringSet{},
		DifficultiesTried:   StringSet{},
		AchievementProgress: AchievementProgress{Level: 1},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Clone returns a deep copy so callers can hand out snapshots safely.
func (p UserProgress) Clone() UserProgress {
	c := p
	if p.LastActiveDate != nil {
		t := *p.LastActiveDate
		c.LastActiveDate = &t
	}
	c.CompletedChallenges = p.CompletedChallenges.Clone()
	c.CompletedCourses = p.CompletedCourses.Clone()
	c.CompletedLessons = p.CompletedLessons.Clone()
	c.Achievements = p.Achievements.Clone()
	c.TopicsCovered = p.TopicsCovered.Clone()
	c.DifficultiesTried = p.DifficultiesTried.Clone()
	return c
}

// ActivityKind names the event that produced an award.
type ActivityKind string

const (
	KindChallenge       ActivityKind = "challenge"
	KindFlashcard       ActivityKind = "flashcard"
	KindLesson          ActivityKind = "lesson"
	KindCourse          ActivityKind = "course"
	KindPerfectSolution ActivityKind = "perfect_solution"
)

// Valid reports whether k is one of the known kinds.
func (k ActivityKind) Valid() bool {
	switch k {
	case KindChallenge, KindFlashcard, KindLesson, KindCourse, KindPerfectSolution:
		return true
	}
	return false
}

// ActivityMetadata carries optional context for an award.
type ActivityMetadata struct {
	ChallengeID string `json:"challenge_id,omitempty"`
	Topic       string `json:"topic,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	CourseID    string `json:"course_id,omitempty"`
	LessonID    string `json:"lesson_id,omitempty"`
	FlashcardID string `json:"flashcard_id,omitempty"`
}

type AwardRequest struct {
	UserID   string           `json:"user_id"`
	Kind     ActivityKind     `json:"kind"`
	Amount   int              `json:"xp_amount"`
	Metadata ActivityMetadata `json:"metadata"`
}

type AwardResult struct {
	Progress            UserProgress            `json:"user_progress"`
	NewAchievements     []AchievementDefinition `json:"new_achievements"`
	AchievementXPEarned int                     `json:"achievement_xp_earned"`
	TotalXPEarned       int                     `json:"total_xp_earned"`
}

// LevelInfo describes where a user sits within their current level.
type LevelInfo struct {
	CurrentLevel            int     `json:"current_level"`
	TotalXP                 int     `json:"total_xp"`
	XPToNextLevel           int     `json:"xp_to_next_level"`
	XPInCurrentLevel        int     `json:"xp_in_current_level"`
	LevelProgressPercentage float64 `json:"level_progress_percentage"`
}
