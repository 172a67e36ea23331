package achievement

import "github.com/vytor/codetrail/internal/models"

// Category values used by the bundled catalog.
const (
	CategoryChallenge  = "challenge"
	CategoryStreak     = "streak"
	CategoryLevel      = "level"
	CategoryTopic      = "topic"
	CategoryDifficulty = "difficulty"
	CategoryFlashcard  = "flashcard"
	CategoryCourse     = "course"
	CategoryLesson     = "lesson"
	CategoryPerfect    = "perfect"
)

// Catalog is an ordered, read-only list of achievement definitions.
type Catalog struct {
	defs []models.AchievementDefinition
	byID map[string]int
}

// NewCatalog copies defs into a catalog. Later duplicates of an id are dropped.
func NewCatalog(defs []models.AchievementDefinition) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(defs))}
	for _, d := range defs {
		if _, dup := c.byID[d.ID]; dup {
			continue
		}
		c.byID[d.ID] = len(c.defs)
		c.defs = append(c.defs, copyDefinition(d))
	}
	return c
}

// All returns a copy of every definition in catalog order.
func (c *Catalog) All() []models.AchievementDefinition {
	out := make([]models.AchievementDefinition, len(c.defs))
	for i, d := range c.defs {
		out[i] = copyDefinition(d)
	}
	return out
}

// Get looks a definition up by id.
func (c *Catalog) Get(id string) (models.AchievementDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.AchievementDefinition{}, false
	}
	return copyDefinition(c.defs[i]), true
}

func (c *Catalog) Len() int { return len(c.defs) }

func copyDefinition(d models.AchievementDefinition) models.AchievementDefinition {
	req := make(map[string]int, len(d.Requirement))
	for k, v := range d.Requirement {
		req[k] = v
	}
	d.Requirement = req
	return d
}

func def(id, title, description, icon, category, counter string, threshold, xp int) models.AchievementDefinition {
	return models.AchievementDefinition{
		ID:          id,
		Title:       title,
		Description: description,
		Icon:        icon,
		Category:    category,
		Requirement: map[string]int{counter: threshold},
		XPReward:    xp,
	}
}

// DefaultCatalog returns the bundled achievement set.
func DefaultCatalog() *Catalog {
	return NewCatalog([]models.AchievementDefinition{
		def("first_challenge", "First Steps", "Complete your first coding challenge", "🎯", CategoryChallenge, models.CounterChallengesCompleted, 1, 50),
		def("challenge_master_5", "Challenge Apprentice", "Complete 5 coding challenges", "🏆", CategoryChallenge, models.CounterChallengesCompleted, 5, 100),
		def("challenge_master_10", "Challenge Adept", "Complete 10 coding challenges", "🥇", CategoryChallenge, models.CounterChallengesCompleted, 10, 200),
		def("challenge_master_25", "Challenge Expert", "Complete 25 coding challenges", "👑", CategoryChallenge, models.CounterChallengesCompleted, 25, 500),
		def("challenge_master_50", "Challenge Master", "Complete 50 coding challenges", "💎", CategoryChallenge, models.CounterChallengesCompleted, 50, 1000),

		def("streak_3_days", "Getting Started", "Maintain a 3-day learning streak", "🔥", CategoryStreak, models.CounterStreakDays, 3, 75),
		def("streak_7_days", "Week Warrior", "Maintain a 7-day learning streak", "⚡", CategoryStreak, models.CounterStreakDays, 7, 150),
		def("streak_14_days", "Fortnight Fighter", "Maintain a 14-day learning streak", "🌟", CategoryStreak, models.CounterStreakDays, 14, 300),
		def("streak_30_days", "Monthly Master", "Maintain a 30-day learning streak", "🏅", CategoryStreak, models.CounterStreakDays, 30, 750),

		def("level_3", "Rising Star", "Reach level 3", "⭐", CategoryLevel, models.CounterLevel, 3, 100),
		def("level_5", "Code Explorer", "Reach level 5", "🚀", CategoryLevel, models.CounterLevel, 5, 200),
		def("level_10", "Programming Pioneer", "Reach level 10", "🛸", CategoryLevel, models.CounterLevel, 10, 500),
		def("level_20", "Code Champion", "Reach level 20", "🏰", CategoryLevel, models.CounterLevel, 20, 1000),
		def("level_50", "Programming Legend", "Reach level 50", "🐉", CategoryLevel, models.CounterLevel, 50, 2500),

		def("topic_explorer", "Topic Explorer", "Complete challenges in 3 different topics", "🗺️", CategoryTopic, models.CounterDifferentTopics, 3, 150),
		def("topic_master", "Topic Master", "Complete challenges in 5 different topics", "🧭", CategoryTopic, models.CounterDifferentTopics, 5, 300),
		def("difficulty_diver", "Difficulty Diver", "Complete challenges of all difficulty levels", "🤿", CategoryDifficulty, models.CounterDifferentDifficulties, 3, 200),

		def("flashcard_learner", "Flashcard Learner", "Learn 10 flashcards", "📚", CategoryFlashcard, models.CounterFlashcardsLearned, 10, 100),
		def("flashcard_master", "Flashcard Master", "Learn 50 flashcards", "🧠", CategoryFlashcard, models.CounterFlashcardsLearned, 50, 300),

		def("course_learner", "Course Learner", "Complete 3 courses", "🎓", CategoryCourse, models.CounterCoursesCompleted, 3, 200),
		def("course_master", "Course Master", "Complete 10 courses", "📜", CategoryCourse, models.CounterCoursesCompleted, 10, 500),

		def("lesson_learner", "Lesson Learner", "Complete 10 lessons", "📖", CategoryLesson, models.CounterLessonsCompleted, 10, 150),
		def("lesson_master", "Lesson Master", "Complete 50 lessons", "📘", CategoryLesson, models.CounterLessonsCompleted, 50, 400),

		def("perfect_solver", "Perfect Solver", "Get 5 perfect solutions", "✨", CategoryPerfect, models.CounterPerfectSolutions, 5, 250),
		def("perfect_master", "Perfect Master", "Get 20 perfect solutions", "💯", CategoryPerfect, models.CounterPerfectSolutions, 20, 750),
	})
}
