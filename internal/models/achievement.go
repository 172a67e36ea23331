package models

// AchievementDefinition is one entry of the static achievement catalog.
type AchievementDefinition struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Category    string         `json:"category"`
	Requirement map[string]int `json:"requirement"`
	XPReward    int            `json:"xp_reward"`
}

// AchievementStatus is a catalog entry annotated for one user.
type AchievementStatus struct {
	AchievementDefinition
	Unlocked bool `json:"unlocked"`
}

type AchievementOverview struct {
	Unlocked            []AchievementStatus `json:"unlocked_achievements"`
	Locked              []AchievementStatus `json:"locked_achievements"`
	AchievementProgress AchievementProgress `json:"achievement_progress"`
	TotalAchievements   int                 `json:"total_achievements"`
	UnlockedCount       int                 `json:"unlocked_count"`
}
