package progression

import "github.com/vytor/codetrail/internal/models"

const xpPerLevelStep = 100

// LevelForXP returns the level reached with totalXP. Level 1 spans [0, 100);
// moving from level L to L+1 costs L*100 more XP.
func LevelForXP(totalXP int) int {
	level := 1
	remaining := totalXP
	needed := xpPerLevelStep
	for remaining >= needed {
		remaining -= needed
		level++
		needed = level * xpPerLevelStep
	}
	return level
}

// LevelThreshold is the cumulative XP at which level starts:
// 100 * (1 + 2 + ... + (level-1)), and 0 for level 1 or below.
func LevelThreshold(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return xpPerLevelStep * n * (n + 1) / 2
}

// Info computes the level breakdown for totalXP.
func Info(totalXP int) models.LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	level := LevelForXP(totalXP)
	start := LevelThreshold(level)
	next := LevelThreshold(level + 1)
	inLevel := totalXP - start
	span := next - start

	return models.LevelInfo{
		CurrentLevel:            level,
		TotalXP:                 totalXP,
		XPToNextLevel:           next - totalXP,
		XPInCurrentLevel:        inLevel,
		LevelProgressPercentage: float64(inLevel) / float64(span) * 100,
	}
}
