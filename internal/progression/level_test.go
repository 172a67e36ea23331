package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{599, 3},
		{600, 4},
		{1000, 5},
		{-10, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForXP(tt.xp), "xp=%d", tt.xp)
	}
}

func TestLevelThreshold(t *testing.T) {
	assert.Equal(t, 0, LevelThreshold(0))
	assert.Equal(t, 0, LevelThreshold(1))
	assert.Equal(t, 100, LevelThreshold(2))
	assert.Equal(t, 300, LevelThreshold(3))
	assert.Equal(t, 600, LevelThreshold(4))
	assert.Equal(t, 1000, LevelThreshold(5))

	for level := 1; level < 60; level++ {
		assert.Equal(t, level, LevelForXP(LevelThreshold(level)))
		assert.Equal(t, level, LevelForXP(LevelThreshold(level+1)-1))
	}
}

func TestInfo(t *testing.T) {
	info := Info(110)
	assert.Equal(t, 2, info.CurrentLevel)
	assert.Equal(t, 110, info.TotalXP)
	assert.Equal(t, 190, info.XPToNextLevel)
	assert.Equal(t, 10, info.XPInCurrentLevel)
	assert.InDelta(t, 5.0, info.LevelProgressPercentage, 0.0001)

	zero := Info(0)
	assert.Equal(t, 1, zero.CurrentLevel)
	assert.Equal(t, 100, zero.XPToNextLevel)
	assert.Zero(t, zero.LevelProgressPercentage)
}
