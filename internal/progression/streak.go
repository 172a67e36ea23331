package progression

import (
	"time"

	"github.com/vytor/codetrail/internal/models"
)

// StreakOutcome says what UpdateStreak did.
type StreakOutcome int

const (
	StreakUnchanged StreakOutcome = iota // already counted today
	StreakExtended                       // active yesterday
	StreakStarted                        // first activity, or a gap of two days or more
)

func (o StreakOutcome) String() string {
	switch o {
	case StreakUnchanged:
		return "unchanged"
	case StreakExtended:
		return "extended"
	case StreakStarted:
		return "started"
	default:
		return "unknown"
	}
}

// UpdateStreak records an activity at now. Days are calendar days in loc.
// A second call on the same day leaves every streak field untouched.
func UpdateStreak(p *models.UserProgress, now time.Time, loc *time.Location) StreakOutcome {
	if loc == nil {
		loc = time.Local
	}
	today := dateOf(now, loc)

	outcome := StreakStarted
	if p.LastActiveDate != nil {
		last := dateOf(*p.LastActiveDate, loc)
		switch {
		case last.Equal(today):
			return StreakUnchanged
		case last.After(today):
			// Clock moved backwards; keep the streak and re-anchor on today.
			stamp := now.In(loc)
			p.LastActiveDate = &stamp
			return StreakUnchanged
		case last.AddDate(0, 0, 1).Equal(today):
			outcome = StreakExtended
		}
	}

	if outcome == StreakExtended {
		p.Streak++
	} else {
		p.Streak = 1
	}
	if p.Streak > p.LongestStreak {
		p.LongestStreak = p.Streak
	}
	stamp := now.In(loc)
	p.LastActiveDate = &stamp
	p.AchievementProgress.StreakDays = p.Streak
	return outcome
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
