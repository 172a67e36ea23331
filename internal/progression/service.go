// Package progression turns verified learning activity into XP, levels,
// streaks and achievement unlocks.
package progression

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/vytor/codetrail/internal/achievement"
	"github.com/vytor/codetrail/internal/errors"
	"github.com/vytor/codetrail/internal/lock"
	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/repository"
)

// Service owns every read-modify-write of a user's progress document.
type Service interface {
	Award(ctx context.Context, req models.AwardRequest) (*models.AwardResult, error)
	// Deduct removes XP for a forgotten flashcard. Unknown users are left alone.
	Deduct(ctx context.Context, userID string, amount int) (*models.AwardResult, error)
	Get(ctx context.Context, userID string) (*models.UserProgress, error)
	LevelInfo(ctx context.Context, userID string) (*models.LevelInfo, error)
	Achievements(ctx context.Context, userID string) (*models.AchievementOverview, error)
	Reset(ctx context.Context, userID string) (*models.UserProgress, error)
}

type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithLocation sets the calendar used for streak days.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLockWait bounds how long a call waits for the per-user lock.
func WithLockWait(d time.Duration) Option {
	return func(s *service) { s.lockWait = d }
}

type service struct {
	repo     repository.ProgressRepository
	engine   *achievement.Engine
	locker   lock.Locker
	now      func() time.Time
	loc      *time.Location
	lockWait time.Duration
}

// NewService creates a new progression Service
func NewService(repo repository.ProgressRepository, engine *achievement.Engine, locker lock.Locker, opts ...Option) Service {
	s := &service{
		repo:     repo,
		engine:   engine,
		locker:   locker,
		now:      time.Now,
		loc:      time.Local,
		lockWait: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = achievement.NewEngine(nil)
	}
	if s.locker == nil {
		s.locker = lock.NewMemoryLocker()
	}
	return s
}

func (s *service) Award(ctx context.Context, req models.AwardRequest) (*models.AwardResult, error) {
	log := logger.FromContext(ctx).WithPrefix("progression").WithFields(map[string]any{
		"user_id": req.UserID,
		"kind":    string(req.Kind),
	})

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, errors.NewValidationError("user_id", "must not be empty")
	}
	if !req.Kind.Valid() {
		return nil, errors.NewValidationError("kind", "unknown activity kind "+string(req.Kind))
	}
	if req.Amount < 0 {
		return nil, errors.NewValidationError("xp_amount", "must not be negative")
	}

	var result *models.AwardResult
	err := s.withProgress(ctx, userID, true, func(p *models.UserProgress, now time.Time) error {
		outcome := UpdateStreak(p, now, s.loc)
		p.TotalXP = nonNegative(p.TotalXP + req.Amount)
		applyActivity(p, req.Kind, req.Metadata)
		unlocked := s.finish(p)

		log.Info("awarded %d xp: total=%d level=%d streak=%d (%s) unlocked=%d",
			req.Amount, p.TotalXP, p.Level, p.Streak, outcome, len(unlocked))

		result = &models.AwardResult{
			Progress:        p.Clone(),
			NewAchievements: unlocked,
			TotalXPEarned:   req.Amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Deduct(ctx context.Context, userID string, amount int) (*models.AwardResult, error) {
	log := logger.FromContext(ctx).WithPrefix("progression").WithField("user_id", userID)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.NewValidationError("user_id", "must not be empty")
	}
	if amount < 0 {
		return nil, errors.NewValidationError("xp_amount", "must not be negative")
	}

	result := &models.AwardResult{NewAchievements: []models.AchievementDefinition{}}
	err := s.withProgress(ctx, userID, false, func(p *models.UserProgress, now time.Time) error {
		UpdateStreak(p, now, s.loc)
		p.TotalXP = nonNegative(p.TotalXP - amount)
		p.AchievementProgress.FlashcardsLearned = nonNegative(p.AchievementProgress.FlashcardsLearned - 1)
		result.NewAchievements = s.finish(p)
		result.Progress = p.Clone()
		result.TotalXPEarned = -amount

		log.Info("deducted %d xp: total=%d level=%d", amount, p.TotalXP, p.Level)
		return nil
	})
	if stderrors.Is(err, errNoDocument) {
		log.Debug("no progress to deduct from")
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.NewValidationError("user_id", "must not be empty")
	}
	p, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *service) LevelInfo(ctx context.Context, userID string) (*models.LevelInfo, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := Info(p.TotalXP)
	return &info, nil
}

func (s *service) Achievements(ctx context.Context, userID string) (*models.AchievementOverview, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	o := s.engine.Overview(p)
	return &o, nil
}

func (s *service) Reset(ctx context.Context, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progression").WithField("user_id", userID)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.NewValidationError("user_id", "must not be empty")
	}

	var snapshot models.UserProgress
	err := s.withProgress(ctx, userID, true, func(p *models.UserProgress, now time.Time) error {
		*p = models.NewUserProgress(userID, p.CreatedAt)
		snapshot = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("progress reset")
	return &snapshot, nil
}

var errNoDocument = stderrors.New("progression: no document")

// withProgress runs fn on the user's document inside the per-user critical
// section and persists the result. When create is false and the user has no
// document, fn is not called and errNoDocument is returned.
func (s *service) withProgress(ctx context.Context, userID string, create bool, fn func(p *models.UserProgress, now time.Time) error) error {
	log := logger.FromContext(ctx).WithPrefix("progression")

	lockCtx := ctx
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}
	release, err := s.locker.Lock(lockCtx, "progress:"+userID)
	if err != nil {
		if stderrors.Is(err, lock.ErrNotAcquired) {
			log.Warn("timed out waiting for progress lock: user_id=%s", userID)
			return errors.NewTimeoutError("progress lock", err)
		}
		log.Error("failed to take progress lock: %v", err)
		return errors.NewUnavailableError("progress lock", err)
	}
	defer release()

	now := s.now()
	stored, err := s.repo.Get(ctx, userID)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return errors.NewInternalError(err)
	}
	var p models.UserProgress
	switch {
	case stored != nil:
		p = *stored
		p.UserID = userID
		Normalize(&p)
	case !create:
		return errNoDocument
	default:
		p = models.NewUserProgress(userID, now)
	}

	if err := fn(&p, now); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := s.repo.Save(ctx, p); err != nil {
		log.Error("failed to save progress: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

// load returns the stored document, or a fresh one that is not persisted.
func (s *service) load(ctx context.Context, userID string) (models.UserProgress, error) {
	stored, err := s.repo.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("progression").Error("failed to load progress: %v", err)
		return models.UserProgress{}, errors.NewInternalError(err)
	}
	if stored == nil {
		return models.NewUserProgress(userID, s.now()), nil
	}
	p := *stored
	p.UserID = userID
	Normalize(&p)
	return p, nil
}

// finish recomputes derived fields and merges newly earned achievements.
func (s *service) finish(p *models.UserProgress) []models.AchievementDefinition {
	p.Level = LevelForXP(p.TotalXP)
	p.AchievementProgress.Level = p.Level
	p.AchievementProgress.StreakDays = p.Streak
	p.AchievementProgress.DifferentTopics = p.TopicsCovered.Len()
	p.AchievementProgress.DifferentDifficulties = p.DifficultiesTried.Len()

	unlocked := s.engine.Evaluate(p)
	for _, d := range unlocked {
		p.Achievements.Add(d.ID)
	}
	if unlocked == nil {
		unlocked = []models.AchievementDefinition{}
	}
	return unlocked
}

// applyActivity bumps the counters for one event. Completion counters only
// move for ids not seen before; an event without an id always counts.
func applyActivity(p *models.UserProgress, kind models.ActivityKind, md models.ActivityMetadata) {
	ap := &p.AchievementProgress
	switch kind {
	case models.KindChallenge:
		if md.ChallengeID == "" || p.CompletedChallenges.Add(md.ChallengeID) {
			ap.ChallengesCompleted++
		}
		p.TopicsCovered.Add(md.Topic)
		p.DifficultiesTried.Add(md.Difficulty)
	case models.KindFlashcard:
		ap.FlashcardsLearned++
	case models.KindLesson:
		if md.LessonID == "" || p.CompletedLessons.Add(md.LessonID) {
			ap.LessonsCompleted++
		}
	case models.KindCourse:
		if md.CourseID == "" || p.CompletedCourses.Add(md.CourseID) {
			ap.CoursesCompleted++
		}
	case models.KindPerfectSolution:
		ap.PerfectSolutions++
	}
}
