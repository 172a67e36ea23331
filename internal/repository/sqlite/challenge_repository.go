package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/repository"
)

type challengeRepository struct {
	db *sql.DB
}

// NewChallengeRepository creates a new ChallengeRepository implementation
func NewChallengeRepository(db *sql.DB) repository.ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Get(ctx context.Context, id string) (*models.Challenge, error) {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")
	log.Debug("getting challenge: id=%s", id)

	query, args, err := sqlBuilder.Select("document", "created_at", "updated_at").
		From("challenges").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	c, err := scanChallenge(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("challenge not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get challenge: %v", err)
		return nil, err
	}
	return c, nil
}

func (r *challengeRepository) List(ctx context.Context, filter models.ChallengeFilter) ([]models.Challenge, error) {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")
	log.Debug("listing challenges with filter: topic=%s, difficulty=%s, language=%s",
		filter.Topic, filter.Difficulty, filter.Language)

	query := applyChallengeFilter(sqlBuilder.Select("document", "created_at", "updated_at").From("challenges"), filter).
		OrderBy("created_at ASC", "id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlText, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		log.Error("failed to list challenges: %v", err)
		return nil, err
	}
	defer rows.Close()

	challenges := []models.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			log.Error("failed to scan challenge row: %v", err)
			return nil, err
		}
		challenges = append(challenges, *c)
	}
	log.Debug("found %d challenges", len(challenges))
	return challenges, rows.Err()
}

func (r *challengeRepository) Count(ctx context.Context, filter models.ChallengeFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")

	sqlText, args, err := applyChallengeFilter(sqlBuilder.Select("COUNT(*)").From("challenges"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		log.Error("failed to count challenges: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *challengeRepository) Upsert(ctx context.Context, c models.Challenge) error {
	log := logger.FromContext(ctx).WithPrefix("challenge_repo")
	log.Debug("upserting challenge: id=%s", c.ID)

	ts := now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = ts
	}
	c.UpdatedAt = ts

	doc, err := json.Marshal(c)
	if err != nil {
		return err
	}

	query, args, err := sqlBuilder.Insert("challenges").
		Columns("id", "title", "topic", "difficulty", "language", "xp_reward", "document", "created_at", "updated_at").
		Values(c.ID, c.Title, c.Topic, c.Difficulty, c.Language, c.XPReward, string(doc), c.CreatedAt, c.UpdatedAt).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
    title = excluded.title,
    topic = excluded.topic,
    difficulty = excluded.difficulty,
    language = excluded.language,
    xp_reward = excluded.xp_reward,
    document = excluded.document,
    updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert challenge %s: %v", c.ID, err)
		return err
	}
	return nil
}

func applyChallengeFilter(q squirrel.SelectBuilder, filter models.ChallengeFilter) squirrel.SelectBuilder {
	if filter.Topic != "" {
		q = q.Where(squirrel.Eq{"topic": filter.Topic})
	}
	if filter.Difficulty != "" {
		q = q.Where(squirrel.Eq{"difficulty": filter.Difficulty})
	}
	if filter.Language != "" {
		q = q.Where(squirrel.Eq{"language": filter.Language})
	}
	return q
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (*models.Challenge, error) {
	var (
		doc string
		c   models.Challenge
	)
	if err := row.Scan(&doc, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	createdAt, updatedAt := c.CreatedAt, c.UpdatedAt
	if err := json.Unmarshal([]byte(doc), &c); err != nil {
		return nil, fmt.Errorf("decode challenge document: %w", err)
	}
	c.CreatedAt, c.UpdatedAt = createdAt, updatedAt
	return &c, nil
}
