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

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new ProgressRepository implementation.
// Documents are stored as JSON; total_xp and level are mirrored into columns.
func NewProgressRepository(db *sql.DB) repository.ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting progress: user_id=%s", userID)

	query, args, err := sqlBuilder.Select("document").
		From("user_progress").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var doc string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no progress yet: user_id=%s", userID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}

	var p models.UserProgress
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		log.Error("failed to decode progress document for %s: %v", userID, err)
		return nil, fmt.Errorf("decode progress %s: %w", userID, err)
	}
	p.UserID = userID
	return &p, nil
}

func (r *progressRepository) Save(ctx context.Context, p models.UserProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("saving progress: user_id=%s, total_xp=%d, level=%d", p.UserID, p.TotalXP, p.Level)

	doc, err := json.Marshal(p)
	if err != nil {
		log.Error("failed to encode progress: %v", err)
		return err
	}

	query, args, err := sqlBuilder.Insert("user_progress").
		Columns("user_id", "total_xp", "level", "document", "created_at", "updated_at").
		Values(p.UserID, p.TotalXP, p.Level, string(doc), p.CreatedAt, p.UpdatedAt).
		Suffix(`ON CONFLICT(user_id) DO UPDATE SET
    total_xp = excluded.total_xp,
    level = excluded.level,
    document = excluded.document,
    updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Error("failed to upsert progress for %s: %v", p.UserID, err)
			return err
		}
		return nil
	})
}
