package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
	"topicrelay/storage"
)

const userColumns = `user_id, topic_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(source, ''), is_admin, is_moderator, banned, COALESCE(tariff, ''), COALESCE(bot_username, ''), COALESCE(bot_id, 0)`

type userRepo struct {
	db  *sql.DB
	log logger.ILogger
}

func NewUserRepo(db *sql.DB, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u       models.User
		topicID sql.NullInt64
	)
	err := row.Scan(
		&u.UserID, &topicID, &u.Username, &u.FirstName, &u.LastName,
		&u.Source, &u.IsAdmin, &u.IsModerator, &u.Banned, &u.Tariff, &u.BotUsername, &u.BotID,
	)
	if err != nil {
		return nil, err
	}
	if topicID.Valid {
		id := int(topicID.Int64)
		u.TopicID = &id
	}
	return &u, nil
}

func (r *userRepo) Get(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get user", logger.Int64("user_id", userID), logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByTopic(ctx context.Context, topicID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE topic_id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, topicID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get user by topic", logger.Int("topic_id", topicID), logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (user_id, username, first_name, last_name, source)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''))
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, user.UserID, user.Username, user.FirstName, user.LastName, user.Source)
	if err != nil {
		r.log.Error("failed to create user", logger.Int64("user_id", user.UserID), logger.Error(err))
		return nil, err
	}
	return r.Get(ctx, user.UserID)
}

func (r *userRepo) SetTopic(ctx context.Context, userID int64, topicID int) (bool, error) {
	if topicID <= 0 {
		return false, models.ErrInvalidTopicID
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET topic_id = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND topic_id IS NULL",
		topicID, userID,
	)
	if err != nil {
		r.log.Error("failed to set topic", logger.Int64("user_id", userID), logger.Int("topic_id", topicID), logger.Error(err))
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *userRepo) ResetTopics(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET topic_id = NULL, updated_at = CURRENT_TIMESTAMP WHERE topic_id IS NOT NULL")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *userRepo) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	err := r.db.QueryRowContext(ctx, "SELECT count(*), count(topic_id) FROM users").Scan(&stats.TotalUsers, &stats.UsersWithTopics)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
