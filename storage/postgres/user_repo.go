package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"topicrelay/pkg/logger"
	"topicrelay/pkg/models"
	"topicrelay/storage"
)

const userColumns = `user_id, topic_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(source, ''), is_admin, is_moderator, banned, COALESCE(tariff, ''), COALESCE(bot_username, ''), COALESCE(bot_id, 0)`

type userRepo struct {
	db  *pgxpool.Pool
	log logger.ILogger
}

func NewUserRepo(db *pgxpool.Pool, log logger.ILogger) storage.IUserStorage {
	return &userRepo{db: db, log: log}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.UserID, &u.TopicID, &u.Username, &u.FirstName, &u.LastName,
		&u.Source, &u.IsAdmin, &u.IsModerator, &u.Banned, &u.Tariff, &u.BotUsername, &u.BotID,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Get(ctx context.Context, userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("failed to get user", logger.Int64("user_id", userID), logger.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetByTopic(ctx context.Context, topicID int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE topic_id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, topicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, user.UserID, user.Username, user.FirstName, user.LastName, user.Source)
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

	res, err := r.db.Exec(ctx,
		"UPDATE users SET topic_id = $1, updated_at = NOW() WHERE user_id = $2 AND topic_id IS NULL",
		topicID, userID,
	)
	if err != nil {
		r.log.Error("failed to set topic", logger.Int64("user_id", userID), logger.Int("topic_id", topicID), logger.Error(err))
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *userRepo) ResetTopics(ctx context.Context) (int64, error) {
	res, err := r.db.Exec(ctx, "UPDATE users SET topic_id = NULL, updated_at = NOW() WHERE topic_id IS NOT NULL")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *userRepo) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	err := r.db.QueryRow(ctx, "SELECT count(*), count(topic_id) FROM users").Scan(&stats.TotalUsers, &stats.UsersWithTopics)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
