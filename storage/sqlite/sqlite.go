package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"topicrelay/migrations"
	"topicrelay/pkg/logger"
	"topicrelay/storage"
)

// Store keeps users in a single SQLite file. Writes are serialized through one
// connection, which also makes ":memory:" usable in tests.
type Store struct {
	db  *sql.DB
	log logger.ILogger
}

func New(ctx context.Context, path string, log logger.ILogger) (storage.IStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		log.Error("failed to open SQLite", logger.String("path", path), logger.Error(err))
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrateUp(db, log); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("SQLite connected", logger.String("path", path))

	return &Store{db: db, log: log}, nil
}

func migrateUp(db *sql.DB, log logger.ILogger) error {
	src, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		log.Error("migration source error", logger.Error(err))
		return err
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		log.Error("migration driver error", logger.Error(err))
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		log.Error("migration init error", logger.Error(err))
		return err
	}

	if err = m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return nil
		}
		log.Error("migration up error", logger.Error(err))
		return err
	}
	return nil
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) User() storage.IUserStorage { return NewUserRepo(s.db, s.log) }
