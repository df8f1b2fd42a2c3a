package main

import (
	"context"
	"os"

	"topicrelay/config"
	"topicrelay/pkg/logger"
	"topicrelay/pkg/relay"
	"topicrelay/service"
	"topicrelay/storage"
	"topicrelay/storage/postgres"
	"topicrelay/storage/sqlite"
)

// reset_topics forgets every stored topic id. Run it after the team channel
// was recreated; users get fresh topics on their next message.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	ctx := context.Background()

	var (
		stg storage.IStorage
		err error
	)
	if cfg.DBDriver == config.DriverSQLite {
		stg, err = sqlite.New(ctx, cfg.SQLitePath, log)
	} else {
		stg, err = postgres.New(ctx, cfg, log)
	}
	if err != nil {
		log.Error("failed to open storage", logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	svc := service.New(stg, relay.NewDirectory(stg.User()), log)
	if _, err := svc.Topic().Reset(ctx); err != nil {
		os.Exit(1)
	}
}
