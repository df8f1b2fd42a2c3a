package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"topicrelay/config"
	"topicrelay/pkg/api"
	"topicrelay/pkg/bot"
	"topicrelay/pkg/lock"
	"topicrelay/pkg/logger"
	"topicrelay/storage"
	"topicrelay/storage/postgres"
	"topicrelay/storage/sqlite"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stg, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", logger.String("driver", cfg.DBDriver), logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	locker, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to redis", logger.String("addr", cfg.RedisAddr()), logger.Error(err))
		os.Exit(1)
	}
	defer closeLocker()

	if cfg.UseTeamChannel && cfg.TeamChannelID == 0 {
		log.Warning("USE_TEAM_CHANNEL is set but TEAM_CHANNEL_ID is empty, user messages will not be relayed")
	}

	b, err := bot.New(&cfg, stg, locker, log)
	if err != nil {
		log.Error("failed to initialize bot", logger.Error(err))
		os.Exit(1)
	}
	server := api.New(b.Svc, cfg.AppPort, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		go b.Start()
		<-gctx.Done()
		b.Stop()
		return nil
	})
	g.Go(func() error {
		return server.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("stopped")
}

func openStorage(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return sqlite.New(ctx, cfg.SQLitePath, log)
	}
	return postgres.New(ctx, cfg, log)
}

// newLocker shares provisioning locks through Redis when it is configured.
// Without Redis the provisioner only coalesces work inside this process.
func newLocker(ctx context.Context, cfg config.Config, log logger.ILogger) (lock.Locker, func(), error) {
	addr := cfg.RedisAddr()
	if addr == "" {
		log.Info("no redis configured, topic provisioning is coordinated in-process only")
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}

	log.Info("using redis topic lock", logger.String("addr", addr))
	return lock.NewRedis(client, cfg.ServiceName, cfg.LockTTL, log), func() { client.Close() }, nil
}
