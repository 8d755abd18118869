package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"lingoflow/internal/api"
	"lingoflow/internal/config"
	"lingoflow/internal/metrics"
	"lingoflow/internal/repository"
	"lingoflow/internal/service"
	"lingoflow/pkg/constraints"
	"lingoflow/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// Initialize logger
	logger.InitLogger(cfg.Server.Environment)
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("application startup failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if cfg.Server.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Initialize Infrastructure
	rdb, err := initRedis(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	store, cleanup, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.Store.CacheSize > 0 {
		cached, err := repository.NewCachedStore(store, cfg.Store.CacheSize)
		if err != nil {
			return err
		}
		store = cached
	}

	// 3. Initialize Services
	observer := metrics.NewPrometheusObserver(cfg.Store.Backend)
	svc := service.NewFeatureService(store, observer)

	// 4. Setup HTTP Server
	r := api.RegisterRoutes(api.NewFeatureHandler(svc), rdb, cfg.RateLimit.RequestsPerSecond)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	// 5. Start Server
	go func() {
		logger.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("env", cfg.Server.Environment),
			zap.String("backend", cfg.Store.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen failed", zap.Error(err))
		}
	}()

	// 6. Graceful Shutdown Signal Wait
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Create a deadline to wait for current requests to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited properly")
	return nil
}

// -- Infrastructure Initializers --

// initRedis returns nil when no address is configured; the rate limiter then
// runs per process.
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		logger.Info("redis not configured, rate limiting per process")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func initEtcd(cfg config.EtcdConfig) (*clientv3.Client, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	return client, nil
}

func initStore(cfg *config.Config) (repository.FeatureStore, func(), error) {
	noop := func() {}

	if cfg.Store.Backend == constraints.BackendRemote {
		db, err := initDB(cfg.Remote)
		if err != nil {
			return nil, noop, err
		}
		store := repository.NewRemoteStore(db)
		if cfg.Remote.AutoMigrate {
			if err := store.Migrate(context.Background()); err != nil {
				return nil, noop, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return store, cleanup, nil
	}

	locker, cleanup, err := initLocker(cfg)
	if err != nil {
		return nil, noop, err
	}
	store := repository.NewFileStore(repository.FileOptions{Path: cfg.File.Path, Locker: locker})
	logger.Info("file store ready", zap.String("path", store.Path()), zap.String("lock", cfg.File.Lock))
	return store, cleanup, nil
}

func initLocker(cfg *config.Config) (repository.Locker, func(), error) {
	switch cfg.File.Lock {
	case constraints.LockNone:
		logger.Warn("file store running without a lock, concurrent writes may be lost")
		return repository.NoopLocker{}, func() {}, nil
	case constraints.LockEtcd:
		etcdCli, err := initEtcd(cfg.Etcd)
		if err != nil {
			return nil, func() {}, err
		}
		locker, err := repository.NewEtcdLocker(etcdCli, cfg.Etcd.LockKey, cfg.Etcd.SessionTTL)
		if err != nil {
			etcdCli.Close()
			return nil, func() {}, err
		}
		stop := make(chan struct{})
		go func() {
			select {
			case <-locker.Done():
				logger.Error("etcd lock session expired, file store writes will fail until restart")
			case <-stop:
			}
		}()
		return locker, func() {
			close(stop)
			locker.Close()
			etcdCli.Close()
		}, nil
	}
	return repository.NewMutexLocker(), func() {}, nil
}

func initDB(cfg config.RemoteConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.NewGormLogger(gormlogger.Warn, 200*time.Millisecond)}

	var dialector gorm.Dialector
	switch cfg.Dialect {
	case constraints.DialectMySQL:
		dialector = mysql.Open(cfg.DSN)
	case constraints.DialectPostgres:
		sqlDB, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	default:
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Dialect, err)
	}
	return db, nil
}
