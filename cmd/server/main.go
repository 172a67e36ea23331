package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vytor/codetrail/internal/achievement"
	"github.com/vytor/codetrail/internal/api"
	"github.com/vytor/codetrail/internal/config"
	"github.com/vytor/codetrail/internal/db"
	"github.com/vytor/codetrail/internal/judge"
	"github.com/vytor/codetrail/internal/lock"
	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/ollama"
	"github.com/vytor/codetrail/internal/progression"
	"github.com/vytor/codetrail/internal/repository/sqlite"
	"github.com/vytor/codetrail/internal/sandbox"
	"github.com/vytor/codetrail/internal/services"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(logger.ParseFormat(cfg.LogFormat)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Codetrail Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("sandbox_interpreter=%s", cfg.SandboxInterpreter)
	log.Debug("sandbox_time_limit=%s", cfg.SandboxTimeLimit)
	log.Debug("sandbox_worker_count=%d", cfg.SandboxWorkerCount)
	log.Debug("sandbox_queue_size=%d", cfg.SandboxQueueSize)
	log.Debug("judge_default_method=%s", cfg.JudgeDefaultMethod)
	log.Debug("grader_url=%s model=%s", cfg.GraderURL, cfg.GraderModel)

	loc, _ := cfg.Location()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	locker, closeLocker := newLocker(ctx, cfg, log)
	defer closeLocker()

	progressionService := progression.NewService(
		sqlite.NewProgressRepository(database.DB),
		achievement.NewEngine(achievement.DefaultCatalog()),
		locker,
		progression.WithLocation(loc),
		progression.WithLockWait(cfg.LockWait),
	)

	executor := sandbox.NewProcessExecutor(sandbox.Config{
		Interpreter:    cfg.SandboxInterpreter,
		TimeLimit:      cfg.SandboxTimeLimit,
		MemoryLimitKB:  cfg.SandboxMemoryLimitKB,
		MaxOutputBytes: cfg.SandboxMaxOutputBytes,
		Isolate:        cfg.SandboxIsolate,
	})
	sandboxPool := sandbox.NewPool(executor, cfg.SandboxWorkerCount, cfg.SandboxQueueSize)
	sandboxPool.Start(ctx)

	grader := ollama.New(cfg.GraderURL, cfg.GraderModel, cfg.GraderTimeout)
	defaultMethod, _ := judge.ParseMethod(cfg.JudgeDefaultMethod)
	verifier := judge.New(
		judge.WithPrefilter(judge.Prefilter{MinLines: cfg.JudgeMinLines}),
		judge.WithStrategy(judge.MethodLocal, judge.NewExecutionStrategy(sandboxPool, cfg.JudgeParallelCases, cfg.SandboxTimeLimit, cfg.SandboxMemoryLimitKB)),
		judge.WithStrategy(judge.MethodModel, judge.NewModelStrategy(grader, cfg.GraderTimeout)),
		judge.WithDefaultMethod(defaultMethod),
	)

	challengeService := services.NewChallengeService(sqlite.NewChallengeRepository(database.DB), verifier, progressionService,
		services.WithGenerator(grader, cfg.GraderTimeout),
	)
	activityService := services.NewActivityService(progressionService)

	if cfg.ChallengesFile != "" {
		if err := seedChallenges(ctx, challengeService, cfg.ChallengesFile); err != nil {
			log.Error("failed to import challenges from %s: %v", cfg.ChallengesFile, err)
			os.Exit(1)
		}
	}

	srv := api.NewServer(database, challengeService, activityService, progressionService,
		api.WithVerifyRateLimit(cfg.VerifyRatePerS, cfg.VerifyBurst),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GraderTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping sandbox pool")
	cancel()
	sandboxPool.Stop()

	log.Info("===========================================")
	log.Info("Codetrail Server Stopped")
	log.Info("===========================================")
}

// newLocker returns a Redis-backed lock when REDIS_URL is set so several
// server instances can share one store, and an in-process lock otherwise.
func newLocker(ctx context.Context, cfg config.Config, log *logger.Logger) (lock.Locker, func()) {
	if cfg.RedisURL == "" {
		log.Info("using in-process progress lock")
		return lock.NewMemoryLocker(), func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rdb, err := lock.NewRedisClient(pingCtx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis: %v", err)
		os.Exit(1)
	}
	log.Info("using redis progress lock")
	return lock.NewRedisLocker(rdb, cfg.LockTTL), func() { closeRedis(rdb, log) }
}

func closeRedis(rdb *redis.Client, log *logger.Logger) {
	log.Debug("closing redis connection")
	if err := rdb.Close(); err != nil {
		log.Warn("redis close: %v", err)
	}
}

func seedChallenges(ctx context.Context, svc services.ChallengeService, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var challenges []models.Challenge
	if err := json.Unmarshal(raw, &challenges); err != nil {
		return err
	}
	for _, c := range challenges {
		if _, err := svc.ImportChallenge(ctx, c); err != nil {
			return err
		}
	}
	logger.FromContext(ctx).Info("imported %d challenges from %s", len(challenges), path)
	return nil
}
