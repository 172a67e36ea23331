package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr      string
	DBPath    string
	LogLevel  string
	LogFormat string
	Timezone  string

	// ChallengesFile, when set, is a JSON array of challenges imported at startup.
	ChallengesFile string

	// Sandbox
	SandboxInterpreter    string
	SandboxTimeLimit      time.Duration
	SandboxMemoryLimitKB  int
	SandboxMaxOutputBytes int
	SandboxIsolate        bool
	SandboxWorkerCount    int
	SandboxQueueSize      int

	// Judge
	JudgeDefaultMethod string
	JudgeMinLines      int
	JudgeParallelCases int

	// Model grader
	GraderURL     string
	GraderModel   string
	GraderTimeout time.Duration

	// Progression
	RedisURL       string
	LockTTL        time.Duration
	LockWait       time.Duration
	VerifyRatePerS float64
	VerifyBurst    int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:      envOr("ADDR", ":8080"),
		DBPath:    envOr("DB_PATH", "file:codetrail.db"),
		LogLevel:  envOr("LOG_LEVEL", "INFO"),
		LogFormat: envOr("LOG_FORMAT", "text"),
		Timezone:  envOr("TIMEZONE", "Local"),

		ChallengesFile: envOr("CHALLENGES_FILE", ""),

		SandboxInterpreter:    envOr("SANDBOX_INTERPRETER", "python3"),
		SandboxTimeLimit:      envDurationOr("SANDBOX_TIME_LIMIT", 3*time.Second),
		SandboxMemoryLimitKB:  envIntOr("SANDBOX_MEMORY_LIMIT_KB", 256*1024),
		SandboxMaxOutputBytes: envIntOr("SANDBOX_MAX_OUTPUT_BYTES", 64*1024),
		SandboxIsolate:        envBoolOr("SANDBOX_ISOLATE", true),
		SandboxWorkerCount:    envIntOr("SANDBOX_WORKER_COUNT", 4),
		SandboxQueueSize:      envIntOr("SANDBOX_QUEUE_SIZE", 64),

		JudgeDefaultMethod: envOr("JUDGE_DEFAULT_METHOD", "model"),
		JudgeMinLines:      envIntOr("JUDGE_MIN_LINES", 5),
		JudgeParallelCases: envIntOr("JUDGE_PARALLEL_CASES", 2),

		GraderURL:     envOr("GRADER_URL", "http://localhost:11434"),
		GraderModel:   envOr("GRADER_MODEL", "gemma3n"),
		GraderTimeout: envDurationOr("GRADER_TIMEOUT", 60*time.Second),

		RedisURL:       envOr("REDIS_URL", ""),
		LockTTL:        envDurationOr("LOCK_TTL", 10*time.Second),
		LockWait:       envDurationOr("LOCK_WAIT", 5*time.Second),
		VerifyRatePerS: envFloatOr("VERIFY_RATE_PER_SECOND", 2),
		VerifyBurst:    envIntOr("VERIFY_BURST", 5),
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q is not a known location", c.Timezone))
	}
	if strings.TrimSpace(c.SandboxInterpreter) == "" {
		problems = append(problems, "SANDBOX_INTERPRETER cannot be empty")
	}
	if c.SandboxTimeLimit <= 0 || c.SandboxTimeLimit > time.Minute {
		problems = append(problems, "SANDBOX_TIME_LIMIT must be between 1ns and 1m")
	}
	if c.SandboxMemoryLimitKB < 0 {
		problems = append(problems, "SANDBOX_MEMORY_LIMIT_KB cannot be negative")
	}
	if c.SandboxMaxOutputBytes <= 0 {
		problems = append(problems, "SANDBOX_MAX_OUTPUT_BYTES must be positive")
	}
	if c.SandboxWorkerCount <= 0 {
		problems = append(problems, "SANDBOX_WORKER_COUNT must be positive")
	}
	if c.SandboxQueueSize <= 0 {
		problems = append(problems, "SANDBOX_QUEUE_SIZE must be positive")
	}
	switch c.JudgeDefaultMethod {
	case "model", "local":
	default:
		problems = append(problems, "JUDGE_DEFAULT_METHOD must be 'model' or 'local'")
	}
	if c.JudgeMinLines < 0 {
		problems = append(problems, "JUDGE_MIN_LINES cannot be negative")
	}
	if c.JudgeParallelCases <= 0 {
		problems = append(problems, "JUDGE_PARALLEL_CASES must be positive")
	}
	if strings.TrimSpace(c.GraderURL) == "" {
		problems = append(problems, "GRADER_URL cannot be empty")
	}
	if c.GraderTimeout <= 0 {
		problems = append(problems, "GRADER_TIMEOUT must be positive")
	}
	if c.LockTTL <= 0 || c.LockWait <= 0 {
		problems = append(problems, "LOCK_TTL and LOCK_WAIT must be positive")
	}
	if c.VerifyRatePerS <= 0 || c.VerifyBurst <= 0 {
		problems = append(problems, "VERIFY_RATE_PER_SECOND and VERIFY_BURST must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves Timezone; streak days are counted in this location.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
