// Package sandbox runs untrusted programs in throwaway, resource-limited
// child processes.
package sandbox

import (
	"context"
	"time"
)

// TimeLimitExceeded is reported on stderr when a run hits its wall clock.
const TimeLimitExceeded = "Time Limit Exceeded"

type Request struct {
	Code  string
	Stdin string
	// TimeLimit and MemoryLimitKB fall back to the executor's defaults when zero.
	TimeLimit     time.Duration
	MemoryLimitKB int
}

type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Duration  time.Duration
	TimedOut  bool
	Truncated bool
}

// Executor runs one program. It never returns an error: launch failures,
// timeouts and cancellation are all reported through Result.Stderr.
type Executor interface {
	Execute(ctx context.Context, req Request) Result
}

func failed(msg string) Result {
	return Result{Stderr: msg, ExitCode: -1}
}

func timedOut(d time.Duration) Result {
	return Result{Stderr: TimeLimitExceeded, ExitCode: -1, Duration: d, TimedOut: true}
}

func cancelled(err error) Result {
	return failed("execution cancelled: " + err.Error())
}
