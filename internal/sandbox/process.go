package sandbox

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/codetrail/internal/logger"
)

const (
	defaultTimeLimit      = 3 * time.Second
	defaultMaxOutputBytes = 64 * 1024
	defaultPath           = "/usr/local/bin:/usr/bin:/bin"
)

type Config struct {
	// Interpreter is split on whitespace; the program file is appended.
	Interpreter    string
	FileName       string
	WorkRoot       string
	TimeLimit      time.Duration
	MemoryLimitKB  int
	MaxOutputBytes int
	// Isolate requests fresh user, network and mount namespaces where the
	// platform allows it.
	Isolate bool
}

// ProcessExecutor runs each request as a child process in its own process
// group, inside a temporary directory that is removed afterwards.
type ProcessExecutor struct {
	cfg  Config
	argv []string
	log  *logger.Logger

	noIsolation atomic.Bool
}

func NewProcessExecutor(cfg Config) *ProcessExecutor {
	if strings.TrimSpace(cfg.Interpreter) == "" {
		cfg.Interpreter = "python3"
	}
	if cfg.FileName == "" {
		cfg.FileName = "solution.py"
	}
	if cfg.WorkRoot == "" {
		cfg.WorkRoot = os.TempDir()
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = defaultTimeLimit
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = defaultMaxOutputBytes
	}
	return &ProcessExecutor{
		cfg:  cfg,
		argv: strings.Fields(cfg.Interpreter),
		log:  logger.Default().WithPrefix("sandbox"),
	}
}

func (e *ProcessExecutor) Execute(ctx context.Context, req Request) Result {
	log := logger.FromContext(ctx).WithPrefix("sandbox")

	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}

	limit := req.TimeLimit
	if limit <= 0 {
		limit = e.cfg.TimeLimit
	}
	memKB := req.MemoryLimitKB
	if memKB <= 0 {
		memKB = e.cfg.MemoryLimitKB
	}

	dir := filepath.Join(e.cfg.WorkRoot, "codetrail-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Error("failed to create work dir: %v", err)
		return failed("failed to prepare sandbox: " + err.Error())
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn("failed to remove work dir %s: %v", dir, err)
		}
	}()

	source := filepath.Join(dir, e.cfg.FileName)
	if err := os.WriteFile(source, []byte(req.Code), 0o600); err != nil {
		log.Error("failed to write source: %v", err)
		return failed("failed to prepare sandbox: " + err.Error())
	}

	stdout := &cappedBuffer{limit: e.cfg.MaxOutputBytes}
	stderr := &cappedBuffer{limit: e.cfg.MaxOutputBytes}

	cmd, err := e.start(dir, source, memKB, req.Stdin, stdout, stderr)
	if err != nil {
		log.Error("failed to start interpreter %q: %v", e.cfg.Interpreter, err)
		return failed("failed to start program: " + err.Error())
	}

	started := time.Now()
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case err := <-done:
		// Reap anything the program left behind in its group.
		killProcessGroup(cmd)
		res := Result{
			Stdout:    decodeOutput(stdout.Bytes()),
			Stderr:    decodeOutput(stderr.Bytes()),
			Duration:  time.Since(started),
			Truncated: stdout.truncated || stderr.truncated,
		}
		var exitErr *exec.ExitError
		switch {
		case err == nil:
		case errors.Is(err, exec.ErrWaitDelay):
			// A leftover child held the output pipes open past exit.
			res.ExitCode = cmd.ProcessState.ExitCode()
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			res.ExitCode = -1
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
		log.Debug("program exited: code=%d duration=%v", res.ExitCode, res.Duration)
		return res

	case <-timer.C:
		killProcessGroup(cmd)
		<-done
		d := time.Since(started)
		log.Debug("program killed after time limit %v", limit)
		return timedOut(d)

	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		log.Debug("program killed on cancellation: %v", ctx.Err())
		return cancelled(ctx.Err())
	}
}

// start launches the program. If the kernel refuses namespace isolation once,
// it stays off for the lifetime of the executor.
func (e *ProcessExecutor) start(dir, source string, memKB int, stdin string, stdout, stderr *cappedBuffer) (*exec.Cmd, error) {
	isolate := e.cfg.Isolate && isolationSupported && !e.noIsolation.Load()

	cmd := e.command(dir, source, memKB, stdin, stdout, stderr, isolate)
	err := cmd.Start()
	if err != nil && isolate && isolationRefused(err) {
		if e.noIsolation.CompareAndSwap(false, true) {
			e.log.Warn("namespace isolation unavailable, continuing without it: %v", err)
		}
		stdout.Reset()
		stderr.Reset()
		cmd = e.command(dir, source, memKB, stdin, stdout, stderr, false)
		err = cmd.Start()
	}
	return cmd, err
}

func (e *ProcessExecutor) command(dir, source string, memKB int, stdin string, stdout, stderr *cappedBuffer, isolate bool) *exec.Cmd {
	args := append(append([]string{}, e.argv...), source)

	var cmd *exec.Cmd
	if memKB > 0 && shellAvailable() {
		// ulimit is applied by the shell, which then execs the interpreter.
		shArgs := append([]string{"-c", `ulimit -v "$1" 2>/dev/null; shift; exec "$@"`, "sh", strconv.Itoa(memKB)}, args...)
		cmd = exec.Command("/bin/sh", shArgs...)
	} else {
		cmd = exec.Command(args[0], args[1:]...)
	}

	cmd.Dir = dir
	cmd.Env = []string{
		"PATH=" + defaultPath,
		"HOME=" + dir,
		"TMPDIR=" + dir,
		"PYTHONDONTWRITEBYTECODE=1",
		"PYTHONIOENCODING=utf-8",
	}
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.SysProcAttr = sysProcAttr(isolate)
	cmd.WaitDelay = time.Second
	return cmd
}

func shellAvailable() bool {
	_, err := os.Stat("/bin/sh")
	return err == nil
}

func decodeOutput(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// cappedBuffer keeps the first limit bytes and silently drops the rest so a
// chatty program never blocks on a full pipe.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       []byte
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.limit - len(b.buf)
	if room <= 0 {
		b.truncated = b.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > room {
		b.buf = append(b.buf, p[:room]...)
		b.truncated = true
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf...)
}

func (b *cappedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = b.buf[:0]
	b.truncated = false
}

var _ Executor = (*ProcessExecutor)(nil)
