package sandbox

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShellExecutor(t *testing.T, mutate ...func(*Config)) (*ProcessExecutor, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	cfg := Config{
		Interpreter: "sh",
		FileName:    "solution.sh",
		WorkRoot:    root,
		TimeLimit:   2 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewProcessExecutor(cfg), root
}

func TestProcessExecutor_Stdin(t *testing.T) {
	e, _ := newShellExecutor(t)

	res := e.Execute(context.Background(), Request{
		Code:  "read a b\necho $((a + b))\n",
		Stdin: "1 2\n",
	})

	assert.Equal(t, "3\n", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
}

func TestProcessExecutor_StderrAndExitCode(t *testing.T) {
	e, _ := newShellExecutor(t)

	res := e.Execute(context.Background(), Request{Code: "echo partial\necho oops >&2\nexit 3\n"})

	assert.Equal(t, "partial\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
}

func TestProcessExecutor_TimeLimit(t *testing.T) {
	e, _ := newShellExecutor(t)

	start := time.Now()
	res := e.Execute(context.Background(), Request{
		Code:      "echo started\nsleep 30 &\nsleep 30\n",
		TimeLimit: 200 * time.Millisecond,
	})

	assert.True(t, res.TimedOut)
	assert.Empty(t, res.Stdout)
	assert.Equal(t, TimeLimitExceeded, res.Stderr)
	assert.Less(t, time.Since(start), 5*time.Second, "background children must not keep the run alive")
}

func TestProcessExecutor_Cancellation(t *testing.T) {
	e, _ := newShellExecutor(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := e.Execute(ctx, Request{Code: "sleep 30\n"})

	assert.True(t, strings.HasPrefix(res.Stderr, "execution cancelled"), res.Stderr)
	assert.Empty(t, res.Stdout)
	assert.Less(t, time.Since(start), 5*time.Second)

	res = e.Execute(ctx, Request{Code: "echo never\n"})
	assert.True(t, strings.HasPrefix(res.Stderr, "execution cancelled"))
}

func TestProcessExecutor_LaunchFailure(t *testing.T) {
	e, _ := newShellExecutor(t, func(c *Config) { c.Interpreter = "/nonexistent/interpreter" })

	res := e.Execute(context.Background(), Request{Code: "print(1)"})

	assert.Empty(t, res.Stdout)
	assert.True(t, strings.HasPrefix(res.Stderr, "failed to start program"), res.Stderr)
	assert.Equal(t, -1, res.ExitCode)
}

func TestProcessExecutor_OutputCap(t *testing.T) {
	e, _ := newShellExecutor(t, func(c *Config) { c.MaxOutputBytes = 10 })

	res := e.Execute(context.Background(), Request{Code: "printf '%s' 0123456789abcdef\n"})

	assert.Equal(t, "0123456789", res.Stdout)
	assert.True(t, res.Truncated)
}

func TestProcessExecutor_InvalidUTF8IsReplaced(t *testing.T) {
	e, _ := newShellExecutor(t)

	res := e.Execute(context.Background(), Request{Code: "printf '\\377ok'\n"})

	assert.Equal(t, "\uFFFDok", res.Stdout)
}

func TestProcessExecutor_CleanEnvironmentAndWorkDir(t *testing.T) {
	t.Setenv("CODETRAIL_SECRET", "leak")
	e, root := newShellExecutor(t)

	res := e.Execute(context.Background(), Request{Code: "echo \"[$CODETRAIL_SECRET]\"\n"})
	assert.Equal(t, "[]\n", res.Stdout)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "work dirs are removed after each run")
}

func TestProcessExecutor_MemoryLimitWrapper(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	e, _ := newShellExecutor(t, func(c *Config) { c.MemoryLimitKB = 256 * 1024 })

	res := e.Execute(context.Background(), Request{Code: "echo ok\n"})

	assert.Equal(t, "ok\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{limit: 4}
	n, err := b.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, _ = b.Write([]byte("cdef"))
	assert.Equal(t, 4, n, "writes always report full length")
	assert.Equal(t, "abcd", string(b.Bytes()))
	assert.True(t, b.truncated)

	b.Reset()
	assert.Empty(t, b.Bytes())
	assert.False(t, b.truncated)
}
