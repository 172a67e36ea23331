package judge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/sandbox"
)

// ExecutionStrategy runs the submission once per case in the sandbox and
// compares trimmed stdout with the expected output.
type ExecutionStrategy struct {
	exec          sandbox.Executor
	parallel      int
	timeLimit     time.Duration
	memoryLimitKB int
}

func NewExecutionStrategy(exec sandbox.Executor, parallel int, timeLimit time.Duration, memoryLimitKB int) *ExecutionStrategy {
	if parallel <= 0 {
		parallel = 1
	}
	return &ExecutionStrategy{
		exec:          exec,
		parallel:      parallel,
		timeLimit:     timeLimit,
		memoryLimitKB: memoryLimitKB,
	}
}

func (s *ExecutionStrategy) Grade(ctx context.Context, task Task) (models.Verdict, error) {
	log := logger.FromContext(ctx).WithPrefix("judge-exec")
	results := make([]models.TestResult, len(task.Cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for i, tc := range task.Cases {
		g.Go(func() error {
			res := s.exec.Execute(gctx, sandbox.Request{
				Code:          task.Code,
				Stdin:         tc.Input,
				TimeLimit:     s.timeLimit,
				MemoryLimitKB: s.memoryLimitKB,
			})
			results[i] = compare(tc, res)
			log.Debug("case %d: pass=%t exit=%d timed_out=%t", i+1, results[i].Pass, res.ExitCode, res.TimedOut)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return models.Verdict{}, fmt.Errorf("execution interrupted: %w", err)
	}

	v := models.Verdict{TestResults: results}
	passed := v.PassedCount()
	v.Correct = len(results) > 0 && passed == len(results)
	v.Feedback = executionFeedback(results, passed)
	return v, nil
}

func compare(tc models.TestCase, res sandbox.Result) models.TestResult {
	actual := strings.TrimSpace(res.Stdout)
	errText := strings.TrimSpace(res.Stderr)
	return models.TestResult{
		Input:          tc.Input,
		ExpectedOutput: tc.Output,
		ActualOutput:   actual,
		Error:          errText,
		Pass:           errText == "" && actual == strings.TrimSpace(tc.Output),
	}
}

func executionFeedback(results []models.TestResult, passed int) string {
	switch {
	case len(results) == 0:
		return "No test cases to run."
	case passed == len(results):
		return fmt.Sprintf("All %d test cases passed.", len(results))
	}
	for i, r := range results {
		if r.Pass {
			continue
		}
		if r.Error == sandbox.TimeLimitExceeded {
			return fmt.Sprintf("%d of %d test cases passed. Test case %d exceeded the time limit.", passed, len(results), i+1)
		}
		if r.Error != "" {
			return fmt.Sprintf("%d of %d test cases passed. Test case %d raised an error.", passed, len(results), i+1)
		}
		return fmt.Sprintf("%d of %d test cases passed. Test case %d produced the wrong output.", passed, len(results), i+1)
	}
	return fmt.Sprintf("%d of %d test cases passed.", passed, len(results))
}
