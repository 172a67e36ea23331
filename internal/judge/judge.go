// Package judge decides whether a submission solves a challenge.
package judge

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/codetrail/internal/errors"
	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
)

type Method string

const (
	MethodLocal Method = "local"
	MethodModel Method = "model"

	VerificationErrorOutput = "Verification error"
)

// ParseMethod accepts "local" or "model" in any case; "" means the default.
func ParseMethod(s string) (Method, bool) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case "", MethodLocal, MethodModel:
		return m, true
	default:
		return "", false
	}
}

// Task is everything a strategy needs to grade one submission.
type Task struct {
	Challenge models.Challenge
	Code      string
	Cases     []models.TestCase
}

// Strategy grades a task that already passed the prefilter. An error means
// grading itself failed; the judge turns it into a failing verdict.
type Strategy interface {
	Grade(ctx context.Context, task Task) (models.Verdict, error)
}

type Judge struct {
	prefilter     Prefilter
	strategies    map[Method]Strategy
	defaultMethod Method
}

type Option func(*Judge)

func WithStrategy(m Method, s Strategy) Option {
	return func(j *Judge) { j.strategies[m] = s }
}

func WithDefaultMethod(m Method) Option {
	return func(j *Judge) {
		if m != "" {
			j.defaultMethod = m
		}
	}
}

func WithPrefilter(p Prefilter) Option {
	return func(j *Judge) { j.prefilter = p }
}

func New(opts ...Option) *Judge {
	j := &Judge{
		strategies:    map[Method]Strategy{},
		defaultMethod: MethodModel,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Verify grades code against cases. It only returns an error for a method
// that is unknown or not configured; every grading fault becomes a failing
// Verdict.
func (j *Judge) Verify(ctx context.Context, challenge models.Challenge, code string, cases []models.TestCase, method Method) (models.Verdict, error) {
	log := logger.FromContext(ctx).WithPrefix("judge").WithField("challenge_id", challenge.ID)

	if method == "" {
		method = j.defaultMethod
	}
	strategy, ok := j.strategies[method]
	if !ok {
		return models.Verdict{}, errors.NewValidationError("method", "unsupported verification method "+string(method))
	}

	if ok, reason := j.prefilter.Check(code); !ok {
		log.Info("submission rejected by prefilter: %s", reason)
		return models.FailedVerdict(cases, IncompleteFeedback, IncompleteOutput), nil
	}

	verdict, err := strategy.Grade(ctx, Task{Challenge: challenge, Code: code, Cases: cases})
	if err != nil {
		log.Warn("%s grading failed: %v", method, err)
		return fallbackVerdict(cases, err), nil
	}
	if len(cases) == 0 {
		verdict.Correct = false
	}
	log.Info("%s grading finished: correct=%t passed=%d/%d", method, verdict.Correct, verdict.PassedCount(), len(cases))
	return verdict, nil
}

func fallbackVerdict(cases []models.TestCase, err error) models.Verdict {
	reason := "AI verification error: " + err.Error()
	var gradingErr *GradingError
	if stderrors.As(err, &gradingErr) {
		reason = gradingErr.Reason()
	}
	return models.FailedVerdict(cases, "Verification failed: "+reason, VerificationErrorOutput)
}
