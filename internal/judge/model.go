package judge

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/codetrail/internal/logger"
	"github.com/vytor/codetrail/internal/models"
	"github.com/vytor/codetrail/internal/ollama"
)

type GradingErrorKind string

const (
	KindNoJSON        GradingErrorKind = "no_json"
	KindInvalidJSON   GradingErrorKind = "invalid_json"
	KindMissingFields GradingErrorKind = "missing_fields"
	KindCallFailed    GradingErrorKind = "call_failed"
	KindTimeout       GradingErrorKind = "timeout"
)

// GradingError describes why the model grader could not produce a verdict.
type GradingError struct {
	Kind GradingErrorKind
	Err  error
}

func (e *GradingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grading %s: %v", e.Kind, e.Err)
	}
	return "grading " + string(e.Kind)
}

func (e *GradingError) Unwrap() error { return e.Err }

// Reason is the user-facing description placed in fallback feedback.
func (e *GradingError) Reason() string {
	switch e.Kind {
	case KindNoJSON:
		return "No JSON found in AI response"
	case KindMissingFields:
		return "Invalid AI response structure"
	case KindInvalidJSON:
		return "JSON parsing error: " + errText(e.Err)
	case KindTimeout:
		return "AI verification error: grader timed out"
	default:
		return "AI verification error: " + errText(e.Err)
	}
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

const (
	graderSystemPrompt = "You are an expert programming evaluator. You analyze code and determine if it correctly solves programming problems. You are precise, thorough, and provide accurate assessments."
	defaultFeedback    = "Code verification completed."
)

// ModelStrategy asks an external language model to grade the submission.
type ModelStrategy struct {
	client  ollama.ClientInterface
	timeout time.Duration
}

func NewModelStrategy(client ollama.ClientInterface, timeout time.Duration) *ModelStrategy {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ModelStrategy{client: client, timeout: timeout}
}

func (s *ModelStrategy) Grade(ctx context.Context, task Task) (models.Verdict, error) {
	log := logger.FromContext(ctx).WithPrefix("judge-model")

	prompt, err := buildPrompt(task)
	if err != nil {
		return models.Verdict{}, &GradingError{Kind: KindCallFailed, Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := s.client.Chat(callCtx, []ollama.Message{
		{Role: "system", Content: graderSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			log.Warn("grader timed out after %v", s.timeout)
			return models.Verdict{}, &GradingError{Kind: KindTimeout, Err: err}
		}
		return models.Verdict{}, &GradingError{Kind: KindCallFailed, Err: err}
	}
	log.Debug("grader replied in %v", time.Since(start))

	return parseModelVerdict(reply, task.Cases)
}

func buildPrompt(task Task) (string, error) {
	cases := make([]map[string]string, len(task.Cases))
	for i, tc := range task.Cases {
		cases[i] = map[string]string{"input": tc.Input, "output": tc.Output}
	}
	casesJSON, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are an expert code evaluator. Carefully analyze the given code and test cases to determine if the code is correct.\n\n")
	fmt.Fprintf(&b, "PROBLEM DESCRIPTION:\n%s\n\n", task.Challenge.Description)
	if task.Challenge.InputFormat != "" {
		fmt.Fprintf(&b, "INPUT FORMAT:\n%s\n\n", task.Challenge.InputFormat)
	}
	if task.Challenge.OutputFormat != "" {
		fmt.Fprintf(&b, "OUTPUT FORMAT:\n%s\n\n", task.Challenge.OutputFormat)
	}
	fmt.Fprintf(&b, "USER CODE:\n%s\n\n", task.Code)
	fmt.Fprintf(&b, "TEST CASES:\n%s\n\n", casesJSON)
	b.WriteString(`INSTRUCTIONS:
1. Analyze the user's code for syntax errors, logic errors, and completeness
2. For each test case, determine what the code would output given the input
3. Compare the expected output with what the code would actually produce
4. If the code is incomplete, has errors, or won't produce the expected output, mark it as failed

RESPONSE FORMAT:
Return ONLY a valid JSON object with this exact structure:
{
    "correct": true/false,
    "feedback": "brief explanation of why the code passed or failed",
    "test_results": [
        {
            "input": "input value",
            "expected_output": "expected output",
            "actual_output": "what the code would produce",
            "pass": true/false
        }
    ]
}
`)
	return b.String(), nil
}

type modelResult struct {
	Input          json.RawMessage `json:"input"`
	ExpectedOutput json.RawMessage `json:"expected_output"`
	ActualOutput   json.RawMessage `json:"actual_output"`
	Pass           *bool           `json:"pass"`
}

type modelReply struct {
	Correct     *bool          `json:"correct"`
	Feedback    *string        `json:"feedback"`
	TestResults *[]modelResult `json:"test_results"`
}

// parseModelVerdict extracts the outermost {...} block of reply and aligns
// the model's per-case results with cases.
func parseModelVerdict(reply string, cases []models.TestCase) (models.Verdict, error) {
	obj, ok := ExtractJSONObject(reply)
	if !ok {
		return models.Verdict{}, &GradingError{Kind: KindNoJSON}
	}

	var parsed modelReply
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return models.Verdict{}, &GradingError{Kind: KindInvalidJSON, Err: err}
	}
	if parsed.Correct == nil || parsed.TestResults == nil {
		return models.Verdict{}, &GradingError{Kind: KindMissingFields}
	}

	v := models.Verdict{Feedback: defaultFeedback}
	if parsed.Feedback != nil && strings.TrimSpace(*parsed.Feedback) != "" {
		v.Feedback = *parsed.Feedback
	}

	got := *parsed.TestResults
	v.TestResults = make([]models.TestResult, len(cases))
	for i, tc := range cases {
		r := models.TestResult{Input: tc.Input, ExpectedOutput: tc.Output}
		if i < len(got) {
			r.ActualOutput = textOf(got[i].ActualOutput)
			r.Pass = got[i].Pass != nil && *got[i].Pass
		} else {
			r.ActualOutput = VerificationErrorOutput
		}
		v.TestResults[i] = r
	}
	v.Correct = *parsed.Correct && len(cases) > 0 && v.PassedCount() == len(cases)
	return v, nil
}

// ExtractJSONObject returns the text from the first '{' to the last '}' of a
// model reply, which is where chat models put their JSON among prose and
// code fences.
func ExtractJSONObject(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end < start {
		return "", false
	}
	return reply[start : end+1], true
}

// textOf renders a JSON value as text: strings verbatim, anything else compact.
func textOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) != nil {
		return string(raw)
	}
	return buf.String()
}
