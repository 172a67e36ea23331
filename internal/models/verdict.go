package models

// Verdict is the outcome of grading one submission.
type Verdict struct {
	Correct     bool         `json:"correct"`
	Feedback    string       `json:"feedback"`
	TestResults []TestResult `json:"test_results"`
}

type TestResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	Error          string `json:"error,omitempty"`
	Pass           bool   `json:"pass"`
}

// FailedVerdict marks every case as failed with the same actual output.
func FailedVerdict(cases []TestCase, feedback, actual string) Verdict {
	results := make([]TestResult, len(cases))
	for i, tc := range cases {
		results[i] = TestResult{
			Input:          tc.Input,
			ExpectedOutput: tc.Output,
			ActualOutput:   actual,
			Pass:           false,
		}
	}
	return Verdict{
		Correct:     false,
		Feedback:    feedback,
		TestResults: results,
	}
}

// PassedCount returns how many cases passed.
func (v Verdict) PassedCount() int {
	n := 0
	for _, r := range v.TestResults {
		if r.Pass {
			n++
		}
	}
	return n
}

// VerifyResult combines a verdict with the progression it produced. Progress
// is nil when nothing was awarded.
type VerifyResult struct {
	Verdict         Verdict                 `json:"verdict"`
	Progress        *UserProgress           `json:"progress,omitempty"`
	NewAchievements []AchievementDefinition `json:"new_achievements"`
	XPEarned        int                     `json:"xp_earned"`
}
