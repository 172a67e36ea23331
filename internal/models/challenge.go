package models

import (
	"bytes"
	"encoding/json"
	"time"
)

type Challenge struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	InputFormat  string     `json:"input_format"`
	OutputFormat string     `json:"output_format"`
	Difficulty   string     `json:"difficulty"`
	Topic        string     `json:"topic"`
	Language     string     `json:"language"`
	Template     string     `json:"template"`
	Examples     []TestCase `json:"examples"`
	XPReward     int        `json:"xp_reward"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TestCase is one example input with its expected output. Both sides are kept
// in string form; see UnmarshalJSON.
type TestCase struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// UnmarshalJSON accepts any JSON value for input and output. Strings are
// taken verbatim, every other value is kept as its compact JSON text.
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	var raw struct {
		Input  json.RawMessage `json:"input"`
		Output json.RawMessage `json:"output"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in, err := stringForm(raw.Input)
	if err != nil {
		return err
	}
	out, err := stringForm(raw.Output)
	if err != nil {
		return err
	}
	tc.Input, tc.Output = in, out
	return nil
}

func stringForm(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Submission is one user's attempt at a challenge. It lives for a single
// verification call.
type Submission struct {
	ChallengeID string `json:"challenge_id"`
	UserID      string `json:"user_id"`
	Code        string `json:"code"`
	Method      string `json:"method"`
}

// ChallengeFilter narrows a challenge listing. Zero values mean "any".
type ChallengeFilter struct {
	Topic      string
	Difficulty string
	Language   string
	Limit      int
	Offset     int
}
