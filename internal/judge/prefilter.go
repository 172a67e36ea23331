package judge

import (
	"regexp"
	"strings"
)

const (
	IncompleteFeedback = "Code is incomplete. Please implement a complete solution."
	IncompleteOutput   = "Code incomplete"

	defaultMinLines = 5
)

var (
	placeholderMarkers = []string{"your code here", "write code here"}
	placeholderLines   = map[string]bool{"pass": true, "...": true}
	returnsValue       = regexp.MustCompile(`\b(return|yield)\b`)
	stringLiteral      = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)
)

// Prefilter rejects submissions that are obviously unfinished before any
// sandbox or grader time is spent on them.
type Prefilter struct {
	// MinLines is the minimum number of non-blank, non-comment lines.
	MinLines int
}

// Check reports whether code looks complete; reason names the failed rule.
func (f Prefilter) Check(code string) (ok bool, reason string) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return false, "empty"
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return false, "placeholder marker"
		}
	}

	lines := meaningfulLines(trimmed)
	if len(lines) > 0 && placeholderLines[lines[len(lines)-1]] {
		return false, "ends with placeholder"
	}
	if !returnsValue.MatchString(codeOnly(lines)) {
		return false, "no return"
	}

	min := f.MinLines
	if min <= 0 {
		min = defaultMinLines
	}
	if len(lines) < min {
		return false, "too short"
	}
	return true, ""
}

func meaningfulLines(code string) []string {
	var out []string
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// codeOnly drops string literals and trailing # comments so neither can
// satisfy the return check.
func codeOnly(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = stringLiteral.ReplaceAllString(line, `""`)
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
