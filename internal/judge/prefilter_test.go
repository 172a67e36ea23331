package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const completeSolution = `def two_sum(nums, target):
    seen = {}
    for i, n in enumerate(nums):
        if target - n in seen:
            return [seen[target - n], i]
        seen[n] = i
    return []
`

func TestPrefilter(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		ok     bool
		reason string
	}{
		{"complete", completeSolution, true, ""},
		{"empty", "   \n\t", false, "empty"},
		{"marker", "def f(x):\n    # Your code here\n    return x\n\n\n\n", false, "placeholder marker"},
		{"marker any case", completeSolution + "# WRITE CODE HERE\n", false, "placeholder marker"},
		{"ends with pass", "def f(x):\n    a = 1\n    b = 2\n    c = 3\n    return a\n    pass\n", false, "ends with placeholder"},
		{"ends with ellipsis", "def f(x):\n    a = 1\n    b = 2\n    c = 3\n    return a\n    ...\n", false, "ends with placeholder"},
		{"no return", "def f(x):\n    a = 1\n    b = 2\n    c = 3\n    d = 4\n    print(a)\n", false, "no return"},
		{"returned is not return", "def f(x):\n    returned = 1\n    a = 2\n    b = 3\n    c = 4\n    print(returned)\n", false, "no return"},
		{"return only in a comment", "def f(x):\n    # return later\n    a = 1\n    b = 2\n    c = 3\n    d = 4\n    print(a)  # then return\n", false, "no return"},
		{"return only in a string", "def f(x):\n    a = 1\n    b = 2\n    c = 3\n    d = 4\n    print('return', \"yield\")\n", false, "no return"},
		{"too short", "def f(x):\n    return x\n", false, "too short"},
		{"comments do not count", "# one\n# two\n# three\ndef f(x):\n\n    return x\n", false, "too short"},
		{"generator", "def gen(n):\n    i = 0\n    while i < n:\n        yield i\n        i += 1\n", true, ""},
	}
	f := Prefilter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := f.Check(tt.code)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestPrefilter_MinLines(t *testing.T) {
	code := "def f(x):\n    return x\n"
	ok, _ := Prefilter{MinLines: 2}.Check(code)
	assert.True(t, ok)
}
