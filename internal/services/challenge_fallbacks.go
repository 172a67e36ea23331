package services

import "github.com/vytor/codetrail/internal/models"

// Built-in challenges served when the model cannot produce one, keyed by
// topic then difficulty. Unknown topics use algorithms.
var fallbackChallenges = map[string]map[string]generatedChallenge{
	"algorithms": {
		"easy": {
			Title:        "Array Rotation",
			Description:  "Given an array of integers and a rotation count k, rotate the array to the right by k positions. For example, rotating [1, 2, 3, 4, 5] by 2 gives [4, 5, 1, 2, 3].",
			InputFormat:  "A list of integers and a non-negative integer k",
			OutputFormat: "The rotated list",
			Template:     "def rotate_array(arr, k):\n    \"\"\"Rotates the array to the right by k positions.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "[1, 2, 3, 4, 5], 2", Output: "[4, 5, 1, 2, 3]"},
				{Input: "[1, 2, 3], 1", Output: "[3, 1, 2]"},
			},
		},
		"medium": {
			Title:        "Binary Search Tree Validation",
			Description:  "Given a binary tree, determine whether it is a valid binary search tree: every node's left subtree holds only smaller values and its right subtree only larger ones.",
			InputFormat:  "The root of a binary tree",
			OutputFormat: "True or False",
			Template:     "def is_valid_bst(root):\n    \"\"\"Checks if the binary tree is a valid BST.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "TreeNode(2, TreeNode(1), TreeNode(3))", Output: "True"},
				{Input: "TreeNode(5, TreeNode(1), TreeNode(4, TreeNode(3), TreeNode(6)))", Output: "False"},
			},
		},
		"hard": {
			Title:        "Longest Increasing Subsequence",
			Description:  "Given an array of integers, find the length of the longest strictly increasing subsequence. A subsequence keeps the original order but may skip elements.",
			InputFormat:  "A list of integers",
			OutputFormat: "An integer",
			Template:     "def length_of_lis(nums):\n    \"\"\"Returns the length of the longest increasing subsequence.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "[10, 9, 2, 5, 3, 7, 101, 18]", Output: "4"},
				{Input: "[0, 1, 0, 3, 2, 3]", Output: "4"},
			},
		},
	},
	"strings": {
		"easy": {
			Title:        "String Compression",
			Description:  "Compress a string by replacing each run of a repeated character with the character followed by the run length. If the result is not shorter, return the original string.",
			InputFormat:  "A string of letters",
			OutputFormat: "The compressed string",
			Template:     "def compress_string(s):\n    \"\"\"Compresses a string by counting consecutive characters.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "aabcccccaaa", Output: "a2b1c5a3"},
				{Input: "abcd", Output: "abcd"},
			},
		},
		"medium": {
			Title:        "Longest Palindromic Substring",
			Description:  "Given a string, return its longest substring that reads the same backward as forward.",
			InputFormat:  "A string",
			OutputFormat: "The longest palindromic substring",
			Template:     "def longest_palindrome(s):\n    \"\"\"Returns the longest palindromic substring.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "babad", Output: "bab"},
				{Input: "cbbd", Output: "bb"},
			},
		},
		"hard": {
			Title:        "Regular Expression Matching",
			Description:  "Implement matching of a string against a pattern supporting '.' (any single character) and '*' (zero or more of the preceding element). The match must cover the whole string.",
			InputFormat:  "A string and a pattern",
			OutputFormat: "True or False",
			Template:     "def is_match(s, p):\n    \"\"\"Checks if string s matches pattern p.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "aa, a", Output: "False"},
				{Input: "aa, a*", Output: "True"},
			},
		},
	},
	"math": {
		"easy": {
			Title:        "Perfect Square Check",
			Description:  "Given a positive integer, determine whether it is the square of an integer.",
			InputFormat:  "A positive integer",
			OutputFormat: "True or False",
			Template:     "def is_perfect_square(num):\n    \"\"\"Checks if the number is a perfect square.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "16", Output: "True"},
				{Input: "14", Output: "False"},
			},
		},
		"medium": {
			Title:        "Integer to Roman",
			Description:  "Convert an integer between 1 and 3999 to a Roman numeral using the symbols I, V, X, L, C, D and M.",
			InputFormat:  "An integer",
			OutputFormat: "A Roman numeral",
			Template:     "def int_to_roman(num):\n    \"\"\"Converts an integer to Roman numeral.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "3", Output: "III"},
				{Input: "58", Output: "LVIII"},
			},
		},
		"hard": {
			Title:        "Trailing Zeroes in Factorial",
			Description:  "Given an integer n, return the number of trailing zeroes in n factorial without computing it.",
			InputFormat:  "A non-negative integer",
			OutputFormat: "An integer",
			Template:     "def trailing_zeroes(n):\n    \"\"\"Returns the number of trailing zeroes in n!.\"\"\"\n    # Your code here\n    pass",
			Examples: []models.TestCase{
				{Input: "3", Output: "0"},
				{Input: "5", Output: "1"},
			},
		},
	},
}

// fallbackChallenge returns a copy of the built-in challenge for topic and
// difficulty.
func fallbackChallenge(topic, difficulty string) *generatedChallenge {
	byDifficulty, ok := fallbackChallenges[topic]
	if !ok {
		byDifficulty = fallbackChallenges[defaultGenerateTopic]
	}
	c := byDifficulty[difficulty]
	c.Examples = append([]models.TestCase(nil), c.Examples...)
	return &c
}
