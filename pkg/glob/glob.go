// Package glob matches shell-style globs against scenario names.
package glob

import "strings"

// Glob matches input against pattern. The only wildcard is '*', which matches
// any run of characters, including an empty one. It returns true if there is a
// match.
func Glob(pattern, input string) bool {
	i, j := 0, 0
	// Position of the last '*' seen, and the input position it was tried at.
	star, mark := -1, 0
	for j < len(input) {
		switch {
		case i < len(pattern) && pattern[i] == '*':
			star = i
			mark = j
			i++
		case i < len(pattern) && pattern[i] == input[j]:
			i++
			j++
		case star >= 0:
			// Let the last '*' swallow one more character.
			mark++
			i = star + 1
			j = mark
		default:
			return false
		}
	}
	for i < len(pattern) && pattern[i] == '*' {
		i++
	}
	return i == len(pattern)
}

// Any reports whether input matches at least one of the comma-separated
// patterns in list. An empty list matches everything.
func Any(list, input string) bool {
	if list == "" {
		return true
	}
	for _, p := range strings.Split(list, ",") {
		if Glob(strings.TrimSpace(p), input) {
			return true
		}
	}
	return false
}
