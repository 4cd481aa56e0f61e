// Package palindrome finds the longest palindromic substring of a text.
package palindrome

import "strings"

// Longest returns the longest palindromic substring of text, compared
// case-insensitively and returned lowercased. Ties resolve to the
// earliest occurrence. An empty input yields an empty result.
func Longest(text string) string {
	runes := []rune(strings.ToLower(text))
	if len(runes) < 2 {
		return string(runes)
	}

	start, length := 0, 1
	for center := 0; center < len(runes); center++ {
		for _, width := range []int{0, 1} {
			lo, hi := center, center+width
			for lo >= 0 && hi < len(runes) && runes[lo] == runes[hi] {
				lo--
				hi++
			}
			if hi-lo-1 > length {
				start = lo + 1
				length = hi - lo - 1
			}
		}
	}
	return string(runes[start : start+length])
}
