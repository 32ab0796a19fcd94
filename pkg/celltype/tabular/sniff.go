package tabular

import (
	"bytes"
	"unicode/utf8"
)

// Sniff picks the delimiter among delims whose per-line count is most
// consistent across the first lines of sample. Lines are scored by how
// many share the most common non-zero count; ties go to the earlier
// candidate, and the first candidate wins when nothing occurs at all.
func Sniff(sample []byte, delims string) rune {
	if delims == "" {
		delims = DefaultDelimiters
	}
	first, _ := utf8.DecodeRuneInString(delims)

	truncated := len(sample) > sniffBytes
	if truncated {
		sample = sample[:sniffBytes]
	}
	lines := bytes.Split(sample, []byte("\n"))
	if truncated && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}

	best, bestScore := first, 0
	for _, d := range delims {
		score := consistency(lines, d)
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// consistency counts the lines sharing the modal non-zero count of d.
func consistency(lines [][]byte, d rune) int {
	freq := make(map[int]int)
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if n := countUnquoted(line, d); n > 0 {
			freq[n]++
		}
	}
	score := 0
	for _, c := range freq {
		if c > score {
			score = c
		}
	}
	return score
}

func countUnquoted(line []byte, d rune) int {
	n, quoted := 0, false
	for _, r := range string(line) {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}
	return n
}
