// Package bingo maps called numbers to their 75-ball B/I/N/G/O labels.
package bingo

import (
	"strconv"
	"strings"
)

// Letters of the five 15-number columns, in order.
const Letters = "BINGO"

const (
	MinNumber = 1
	MaxNumber = 75
	bandSize  = 15
)

// Letter returns the column letter for n, or false when n is not a valid call.
func Letter(n int) (string, bool) {
	if n < MinNumber || n > MaxNumber {
		return "", false
	}
	i := (n - 1) / bandSize
	return Letters[i : i+1], true
}

// Format prefixes a digit string with its column letter ("16" -> "I16").
// Input that is not an integer, or is outside 1..75, is returned unchanged.
func Format(s string) string {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	l, ok := Letter(n)
	if !ok {
		return s
	}
	return l + strconv.Itoa(n)
}

// Parse splits a formatted label ("N42") into its letter and number.
// It reports false for anything Format would not have produced.
func Parse(label string) (string, int, bool) {
	if len(label) < 2 {
		return "", 0, false
	}
	n, err := strconv.Atoi(label[1:])
	if err != nil || strconv.Itoa(n) != label[1:] {
		return "", 0, false
	}
	l, ok := Letter(n)
	if !ok || l != label[:1] {
		return "", 0, false
	}
	return l, n, true
}
