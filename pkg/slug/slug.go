// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug turns arbitrary Unicode titles into ASCII keys.
//
// # Usage
//
// A user tracks each title at most once. "Shingeki no Kyojin", "shingeki  no
// kyojin!" and "Shingéki no Kyojin" all produce the same key, which is what
// the (owner, title_key) uniqueness constraint is enforced on.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)

	folder = cases.Fold()
)

// From converts an arbitrary Unicode string into a hyphenated key.
//
// # Transformation Pipeline
//
//  1. NFD normalization and removal of combining marks (é → e).
//  2. Unicode case folding.
//  3. Every run of non letters/digits becomes a single hyphen.
//  4. Leading and trailing hyphens are trimmed.
//
// Non-Latin scripts are kept as-is so that titles written in kanji still
// produce a non-empty key.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = folder.String(result)

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
