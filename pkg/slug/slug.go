// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug derives ASCII URL slugs from arbitrary Unicode names, such as
// the catalog category "Cà phê đá" becoming "ca-phe-da".
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug From returns.
const MaxLength = 100

var (
	// nonAlphanumeric matches any run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

	// foldable maps letters that NFD does not decompose into a base letter.
	foldable = strings.NewReplacer("đ", "d", "Đ", "d", "ø", "o", "Ø", "o", "ß", "ss", "æ", "ae", "Æ", "ae", "ł", "l", "Ł", "l")
)

// From converts s into a lowercase slug of at most [MaxLength] bytes.
//
// Accents are stripped after NFD decomposition, every other run of
// non-alphanumeric characters becomes one hyphen, and an over-long result is
// cut at the last hyphen that fits. The result is empty when s contains no
// usable characters.
func From(s string) string {
	stripped, _, _ := transform.String(transform.Chain(norm.NFD, transform.RemoveFunc(isMn)), foldable.Replace(s))

	result := nonAlphanumeric.ReplaceAllString(strings.ToLower(stripped), "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = result[:MaxLength]
		if cut := strings.LastIndexByte(result, '-'); cut > 0 {
			result = result[:cut]
		}
	}
	return result
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
