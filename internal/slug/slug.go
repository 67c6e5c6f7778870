// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns display names into fragments safe for object keys.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unsafeRun matches every run of characters outside [a-z0-9].
var unsafeRun = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lowercases s, strips accents from Latin letters and joins what
// is left of [a-z0-9] with single hyphens: "Crème Brûlée & Co." becomes
// "creme-brulee-co". A name with no such characters yields "".
func Generate(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	return strings.Trim(unsafeRun.ReplaceAllString(strings.ToLower(folded), "-"), "-")
}
