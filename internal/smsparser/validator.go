// Package smsparser turns mobile-money confirmation messages into transaction
// records. Every function in this package is pure and safe for concurrent use.
package smsparser

import "regexp"

// leadingIDPattern matches the transaction identifier slot at the start of a
// confirmation message: an alphanumeric run followed by whitespace.
var leadingIDPattern = regexp.MustCompile(`^([A-Za-z0-9]+)\s`)

// Validate reports whether raw looks like a confirmation message at all.
// It is a cheap filter; most non-transactional SMS content fails here.
func Validate(raw string) bool {
	return leadingIDPattern.MatchString(raw)
}

// ExtractIdentifier returns the leading transaction identifier.
func ExtractIdentifier(raw string) (string, bool) {
	m := leadingIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}
