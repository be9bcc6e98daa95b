// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid issues the string identifiers used for every row and session.

Identifiers are UUIDv7, so they sort by creation time and keep B-tree
inserts append-only.
*/
package uuid

import "github.com/google/uuid"

// canonicalLength is the hyphenated 8-4-4-4-12 form.
const canonicalLength = 36

// New returns a UUIDv7 string. It panics only when the OS random source fails.
func New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Valid reports whether s is a UUID in canonical form. The urn and braced
// forms that uuid.Parse also accepts are rejected.
func Valid(s string) bool {
	return len(s) == canonicalLength && uuid.Validate(s) == nil
}
