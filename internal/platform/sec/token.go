// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken returns the hex SHA-256 digest of an opaque token.
//
// Refresh tokens are stored only as this digest. bcrypt is unsuitable here:
// it reads at most 72 bytes and signed tokens share a long common prefix.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CompareTokenHash reports whether token hashes to digest, in constant time.
func CompareTokenHash(token, digest string) bool {
	computed := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
