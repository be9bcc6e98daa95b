// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher produces and checks bcrypt password digests at a fixed cost.
type PasswordHasher struct {
	cost int

	decoyOnce sync.Once
	decoy     []byte
}

// NewPasswordHasher returns a hasher using cost, falling back to
// [bcrypt.DefaultCost] when cost is outside bcrypt's accepted range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash hashes a plain-text password using the bcrypt algorithm.
func (hasher *PasswordHasher) Hash(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify compares a plain-text password with its hashed version.
func (hasher *PasswordHasher) Verify(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// VerifyAbsent spends the same bcrypt work as Verify when there is no stored
// digest to compare against, so a missing account and a wrong password take
// the same time. It always reports false.
func (hasher *PasswordHasher) VerifyAbsent(plainTextPassword string) bool {
	hasher.decoyOnce.Do(func() {
		// Only over-long input can fail, and the literal is short.
		hasher.decoy, _ = bcrypt.GenerateFromPassword([]byte("cpos-absent-account"), hasher.cost)
	})
	_ = bcrypt.CompareHashAndPassword(hasher.decoy, []byte(plainTextPassword))
	return false
}
