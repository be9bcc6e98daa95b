// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "slices"

// # Authenticated Principal

// Principal is the caller identity attached to a request after the access
// token has been verified. Roles and Permissions are the token's snapshot.
type Principal struct {
	ID          string   `json:"id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasAnyRole reports whether the principal holds at least one of allowed.
func (principal *Principal) HasAnyRole(allowed ...string) bool {
	for _, role := range allowed {
		if slices.Contains(principal.Roles, role) {
			return true
		}
	}
	return false
}

// HasPermission reports exact membership of name in the principal's permissions.
func (principal *Principal) HasPermission(name string) bool {
	return slices.Contains(principal.Permissions, name)
}
