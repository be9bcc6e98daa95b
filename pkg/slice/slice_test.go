// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/cpos/pkg/slice"
)

/*
TestUnique verifies duplicates are dropped in first-seen order.
*/
func TestUnique(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"no duplicates", []string{"b", "a"}, []string{"b", "a"}},
		{"first seen order", []string{"product.read", "category.read", "product.read", "rbac.manage.roles", "category.read"},
			[]string{"product.read", "category.read", "rbac.manage.roles"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slice.Unique(tt.input))
		})
	}
}

/*
TestUniqueBy keeps the first element per key.
*/
func TestUniqueBy(t *testing.T) {
	got := slice.UniqueBy([]string{"Widget", "widget", "Other"}, strings.ToLower)
	assert.Equal(t, []string{"Widget", "Other"}, got)
}

/*
TestMap verifies order is kept and nil stays nil.
*/
func TestMap(t *testing.T) {
	assert.Equal(t, []int{1, 2}, slice.Map([]string{"a", "bb"}, func(s string) int { return len(s) }))
	assert.Nil(t, slice.Map[string, int](nil, func(s string) int { return len(s) }))
}
