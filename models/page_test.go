package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  Page
		total int64
		want  Pagination
	}{
		{
			name:  "first page with more",
			page:  Page{Skip: 0, Limit: 10},
			total: 25,
			want:  Pagination{Skip: 0, Limit: 10, Total: 25, HasNext: true, NextSkip: 10},
		},
		{
			name:  "middle page",
			page:  Page{Skip: 10, Limit: 10},
			total: 25,
			want:  Pagination{Skip: 10, Limit: 10, Total: 25, HasNext: true, HasPrev: true, NextSkip: 20},
		},
		{
			name:  "last page",
			page:  Page{Skip: 20, Limit: 10},
			total: 25,
			want:  Pagination{Skip: 20, Limit: 10, Total: 25, HasPrev: true, NextSkip: 30, PrevSkip: 10},
		},
		{
			name:  "exact fit",
			page:  Page{Skip: 0, Limit: 5},
			total: 5,
			want:  Pagination{Skip: 0, Limit: 5, Total: 5, NextSkip: 5},
		},
		{
			name:  "prev clamps at zero",
			page:  Page{Skip: 3, Limit: 10},
			total: 4,
			want:  Pagination{Skip: 3, Limit: 10, Total: 4, HasPrev: true, NextSkip: 13},
		},
		{
			name:  "skip near max int",
			page:  Page{Skip: math.MaxInt - 5, Limit: 10},
			total: 0,
			want:  Pagination{Skip: math.MaxInt - 5, Limit: 10, HasPrev: true, NextSkip: math.MaxInt, PrevSkip: math.MaxInt - 15},
		},
		{
			name:  "empty",
			page:  Page{Skip: 0, Limit: 10},
			total: 0,
			want:  Pagination{Skip: 0, Limit: 10, NextSkip: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.page, tt.total))
		})
	}
}

func TestNewPaginated_NilItems(t *testing.T) {
	p := NewPaginated[string](nil, Page{Limit: 10}, 0)

	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext)
}

func TestUser_IsFollowing(t *testing.T) {
	a, b := &User{}, &User{}
	a.ID[11], b.ID[11] = 1, 2
	a.Following = append(a.Following, b.ID)

	assert.True(t, a.IsFollowing(b.ID))
	assert.False(t, b.IsFollowing(a.ID))
}
