package services_test

import (
	"testing"

	"instaclone/models"
	"instaclone/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaging_Page(t *testing.T) {
	p := services.Paging{DefaultLimit: 10, MaxLimit: 100}

	got, err := p.Page("", "")
	require.NoError(t, err)
	assert.Equal(t, models.Page{Skip: 0, Limit: 10}, got)

	got, err = p.Page("20", "100")
	require.NoError(t, err)
	assert.Equal(t, models.Page{Skip: 20, Limit: 100}, got)

	got, err = p.Page("2147483647", "")
	require.NoError(t, err)
	assert.Equal(t, services.MaxSkip, got.Skip)

	for _, tc := range []struct{ skip, limit string }{
		{"-1", ""},
		{"abc", ""},
		{"", "0"},
		{"", "101"},
		{"", "ten"},
		{"2147483648", ""},
		{"9223372036854775802", "10"},
	} {
		_, err := p.Page(tc.skip, tc.limit)
		assert.ErrorIs(t, err, services.ErrValidation, "skip=%q limit=%q", tc.skip, tc.limit)
	}
}
