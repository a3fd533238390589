// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/pkg/pagination"
)

func TestFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{"defaults", "", 1, pagination.DefaultLimit, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"negative_page", "page=-2", 1, pagination.DefaultLimit, 0},
		{"zero_limit", "limit=0", 1, pagination.DefaultLimit, 0},
		{"limit_is_capped", "page=2&limit=5000", 2, pagination.MaxLimit, pagination.MaxLimit},
		{"garbage", "page=abc&limit=xyz", 1, pagination.DefaultLimit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			params := pagination.FromQuery(values)
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
			assert.Equal(t, tt.offset, params.Offset())
		})
	}
}

func TestEncode(t *testing.T) {
	values := url.Values{}
	pagination.Params{Page: 2, Limit: 25}.Encode(values)
	assert.Equal(t, "limit=25&page=2", values.Encode())
	assert.Equal(t, pagination.Params{Page: 2, Limit: 25}, pagination.FromQuery(values))

	empty := url.Values{}
	pagination.Params{}.Encode(empty)
	assert.Empty(t, empty)
}

func TestNewMeta(t *testing.T) {
	meta := pagination.NewMeta(pagination.Params{Page: 2, Limit: 10}, 21)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext())

	last := pagination.NewMeta(pagination.Params{Page: 3, Limit: 10}, 21)
	assert.False(t, last.HasNext())

	assert.Equal(t, 0, pagination.NewMeta(pagination.Params{Page: 1}, 5).TotalPages)
}
