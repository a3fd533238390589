// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/validate"
	"github.com/taibuivan/animetrack/pkg/pointer"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Frieren", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, apperr.CodeValidation, ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

func TestValidator_Numbers(t *testing.T) {
	tests := []struct {
		name     string
		run      func(v *validate.Validator)
		hasError bool
	}{
		{"range_inside", func(v *validate.Validator) { v.Range("rating", 7, 1, 10) }, false},
		{"range_below", func(v *validate.Validator) { v.Range("rating", 0, 1, 10) }, true},
		{"range_above", func(v *validate.Validator) { v.Range("rating", 11, 1, 10) }, true},
		{"min_ok", func(v *validate.Validator) { v.Min("current_season", 1, 1) }, false},
		{"min_fail", func(v *validate.Validator) { v.Min("current_season", 0, 1) }, true},
		{"max_ok", func(v *validate.Validator) { v.Max("current_episode", 12, 12) }, false},
		{"max_fail", func(v *validate.Validator) { v.Max("current_episode", 13, 12) }, true},
		{"optional_nil", func(v *validate.Validator) { v.OptionalRange("rating", nil, 1, 10) }, false},
		{"optional_set_fail", func(v *validate.Validator) { v.OptionalRange("rating", pointer.To(42), 1, 10) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.run(v)
			assert.Equal(t, tt.hasError, v.HasErrors())
		})
	}
}

func TestValidator_Strings(t *testing.T) {
	tests := []struct {
		name     string
		run      func(v *validate.Validator)
		hasError bool
	}{
		{"url_empty_allowed", func(v *validate.Validator) { v.HTTPURL("cover_image", "") }, false},
		{"url_https", func(v *validate.Validator) { v.HTTPURL("cover_image", "https://cdn.myanimelist.net/a.jpg") }, false},
		{"url_relative", func(v *validate.Validator) { v.HTTPURL("cover_image", "/a.jpg") }, true},
		{"url_ftp", func(v *validate.Validator) { v.HTTPURL("cover_image", "ftp://host/a.jpg") }, true},
		{"uuid_ok", func(v *validate.Validator) { v.UUID("id", "0190a7c4-0c2e-7a52-8d3f-6b1e2f7c9a10") }, false},
		{"uuid_bad", func(v *validate.Validator) { v.UUID("id", "not-a-uuid") }, true},
		{"one_of_ok", func(v *validate.Validator) { v.OneOf("status", "watching", "to_watch", "watching") }, false},
		{"one_of_bad", func(v *validate.Validator) { v.OneOf("status", "paused", "to_watch", "watching") }, true},
		{"max_len_multibyte", func(v *validate.Validator) { v.MaxLen("title", "進撃の巨人", 5) }, false},
		{"min_len_fail", func(v *validate.Validator) { v.MinLen("username", "ab", 3) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			tt.run(v)
			assert.Equal(t, tt.hasError, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain collects every failure into one error.
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}
	err := v.Required("title", "").
		Range("rating", 12, 1, 10).
		Custom("total_episodes", true, "Must be positive").
		Err()

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 3)
	assert.Equal(t, 400, ae.HTTPStatus)
}
