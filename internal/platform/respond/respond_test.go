// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/internal/platform/respond"
)

/*
TestError_AppError renders the error envelope, including recovery metadata.
*/
func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPatch, "/api/v1/entries/x/progress", nil)

	respond.Error(recorder, request, apperr.StatusSyncFailed(map[string]int{"current_episode": 3}, errors.New("boom")))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeStatusSyncFailed, body.Code)
	assert.NotContains(t, recorder.Body.String(), "boom")
	assert.Contains(t, body.Meta, apperr.MetaEntry)
}

/*
TestError_PlainError hides unexpected errors behind INTERNAL_ERROR.
*/
func TestError_PlainError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("select * from secret"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "secret")
	assert.Contains(t, recorder.Body.String(), apperr.CodeInternal)
}

func TestOK(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]int{"total": 2})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"total":2}}`, recorder.Body.String())
}
