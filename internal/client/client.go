// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package client is a typed Go client for the AnimeTrack REST API.

It decodes the standard response envelope and turns error envelopes into
[*APIError], keeping the machine-readable code so that callers can react to
NOT_FOUND or STATUS_SYNC_FAILED without parsing messages.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/internal/platform/apperr"
	"github.com/taibuivan/animetrack/pkg/pagination"
)

const (
	defaultTimeout = 15 * time.Second
	apiPrefix      = "/api/v1"
	maxResponse    = 4 << 20
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    []apperr.FieldError

	// Entry is the committed entry carried by STATUS_SYNC_FAILED.
	Entry *entry.Entry
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("animetrack api: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("animetrack api: %s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a NOT_FOUND response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == apperr.CodeNotFound
}

// IsStatusSyncFailed reports whether err is a STATUS_SYNC_FAILED response and
// returns the entry whose progress was committed.
func IsStatusSyncFailed(err error) (*entry.Entry, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == apperr.CodeStatusSyncFailed {
		return apiErr.Entry, true
	}
	return nil, false
}

// Client calls the AnimeTrack API. It is safe for concurrent use once
// configured.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API served at baseURL.
func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// # Transport

type successEnvelope struct {
	Data json.RawMessage  `json:"data"`
	Meta *pagination.Meta `json:"meta"`
}

type errorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details"`
	Meta    struct {
		Entry *entry.Entry `json:"entry"`
	} `json:"meta"`
}

// do sends one request and decodes data into target. It returns the
// pagination block when the response has one.
func (c *Client) do(context context.Context, method, path string, query url.Values, body, target any) (*pagination.Meta, error) {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(context, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, maxResponse))
	if err != nil {
		return nil, err
	}

	if response.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(response.StatusCode, raw)
	}

	if target == nil || len(raw) == 0 {
		return nil, nil
	}

	var envelope successEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("animetrack api: decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return nil, fmt.Errorf("animetrack api: decode data: %w", err)
	}
	return envelope.Meta, nil
}

func decodeError(statusCode int, raw []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(raw))}
	}
	return &APIError{
		StatusCode: statusCode,
		Code:       envelope.Code,
		Message:    envelope.Error,
		Details:    envelope.Details,
		Entry:      envelope.Meta.Entry,
	}
}
