// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/taibuivan/animetrack/internal/billing"
	"github.com/taibuivan/animetrack/internal/catalog"
	"github.com/taibuivan/animetrack/internal/library/entry"
	"github.com/taibuivan/animetrack/internal/users/account"
	"github.com/taibuivan/animetrack/pkg/pagination"
	"github.com/taibuivan/animetrack/pkg/watchstatus"
)

// # Accounts

// Setup registers or recovers the account for this device.
func (c *Client) Setup(context context.Context, username, deviceSecret string) (*account.Session, error) {
	var session account.Session
	input := account.SetupInput{Username: username, DeviceSecret: deviceSecret}
	if _, err := c.do(context, http.MethodPost, "/users/setup", nil, input, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Me returns the authenticated account.
func (c *Client) Me(context context.Context) (*account.User, error) {
	var user account.User
	if _, err := c.do(context, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Themes lists the theme catalog.
func (c *Client) Themes(context context.Context) ([]account.Theme, error) {
	var themes []account.Theme
	if _, err := c.do(context, http.MethodGet, "/themes", nil, nil, &themes); err != nil {
		return nil, err
	}
	return themes, nil
}

// SelectTheme changes the active theme.
func (c *Client) SelectTheme(context context.Context, key string) (*account.User, error) {
	var user account.User
	body := map[string]string{"theme": key}
	if _, err := c.do(context, http.MethodPut, "/users/me/theme", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// # Library

// ListOptions filters [Client.ListEntries].
type ListOptions struct {
	Statuses []watchstatus.Status
	Favorite *bool
	Page     int
	Limit    int
}

func (options ListOptions) query() url.Values {
	query := url.Values{}
	if len(options.Statuses) > 0 {
		values := make([]string, len(options.Statuses))
		for i, status := range options.Statuses {
			values[i] = string(status)
		}
		query.Set("status", strings.Join(values, ","))
	}
	if options.Favorite != nil {
		query.Set("favorite", strconv.FormatBool(*options.Favorite))
	}
	pagination.Params{Page: options.Page, Limit: options.Limit}.Encode(query)
	return query
}

// ListEntries returns one page of the library.
func (c *Client) ListEntries(context context.Context, options ListOptions) ([]*entry.Entry, pagination.Meta, error) {
	var entries []*entry.Entry
	meta, err := c.do(context, http.MethodGet, "/entries", options.query(), nil, &entries)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	if meta == nil {
		return entries, pagination.Meta{}, nil
	}
	return entries, *meta, nil
}

// SearchEntries finds library entries by title.
func (c *Client) SearchEntries(context context.Context, term string) ([]*entry.Entry, error) {
	var entries []*entry.Entry
	if _, err := c.do(context, http.MethodGet, "/entries/search", url.Values{"q": {term}}, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateEntry adds a title to the library.
func (c *Client) CreateEntry(context context.Context, draft entry.Draft) (*entry.Entry, error) {
	return c.entryCall(context, http.MethodPost, "/entries", draft)
}

// GetEntry fetches one entry.
func (c *Client) GetEntry(context context.Context, id string) (*entry.Entry, error) {
	return c.entryCall(context, http.MethodGet, "/entries/"+url.PathEscape(id), nil)
}

// UpdateEntry applies a field edit.
func (c *Client) UpdateEntry(context context.Context, id string, patch entry.Patch) (*entry.Entry, error) {
	return c.entryCall(context, http.MethodPut, "/entries/"+url.PathEscape(id), patch)
}

// DeleteEntry removes an entry.
func (c *Client) DeleteEntry(context context.Context, id string) error {
	_, err := c.do(context, http.MethodDelete, "/entries/"+url.PathEscape(id), nil, nil, nil)
	return err
}

// Stats summarises the library.
func (c *Client) Stats(context context.Context) (*entry.Stats, error) {
	var stats entry.Stats
	if _, err := c.do(context, http.MethodGet, "/entries/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// # Progress

/*
ApplyProgress sets the watched episode count.

Returns:
  - error: an [*APIError]; use [IsStatusSyncFailed] to recover the committed entry
*/
func (c *Client) ApplyProgress(context context.Context, id string, episode int) (*entry.Entry, error) {
	body := map[string]int{"current_episode": episode}
	return c.entryCall(context, http.MethodPatch, "/entries/"+url.PathEscape(id)+"/progress", body)
}

// SyncStatus retries the status write after STATUS_SYNC_FAILED.
func (c *Client) SyncStatus(context context.Context, id string) (*entry.Entry, error) {
	return c.entryCall(context, http.MethodPost, "/entries/"+url.PathEscape(id)+"/progress/sync", nil)
}

// QuickAction applies pause, drop, favorite or unfavorite.
func (c *Client) QuickAction(context context.Context, id string, action entry.Action) (*entry.Entry, error) {
	path := "/entries/" + url.PathEscape(id) + "/actions/" + url.PathEscape(string(action))
	return c.entryCall(context, http.MethodPost, path, nil)
}

func (c *Client) entryCall(context context.Context, method, path string, body any) (*entry.Entry, error) {
	var result entry.Entry
	if _, err := c.do(context, method, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// # Catalog and Billing

// CatalogSearch looks titles up on the public catalog for prefilling.
func (c *Client) CatalogSearch(context context.Context, term string) ([]catalog.Prefill, error) {
	var results []catalog.Prefill
	if _, err := c.do(context, http.MethodGet, "/catalog/search", url.Values{"q": {term}}, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CatalogAnime fetches one catalog title by MyAnimeList id.
func (c *Client) CatalogAnime(context context.Context, malID int) (*catalog.Prefill, error) {
	var prefill catalog.Prefill
	if _, err := c.do(context, http.MethodGet, "/catalog/anime/"+strconv.Itoa(malID), nil, nil, &prefill); err != nil {
		return nil, err
	}
	return &prefill, nil
}

// CheckoutPremium opens a checkout session for the premium themes.
func (c *Client) CheckoutPremium(context context.Context) (*billing.CheckoutSession, error) {
	var session billing.CheckoutSession
	if _, err := c.do(context, http.MethodPost, "/billing/checkout", nil, nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
