// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pagination carries page and limit between the library list endpoint
and its clients.

The server reads them with [FromQuery] and answers with a [Meta] block; the
API client writes them with [Params.Encode] and reads the same [Meta] back.
Pages are 1-indexed.
*/
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200

	keyPage  = "page"
	keyLimit = "limit"
)

// Params selects one page.
type Params struct {
	Page  int
	Limit int
}

// FromQuery reads "page" and "limit". A missing or unparsable value takes
// its default, a limit above [MaxLimit] is capped and a page below 1 is 1.
func FromQuery(values url.Values) Params {
	params := Params{
		Page:  intOr(values.Get(keyPage), 1),
		Limit: intOr(values.Get(keyLimit), DefaultLimit),
	}

	params.Page = max(params.Page, 1)
	switch {
	case params.Limit < 1:
		params.Limit = DefaultLimit
	case params.Limit > MaxLimit:
		params.Limit = MaxLimit
	}
	return params
}

// Encode writes the set fields into values. Zero fields are left to the
// server's defaults.
func (p Params) Encode(values url.Values) {
	if p.Page > 0 {
		values.Set(keyPage, strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		values.Set(keyLimit, strconv.Itoa(p.Limit))
	}
}

// Offset is the number of rows before the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes the returned page within the whole result.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta describes the page p of a result with total rows.
func NewMeta(p Params, total int) Meta {
	meta := Meta{Page: p.Page, Limit: p.Limit, Total: total}
	if p.Limit > 0 {
		meta.TotalPages = (total + p.Limit - 1) / p.Limit
	}
	return meta
}

// HasNext reports whether a page follows this one.
func (m Meta) HasNext() bool {
	return m.Page < m.TotalPages
}

func intOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
