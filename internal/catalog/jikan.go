// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/animetrack/internal/platform/constants"
	"github.com/taibuivan/animetrack/pkg/slice"
)

const (
	requestTimeout = 10 * time.Second
	userAgent      = "AnimeTrack/1.0"
	maxErrorBody   = 512
)

// ErrNotFound is returned when Jikan has no anime for a MAL id.
var ErrNotFound = errors.New("catalog: anime not found")

// JikanClient queries the Jikan v4 REST API.
type JikanClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewJikanClient creates a client for baseURL. A nil httpClient uses a
// dedicated client with a request timeout.
func NewJikanClient(baseURL string, httpClient *http.Client) *JikanClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &JikanClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(constants.CatalogRateLimitRPS), constants.CatalogRateLimitBurst),
	}
}

// # Wire Format

type jikanImage struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type jikanGenre struct {
	Name string `json:"name"`
}

type jikanImages struct {
	JPG jikanImage `json:"jpg"`
}

type jikanAnime struct {
	MalID        int          `json:"mal_id"`
	Title        string       `json:"title"`
	TitleEnglish string       `json:"title_english"`
	Episodes     *int         `json:"episodes"`
	Score        *float64     `json:"score"`
	Synopsis     string       `json:"synopsis"`
	Images       jikanImages  `json:"images"`
	Genres       []jikanGenre `json:"genres"`
}

type jikanSearchResponse struct {
	Data []jikanAnime `json:"data"`
}

type jikanAnimeResponse struct {
	Data jikanAnime `json:"data"`
}

// # Queries

// Search lists anime matching query, most popular first.
func (client *JikanClient) Search(context context.Context, query string, limit int) ([]Prefill, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order_by", "popularity")
	params.Set("sort", "asc")

	var response jikanSearchResponse
	if err := client.get(context, "/anime?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("jikan search: %w", err)
	}

	return slice.Map(response.Data, toPrefill), nil
}

// Anime fetches a single anime by MyAnimeList id.
func (client *JikanClient) Anime(context context.Context, malID int) (*Prefill, error) {
	var response jikanAnimeResponse
	if err := client.get(context, "/anime/"+strconv.Itoa(malID), &response); err != nil {
		return nil, fmt.Errorf("jikan anime %d: %w", malID, err)
	}

	prefill := toPrefill(response.Data)
	return &prefill, nil
}

func (client *JikanClient) get(context context.Context, path string, target any) error {
	if err := client.rateLimiter.Wait(context); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	request, err := http.NewRequestWithContext(context, http.MethodGet, client.baseURL+path, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case response.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return fmt.Errorf("HTTP %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// toPrefill maps a Jikan record onto the entry form. Jikan has no season
// count, so every prefill is a single season.
func toPrefill(anime jikanAnime) Prefill {
	title := anime.Title
	if title == "" {
		title = anime.TitleEnglish
	}

	cover := anime.Images.JPG.LargeImageURL
	if cover == "" {
		cover = anime.Images.JPG.ImageURL
	}

	episodes := anime.Episodes
	if episodes != nil && *episodes <= 0 {
		episodes = nil
	}

	genres := slice.Map(anime.Genres, func(genre jikanGenre) string { return genre.Name })
	if genres == nil {
		genres = []string{}
	}

	return Prefill{
		MalID:         anime.MalID,
		Title:         title,
		CoverImage:    cover,
		TotalEpisodes: episodes,
		TotalSeasons:  1,
		Rating:        anime.Score,
		Genres:        genres,
		Synopsis:      anime.Synopsis,
	}
}
