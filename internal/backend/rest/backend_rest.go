// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/content"
)

const (
	apiPrefix      = "/rest/v1"
	defaultTimeout = 15 * time.Second
)

// BackendRest reads and writes content through a hosted PostgREST API, such
// as the one Supabase puts in front of its Postgres database.
type BackendRest struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// BackendOption configures a BackendRest.
type BackendOption func(*BackendRest) error

// FromCommand takes the base URL and API key from --url and --api-key. Empty
// flags fall back to SUPABASE_URL and SUPABASE_ANON_KEY.
func FromCommand(cmd *cli.Command) BackendOption {
	return func(be *BackendRest) error {
		if cmd == nil {
			return nil
		}
		if u := cmd.String("url"); u != "" {
			be.BaseURL = u
		}
		if k := cmd.String("api-key"); k != "" {
			be.APIKey = k
		}
		if t := cmd.Duration("timeout"); t > 0 {
			be.Client.Timeout = t
		}
		return nil
	}
}

func WithBaseURL(u string) BackendOption {
	return func(be *BackendRest) error {
		be.BaseURL = u
		return nil
	}
}

func WithAPIKey(k string) BackendOption {
	return func(be *BackendRest) error {
		be.APIKey = k
		return nil
	}
}

func WithHTTPClient(c *http.Client) BackendOption {
	return func(be *BackendRest) error {
		if c != nil {
			be.Client = c
		}
		return nil
	}
}

// NewBackendRest applies opts over the SUPABASE_URL / SUPABASE_ANON_KEY
// environment and validates the result.
func NewBackendRest(ctx context.Context, opts ...BackendOption) (*BackendRest, error) {
	be := &BackendRest{
		BaseURL: os.Getenv("SUPABASE_URL"),
		APIKey:  os.Getenv("SUPABASE_ANON_KEY"),
		Client:  &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		if err := opt(be); err != nil {
			return nil, err
		}
	}

	be.BaseURL = strings.TrimRight(be.BaseURL, "/")
	if be.BaseURL == "" {
		return nil, fmt.Errorf("set --url or SUPABASE_URL: %w", ErrBaseURLNotSet)
	}
	if _, err := url.ParseRequestURI(be.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", be.BaseURL, err)
	}
	if be.APIKey == "" {
		return nil, fmt.Errorf("set --api-key or SUPABASE_ANON_KEY: %w", ErrAPIKeyNotSet)
	}

	log.Debugf("rest backend: %s", be.BaseURL)
	return be, nil
}

func (be *BackendRest) host() string {
	if u, err := url.Parse(be.BaseURL); err == nil {
		return u.Host
	}
	return be.BaseURL
}

func (be *BackendRest) Articles(ctx context.Context) ([]*content.Article, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("published", "eq.true")
	q.Set("order", "published_at.desc")

	doc, err := Hitter(ctx, be, http.MethodGet, apiPrefix+"/articles", q, nil)
	if err != nil {
		return nil, Friendly(err, ErrorContext{Host: be.host(), Operation: "list", Resource: "articles"})
	}

	var articles []*content.Article
	if err := json.Unmarshal(doc.Bytes(), &articles); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}
	return articles, nil
}

// ArticleStats returns zero counters when the article has no stats row yet.
func (be *BackendRest) ArticleStats(ctx context.Context, articleID string) (*content.ArticleStats, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("article_id", "eq."+articleID)

	doc, err := Hitter(ctx, be, http.MethodGet, apiPrefix+"/article_stats", q, nil)
	if err != nil {
		return nil, Friendly(err, ErrorContext{Host: be.host(), Operation: "get", Resource: "stats", ID: articleID})
	}

	stats := &content.ArticleStats{ArticleID: articleID}
	row := gjson.GetBytes(doc.Bytes(), "0")
	if !row.Exists() {
		log.Debugf("no stats row for %s", articleID)
		return stats, nil
	}
	if err := json.Unmarshal([]byte(row.Raw), stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

func (be *BackendRest) Comments(ctx context.Context, articleID string) ([]*content.Comment, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("article_id", "eq."+articleID)
	q.Set("order", "created_at.asc")

	doc, err := Hitter(ctx, be, http.MethodGet, apiPrefix+"/comments", q, nil)
	if err != nil {
		return nil, Friendly(err, ErrorContext{Host: be.host(), Operation: "list", Resource: "comments", ID: articleID})
	}

	comments := []*content.Comment{}
	if err := json.Unmarshal(doc.Bytes(), &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (be *BackendRest) PostComment(ctx context.Context, articleID string, c content.NewComment) (*content.Comment, error) {
	body, err := json.Marshal(map[string]string{
		"article_id":  articleID,
		"author_name": c.Author,
		"content":     c.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode comment: %w", err)
	}

	doc, err := Hitter(ctx, be, http.MethodPost, apiPrefix+"/comments", nil, body)
	if err != nil {
		return nil, Friendly(err, ErrorContext{Host: be.host(), Operation: "post", Resource: "comment", ID: articleID})
	}

	row := gjson.GetBytes(doc.Bytes(), "0")
	if !row.Exists() {
		return nil, fmt.Errorf("post comment: empty representation from %s", be.host())
	}

	var created content.Comment
	if err := json.Unmarshal([]byte(row.Raw), &created); err != nil {
		return nil, fmt.Errorf("failed to decode comment: %w", err)
	}
	return &created, nil
}

func (be *BackendRest) String() string {
	return "backend-rest " + be.BaseURL
}

func (be *BackendRest) Type() string {
	return "rest"
}
