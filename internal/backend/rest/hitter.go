// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// Hitter sends one request to the REST API and returns the body. Any non-2xx
// response becomes a *StatusError carrying the API's "message" (PostgREST) or
// "error" (sitectl serve) when it has one.
func Hitter(ctx context.Context, be *BackendRest, method, path string, query url.Values, body []byte) (bytes.Buffer, error) {
	u := be.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return bytes.Buffer{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", be.APIKey)
	req.Header.Set("Authorization", "Bearer "+be.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	log.WithFields(log.Fields{"method": method, "url": u}).Debug("rest request")

	resp, err := be.Client.Do(req)
	if err != nil {
		return bytes.Buffer{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return bytes.Buffer{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(doc.Bytes(), "message")
		if !msg.Exists() {
			msg = gjson.GetBytes(doc.Bytes(), "error")
		}
		return bytes.Buffer{}, &StatusError{
			Code:    resp.StatusCode,
			Method:  method,
			URL:     path,
			Message: msg.String(),
		}
	}

	return doc, nil
}
