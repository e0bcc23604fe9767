// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hopeline/sitectl/internal/content"
)

var (
	ErrBaseURLNotSet = errors.New("base URL is not set")
	ErrAPIKeyNotSet  = errors.New("API key is not set")
)

// StatusError is a non-2xx response from the REST API.
type StatusError struct {
	Code    int
	Method  string
	URL     string
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, msg)
}

// Unwrap maps well known statuses onto the content sentinels.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return content.ErrNotFound
	}
	return nil
}

// ErrorContext describes what was being attempted when a request failed.
type ErrorContext struct {
	Host      string
	Operation string
	Resource  string
	ID        string
	// Credential names what to check on a 401 or 403.
	Credential string
}

// Friendly rewrites common failures into messages that say what to check,
// keeping the original error in the chain.
func Friendly(err error, ec ErrorContext) error {
	if err == nil {
		return nil
	}

	target := ec.Resource
	if ec.ID != "" {
		target += " " + ec.ID
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			cred := ec.Credential
			if cred == "" {
				cred = "--api-key / SUPABASE_ANON_KEY"
			}
			return fmt.Errorf("%s %s on %s was refused; check %s: %w",
				ec.Operation, target, ec.Host, cred, err)
		case http.StatusNotFound:
			return fmt.Errorf("%s %s on %s: not found: %w", ec.Operation, target, ec.Host, err)
		}
		if se.Code >= 500 {
			return fmt.Errorf("%s %s on %s: server error, try again later: %w",
				ec.Operation, target, ec.Host, err)
		}
	}

	return fmt.Errorf("%s %s on %s: %w", ec.Operation, strings.TrimSpace(target), ec.Host, err)
}
