// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-letta/letta"
	"github.com/go-letta/letta/auth"
)

// Option configures a [Client].
type Option func(*options) error

// options holds all configuration for a Client. It is populated once
// by [New] and never mutated afterwards; every component reads the
// same immutable value.
type options struct {
	baseURL    string
	httpClient *http.Client
	// streamClient issues streaming requests. It carries no overall
	// timeout, since a live stream legitimately outlives any
	// per-request deadline.
	streamClient *http.Client
	timeout      time.Duration
	userAgent    string

	creds       *auth.Credentials
	retryConfig *RetryConfig
	logger      *slog.Logger

	pageLimit int32
}

// defaultOptions returns the default client configuration.
func defaultOptions() *options {
	return &options{
		timeout:     60 * time.Second,
		userAgent:   "go-letta/" + letta.Version,
		creds:       auth.None(),
		retryConfig: DefaultRetryConfig(),
		logger:      slog.New(slog.DiscardHandler),
		pageLimit:   100,
	}
}

// WithBaseURL sets the service base URL. Required.
func WithBaseURL(url string) Option {
	return func(o *options) error {
		if url == "" {
			return &APIError{Kind: KindValidation, Message: "base URL cannot be empty"}
		}
		o.baseURL = strings.TrimSuffix(url, "/")
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client. The client's own Timeout
// applies unchanged; streaming responses hold a connection open for
// the lifetime of the stream.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return &APIError{Kind: KindValidation, Message: "HTTP client cannot be nil"}
		}
		o.httpClient = hc
		o.streamClient = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout used when no custom HTTP
// client is supplied.
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return &APIError{Kind: KindValidation, Message: "timeout must be positive"}
		}
		o.timeout = d
		return nil
	}
}

// WithCredentials sets the credentials attached to every request.
func WithCredentials(creds *auth.Credentials) Option {
	return func(o *options) error {
		if creds == nil {
			creds = auth.None()
		}
		o.creds = creds
		return nil
	}
}

// WithAPIKey is shorthand for WithCredentials(auth.APIKey(key)).
func WithAPIKey(key string) Option {
	return WithCredentials(auth.APIKey(key))
}

// WithRetryConfig sets the retry policy. A nil config disables
// retries entirely.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(o *options) error {
		o.retryConfig = cfg
		return nil
	}
}

// WithLogger sets the [*slog.Logger] for debug logging. The default
// discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &APIError{Kind: KindValidation, Message: "logger cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.userAgent = ua
		return nil
	}
}

// WithPageLimit sets the default page size for paginated list
// operations.
func WithPageLimit(limit int32) Option {
	return func(o *options) error {
		if limit <= 0 {
			return &APIError{Kind: KindValidation, Message: "page limit must be positive"}
		}
		o.pageLimit = limit
		return nil
	}
}
