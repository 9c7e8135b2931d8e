// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		want   *APIError
	}{
		{
			name:   "unauthorized",
			status: 401,
			body:   `{"detail": "Invalid API key"}`,
			want: &APIError{
				Kind:    KindAuth,
				Status:  401,
				Message: "Invalid API key",
			},
		},
		{
			name:   "forbidden",
			status: 403,
			body:   `{"detail": "Insufficient permissions"}`,
			want: &APIError{
				Kind:    KindForbidden,
				Status:  403,
				Message: "Insufficient permissions",
			},
		},
		{
			name:   "not found with resource and ID",
			status: 404,
			body:   `{"detail": "Agent with ID agent-123 not found"}`,
			want: &APIError{
				Kind:     KindNotFound,
				Status:   404,
				Message:  "Agent with ID agent-123 not found",
				Resource: ResourceRef{Type: "Agent", ID: "agent-123"},
			},
		},
		{
			name:   "not found with quoted identifier",
			status: 404,
			body:   `{"detail": "Tool 'calculator' not found"}`,
			want: &APIError{
				Kind:     KindNotFound,
				Status:   404,
				Message:  "Tool 'calculator' not found",
				Resource: ResourceRef{Type: "Tool", ID: "calculator"},
			},
		},
		{
			name:   "not found with colon-separated ID",
			status: 404,
			body:   `{"detail": "No source found with ID: source-456"}`,
			want: &APIError{
				Kind:     KindNotFound,
				Status:   404,
				Message:  "No source found with ID: source-456",
				Resource: ResourceRef{Type: "source", ID: "source-456"},
			},
		},
		{
			name:   "not found bare resource",
			status: 404,
			body:   `{"detail": "Agent not found"}`,
			want: &APIError{
				Kind:     KindNotFound,
				Status:   404,
				Message:  "Agent not found",
				Resource: ResourceRef{Type: "Agent"},
			},
		},
		{
			name:   "validation with detail list",
			status: 422,
			body:   `{"detail": [{"loc": ["body", "name"], "msg": "field required"}, {"loc": ["body", "model"], "msg": "unknown model"}]}`,
			want: &APIError{
				Kind:    KindValidation,
				Status:  422,
				Message: "field required; unknown model",
				Fields: map[string]string{
					"name":  "field required",
					"model": "unknown model",
				},
			},
		},
		{
			name:   "validation with string detail",
			status: 422,
			body:   `{"detail": "name must not be empty"}`,
			want: &APIError{
				Kind:    KindValidation,
				Status:  422,
				Message: "name must not be empty",
			},
		},
		{
			name:   "rate limit with header seconds",
			status: 429,
			header: http.Header{"Retry-After": []string{"5"}},
			body:   `{"detail": "Rate limit exceeded"}`,
			want: &APIError{
				Kind:       KindRateLimit,
				Status:     429,
				Message:    "Rate limit exceeded",
				RetryAfter: 5 * time.Second,
			},
		},
		{
			name:   "rate limit with body retry_after",
			status: 429,
			body:   `{"detail": "Rate limit exceeded", "retry_after": 2}`,
			want: &APIError{
				Kind:       KindRateLimit,
				Status:     429,
				Message:    "Rate limit exceeded",
				RetryAfter: 2 * time.Second,
			},
		},
		{
			name:   "request timeout",
			status: 408,
			body:   `{}`,
			want: &APIError{
				Kind:    KindTimeout,
				Status:  408,
				Message: "Request Timeout",
			},
		},
		{
			name:   "gateway timeout",
			status: 504,
			body:   ``,
			want: &APIError{
				Kind:    KindTimeout,
				Status:  504,
				Message: "Gateway Timeout",
			},
		},
		{
			name:   "server error",
			status: 500,
			body:   `{"error": {"message": "database unavailable"}}`,
			want: &APIError{
				Kind:    KindServerError,
				Status:  500,
				Message: "database unavailable",
			},
		},
		{
			name:   "other client error",
			status: 409,
			body:   `{"message": "conflicting update"}`,
			want: &APIError{
				Kind:    KindClientError,
				Status:  409,
				Message: "conflicting update",
			},
		},
		{
			name:   "error as plain string field",
			status: 500,
			body:   `{"error": "internal error"}`,
			want: &APIError{
				Kind:    KindServerError,
				Status:  500,
				Message: "internal error",
			},
		},
		{
			name:   "msg fallback",
			status: 400,
			body:   `{"msg": "bad request body"}`,
			want: &APIError{
				Kind:    KindClientError,
				Status:  400,
				Message: "bad request body",
			},
		},
		{
			name:   "machine code extracted",
			status: 400,
			body:   `{"detail": "bad input", "code": "invalid_argument"}`,
			want: &APIError{
				Kind:    KindClientError,
				Status:  400,
				Message: "bad input",
				Code:    "invalid_argument",
			},
		},
		{
			name:   "html error page",
			status: 502,
			body:   `<html><body><pre>upstream connect error</pre></body></html>`,
			want: &APIError{
				Kind:    KindServerError,
				Status:  502,
				Message: "upstream connect error",
			},
		},
		{
			name:   "non-json body",
			status: 503,
			body:   `service restarting`,
			want: &APIError{
				Kind:    KindServerError,
				Status:  503,
				Message: "service restarting",
			},
		},
	}

	ignore := cmpopts.IgnoreFields(APIError{}, "Body")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.status, tt.header, []byte(tt.body))
			if diff := cmp.Diff(tt.want, got, ignore, cmpopts.IgnoreUnexported(APIError{})); diff != "" {
				t.Errorf("classify() mismatch (-want +got):\n%s", diff)
			}
			if got.Body != tt.body {
				t.Errorf("classify() Body = %q, want %q", got.Body, tt.body)
			}
		})
	}
}

func TestRetryAfterFromHeaderDate(t *testing.T) {
	at := time.Now().Add(45 * time.Second).UTC()
	header := http.Header{"Retry-After": []string{at.Format(http.TimeFormat)}}

	got := retryAfterFromHeader(header)
	if got <= 40*time.Second || got > 46*time.Second {
		t.Errorf("retryAfterFromHeader() = %v, want about 45s", got)
	}
}

func TestRetryAfterFromHeaderInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "negative seconds", value: "-3"},
		{name: "garbage", value: "soon"},
		{name: "past date", value: time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.value != "" {
				header.Set("Retry-After", tt.value)
			}
			if got := retryAfterFromHeader(header); got != 0 {
				t.Errorf("retryAfterFromHeader() = %v, want 0", got)
			}
		})
	}
}

func TestAPIErrorRetryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindRateLimit, true},
		{KindTimeout, true},
		{KindServerError, true},
		{KindTransport, true},
		{KindAuth, false},
		{KindForbidden, false},
		{KindNotFound, false},
		{KindValidation, false},
		{KindClientError, false},
		{KindIncompleteStream, false},
		{KindFrameParse, false},
	}
	for _, tt := range tests {
		e := &APIError{Kind: tt.kind}
		if got := e.Retryable(); got != tt.want {
			t.Errorf("Retryable(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestAPIErrorIs(t *testing.T) {
	err := error(&APIError{Kind: KindNotFound, Status: 404, Message: "Agent not found"})

	if !errors.Is(err, &APIError{Kind: KindNotFound}) {
		t.Error("errors.Is should match on Kind")
	}
	if errors.Is(err, &APIError{Kind: KindAuth}) {
		t.Error("errors.Is should not match a different Kind")
	}
}

func TestAPIErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "not found with resource",
			err: &APIError{
				Kind:     KindNotFound,
				Status:   404,
				Resource: ResourceRef{Type: "Agent", ID: "agent-123"},
			},
			want: `letta: agent "agent-123" not found`,
		},
		{
			name: "status error",
			err:  &APIError{Kind: KindServerError, Status: 500, Message: "boom"},
			want: "letta: server_error (HTTP 500): boom",
		},
		{
			name: "transport with cause",
			err:  &APIError{Kind: KindTransport, cause: errors.New("connection refused")},
			want: "letta: transport: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
