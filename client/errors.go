// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
)

// Kind is the classified category of a failed operation.
type Kind string

// Error kinds.
const (
	KindAuth             Kind = "auth"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindRateLimit        Kind = "rate_limit"
	KindTimeout          Kind = "timeout"
	KindServerError      Kind = "server_error"
	KindClientError      Kind = "client_error"
	KindTransport        Kind = "transport"
	KindIncompleteStream Kind = "incomplete_stream"
	KindFrameParse       Kind = "frame_parse"
)

// ResourceRef identifies the resource a NotFound error refers to,
// when the server message allowed extracting one.
type ResourceRef struct {
	Type string
	ID   string
}

// APIError is the classified envelope for any failed operation. It is
// immutable once constructed.
type APIError struct {
	// Kind is the classified category.
	Kind Kind
	// Status is the HTTP status code, or 0 for connection-level
	// failures.
	Status int
	// Message is the human-readable message extracted from the
	// response body, or a status-derived fallback.
	Message string
	// Code is the machine-readable error code from the body, when
	// present.
	Code string
	// RetryAfter is the server-requested wait before the next
	// attempt; zero when the server gave none.
	RetryAfter time.Duration
	// Resource is the extracted resource reference for NotFound
	// errors; zero when extraction failed.
	Resource ResourceRef
	// Fields maps field names to violation messages for Validation
	// errors with a recognizable errors-list body.
	Fields map[string]string
	// Body is the raw response body, preserved verbatim.
	Body string

	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Kind == KindNotFound && e.Resource.Type != "":
		if e.Resource.ID != "" {
			return fmt.Sprintf("letta: %s %q not found", strings.ToLower(e.Resource.Type), e.Resource.ID)
		}
		return fmt.Sprintf("letta: %s not found", strings.ToLower(e.Resource.Type))
	case e.Status > 0:
		return fmt.Sprintf("letta: %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("letta: %s: %v", e.Kind, e.cause)
	default:
		return fmt.Sprintf("letta: %s: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error { return e.cause }

// Is matches any *APIError of the same Kind, so callers can write
// errors.Is(err, &APIError{Kind: KindNotFound}).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Retryable reports whether the error kind is transient. Whether a
// retry is actually issued additionally depends on the operation
// being idempotent; see [RetryConfig].
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindRateLimit, KindTimeout, KindServerError, KindTransport:
		return true
	default:
		return false
	}
}

// transportError wraps a connection-level failure that produced no
// HTTP status.
func transportError(err error) *APIError {
	return &APIError{
		Kind:    KindTransport,
		Message: err.Error(),
		cause:   err,
	}
}

// classify turns a non-2xx response into a typed error envelope. The
// body is interpreted on a best-effort basis: message extraction and
// enrichment never fail, they just leave fields empty.
func classify(status int, header http.Header, body []byte) *APIError {
	e := &APIError{
		Status: status,
		Body:   string(body),
	}

	parsed := parseErrorBody(body)
	e.Message = parsed.message
	if e.Message == "" {
		e.Message = statusMessage(status)
	}
	e.Code = parsed.code

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
		e.Resource = extractResource(e.Message)
	case status == http.StatusUnprocessableEntity:
		e.Kind = KindValidation
		e.Fields = parsed.fields
	case status == http.StatusTooManyRequests:
		e.Kind = KindRateLimit
		e.RetryAfter = retryAfterFromHeader(header)
		if e.RetryAfter == 0 {
			e.RetryAfter = parsed.retryAfter
		}
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		e.Kind = KindTimeout
	case status >= 500:
		e.Kind = KindServerError
	default:
		e.Kind = KindClientError
	}

	return e
}

// parsedBody is what best-effort error-body inspection yields.
type parsedBody struct {
	message    string
	code       string
	fields     map[string]string
	retryAfter time.Duration
}

// parseErrorBody probes the response body for the message fields the
// service is known to use, in priority order: detail (string or
// list), error.message, error, message, msg. Non-JSON bodies fall
// back to plain text, with the service's HTML error pages reduced to
// their <pre> content.
func parseErrorBody(body []byte) parsedBody {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return parsedBody{message: textMessage(string(body))}
	}

	var p parsedBody

	if detail, ok := obj["detail"]; ok {
		switch d := detail.(type) {
		case string:
			p.message = d
		case []any:
			p.message, p.fields = flattenDetailList(d)
		}
	}
	if p.message == "" {
		if errField, ok := obj["error"]; ok {
			switch e := errField.(type) {
			case map[string]any:
				if msg, ok := e["message"].(string); ok {
					p.message = msg
				}
			case string:
				p.message = e
			}
		}
	}
	if p.message == "" {
		if msg, ok := obj["message"].(string); ok {
			p.message = msg
		}
	}
	if p.message == "" {
		if msg, ok := obj["msg"].(string); ok {
			p.message = msg
		}
	}

	for _, key := range []string{"code", "error_code", "type"} {
		if code, ok := obj[key].(string); ok {
			p.code = code
			break
		}
	}

	for _, key := range []string{"retry_after", "retryAfter", "retry-after"} {
		if v, ok := obj[key]; ok {
			if secs, ok := v.(float64); ok && secs > 0 {
				p.retryAfter = time.Duration(secs * float64(time.Second))
				break
			}
		}
	}

	return p
}

// flattenDetailList interprets a detail array: validation entries of
// the form {"loc": [...], "msg": "..."} contribute both to the joined
// message and to the field→violation map; plain strings contribute to
// the message only.
func flattenDetailList(list []any) (string, map[string]string) {
	var parts []string
	var fields map[string]string

	for _, item := range list {
		switch v := item.(type) {
		case string:
			parts = append(parts, v)
		case map[string]any:
			msg, _ := v["msg"].(string)
			if msg == "" {
				continue
			}
			parts = append(parts, msg)
			if field := fieldFromLoc(v["loc"]); field != "" {
				if fields == nil {
					fields = make(map[string]string)
				}
				fields[field] = msg
			}
		}
	}
	return strings.Join(parts, "; "), fields
}

// fieldFromLoc extracts the field name from a validation location
// path such as ["body", "name"]: the last string element wins.
func fieldFromLoc(loc any) string {
	path, ok := loc.([]any)
	if !ok {
		return ""
	}
	for i := len(path) - 1; i >= 0; i-- {
		if s, ok := path[i].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// textMessage reduces a non-JSON body to a displayable message. The
// service serves HTML error pages whose useful text sits in a <pre>
// element.
func textMessage(body string) string {
	if start := strings.Index(body, "<pre>"); start >= 0 {
		if end := strings.Index(body[start:], "</pre>"); end >= 0 {
			return strings.TrimSpace(body[start+len("<pre>") : start+end])
		}
	}
	return strings.TrimSpace(body)
}

// statusMessage is the fallback message when the body yields none.
func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// retryAfterFromHeader parses a Retry-After header, accepting both
// integer seconds and an HTTP date.
func retryAfterFromHeader(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}

// extractResource pulls a resource type and identifier out of a
// NotFound message. Recognized shapes, mirroring what the service
// actually emits:
//
//	"Agent not found"
//	"Agent with ID agent-123 not found"
//	"Tool 'calculator' not found"
//	"No source found with ID: source-456"
func extractResource(message string) ResourceRef {
	lower := strings.ToLower(message)

	if pos := strings.Index(lower, " not found"); pos >= 0 {
		prefix := message[:pos]

		if idStart := strings.Index(prefix, " with ID "); idStart >= 0 {
			id := strings.Trim(strings.TrimSpace(prefix[idStart+len(" with ID "):]), `"'`)
			return ResourceRef{
				Type: strings.TrimSpace(prefix[:idStart]),
				ID:   id,
			}
		}

		if end := strings.LastIndex(prefix, "'"); end > 0 {
			if start := strings.LastIndex(prefix[:end], "'"); start >= 0 {
				return ResourceRef{
					Type: strings.TrimSpace(prefix[:start]),
					ID:   prefix[start+1 : end],
				}
			}
		}

		return ResourceRef{Type: strings.TrimSpace(prefix)}
	}

	// "No source found with ID: source-456"
	if strings.Contains(lower, " found with id:") {
		if colon := strings.Index(message, ":"); colon >= 0 {
			id := strings.TrimSpace(message[colon+1:])
			words := strings.Fields(message[:colon])
			for i, word := range words {
				if strings.EqualFold(word, "found") && i > 0 {
					return ResourceRef{Type: words[i-1], ID: id}
				}
			}
		}
	}

	return ResourceRef{}
}
