// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"iter"

	"github.com/go-letta/letta"
)

// PageFetcher fetches one page positioned after the given cursor. An
// empty cursor means the first page. Implementations must return
// classified errors so a failed fetch can be judged for retry by the
// caller.
type PageFetcher[T any] func(ctx context.Context, cursor string, limit int32) (letta.Page[T], error)

// Pager lazily materializes a cursor-paginated list endpoint as a
// pull-driven sequence of items. It hides all cursor bookkeeping:
// each pull either yields a buffered item, fetches the next page, or
// reports the end of the sequence.
//
// Items are yielded strictly in page order, then within-page order,
// exactly as the backend returned them. The pager never deduplicates
// or reorders, so backend-side concurrent mutation may surface
// duplicates or gaps.
//
// A Pager is single-use and owned by one consumer: once exhausted it
// stays exhausted, and re-traversal needs a fresh Pager. It is not
// safe for concurrent use.
type Pager[T any] struct {
	fetch  PageFetcher[T]
	cursor string
	limit  int32

	cursorFn  func(T) string
	transform func(T) T
	filter    func(T) bool
	maxItems  int

	buf       []T
	yielded   int
	exhausted bool
}

// PagerOption configures a [Pager].
type PagerOption[T any] func(*Pager[T])

// WithPagerCursor starts the sequence after the given cursor instead
// of at the beginning.
func WithPagerCursor[T any](cursor string) PagerOption[T] {
	return func(p *Pager[T]) { p.cursor = cursor }
}

// WithPagerLimit sets the per-page item limit.
func WithPagerLimit[T any](limit int32) PagerOption[T] {
	return func(p *Pager[T]) { p.limit = limit }
}

// WithPageCursorFunc derives the next cursor from the last item of a
// full page when the page body carries no next_cursor. Endpoints that
// paginate by item ID return bare pages; the item's own identifier is
// the continuation token.
func WithPageCursorFunc[T any](fn func(T) string) PagerOption[T] {
	return func(p *Pager[T]) { p.cursorFn = fn }
}

// WithPagerTransform applies fn to every yielded item. The transform
// runs client-side before any filter and does not affect paging.
func WithPagerTransform[T any](fn func(T) T) PagerOption[T] {
	return func(p *Pager[T]) { p.transform = fn }
}

// WithPagerFilter drops items for which fn returns false. Filtering
// happens client-side after fetch and does not affect paging.
func WithPagerFilter[T any](fn func(T) bool) PagerOption[T] {
	return func(p *Pager[T]) { p.filter = fn }
}

// WithPagerMaxItems ends the sequence after at most n yielded items.
func WithPagerMaxItems[T any](n int) PagerOption[T] {
	return func(p *Pager[T]) { p.maxItems = n }
}

// NewPager creates a pager over fetch. The zero limit defers to the
// backend's default page size.
func NewPager[T any](fetch PageFetcher[T], opts ...PagerOption[T]) *Pager[T] {
	p := &Pager[T]{fetch: fetch}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next returns the next item. The second result is false when the
// sequence has ended. A non-nil error aborts only this pull: cursor
// and buffer state are left untouched, so calling Next again retries
// the same position.
func (p *Pager[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	for {
		if p.maxItems > 0 && p.yielded >= p.maxItems {
			p.exhausted = true
			p.buf = nil
		}

		if len(p.buf) > 0 {
			item := p.buf[0]
			p.buf = p.buf[1:]
			if p.transform != nil {
				item = p.transform(item)
			}
			if p.filter != nil && !p.filter(item) {
				continue
			}
			p.yielded++
			return item, true, nil
		}

		if p.exhausted {
			return zero, false, nil
		}

		if err := ctx.Err(); err != nil {
			return zero, false, err
		}

		page, err := p.fetch(ctx, p.cursor, p.limit)
		if err != nil {
			// State untouched: the same pull can be retried verbatim.
			return zero, false, err
		}
		p.advance(page)

		if len(p.buf) == 0 && p.exhausted {
			// Empty terminal page: end immediately rather than stall.
			return zero, false, nil
		}
	}
}

// advance consumes one fetched page: buffers its items in order and
// computes the continuation cursor, marking the sequence exhausted
// when the page carries no way forward. An empty page or an explicit
// has_more=false terminates regardless of any cursor.
func (p *Pager[T]) advance(page letta.Page[T]) {
	p.buf = append(p.buf, page.Items...)

	if len(page.Items) == 0 {
		p.exhausted = true
		return
	}
	if page.HasMore != nil && !*page.HasMore {
		p.exhausted = true
		return
	}
	if page.NextCursor != "" {
		p.cursor = page.NextCursor
		return
	}
	if p.cursorFn != nil && p.limit > 0 && int32(len(page.Items)) >= p.limit {
		// ID-cursor endpoint: a full page continues from its last
		// item. An empty derived cursor would restart from the top,
		// so it terminates instead.
		if cursor := p.cursorFn(page.Items[len(page.Items)-1]); cursor != "" {
			p.cursor = cursor
			return
		}
	}
	p.exhausted = true
}

// Collect pulls the remainder of the sequence into a slice.
func (p *Pager[T]) Collect(ctx context.Context) ([]T, error) {
	var items []T
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, item)
	}
}

// All returns the remainder of the sequence as an iterator. Iteration
// stops at the first error, which is yielded as the final pair.
// Breaking out of the loop simply stops pulling; no further fetches
// are issued.
func (p *Pager[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		for {
			item, ok, err := p.Next(ctx)
			if err != nil {
				yield(zero, err)
				return
			}
			if !ok {
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}
