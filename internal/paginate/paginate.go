// Package paginate drives cursor-based AWS list operations.
//
// A listing is described by a FetchFunc that turns the cursor of the previous
// response into the next Page. Seq follows the cursors until the provider
// reports there is nothing left, so callers never write the loop themselves.
// Token-presence protocols (ListMetrics, ListBuckets) and explicit-flag
// protocols (ListObjectsV2, ListObjectVersions) share the same driver through
// the TokenPage and FlagPage adapters.
package paginate

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrRepeatedCursor is returned when the provider hands back the cursor
	// that was just used, which would otherwise loop forever.
	ErrRepeatedCursor = errors.New("pagination cursor repeated")

	// ErrMissingCursor is returned when a page claims to be truncated but
	// carries no cursor to resume from.
	ErrMissingCursor = errors.New("truncated page without continuation cursor")
)

// Page is one response of a paginated listing
type Page[T any, C comparable] struct {
	Items []T

	// Next is the cursor to resume from, only meaningful when More is set
	Next C

	// More reports whether another page follows
	More bool
}

// FetchFunc fetches the page that follows cursor. cursor is nil for the
// first request.
type FetchFunc[T any, C comparable] func(ctx context.Context, cursor *C) (Page[T, C], error)

// TokenPage builds a Page for APIs that mark the last page by omitting the
// continuation token.
func TokenPage[T any](items []T, next *string) Page[T, string] {
	p := Page[T, string]{Items: items}
	if next != nil && *next != "" {
		p.Next = *next
		p.More = true
	}
	return p
}

// FlagPage builds a Page for APIs that mark truncation with an explicit
// flag. A nil flag means not truncated.
func FlagPage[T any, C comparable](items []T, truncated *bool, next C) Page[T, C] {
	return Page[T, C]{
		Items: items,
		Next:  next,
		More:  truncated != nil && *truncated,
	}
}

// Seq returns a lazy sequence of every item across all pages.
//
// Each range over the sequence starts again from the first page. Items are
// yielded with a nil error; a failure is yielded once as the final element
// with the zero item, and nothing follows it.
func Seq[T any, C comparable](ctx context.Context, fetch FetchFunc[T, C]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		var none C
		var cursor *C

		for {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			page, err := fetch(ctx, cursor)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			if !page.More {
				return
			}

			if page.Next == none {
				yield(zero, ErrMissingCursor)
				return
			}
			if cursor != nil && *cursor == page.Next {
				yield(zero, ErrRepeatedCursor)
				return
			}

			next := page.Next
			cursor = &next
		}
	}
}

// Each calls fn for every item across all pages, stopping at the first error
func Each[T any, C comparable](ctx context.Context, fetch FetchFunc[T, C], fn func(T) error) error {
	for item, err := range Seq(ctx, fetch) {
		if err != nil {
			return err
		}
		if err := fn(item); err != nil {
			return err
		}
	}
	return nil
}

// Collect gathers every item across all pages. It returns nothing on error.
func Collect[T any, C comparable](ctx context.Context, fetch FetchFunc[T, C]) ([]T, error) {
	var items []T
	err := Each(ctx, fetch, func(item T) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
