// Package paginate drains cursor-paginated remote list endpoints.
package paginate

import (
	"context"
	"fmt"
)

// Page is one response of a paginated list call. An empty NextCursor
// means there are no further pages.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// PageFunc fetches the page starting at cursor. The first call receives "".
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// All calls fetch until a page reports no next cursor and returns every item
// in the order received. The first failing page aborts the whole fetch.
// Upstream is trusted not to loop, so there is no page cap.
func All[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	var all []T
	cursor := ""
	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := fetch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page+1, err)
		}
		all = append(all, p.Items...)

		if p.NextCursor == "" {
			return all, nil
		}
		cursor = p.NextCursor
	}
}
