package ghclient

import (
	"context"
	"fmt"

	"github.com/spiffcs/ghactivity/internal/log"
	"github.com/spiffcs/ghactivity/internal/model"
)

// Page is what a Pager selects out of one decoded response.
type Page[T any] struct {
	Nodes []T
	Info  model.PageInfo
}

// Pager describes how to walk one connection. Request builds the request for
// a cursor (nil for the first page); Select picks that connection's page out
// of the decoded envelope E. OnPage, if set, is called after each page with
// running totals.
type Pager[E, T any] struct {
	Name    string
	Request func(cursor *string) Request
	Select  func(data *E) (Page[T], error)
	OnPage  func(pages, nodes int)
}

// Drain requests pages until the server reports no further page and returns
// every node in arrival order. Pages are requested strictly one after
// another. On any error nothing accumulated so far is returned.
func Drain[E, T any](ctx context.Context, t Transport, p Pager[E, T]) ([]T, error) {
	all := []T{}
	var cursor *string
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		data, err := Execute[E](ctx, t, p.Request(cursor))
		if err != nil {
			return nil, err
		}

		page, err := p.Select(data)
		if err != nil {
			return nil, err
		}
		pages++

		if page.Nodes != nil {
			all = append(all, page.Nodes...)
		}
		log.Debug("fetched page", "connection", p.Name, "page", pages, "nodes", len(page.Nodes), "total", len(all))

		if p.OnPage != nil {
			p.OnPage(pages, len(all))
		}

		if !page.Info.HasNextPage {
			log.Debug("pagination complete", "connection", p.Name, "pages", pages, "nodes", len(all))
			return all, nil
		}
		if page.Info.EndCursor == nil {
			return nil, &ProtocolError{Messages: []GraphQLError{{
				Message: fmt.Sprintf("%s: hasNextPage set without endCursor on page %d", p.Name, pages),
			}}}
		}
		next := *page.Info.EndCursor
		cursor = &next
	}
}
