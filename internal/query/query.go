// Package query translates the parameters of an incoming search page
// request into the query sent to the search service.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/margies-travel/docsearch/internal/azsearch"
)

// ErrEmptySearch reports a blank search box. Requests carrying it never
// reach the search service.
var ErrEmptySearch = errors.New("search term cannot be empty")

const relevanceOrder = "search.score()"

// sortOrders maps the page's sort parameter to the order-by directive
// the service understands. Anything not listed falls back to relevance.
var sortOrders = map[string]string{
	"relevance": relevanceOrder,
	"file_name": "metadata_storage_name asc",
	"size":      "metadata_storage_size desc",
	"date":      "metadata_storage_last_modified desc",
	"sentiment": "sentiment desc",
}

// FromValues builds a search query from the request parameters. The
// search term is trimmed and must be non-empty. A facet parameter, even
// a blank one, narrows results to that author. The sort parameter picks
// the result order.
func FromValues(values url.Values) (azsearch.Query, error) {
	text := strings.TrimSpace(values.Get("search"))
	if text == "" {
		return azsearch.Query{}, ErrEmptySearch
	}

	q := azsearch.Query{
		SearchText: text,
		OrderBy:    OrderFor(values.Get("sort")),
	}
	if values.Has("facet") {
		q.Filter = AuthorFilter(values.Get("facet"))
	}

	return q, nil
}

// AuthorFilter builds the author equality filter. The value is spliced
// in verbatim: an author containing a single quote yields an expression
// the service rejects, and that rejection surfaces through the normal
// search error path.
func AuthorFilter(author string) string {
	return fmt.Sprintf("metadata_author eq '%s'", author)
}

// OrderFor returns the order-by directive for a sort parameter.
func OrderFor(sort string) string {
	if order, ok := sortOrders[sort]; ok {
		return order
	}
	return relevanceOrder
}
