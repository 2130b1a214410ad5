package api

import (
	"net/http"
	"net/url"
	"strconv"
)

// Page is the envelope for every paginated listing.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  T       `json:"results"`
}

// Paginator is the slice of a paged result the envelope needs.
type Paginator interface {
	HasNext() bool
	HasPrev() bool
}

// NewPage builds the envelope, deriving next and previous links from the
// request URL so other query parameters are preserved.
func NewPage[T any](r *http.Request, p Paginator, count, page int, results T) Page[T] {
	out := Page[T]{Count: count, Results: results}
	if p.HasNext() {
		link := pageLink(r, page+1)
		out.Next = &link
	}
	if p.HasPrev() {
		link := pageLink(r, page-1)
		out.Previous = &link
	}
	return out
}

func pageLink(r *http.Request, page int) string {
	u := url.URL{Path: r.URL.Path}
	if r.Host != "" {
		u.Host = r.Host
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// PageNumber reads ?page=, defaulting to 1. Garbage yields 0, which the
// engine rejects as an invalid page.
func PageNumber(r *http.Request) int {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
