// Package pagination provides the logical windowing parameters used by
// the news retrieval layer. A "window" is a contiguous slice of an
// upstream result stream addressed by a 1-based page and a page size.
package pagination

import (
	"net/http"
	"strconv"
)

// Default and boundary values for window parameters.
const (
	DefaultPage = 1
	DefaultSize = 9
)

// Params represents a logical window request: the 1-based target page
// and the number of articles per page.
type Params struct {
	Page int
	Size int
}

// Coerce replaces non-positive values with the defaults. Malformed
// pagination input never fails; it degrades to the first default-sized
// window.
func (p Params) Coerce() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Size < 1 {
		p.Size = DefaultSize
	}
	return p
}

// StartIndex returns the 0-based global index of the first article in
// the window.
func (p Params) StartIndex() int {
	return (p.Page - 1) * p.Size
}

// EndIndex returns the exclusive 0-based global index one past the last
// article in the window.
func (p Params) EndIndex() int {
	return p.StartIndex() + p.Size
}

// ParseQueryParams reads "page" and "pageSize" from the request query
// string. Missing, non-numeric or non-positive values are coerced to
// the defaults rather than rejected.
func ParseQueryParams(r *http.Request) Params {
	return FromStrings(r.URL.Query().Get("page"), r.URL.Query().Get("pageSize"))
}

// FromStrings builds coerced Params from raw string values.
func FromStrings(pageStr, sizeStr string) Params {
	p := Params{}
	if page, err := strconv.Atoi(pageStr); err == nil {
		p.Page = page
	}
	if size, err := strconv.Atoi(sizeStr); err == nil {
		p.Size = size
	}
	return p.Coerce()
}
