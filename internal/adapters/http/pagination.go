package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

// PaginatedResponse wraps one page of a list with its position in the whole.
type PaginatedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes an offset/limit window over Total items.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// paginate cuts the ?offset=&limit= window out of items and sets the Link
// header. Out-of-range values fall back to the defaults; an offset past the
// end yields an empty page.
func paginate[T any](c *fiber.Ctx, items []T) PaginatedResponse[T] {
	p := Pagination{
		Offset: max(c.QueryInt("offset", 0), 0),
		Limit:  c.QueryInt("limit", defaultPageLimit),
		Total:  len(items),
	}
	if p.Limit <= 0 || p.Limit > maxPageLimit {
		p.Limit = defaultPageLimit
	}

	page := []T{}
	if p.Offset < p.Total {
		page = items[p.Offset:min(p.Offset+p.Limit, p.Total)]
	}

	c.Set(fiber.HeaderLink, linkHeader(c.Path(), p))
	return PaginatedResponse[T]{Data: page, Pagination: p}
}

// linkHeader renders RFC 8288 first/prev/next/last links.
func linkHeader(base string, p Pagination) string {
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, base, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	links = append(links, link(max(p.Total-p.Limit, 0), "last"))
	return strings.Join(links, ", ")
}
