package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Params are the page controls for list endpoints, clamped to sane bounds.
type Params struct {
	Page  int
	Limit int
}

// Offset converts the page number into a row offset.
func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// Parse reads page and limit from the query string. Missing or malformed
// values fall back to the defaults and limit is capped so a client cannot
// request unbounded pages.
func Parse(c *gin.Context) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}
