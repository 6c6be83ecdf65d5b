package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	// MaxPageSize caps the ?limit= query parameter
	MaxPageSize     = 100
	defaultPageSize = 6
)

// pageFromQuery reads ?page= and ?limit=. An unusable limit falls back to
// the default size; an unusable page answers 404.
func pageFromQuery(c *gin.Context, defaultSize int) (service.Page, bool) {
	if defaultSize <= 0 {
		defaultSize = defaultPageSize
	}
	page := service.Page{Number: 1, Size: defaultSize}

	if raw := c.Query("limit"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil && size > 0 {
			page.Size = min(size, MaxPageSize)
		}
	}
	if raw := c.Query("page"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 1 {
			c.JSON(http.StatusNotFound, gin.H{"errors": "Invalid page."})
			return page, false
		}
		page.Number = number
	}
	return page, true
}

// writePage answers with one page of results. A page past the end answers
// 404 like any other invalid page.
func writePage[T any](c *gin.Context, page service.Page, total int64, results []T) {
	if page.Number > 1 && len(results) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"errors": "Invalid page."})
		return
	}
	if results == nil {
		results = []T{}
	}

	body := types.Paginated[T]{Count: total, Results: results}
	if int64(page.Offset()+len(results)) < total {
		body.Next = pageLink(c, page.Number+1)
	}
	if page.Number > 1 {
		body.Previous = pageLink(c, page.Number-1)
	}
	c.JSON(http.StatusOK, body)
}

// pageLink rebuilds the request URL pointing at another page
func pageLink(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}

	query := c.Request.URL.Query()
	if number == 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	link := u.String()
	return &link
}

// isTruthy reports whether a query flag is switched on
func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// recipesLimit reads ?recipes_limit=. Anything but a non-negative integer
// means no limit.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return service.NoRecipesLimit
	}
	return n
}
