package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryInt parses an integer query parameter, falling back to def when it is
// missing or not a number.
func QueryInt(q url.Values, key string, def int) int {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Pagination reads page and limit. Page is at least 1; a limit outside
// 1..maxLimit becomes defLimit.
func Pagination(q url.Values, defLimit, maxLimit int) (page, limit int) {
	page = QueryInt(q, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = QueryInt(q, "limit", defLimit)
	if limit < 1 || limit > maxLimit {
		limit = defLimit
	}
	return page, limit
}
