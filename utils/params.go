package utils

import (
	"net/http"
	"strconv"
	"time"
)

type QueryOptions struct {
	Page   int
	Limit  int
	Search string
	From   time.Time
	To     time.Time
}

func ParseQueryOptions(r *http.Request) QueryOptions {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	opts := QueryOptions{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
	}

	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			opts.To = t
		}
	}

	return opts
}
