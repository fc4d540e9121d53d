package api

import (
	"net/url"
	"strconv"

	"github.com/lox/aqidash/internal/ingest"
	"github.com/lox/aqidash/internal/models"
)

// criteriaFromQuery builds filter criteria from the request query string.
// A malformed value skips that predicate rather than failing the request;
// the sidebar form only emits well-formed values, so anything else is a
// hand-edited URL.
func criteriaFromQuery(q url.Values) models.Criteria {
	var c models.Criteria
	if v := q.Get("start"); v != "" {
		if t, err := ingest.ParseDate(v); err == nil {
			c.Start = &t
		}
	}
	if v := q.Get("end"); v != "" {
		if t, err := ingest.ParseDate(v); err == nil {
			c.End = &t
		}
	}
	for _, v := range q["city"] {
		if v != "" {
			c.Cities = append(c.Cities, v)
		}
	}
	for _, v := range q["pollutant"] {
		if v != "" {
			c.Pollutants = append(c.Pollutants, v)
		}
	}
	if v := q.Get("min"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinAQI = &n
		}
	}
	if v := q.Get("max"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAQI = &n
		}
	}
	return c
}
