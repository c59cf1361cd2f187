package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SearchEvents fetches events matching a free-text query, with their
// nested markets. This is the low-precision fallback discovery path; the
// direct series listing in ListInstruments is preferred.
func (c *Client) SearchEvents(ctx context.Context, search, status string, limit int) ([]APIEvent, error) {
	query := url.Values{}
	query.Set("with_nested_markets", "true")
	if search != "" {
		query.Set("search", search)
	}
	if status != "" {
		query.Set("status", status)
	}

	const pageSize = 200
	query.Set("limit", strconv.Itoa(pageSize))

	var events []APIEvent
	cursor := ""
	for {
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var resp EventsResponse
		if err := c.get(ctx, "/events", query, &resp); err != nil {
			return nil, fmt.Errorf("search events: %w", err)
		}

		events = append(events, resp.Events...)
		if limit > 0 && len(events) >= limit {
			return events[:limit], nil
		}

		if resp.Cursor == "" || len(resp.Events) == 0 {
			return events, nil
		}
		cursor = resp.Cursor
	}
}
