package gateway

import (
	"context"
	"log/slog"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

const (
	// maxPagesPerHeight caps pagination for a single height. A height
	// needing more pages than this is pathological; the remainder is an
	// accepted completeness gap.
	maxPagesPerHeight = 10

	// fallbackPageSize caps the single best-effort query issued after a
	// pagination failure. Records past this cap are dropped for that
	// height — a known gap during gateway instability, not an error.
	fallbackPageSize = 100
)

// RecordsForHeight returns every record belonging to one height by
// paginating the cursor-based query. It never fails outward: on a page
// failure it falls back to one unpaginated query, and if that fails too
// it returns whatever was accumulated, possibly nothing. All failures
// are logged here.
func (c *Client) RecordsForHeight(ctx context.Context, height int64) []datatypes.Record {
	var accumulated []datatypes.Record
	cursor := ""

	for page := 0; page < maxPagesPerHeight; page++ {
		result, err := c.QueryPage(ctx, datatypes.RecordQuery{
			MinHeight: height,
			MaxHeight: height,
			Cursor:    cursor,
			Limit:     fallbackPageSize,
		})
		if err != nil {
			slog.Warn("Record page failed, falling back to a single unpaginated query",
				"height", height, "page", page, "error", err)
			return c.fallbackRecords(ctx, height, accumulated)
		}
		accumulated = append(accumulated, result.Records...)
		if !result.HasNext {
			return accumulated
		}
		cursor = result.NextCursor
	}

	slog.Warn("Hit the page ceiling for a single height, truncating",
		"height", height, "pages", maxPagesPerHeight, "records", len(accumulated))
	return accumulated
}

// fallbackRecords issues the single capped query used after pagination
// breaks. A successful fallback replaces the partial accumulation; a
// failed one returns it unchanged.
func (c *Client) fallbackRecords(ctx context.Context, height int64, accumulated []datatypes.Record) []datatypes.Record {
	result, err := c.QueryPage(ctx, datatypes.RecordQuery{
		MinHeight: height,
		MaxHeight: height,
		Limit:     fallbackPageSize,
	})
	if err != nil {
		slog.Warn("Fallback query failed, returning accumulated records",
			"height", height, "accumulated", len(accumulated), "error", err)
		return accumulated
	}
	return result.Records
}
