package gateway

import (
	"context"
	"log/slog"
)

// LocateHeight binary-searches [0, frontier] for the smallest height
// whose block timestamp is >= target. It returns frontier+1 when the
// target lies beyond every existing block.
//
// An unreadable midpoint is treated as "too high" and the search moves
// lower. That biases the result toward heights that actually exist; when
// intermediate heights are transiently unreadable the returned height
// may be later than the true earliest match, which is accepted rather
// than papered over with retries.
func (c *Client) LocateHeight(ctx context.Context, target, frontier int64) int64 {
	low, high := int64(0), frontier
	best := frontier + 1

	for low <= high {
		if ctx.Err() != nil {
			return best
		}
		mid := low + (high-low)/2

		block, err := c.BlockByHeight(ctx, mid)
		if err != nil {
			slog.Warn("Probe failed during height search, biasing lower",
				"height", mid, "error", err)
			high = mid - 1
			continue
		}

		if block.Timestamp >= target {
			best = mid
			high = mid - 1
		} else {
			low = mid + 1
		}
	}
	return best
}
