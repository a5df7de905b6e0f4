package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

// TaggedForwardScan runs one forward, tag-filtered cursor query per
// media category across a bounded time window, aggregating results into
// capacity-bounded buckets. Categories are scanned sequentially, not
// interleaved; partial snapshots flush on a shared record threshold.
type TaggedForwardScan struct {
	ledger       Ledger
	windowStart  int64
	windowEnd    int64
	perTypeLimit int

	// maxPagesPerCategory bounds runaway cursor loops against a
	// misbehaving gateway.
	maxPagesPerCategory int
}

func NewTaggedForwardScan(ledger Ledger, windowStart, windowEnd int64, perTypeLimit int) *TaggedForwardScan {
	return &TaggedForwardScan{
		ledger:              ledger,
		windowStart:         windowStart,
		windowEnd:           windowEnd,
		perTypeLimit:        perTypeLimit,
		maxPagesPerCategory: 100,
	}
}

func (s *TaggedForwardScan) Name() string { return "tagged_forward" }

func (s *TaggedForwardScan) Run(ctx context.Context, emit Emitter) error {
	info, err := s.ledger.Info(ctx)
	if err != nil {
		return fmt.Errorf("fetching network frontier: %w", err)
	}
	if err := emit.Emit(StatusMessage("locating window start height...")); err != nil {
		return err
	}
	minHeight := s.ledger.LocateHeight(ctx, s.windowStart, info.Height)
	if err := ctx.Err(); err != nil {
		return err
	}

	// The first height past the window bounds the query from above; the
	// sentinel means the window end is beyond the frontier.
	maxHeight := info.Height
	if next := s.ledger.LocateHeight(ctx, s.windowEnd+1, info.Height); next <= info.Height {
		maxHeight = next - 1
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	buckets := NewBuckets(s.perTypeLimit)
	addedSinceFlush := 0

	if minHeight <= maxHeight {
		for _, category := range MediaCategories {
			if err := emit.Emit(StatusMessage(fmt.Sprintf("collecting %s records...", category))); err != nil {
				return err
			}
			added, err := s.scanCategory(ctx, emit, buckets, category, minHeight, maxHeight, addedSinceFlush)
			if err != nil {
				return err
			}
			addedSinceFlush = added
		}
	}

	return emit.Emit(Message{Type: MsgTowers, Data: buckets.Snapshot()})
}

// scanCategory drains one category's cursor query into the buckets.
// It returns the updated since-last-flush counter. Page failures are
// transient: the category's partial result stands and the scan moves on.
func (s *TaggedForwardScan) scanCategory(ctx context.Context, emit Emitter, buckets *Buckets,
	category Category, minHeight, maxHeight int64, addedSinceFlush int) (int, error) {

	cursor := ""
	for page := 0; page < s.maxPagesPerCategory; page++ {
		// Cancellation checkpoint, once per page before the fetch.
		if err := ctx.Err(); err != nil {
			return addedSinceFlush, err
		}
		if !buckets.WantsMore(category) {
			break
		}

		result, err := s.ledger.QueryPage(ctx, datatypes.RecordQuery{
			MinHeight:         minHeight,
			MaxHeight:         maxHeight,
			ContentTypePrefix: string(category) + "/",
			Cursor:            cursor,
			Limit:             queryPageSize,
		})
		if err != nil {
			slog.Warn("Tagged query page failed, keeping partial results",
				"category", category, "error", err)
			break
		}

		for _, r := range result.Records {
			if buckets.Offer(r) {
				addedSinceFlush++
			}
		}
		if addedSinceFlush >= flushRecordThreshold {
			if err := emit.Emit(Message{Type: MsgTowersPartial, Data: buckets.Snapshot()}); err != nil {
				return addedSinceFlush, err
			}
			addedSinceFlush = 0
		}

		if !result.HasNext {
			break
		}
		cursor = result.NextCursor
	}
	return addedSinceFlush, nil
}
