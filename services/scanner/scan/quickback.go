package scan

import (
	"context"
	"fmt"
	"log/slog"
)

// QuickBackwardScan walks backward from the current frontier for a
// bounded number of blocks, aggregating records into capacity-bounded
// buckets and emitting periodic partial snapshots. It stops early once
// no media category wants more records.
type QuickBackwardScan struct {
	ledger         Ledger
	blockScanLimit int
	perTypeLimit   int
}

func NewQuickBackwardScan(ledger Ledger, blockScanLimit, perTypeLimit int) *QuickBackwardScan {
	return &QuickBackwardScan{
		ledger:         ledger,
		blockScanLimit: blockScanLimit,
		perTypeLimit:   perTypeLimit,
	}
}

func (s *QuickBackwardScan) Name() string { return "quick_backward" }

func (s *QuickBackwardScan) Run(ctx context.Context, emit Emitter) error {
	info, err := s.ledger.Info(ctx)
	if err != nil {
		return fmt.Errorf("fetching network frontier: %w", err)
	}
	if err := emit.Emit(StatusMessage(fmt.Sprintf(
		"scanning backward from height %d...", info.Height))); err != nil {
		return err
	}

	buckets := NewBuckets(s.perTypeLimit)
	blocksScanned := 0
	addedSinceFlush := 0

	for height := info.Height; height >= 0 && blocksScanned < s.blockScanLimit; height-- {
		// Cancellation checkpoint, once per height before the fetch.
		if err := ctx.Err(); err != nil {
			return err
		}

		// Fullness is only discovered while working through a fetched
		// height's records, so at most one height past the fill point is
		// fetched before the scan stops.
		records := s.ledger.RecordsForHeight(ctx, height)
		full := false
		for _, r := range records {
			if !buckets.WantsAnyMediaMore() {
				full = true
				break
			}
			if buckets.Offer(r) {
				addedSinceFlush++
			}
		}
		blocksScanned++

		if blocksScanned == 1 || blocksScanned%snapshotEveryBlocks == 0 ||
			addedSinceFlush >= flushRecordThreshold {
			if err := emit.Emit(Message{Type: MsgTowersPartial, Data: buckets.Snapshot()}); err != nil {
				return err
			}
			addedSinceFlush = 0
		}
		if full {
			break
		}
	}

	slog.Info("Quick backward scan finished",
		"blocksScanned", blocksScanned,
		"image", buckets.Len(CategoryImage),
		"video", buckets.Len(CategoryVideo),
		"audio", buckets.Len(CategoryAudio))
	return emit.Emit(Message{Type: MsgTowers, Data: buckets.Snapshot()})
}
