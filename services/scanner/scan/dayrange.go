package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

const secondsPerDay = int64(86400)

// statusEveryBlocks paces loadingStatus progress lines during long day
// scans so quiet stretches still show movement in the client.
const statusEveryBlocks = 50

// DayRangeScan walks the ledger forward from a located start height and
// emits one newBlock message per qualifying block until the end-time
// bound is passed. In visual-only mode it emits only blocks carrying at
// least one image record, and retries preceding days until one does.
type DayRangeScan struct {
	ledger         Ledger
	start          int64
	endBound       int64
	visualOnly     bool
	searchBackDays int
}

// NewDayRangeScan builds the standard forward scan for [start, endBound].
func NewDayRangeScan(ledger Ledger, start, endBound int64) *DayRangeScan {
	return &DayRangeScan{ledger: ledger, start: start, endBound: endBound}
}

// NewVisualDayScan builds a visual-only scan of the UTC day starting at
// dayStart, stepping back up to searchBackDays preceding days until a
// day yields at least one block with image content.
func NewVisualDayScan(ledger Ledger, dayStart int64, searchBackDays int) *DayRangeScan {
	return &DayRangeScan{
		ledger:         ledger,
		start:          dayStart,
		endBound:       dayStart + secondsPerDay - 1,
		visualOnly:     true,
		searchBackDays: searchBackDays,
	}
}

func (s *DayRangeScan) Name() string {
	if s.visualOnly {
		return "day_range_visual"
	}
	return "day_range"
}

// blockPayload is the data field of a newBlock message.
type blockPayload struct {
	Block   datatypes.Block    `json:"block"`
	Records []ClassifiedRecord `json:"records"`
}

func (s *DayRangeScan) Run(ctx context.Context, emit Emitter) error {
	if !s.visualOnly {
		if _, err := s.scanDay(ctx, emit, s.start, s.endBound); err != nil {
			return err
		}
		return emit.Emit(Message{Type: MsgDayStreamComplete})
	}

	for attempt := 0; attempt <= s.searchBackDays; attempt++ {
		shift := int64(attempt) * secondsPerDay
		emitted, err := s.scanDay(ctx, emit, s.start-shift, s.endBound-shift)
		if err != nil {
			return err
		}
		if emitted > 0 {
			return nil
		}
		if attempt < s.searchBackDays {
			if err := emit.Emit(StatusMessage("no visual content found, trying the previous day")); err != nil {
				return err
			}
		}
	}
	return emit.Emit(StatusMessage(fmt.Sprintf(
		"no visual content found within %d days", s.searchBackDays+1)))
}

// scanDay runs one forward pass over [start, endBound] and returns how
// many blocks it emitted. Transiently unreadable heights are skipped;
// only frontier lookup failures and transport write failures abort.
func (s *DayRangeScan) scanDay(ctx context.Context, emit Emitter, start, endBound int64) (int, error) {
	info, err := s.ledger.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching network frontier: %w", err)
	}

	if err := emit.Emit(StatusMessage("locating start height...")); err != nil {
		return 0, err
	}
	startHeight := s.ledger.LocateHeight(ctx, start, info.Height)
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if startHeight > info.Height {
		// Sentinel: the whole window lies beyond the frontier.
		return 0, nil
	}

	emitted := 0
	for height := startHeight; height <= info.Height; height++ {
		// Cancellation checkpoint, once per height before any fetch.
		if err := ctx.Err(); err != nil {
			return emitted, err
		}

		block, err := s.ledger.BlockByHeight(ctx, height)
		if err != nil {
			slog.Warn("Skipping unreadable block", "height", height, "error", err)
			continue
		}
		if block.Timestamp > endBound {
			break
		}

		records := ClassifyAll(s.ledger.RecordsForHeight(ctx, height))
		if s.visualOnly && !hasImage(records) {
			continue
		}
		if err := emit.Emit(Message{
			Type: MsgNewBlock,
			Data: blockPayload{Block: block, Records: records},
		}); err != nil {
			return emitted, err
		}
		emitted++

		if scanned := height - startHeight + 1; scanned%statusEveryBlocks == 0 {
			if err := emit.Emit(StatusMessage(fmt.Sprintf("scanned %d blocks...", scanned))); err != nil {
				return emitted, err
			}
		}
	}
	return emitted, nil
}

func hasImage(records []ClassifiedRecord) bool {
	for _, r := range records {
		if r.Category == CategoryImage {
			return true
		}
	}
	return false
}
