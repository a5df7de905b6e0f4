package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRangeScan_StopsAtEndBound(t *testing.T) {
	// Blocks at heights 100-105 with timestamps t0, t0+10, ..., t0+50
	// and an end bound of t0+25: only 100-102 qualify, and the scan
	// must never fetch past the first out-of-bound block.
	const t0 = int64(1_700_000_000)
	ledger := newFakeLedger(105)
	for i := int64(0); i <= 5; i++ {
		ledger.addBlock(100+i, t0+10*i, imageRecord("r", 100+i))
	}

	emitter := &memEmitter{}
	err := NewDayRangeScan(ledger, t0, t0+25).Run(context.Background(), emitter)
	require.NoError(t, err)

	newBlocks := emitter.byType(MsgNewBlock)
	require.Len(t, newBlocks, 3)
	for i, msg := range newBlocks {
		payload, ok := msg.Data.(blockPayload)
		require.True(t, ok)
		assert.Equal(t, int64(100+i), payload.Block.Height)
		assert.Len(t, payload.Records, 1)
	}

	assert.Len(t, emitter.byType(MsgDayStreamComplete), 1,
		"dayStreamComplete emitted exactly once")
	assert.Equal(t, int64(103), ledger.maxBlockFetch(),
		"the block past the bound is fetched once, nothing beyond it")
	assert.Equal(t, []int64{100, 101, 102}, ledger.recordFetches,
		"records fetched only for emitted blocks")
}

func TestDayRangeScan_SkipsUnreadableHeights(t *testing.T) {
	const t0 = int64(1_700_000_000)
	ledger := newFakeLedger(103)
	ledger.addBlock(100, t0)
	ledger.addBlock(102, t0+20)
	ledger.addBlock(103, t0+30)
	ledger.unreadable[101] = true

	emitter := &memEmitter{}
	err := NewDayRangeScan(ledger, t0, t0+86399).Run(context.Background(), emitter)
	require.NoError(t, err)

	newBlocks := emitter.byType(MsgNewBlock)
	require.Len(t, newBlocks, 3, "unreadable height skipped, scan continues")
	assert.Len(t, emitter.byType(MsgDayStreamComplete), 1)
}

func TestDayRangeScan_WindowBeyondFrontier(t *testing.T) {
	const t0 = int64(1_700_000_000)
	ledger := newFakeLedger(10)
	ledger.addBlock(10, t0)

	emitter := &memEmitter{}
	err := NewDayRangeScan(ledger, t0+86400, t0+2*86400).Run(context.Background(), emitter)
	require.NoError(t, err)

	assert.Empty(t, emitter.byType(MsgNewBlock))
	assert.Len(t, emitter.byType(MsgDayStreamComplete), 1,
		"an empty day still completes")
}

func TestVisualDayScan_EmitsOnlyImageBlocks(t *testing.T) {
	const day = int64(1_700_006_400) // divisible into a clean window
	ledger := newFakeLedger(3)
	ledger.addBlock(0, day, audioRecord("a", 0))
	ledger.addBlock(1, day+100, imageRecord("i", 1))
	ledger.addBlock(2, day+200)
	ledger.addBlock(3, day+300, imageRecord("i2", 3))

	emitter := &memEmitter{}
	err := NewVisualDayScan(ledger, day, 7).Run(context.Background(), emitter)
	require.NoError(t, err)

	newBlocks := emitter.byType(MsgNewBlock)
	require.Len(t, newBlocks, 2)
	assert.Empty(t, emitter.byType(MsgDayStreamComplete),
		"visual mode never emits dayStreamComplete")
}

func TestVisualDayScan_SearchesBackwardForImages(t *testing.T) {
	const day = int64(1_700_006_400)
	prev := day - secondsPerDay
	ledger := newFakeLedger(5)
	// Requested day has only audio; the preceding day has an image.
	ledger.addBlock(4, day, audioRecord("a", 4))
	ledger.addBlock(5, day+100)
	ledger.addBlock(2, prev, imageRecord("i", 2))
	ledger.addBlock(3, prev+100)

	emitter := &memEmitter{}
	err := NewVisualDayScan(ledger, day, 7).Run(context.Background(), emitter)
	require.NoError(t, err)

	newBlocks := emitter.byType(MsgNewBlock)
	require.Len(t, newBlocks, 1)
	payload := newBlocks[0].Data.(blockPayload)
	assert.Equal(t, int64(2), payload.Block.Height)
}

func TestVisualDayScan_GivesUpAfterSearchWindow(t *testing.T) {
	const day = int64(1_700_006_400)
	ledger := newFakeLedger(1)
	ledger.addBlock(0, day-10*secondsPerDay)
	ledger.addBlock(1, day-9*secondsPerDay)

	emitter := &memEmitter{}
	err := NewVisualDayScan(ledger, day, 2).Run(context.Background(), emitter)
	require.NoError(t, err)

	assert.Empty(t, emitter.byType(MsgNewBlock))
	statuses := emitter.byType(MsgLoadingStatus)
	require.NotEmpty(t, statuses)
	assert.Contains(t, statuses[len(statuses)-1].Message, "no visual content")
}

func TestDayRangeScan_CancellationStopsEmission(t *testing.T) {
	const t0 = int64(1_700_000_000)
	ledger := newFakeLedger(200)
	for h := int64(0); h <= 200; h++ {
		ledger.addBlock(h, t0+h, imageRecord("r", h))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emitter := &memEmitter{}
	err := NewDayRangeScan(ledger, t0, t0+86399).Run(ctx, emitter)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, emitter.byType(MsgNewBlock))
	assert.Empty(t, emitter.byType(MsgDayStreamComplete))
}
