package scan

import (
	"context"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

// Ledger is the scan-side view of the remote gateway. The gateway
// package provides the production implementation; tests inject fakes.
type Ledger interface {
	// Info returns the current network frontier.
	Info(ctx context.Context) (datatypes.NetworkInfo, error)

	// BlockByHeight fetches one block header. A failed fetch is a
	// transient condition the caller skips around.
	BlockByHeight(ctx context.Context, height int64) (datatypes.Block, error)

	// RecordsForHeight returns every record belonging to one height.
	// Never fails outward: partial or empty results stand in for errors.
	RecordsForHeight(ctx context.Context, height int64) []datatypes.Record

	// LocateHeight returns the smallest height whose block timestamp is
	// >= target, or frontier+1 when the target is beyond all blocks.
	LocateHeight(ctx context.Context, target, frontier int64) int64

	// QueryPage runs one page of a cursor-based record query.
	QueryPage(ctx context.Context, q datatypes.RecordQuery) (datatypes.RecordPage, error)
}

// Emitter delivers protocol messages to the connected client. An
// emitter belongs to exactly one scan and refuses writes once that
// scan is cancelled.
type Emitter interface {
	Emit(msg Message) error
}

// Message is one server -> client websocket message.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Server message types.
const (
	MsgLoadingStatus     = "loadingStatus"
	MsgNewBlock          = "newBlock"
	MsgDayStreamComplete = "dayStreamComplete"
	MsgTowersPartial     = "towers_partial"
	MsgTowers            = "towers"
	MsgError             = "error"
)

// StatusMessage builds a loadingStatus message.
func StatusMessage(text string) Message {
	return Message{Type: MsgLoadingStatus, Message: text}
}

// Strategy is one run of a traversal over the ledger. Run blocks until
// the scan completes, fails, or its context is cancelled. A cancelled
// run returns ctx.Err(); the session treats that as silent termination
// rather than a failure.
type Strategy interface {
	Name() string
	Run(ctx context.Context, emit Emitter) error
}

// Shared traversal tunables. These match the pacing the remote gateway
// tolerates and the flush cadence the client renders smoothly.
const (
	// queryPageSize is the record limit for one cursor page.
	queryPageSize = 100

	// snapshotEveryBlocks re-emits quick-scan buckets on this iteration
	// cadence even when few records arrived.
	snapshotEveryBlocks = 25

	// flushRecordThreshold forces a partial snapshot once this many
	// records were added since the last flush.
	flushRecordThreshold = 20
)
