package scan

import (
	"context"
	"fmt"
	"sync"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

// fakeLedger implements Ledger over in-memory fixtures.
type fakeLedger struct {
	mu sync.Mutex

	frontier   int64
	blocks     map[int64]datatypes.Block
	records    map[int64][]datatypes.Record
	unreadable map[int64]bool

	// pages holds scripted query results keyed by content-type prefix
	// ("" for unfiltered queries). Each call pops the next page.
	pages map[string][]datatypes.RecordPage

	infoErr error

	blockFetches  []int64
	recordFetches []int64
	queries       []datatypes.RecordQuery

	// infoGate, when non-nil, blocks Info until closed. Used to park a
	// scan at its first suspension point.
	infoGate chan struct{}
}

func newFakeLedger(frontier int64) *fakeLedger {
	return &fakeLedger{
		frontier:   frontier,
		blocks:     map[int64]datatypes.Block{},
		records:    map[int64][]datatypes.Record{},
		unreadable: map[int64]bool{},
		pages:      map[string][]datatypes.RecordPage{},
	}
}

func (f *fakeLedger) addBlock(height, timestamp int64, records ...datatypes.Record) {
	f.blocks[height] = datatypes.Block{Height: height, Timestamp: timestamp}
	f.records[height] = records
}

func (f *fakeLedger) Info(ctx context.Context) (datatypes.NetworkInfo, error) {
	if f.infoGate != nil {
		select {
		case <-f.infoGate:
		case <-ctx.Done():
			return datatypes.NetworkInfo{}, ctx.Err()
		}
	}
	if f.infoErr != nil {
		return datatypes.NetworkInfo{}, f.infoErr
	}
	return datatypes.NetworkInfo{Height: f.frontier, Blocks: f.frontier + 1}, nil
}

func (f *fakeLedger) BlockByHeight(ctx context.Context, height int64) (datatypes.Block, error) {
	f.mu.Lock()
	f.blockFetches = append(f.blockFetches, height)
	f.mu.Unlock()

	if f.unreadable[height] {
		return datatypes.Block{}, fmt.Errorf("height %d unreadable", height)
	}
	b, ok := f.blocks[height]
	if !ok {
		return datatypes.Block{}, fmt.Errorf("height %d not found", height)
	}
	return b, nil
}

func (f *fakeLedger) RecordsForHeight(ctx context.Context, height int64) []datatypes.Record {
	f.mu.Lock()
	f.recordFetches = append(f.recordFetches, height)
	f.mu.Unlock()
	return f.records[height]
}

func (f *fakeLedger) LocateHeight(ctx context.Context, target, frontier int64) int64 {
	for h := int64(0); h <= frontier; h++ {
		if b, ok := f.blocks[h]; ok && b.Timestamp >= target {
			return h
		}
	}
	return frontier + 1
}

func (f *fakeLedger) QueryPage(ctx context.Context, q datatypes.RecordQuery) (datatypes.RecordPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	queue := f.pages[q.ContentTypePrefix]
	if len(queue) == 0 {
		return datatypes.RecordPage{}, nil
	}
	page := queue[0]
	f.pages[q.ContentTypePrefix] = queue[1:]
	return page, nil
}

func (f *fakeLedger) maxBlockFetch() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := int64(-1)
	for _, h := range f.blockFetches {
		if h > max {
			max = h
		}
	}
	return max
}

// memEmitter records emitted messages.
type memEmitter struct {
	mu   sync.Mutex
	msgs []Message
}

func (e *memEmitter) Emit(msg Message) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
	return nil
}

func (e *memEmitter) byType(msgType string) []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Message
	for _, m := range e.msgs {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

func audioRecord(id string, height int64) datatypes.Record {
	return datatypes.Record{
		ID:     id,
		Height: height,
		Tags:   []datatypes.Tag{{Name: "Content-Type", Value: "audio/mpeg"}},
	}
}

func imageRecord(id string, height int64) datatypes.Record {
	return datatypes.Record{
		ID:     id,
		Height: height,
		Tags:   []datatypes.Tag{{Name: "Content-Type", Value: "image/png"}},
	}
}
