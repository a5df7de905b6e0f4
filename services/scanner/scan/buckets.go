package scan

import "github.com/AleutianAI/weavescan/services/scanner/datatypes"

// Buckets is a per-category, capacity-bounded collection of records.
// Append-only within a scan: once a category is at capacity, further
// offers for it are silently dropped. Not safe for concurrent use; each
// scan owns its own Buckets.
type Buckets struct {
	limit   int
	records map[Category][]datatypes.Record
}

// NewBuckets returns empty buckets with the given per-category capacity.
func NewBuckets(perCategoryLimit int) *Buckets {
	return &Buckets{
		limit:   perCategoryLimit,
		records: make(map[Category][]datatypes.Record, len(MediaCategories)+2),
	}
}

// WantsMore reports whether the category is still below capacity.
func (b *Buckets) WantsMore(c Category) bool {
	return len(b.records[c]) < b.limit
}

// WantsAnyMediaMore reports whether image, video or audio still want
// more. Application and other records are collected opportunistically
// but never keep a scan alive.
func (b *Buckets) WantsAnyMediaMore() bool {
	for _, c := range MediaCategories {
		if b.WantsMore(c) {
			return true
		}
	}
	return false
}

// Offer appends the record to its category's bucket if that category
// still wants more. Returns true when the record was kept.
func (b *Buckets) Offer(r datatypes.Record) bool {
	c := Classify(r)
	if !b.WantsMore(c) {
		return false
	}
	b.records[c] = append(b.records[c], r)
	return true
}

// Len returns the current size of one category's bucket.
func (b *Buckets) Len(c Category) int {
	return len(b.records[c])
}

// Snapshot returns a read-only copy of the current bucket contents,
// keyed by category name, suitable for emission as a towers payload.
func (b *Buckets) Snapshot() map[string][]datatypes.Record {
	out := make(map[string][]datatypes.Record, len(b.records))
	for c, recs := range b.records {
		cp := make([]datatypes.Record, len(recs))
		copy(cp, recs)
		out[string(c)] = cp
	}
	return out
}
