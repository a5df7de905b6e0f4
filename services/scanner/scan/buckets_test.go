package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

func TestBuckets_CapacityIsNeverExceeded(t *testing.T) {
	b := NewBuckets(3)

	for i := 0; i < 10; i++ {
		b.Offer(audioRecord("a", int64(i)))
	}

	assert.Equal(t, 3, b.Len(CategoryAudio))
	assert.False(t, b.WantsMore(CategoryAudio))
	// Entries kept are the first three offered, never evicted.
	snap := b.Snapshot()
	assert.Equal(t, "a", snap["audio"][0].ID)
	assert.Len(t, snap["audio"], 3)
}

func TestBuckets_OfferReportsAcceptance(t *testing.T) {
	b := NewBuckets(1)

	assert.True(t, b.Offer(imageRecord("first", 1)))
	assert.False(t, b.Offer(imageRecord("second", 2)), "full category must drop silently")
	assert.True(t, b.Offer(audioRecord("other-cat", 3)))
}

func TestBuckets_WantsAnyMediaMore(t *testing.T) {
	b := NewBuckets(1)

	assert.True(t, b.WantsAnyMediaMore())
	b.Offer(imageRecord("i", 1))
	b.Offer(audioRecord("a", 1))
	assert.True(t, b.WantsAnyMediaMore(), "video still open")

	b.Offer(datatypes.Record{ID: "v", Tags: []datatypes.Tag{
		{Name: "Content-Type", Value: "video/mp4"},
	}})
	assert.False(t, b.WantsAnyMediaMore())

	// application and other never keep a scan alive.
	assert.True(t, b.WantsMore(CategoryApplication))
	assert.True(t, b.WantsMore(CategoryOther))
}

func TestBuckets_SnapshotIsACopy(t *testing.T) {
	b := NewBuckets(5)
	b.Offer(imageRecord("i1", 1))

	snap := b.Snapshot()
	snap["image"][0].ID = "mutated"
	snap["image"] = append(snap["image"], imageRecord("i2", 2))

	fresh := b.Snapshot()
	assert.Len(t, fresh["image"], 1)
	assert.Equal(t, "i1", fresh["image"][0].ID)
}
