package datatypes

import "strings"

// Tag is a single name/value pair attached to a record.
// Tag order on the wire is preserved in Record.Tags; lookups collapse
// duplicates with last-value-wins.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Block is one entry of the remote append-only ledger. Blocks are fetched
// on demand and never cached past the scan step that needed them.
type Block struct {
	Height    int64 `json:"height"`
	Timestamp int64 `json:"timestamp"` // unix seconds
}

// Record is a single data-bearing entry inside a block. Immutable once
// fetched from the gateway.
type Record struct {
	ID        string `json:"id"`
	Size      int64  `json:"size"`
	Height    int64  `json:"height"`
	Timestamp int64  `json:"timestamp"`
	Tags      []Tag  `json:"tags"`
}

// TagValue returns the value of the named tag, matching the tag name
// case-insensitively. Duplicate names resolve last-value-wins.
func (r Record) TagValue(name string) string {
	value := ""
	for _, t := range r.Tags {
		if strings.EqualFold(t.Name, name) {
			value = t.Value
		}
	}
	return value
}

// TagMap collapses the ordered tag list into a lookup map. Names are
// lowercased; duplicates resolve last-value-wins.
func (r Record) TagMap() map[string]string {
	m := make(map[string]string, len(r.Tags))
	for _, t := range r.Tags {
		m[strings.ToLower(t.Name)] = t.Value
	}
	return m
}

// NetworkInfo is the remote gateway's /info response.
type NetworkInfo struct {
	Height int64 `json:"height"`
	Blocks int64 `json:"blocks"`
}
