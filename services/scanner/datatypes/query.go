package datatypes

// RecordQuery is one page request against the gateway's cursor-based
// record index. A zero Cursor starts from the beginning of the result
// set; MaxHeight of zero means "no upper bound".
type RecordQuery struct {
	MinHeight         int64  `json:"minHeight"`
	MaxHeight         int64  `json:"maxHeight,omitempty"`
	ContentTypePrefix string `json:"contentTypePrefix,omitempty"`
	Cursor            string `json:"cursor,omitempty"`
	Limit             int    `json:"limit"`
}

// RecordPage is the gateway's response to a RecordQuery. When HasNext is
// true, NextCursor resumes the scan on the following request.
type RecordPage struct {
	Records    []Record `json:"records"`
	NextCursor string   `json:"nextCursor,omitempty"`
	HasNext    bool     `json:"hasNext"`
}

// ScanRequest is one client -> server websocket message. Type selects
// the scan strategy; the remaining fields are per-type parameters.
type ScanRequest struct {
	Type string `json:"type"`

	// get_day: explicit unix-second bounds, or a UTC calendar date.
	Start int64  `json:"start,omitempty"`
	End   int64  `json:"end,omitempty"`
	Date  string `json:"date,omitempty"` // YYYY-MM-DD

	// get_day_visual: how many preceding days to retry before giving up.
	SearchBackDays int `json:"searchBackDays,omitempty"`

	// get_towers_recent_30d / get_towers_quick
	PerTypeLimit   int `json:"perTypeLimit,omitempty"`
	BlockScanLimit int `json:"blockScanLimit,omitempty"`
}
