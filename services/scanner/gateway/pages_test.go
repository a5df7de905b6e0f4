package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

// queryScript serves /records/query from a fixed sequence of responses,
// one per call. A nil entry means "respond 500".
type queryScript struct {
	t         *testing.T
	responses []*datatypes.RecordPage
	calls     []datatypes.RecordQuery
}

func (s *queryScript) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.t, "/records/query", r.URL.Path)
		var q datatypes.RecordQuery
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&q))
		s.calls = append(s.calls, q)

		require.Less(s.t, len(s.calls)-1, len(s.responses), "unscripted query call")
		resp := s.responses[len(s.calls)-1]
		if resp == nil {
			http.Error(w, "gateway unavailable", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(resp)
	})
}

func pageOf(prefix string, count int, next string) *datatypes.RecordPage {
	page := &datatypes.RecordPage{HasNext: next != "", NextCursor: next}
	for i := 0; i < count; i++ {
		page.Records = append(page.Records, datatypes.Record{
			ID: fmt.Sprintf("%s-%d", prefix, i), Height: 500,
		})
	}
	return page
}

func TestRecordsForHeight_AccumulatesPages(t *testing.T) {
	script := &queryScript{t: t, responses: []*datatypes.RecordPage{
		pageOf("p1", 100, "c2"),
		pageOf("p2", 100, "c3"),
		pageOf("p3", 17, ""),
	}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testRPS)
	records := client.RecordsForHeight(context.Background(), 500)

	assert.Len(t, records, 217)
	require.Len(t, script.calls, 3)
	assert.Equal(t, "", script.calls[0].Cursor)
	assert.Equal(t, "c2", script.calls[1].Cursor)
	assert.Equal(t, "c3", script.calls[2].Cursor)
	for _, q := range script.calls {
		assert.Equal(t, int64(500), q.MinHeight)
		assert.Equal(t, int64(500), q.MaxHeight)
	}
}

func TestRecordsForHeight_FallbackReplacesAccumulation(t *testing.T) {
	// Page two fails mid-pagination; the fallback succeeds and its result
	// replaces the records already accumulated, it does not extend them.
	script := &queryScript{t: t, responses: []*datatypes.RecordPage{
		pageOf("p1", 100, "c2"),
		nil,
		pageOf("fb", 60, ""),
	}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testRPS)
	records := client.RecordsForHeight(context.Background(), 500)

	require.Len(t, records, 60)
	assert.Equal(t, "fb-0", records[0].ID)
	// The fallback restarts without a cursor.
	require.Len(t, script.calls, 3)
	assert.Equal(t, "", script.calls[2].Cursor)
}

func TestRecordsForHeight_FallbackFailureKeepsAccumulation(t *testing.T) {
	script := &queryScript{t: t, responses: []*datatypes.RecordPage{
		pageOf("p1", 100, "c2"),
		nil,
		nil,
	}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testRPS)
	records := client.RecordsForHeight(context.Background(), 500)

	require.Len(t, records, 100)
	assert.Equal(t, "p1-0", records[0].ID)
}

func TestRecordsForHeight_NeverReturnsNilOnTotalFailure(t *testing.T) {
	script := &queryScript{t: t, responses: []*datatypes.RecordPage{nil, nil}}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testRPS)
	records := client.RecordsForHeight(context.Background(), 500)

	assert.Empty(t, records)
	assert.Len(t, script.calls, 2, "first page plus one fallback, no retries")
}

func TestRecordsForHeight_PageCeiling(t *testing.T) {
	var responses []*datatypes.RecordPage
	for i := 0; i < maxPagesPerHeight+5; i++ {
		responses = append(responses, pageOf(fmt.Sprintf("p%d", i), 100, fmt.Sprintf("c%d", i+1)))
	}
	script := &queryScript{t: t, responses: responses}
	server := httptest.NewServer(script.handler())
	defer server.Close()

	client := NewClient(server.URL, server.Client(), testRPS)
	records := client.RecordsForHeight(context.Background(), 500)

	assert.Len(t, script.calls, maxPagesPerHeight)
	assert.Len(t, records, maxPagesPerHeight*100)
}
