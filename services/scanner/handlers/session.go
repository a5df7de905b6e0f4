package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/weavescan/pkg/validation"
	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
	"github.com/AleutianAI/weavescan/services/scanner/observability"
	"github.com/AleutianAI/weavescan/services/scanner/scan"
)

var scannerTracer = otel.Tracer("aleutian.scanner.handlers")

// Client parameter bounds. Out-of-range values are clamped, not
// rejected; zero means "use the default".
const (
	defaultSearchBackDays = 7
	maxSearchBackDays     = 30

	minPerTypeLimit30d = 1
	maxPerTypeLimit30d = 2000
	defPerTypeLimit30d = 100

	minPerTypeLimitQuick = 50
	maxPerTypeLimitQuick = 1000
	defPerTypeLimitQuick = 100

	minBlockScanLimit = 200
	maxBlockScanLimit = 20000
	defBlockScanLimit = 1000

	recentWindowDays = 30
)

// streamConn is the slice of a websocket connection the session needs.
// Tests inject an in-memory recorder.
type streamConn interface {
	WriteJSON(v any) error
}

// StreamSession is the per-connection controller. It owns at most one
// active scan: starting a new scan first cancels the previous scan's
// context and only then installs the new one, so at most one
// non-cancelled scan is ever associated with the session.
//
// Per-connection state is exclusively owned by the connection's
// goroutines; the mutexes only coordinate the reader goroutine with the
// scan goroutine it spawned.
type StreamSession struct {
	id     string
	conn   streamConn
	ledger scan.Ledger

	// writeMu serializes writes to the websocket across the reader and
	// the scan goroutine.
	writeMu sync.Mutex

	// mu guards the active scan's cancel function.
	mu     sync.Mutex
	cancel context.CancelFunc

	// now is the session clock; tests pin it.
	now func() time.Time
}

// NewStreamSession binds a session to one connection.
func NewStreamSession(id string, conn streamConn, ledger scan.Ledger) *StreamSession {
	return &StreamSession{id: id, conn: conn, ledger: ledger, now: time.Now}
}

// HandleRequest cancels any running scan and starts the scan the
// request asks for. Invalid requests produce one error message and
// leave any running scan untouched.
func (s *StreamSession) HandleRequest(req datatypes.ScanRequest) {
	strategy, err := s.buildStrategy(req)
	if err != nil {
		slog.Warn("Rejected scan request", "sessionID", s.id, "type", req.Type, "error", err)
		s.write(scan.Message{Type: scan.MsgError, Message: err.Error()})
		return
	}

	ctx := s.installScan()
	slog.Info("Starting scan", "sessionID", s.id, "strategy", strategy.Name())
	go s.runScan(ctx, strategy)
}

// HandleDisconnect cancels the active scan and releases the session.
func (s *StreamSession) HandleDisconnect() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	slog.Info("Session released", "sessionID", s.id)
}

// installScan cancels the previous scan (if any) and returns the new
// scan's context. Cancel-then-install ordering is the single-active-scan
// invariant.
func (s *StreamSession) installScan() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return ctx
}

func (s *StreamSession) runScan(ctx context.Context, strategy scan.Strategy) {
	if m := observability.DefaultMetrics; m != nil {
		m.ActiveScans.Inc()
		defer m.ActiveScans.Dec()
	}
	started := s.now()

	ctx, span := scannerTracer.Start(ctx, "scan."+strategy.Name())
	span.SetAttributes(attribute.String("session.id", s.id))
	defer span.End()

	err := strategy.Run(ctx, &scanEmitter{session: s, ctx: ctx})

	status := "completed"
	switch {
	case ctx.Err() != nil:
		// Cancellation is silent: no message on behalf of a cancelled
		// scan, the replacement scan (or disconnect) already owns the
		// connection.
		status = "cancelled"
		slog.Info("Scan cancelled", "sessionID", s.id, "strategy", strategy.Name())
	case err != nil:
		status = "failed"
		slog.Error("Scan failed", "sessionID", s.id, "strategy", strategy.Name(), "error", err)
		s.write(scan.Message{Type: scan.MsgError, Message: err.Error()})
	default:
		slog.Info("Scan completed", "sessionID", s.id, "strategy", strategy.Name(),
			"duration", s.now().Sub(started).String())
	}

	if m := observability.DefaultMetrics; m != nil {
		m.ScansTotal.WithLabelValues(strategy.Name(), status).Inc()
		m.ScanDurationSeconds.WithLabelValues(strategy.Name()).
			Observe(s.now().Sub(started).Seconds())
	}
}

// write sends one message to the connection regardless of scan state.
// Used for the hello message and for request/scan errors.
func (s *StreamSession) write(msg scan.Message) {
	observability.RecordMessage(msg.Type)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		slog.Warn("Failed to write stream message", "sessionID", s.id, "type", msg.Type, "error", err)
	}
}

// buildStrategy maps a request onto a scan strategy, clamping numeric
// parameters into their allowed ranges.
func (s *StreamSession) buildStrategy(req datatypes.ScanRequest) (scan.Strategy, error) {
	switch req.Type {
	case "get_day":
		start, endBound, err := s.dayBounds(req)
		if err != nil {
			return nil, err
		}
		return scan.NewDayRangeScan(s.ledger, start, endBound), nil

	case "get_day_visual":
		if req.Date == "" {
			return nil, fmt.Errorf("get_day_visual requires a date")
		}
		dayStart, err := validation.ParseDay(req.Date)
		if err != nil {
			return nil, err
		}
		back := s.clamp("searchBackDays", req.SearchBackDays, 1, maxSearchBackDays, defaultSearchBackDays)
		return scan.NewVisualDayScan(s.ledger, dayStart, back), nil

	case "get_towers_recent_30d":
		limit := s.clamp("perTypeLimit", req.PerTypeLimit,
			minPerTypeLimit30d, maxPerTypeLimit30d, defPerTypeLimit30d)
		windowEnd := s.now().Unix()
		windowStart := windowEnd - recentWindowDays*86400
		return scan.NewTaggedForwardScan(s.ledger, windowStart, windowEnd, limit), nil

	case "get_towers_quick":
		limit := s.clamp("perTypeLimit", req.PerTypeLimit,
			minPerTypeLimitQuick, maxPerTypeLimitQuick, defPerTypeLimitQuick)
		blocks := s.clamp("blockScanLimit", req.BlockScanLimit,
			minBlockScanLimit, maxBlockScanLimit, defBlockScanLimit)
		return scan.NewQuickBackwardScan(s.ledger, blocks, limit), nil

	default:
		return nil, fmt.Errorf("unknown request type %q", req.Type)
	}
}

// dayBounds resolves get_day's three addressing forms: explicit start
// and end, explicit start only, or a calendar date. The upper bound is
// the inclusive last second of the window.
func (s *StreamSession) dayBounds(req datatypes.ScanRequest) (int64, int64, error) {
	if req.Date != "" {
		start, err := validation.ParseDay(req.Date)
		if err != nil {
			return 0, 0, err
		}
		return start, start + 86399, nil
	}
	if req.Start <= 0 {
		return 0, 0, fmt.Errorf("get_day requires a start timestamp or a date")
	}
	end := req.End
	if end <= req.Start {
		end = req.Start + 86399
	}
	return req.Start, end, nil
}

func (s *StreamSession) clamp(name string, v, lo, hi, def int) int {
	clamped, changed := validation.ClampInt(v, lo, hi, def)
	if changed {
		slog.Warn("Clamped out-of-range request parameter",
			"sessionID", s.id, "param", name, "requested", v, "clamped", clamped)
	}
	return clamped
}

// scanEmitter forwards one scan's messages to the session connection.
// It refuses to write once the scan's context is cancelled, which is
// what keeps a superseded scan from racing messages onto the stream
// while its in-flight network call drains.
type scanEmitter struct {
	session *StreamSession
	ctx     context.Context
}

func (e *scanEmitter) Emit(msg scan.Message) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	observability.RecordMessage(msg.Type)
	e.session.writeMu.Lock()
	defer e.session.writeMu.Unlock()
	return e.session.conn.WriteJSON(msg)
}
