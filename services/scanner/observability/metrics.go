// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the scanner
// service: scan lifecycle counters, emitted message counters, gateway
// request counters, and scan duration histograms.
//
// Metrics are exposed via the /metrics endpoint. All operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "aleutian"
const scannerSubsystem = "scanner"

// ScannerMetrics holds all Prometheus metrics for scan operations.
type ScannerMetrics struct {
	// ScansTotal counts scans by strategy and final status.
	// Labels: strategy (day_range, day_range_visual, quick_backward,
	// tagged_forward), status (completed, failed, cancelled)
	ScansTotal *prometheus.CounterVec

	// MessagesTotal counts stream messages emitted by type.
	// Labels: type (loadingStatus, newBlock, towers_partial, ...)
	MessagesTotal *prometheus.CounterVec

	// GatewayRequestsTotal counts remote gateway calls.
	// Labels: endpoint, status (ok, error)
	GatewayRequestsTotal *prometheus.CounterVec

	// ScanDurationSeconds measures wall time of finished scans.
	// Labels: strategy
	ScanDurationSeconds *prometheus.HistogramVec

	// ActiveScans tracks scans currently running across all sessions.
	ActiveScans prometheus.Gauge

	// SessionsActive tracks open websocket sessions.
	SessionsActive prometheus.Gauge
}

// DefaultMetrics is the singleton instance, initialized by InitMetrics().
var DefaultMetrics *ScannerMetrics

// InitMetrics creates and registers all scanner metrics. Call once at
// service startup, before the first scan runs.
func InitMetrics() *ScannerMetrics {
	m := &ScannerMetrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: scannerSubsystem,
			Name:      "scans_total",
			Help:      "Scans started, by strategy and final status.",
		}, []string{"strategy", "status"}),

		MessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: scannerSubsystem,
			Name:      "messages_total",
			Help:      "Stream messages emitted to clients, by message type.",
		}, []string{"type"}),

		GatewayRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: scannerSubsystem,
			Name:      "gateway_requests_total",
			Help:      "Remote gateway requests, by endpoint and outcome.",
		}, []string{"endpoint", "status"}),

		ScanDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: scannerSubsystem,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of finished scans.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"strategy"}),

		ActiveScans: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: scannerSubsystem,
			Name:      "active_scans",
			Help:      "Scans currently running.",
		}),

		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: scannerSubsystem,
			Name:      "sessions_active",
			Help:      "Open websocket sessions.",
		}),
	}
	DefaultMetrics = m
	return m
}

// RecordGatewayRequest increments the gateway request counter if metrics
// are initialized. Safe to call from packages that may run before (or
// without) InitMetrics, such as tests.
func RecordGatewayRequest(endpoint string, ok bool) {
	if DefaultMetrics == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	DefaultMetrics.GatewayRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordMessage increments the emitted message counter if metrics are
// initialized.
func RecordMessage(msgType string) {
	if DefaultMetrics == nil {
		return
	}
	DefaultMetrics.MessagesTotal.WithLabelValues(msgType).Inc()
}
