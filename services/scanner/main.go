// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/AleutianAI/weavescan/services/scanner/gateway"
	"github.com/AleutianAI/weavescan/services/scanner/handlers"
	"github.com/AleutianAI/weavescan/services/scanner/observability"
)

func main() {
	port := os.Getenv("SCANNER_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	gatewayURL := os.Getenv("GATEWAY_URL")
	// Sanitize: trim quotes and whitespace in case the container runtime
	// passes them literally.
	gatewayURL = strings.Trim(gatewayURL, "\"' ")
	if gatewayURL == "" {
		gatewayURL = "http://localhost:1984"
		slog.Warn("GATEWAY_URL is not set, defaulting to a local gateway", "url", gatewayURL)
	}

	rps := 0.0
	if v := os.Getenv("GATEWAY_RPS"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("FATAL: invalid GATEWAY_RPS %q: %v", v, err)
		}
		rps = parsed
	}

	client := gateway.NewClient(gatewayURL, nil, rps)
	observability.InitMetrics()
	router := handlers.NewRouter(client)

	slog.Info("Scanner service starting", "port", port, "gateway", gatewayURL)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: scanner service failed to start: %v", err)
	}
}
