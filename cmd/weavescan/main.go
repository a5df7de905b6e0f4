// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// weavescan is the operator CLI for the scanner service: gateway
// inspection (info, locate) and a websocket probe that issues one scan
// request and prints the resulting stream.
package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/weavescan/pkg/logging"
)

var config Config
var logger *logging.Logger

var rootCmd = &cobra.Command{
	Use:   "weavescan",
	Short: "Operator tooling for the weavescan scanner service",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "weavescan.yaml",
		"path to the yaml config file (optional)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		config = cfg

		logger = logging.New(logging.Config{
			Level:   logging.LevelInfo,
			LogDir:  config.LogDir,
			Service: "cli",
		})
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	}
}

var configPath string
