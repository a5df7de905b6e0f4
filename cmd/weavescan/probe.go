package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
)

var (
	probeType      string
	probeDate      string
	probeStart     int64
	probeEnd       int64
	probeLimit     int
	probeBlocks    int
	probeTimeout   time.Duration
	probeRawOutput bool
)

// probeCmd connects to the scanner's websocket endpoint, issues one
// scan request, and prints the stream until a terminal message arrives.
// Doubles as a smoke test against a running deployment.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Issue one scan request over the websocket and print the stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		wsURL, err := websocketURL(config.ServerURL)
		if err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return fmt.Errorf("dialing %s: %w", wsURL, err)
		}
		defer conn.Close()

		req := datatypes.ScanRequest{
			Type:           probeType,
			Date:           probeDate,
			Start:          probeStart,
			End:            probeEnd,
			PerTypeLimit:   probeLimit,
			BlockScanLimit: probeBlocks,
		}
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		logger.Info("probe request sent", "type", probeType, "server", wsURL)

		deadline := time.Now().Add(probeTimeout)
		for {
			_ = conn.SetReadDeadline(deadline)
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return fmt.Errorf("reading stream: %w", err)
			}

			var msg struct {
				Type    string          `json:"type"`
				Message string          `json:"message"`
				Data    json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(raw, &msg); err != nil {
				return fmt.Errorf("malformed stream message: %w", err)
			}
			if probeRawOutput {
				fmt.Println(string(raw))
			} else {
				fmt.Printf("%-18s %s (%d bytes of data)\n", msg.Type, msg.Message, len(msg.Data))
			}

			switch msg.Type {
			case "towers", "dayStreamComplete":
				return nil
			case "error":
				return fmt.Errorf("scan failed: %s", msg.Message)
			}
		}
	},
}

// websocketURL rewrites the configured http(s) server URL to the
// ws(s) scan endpoint.
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server_url %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
		// Already a websocket URL.
	default:
		return "", fmt.Errorf("unsupported server_url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/scan"
	return u.String(), nil
}

func init() {
	probeCmd.Flags().StringVar(&probeType, "type", "get_towers_quick", "request type")
	probeCmd.Flags().StringVar(&probeDate, "date", "", "UTC date (YYYY-MM-DD) for day scans")
	probeCmd.Flags().Int64Var(&probeStart, "start", 0, "start unix timestamp for get_day")
	probeCmd.Flags().Int64Var(&probeEnd, "end", 0, "end unix timestamp for get_day")
	probeCmd.Flags().IntVar(&probeLimit, "per-type-limit", 0, "per-category record limit (0 = server default)")
	probeCmd.Flags().IntVar(&probeBlocks, "block-scan-limit", 0, "block scan bound for get_towers_quick (0 = server default)")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 5*time.Minute, "overall probe deadline")
	probeCmd.Flags().BoolVar(&probeRawOutput, "raw", false, "print raw JSON messages")
	rootCmd.AddCommand(probeCmd)
}
