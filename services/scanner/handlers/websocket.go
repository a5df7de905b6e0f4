package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/AleutianAI/weavescan/services/scanner/datatypes"
	"github.com/AleutianAI/weavescan/services/scanner/observability"
	"github.com/AleutianAI/weavescan/services/scanner/scan"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 256 * 1024,
}

// HandleScanWebSocket upgrades the connection and runs the session read
// loop. One message in = one scan request; each request supersedes the
// previous scan. The loop exits on read error (client gone), which
// cancels whatever scan is still running.
func HandleScanWebSocket(ledger scan.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		sessionID := uuid.New().String()
		session := NewStreamSession(sessionID, ws, ledger)
		slog.Info("Websocket client connected", "sessionID", sessionID)
		if m := observability.DefaultMetrics; m != nil {
			m.SessionsActive.Inc()
			defer m.SessionsActive.Dec()
		}

		session.write(scan.Message{
			Type: "session_created",
			Data: gin.H{"sessionId": sessionID},
		})

		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				slog.Info("Websocket client disconnected", "sessionID", sessionID, "error", err.Error())
				break
			}

			var req datatypes.ScanRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				// Malformed JSON costs the client one error message,
				// not the connection.
				slog.Warn("Malformed scan request", "sessionID", sessionID, "error", err)
				session.write(scan.Message{Type: scan.MsgError, Message: "malformed request: " + err.Error()})
				continue
			}
			session.HandleRequest(req)
		}

		session.HandleDisconnect()
	}
}
