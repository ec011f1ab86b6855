package service

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// handleSSE handles GET /sse. It creates a session, announces the message
// endpoint for that session as the first event, and then streams every
// JSON-RPC message the server produces for the session until the client
// disconnects. The session lives exactly as long as its event stream.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	conn, err := t.Connect(r.Context())
	if err != nil {
		log.Printf("Failed to create session: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	sessionID := conn.SessionID()
	defer t.dropSession(sessionID)

	t.sessionsMu.RLock()
	session := t.sessions[sessionID]
	t.sessionsMu.RUnlock()
	if session == nil {
		http.Error(w, "Failed to retrieve session after creation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// The first event tells the client where to POST messages for this
	// session.
	endpoint := "/messages?session_id=" + url.QueryEscape(sessionID)
	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", endpoint)
	flusher.Flush()

	ctx := r.Context()
	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-session.conn.closed:
			return
		case <-ticker.C:
			// Keep proxies from timing out the stream and keep the session
			// out of idle cleanup.
			t.touchSession(sessionID)
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case msg := <-session.conn.outChan:
			t.touchSession(sessionID)

			data, err := jsonrpc.EncodeMessage(msg)
			if err != nil {
				log.Printf("Failed to encode SSE message: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
