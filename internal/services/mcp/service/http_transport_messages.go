package service

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// handleMessages handles POST /messages. It routes JSON-RPC payloads into
// the session named by the session_id query parameter. Responses are not
// returned on the POST; they ride the session's event stream, so this
// endpoint only acknowledges acceptance.
func (t *HTTPTransport) handleMessages(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		http.Error(w, "Missing session_id", http.StatusBadRequest)
		return
	}

	t.sessionsMu.RLock()
	session, exists := t.sessions[sessionID]
	t.sessionsMu.RUnlock()
	if !exists || session == nil {
		http.Error(w, "Invalid session ID", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Failed to read request body: %v", err)
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	msg, err := jsonrpc.DecodeMessage(body)
	if err != nil {
		log.Printf("Invalid JSON-RPC message: %v", err)
		http.Error(w, "Invalid JSON-RPC message", http.StatusBadRequest)
		return
	}
	if _, ok := msg.(*jsonrpc.Response); ok {
		http.Error(w, "Invalid message type: response", http.StatusBadRequest)
		return
	}

	t.touchSession(sessionID)

	// Start the MCP session's read loop if this is its first message.
	t.ensureServerRunning(session)

	// A session can close between the map lookup and delivery. reqChan is
	// buffered, so check for closure first rather than racing the send
	// against it.
	select {
	case <-session.conn.closed:
		http.Error(w, "Session closed", http.StatusGone)
		return
	default:
	}

	select {
	case session.conn.reqChan <- msg:
	case <-session.conn.closed:
		http.Error(w, "Session closed", http.StatusGone)
		return
	case <-r.Context().Done():
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
