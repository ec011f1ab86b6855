package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Connect implements mcp.Transport.Connect. Each call creates a fresh
// session and connection, so one client identity is tracked across its
// request and event streams without cross-session contamination.
func (t *HTTPTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	sessionID := t.generateSessionID()

	conn := &httpConnection{
		sessionID: sessionID,
		reqChan:   make(chan jsonrpc.Message, defaultChannelBufferSize),
		outChan:   make(chan jsonrpc.Message, defaultChannelBufferSize),
		closed:    make(chan struct{}),
		ready:     make(chan struct{}, 1), // Buffered so the signal doesn't block
	}

	session := &httpSession{
		id:        sessionID,
		conn:      conn,
		createdAt: time.Now(),
		lastUsed:  time.Now(),
	}

	t.sessionsMu.Lock()
	t.sessions[sessionID] = session
	t.sessionsMu.Unlock()

	return conn, nil
}

func (t *HTTPTransport) generateSessionID() string {
	randomReader := rand.Read
	if t != nil && t.randomReader != nil {
		randomReader = t.randomReader
	}
	return generateSessionIDWithRandomRead(randomReader)
}

// dropSession closes a session's connection and removes it from the
// transport. It is safe to call for ids that are already gone.
func (t *HTTPTransport) dropSession(id string) {
	t.sessionsMu.Lock()
	session, ok := t.sessions[id]
	if ok {
		delete(t.sessions, id)
	}
	t.sessionsMu.Unlock()

	t.serverOnceMu.Lock()
	delete(t.serverOnce, id)
	t.serverOnceMu.Unlock()

	if ok {
		_ = session.conn.Close()
	}
}

func (t *HTTPTransport) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sessionsMu.Lock()
			expirationTime := time.Now().Add(-sessionExpirationTime)
			var expired []*httpSession
			for id, session := range t.sessions {
				if session.lastUsed.Before(expirationTime) {
					expired = append(expired, session)
					delete(t.sessions, id)
				}
			}
			t.sessionsMu.Unlock()

			for _, session := range expired {
				t.serverOnceMu.Lock()
				delete(t.serverOnce, session.id)
				t.serverOnceMu.Unlock()
				_ = session.conn.Close()
			}
		}
	}
}

// touchSession refreshes a session's liveness timestamp.
func (t *HTTPTransport) touchSession(id string) {
	t.sessionsMu.Lock()
	if s, ok := t.sessions[id]; ok && s != nil {
		s.lastUsed = time.Now()
	}
	t.sessionsMu.Unlock()
}

// ensureServerRunning connects the MCP server to a session's connection
// exactly once and waits briefly for the read loop to come up.
func (t *HTTPTransport) ensureServerRunning(session *httpSession) {
	if t.server == nil {
		return
	}

	t.serverOnceMu.Lock()
	once, exists := t.serverOnce[session.id]
	if !exists {
		once = &sync.Once{}
		t.serverOnce[session.id] = once
	}
	t.serverOnceMu.Unlock()

	sessionTransport := &sessionTransport{conn: session.conn}

	once.Do(func() {
		go func() {
			serverSession, err := t.server.Connect(t.serverCtx, sessionTransport, nil)
			if err != nil {
				log.Printf("Failed to connect MCP server session %s: %v", session.id, err)
				return
			}
			_ = serverSession.Wait()
		}()
	})

	// Wait for the connection to be ready. The timeout keeps request
	// handling from blocking when readiness only materializes on the first
	// delivered message.
	select {
	case <-session.conn.ready:
	case <-t.readyAfterOrDefault()(t.serverReadyTimeoutOrDefault()):
	case <-t.serverCtx.Done():
	}
}

func (t *HTTPTransport) readyAfterOrDefault() func(time.Duration) <-chan time.Time {
	if t == nil || t.readyAfter == nil {
		return time.After
	}
	return t.readyAfter
}

func (t *HTTPTransport) serverReadyTimeoutOrDefault() time.Duration {
	if t == nil || t.serverReadyTimeout <= 0 {
		return defaultSessionReadyTimeout
	}
	return t.serverReadyTimeout
}

// sessionTransport is a transport that returns a specific connection. It
// lets Server.Connect run against a pre-existing session connection.
type sessionTransport struct {
	conn mcp.Connection
}

// Connect implements mcp.Transport.Connect.
func (st *sessionTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	return st.conn, nil
}

var sessionCounter atomic.Uint64

// generateSessionIDWithRandomRead generates a unique session ID from random
// bytes combined with a counter to prevent collisions.
func generateSessionIDWithRandomRead(randomRead func([]byte) (int, error)) string {
	b := make([]byte, 8)
	if randomRead == nil {
		randomRead = rand.Read
	}
	if _, err := randomRead(b); err != nil {
		// Fallback to timestamp + counter if crypto/rand fails.
		counter := sessionCounter.Add(1)
		return fmt.Sprintf("session_%d_%d", time.Now().UnixNano(), counter)
	}
	counter := sessionCounter.Add(1)
	return fmt.Sprintf("session_%s_%d", hex.EncodeToString(b), counter)
}
