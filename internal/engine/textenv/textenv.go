// Package textenv implements internal/engine.Environment over a
// WebSocket, exchanging a line-oriented JSON protocol with a remote
// interactive-fiction host process: dial once, then marshal/write a
// request and read the matching response for every call, the same
// request/response-over-a-long-lived-socket shape a realtime session
// client uses.
package textenv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coder/websocket"

	"github.com/nail-agent/nail/internal/engine"
)

var _ engine.Environment = (*Environment)(nil)

// requestMessage is the single outgoing message shape: an operation
// name and, for "step", the command text.
type requestMessage struct {
	Op      string `json:"op"`
	Command string `json:"command,omitempty"`
}

// responseMessage is the single incoming message shape, covering both
// reset and step replies.
type responseMessage struct {
	Obs   string `json:"obs"`
	Score int    `json:"score"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Environment is a WebSocket-backed engine.Environment. It is not safe
// for concurrent use — the decision core drives it from a single
// goroutine — so the mutex here only guards against the rare case of a
// concurrent Close.
type Environment struct {
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// Dial opens a WebSocket connection to a text-adventure host speaking
// this package's request/response protocol.
func Dial(ctx context.Context, url string) (*Environment, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("textenv: dial: %w", err)
	}
	return &Environment{conn: conn}, nil
}

func (e *Environment) roundTrip(ctx context.Context, req requestMessage) (responseMessage, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return responseMessage{}, fmt.Errorf("textenv: marshal request: %w", err)
	}
	if err := e.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return responseMessage{}, fmt.Errorf("textenv: write: %w", err)
	}

	_, raw, err := e.conn.Read(ctx)
	if err != nil {
		return responseMessage{}, fmt.Errorf("textenv: read: %w", err)
	}

	var resp responseMessage
	if err := json.Unmarshal(raw, &resp); err != nil {
		return responseMessage{}, fmt.Errorf("textenv: unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return responseMessage{}, fmt.Errorf("textenv: host error: %s", resp.Error)
	}
	return resp, nil
}

// Reset implements [engine.Environment].
func (e *Environment) Reset(ctx context.Context) (string, error) {
	resp, err := e.roundTrip(ctx, requestMessage{Op: "reset"})
	if err != nil {
		return "", err
	}
	return resp.Obs, nil
}

// Step implements [engine.Environment].
func (e *Environment) Step(ctx context.Context, command string) (string, int, bool, error) {
	resp, err := e.roundTrip(ctx, requestMessage{Op: "step", Command: command})
	if err != nil {
		return "", 0, false, err
	}
	return resp.Obs, resp.Score, resp.Done, nil
}

// Close implements [engine.Environment].
func (e *Environment) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.conn.Close(websocket.StatusNormalClosure, "session closed")
}
