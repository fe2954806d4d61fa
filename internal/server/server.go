// internal/server/server.go
// Package server runs the MCP stdio transport: JSON-RPC 2.0 messages, either
// newline-delimited (standard MCP stdio) or Content-Length framed. Dispatch
// itself lives in the gateway; this loop only frames, routes methods, and
// keeps the stream alive.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mwiater/hublink/internal/gateway"
	"github.com/mwiater/hublink/internal/logging"
)

const (
	serverName    = "hublink"
	serverVersion = "0.1.0"
	// defaultProtocolVersion is reported when the client does not name one.
	defaultProtocolVersion = "2025-03-26"
)

type framing int

const (
	framingLine framing = iota
	framingContentLength
)

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonrpcResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id,omitempty"`
	Result  any           `json:"result,omitempty"`
	Error   *jsonrpcError `json:"error,omitempty"`
}

// toolsCallParams carries the tools/call request payload.
type toolsCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
}

// Server serves one gateway over a JSON-RPC stdio stream.
type Server struct {
	gw      *gateway.Gateway
	framing framing
}

// New wraps a gateway for serving.
func New(gw *gateway.Gateway) *Server {
	return &Server{gw: gw}
}

// Run reads requests until EOF or context cancellation. A malformed frame
// ends the stream; a failed request does not. Responses use the framing the
// client spoke first.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	w := bufio.NewWriter(out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := s.readMessage(r)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			_ = s.writeMessage(w, jsonrpcResponse{JSONRPC: "2.0", Error: &jsonrpcError{Code: -32000, Message: err.Error()}})
			return err
		}
		if req.ID == nil {
			// Notification; nothing to answer.
			logging.Debugf("notification %s", req.Method)
			continue
		}
		if err := s.handleRequest(ctx, req, w); err != nil {
			logging.Errorf("request %s failed: %v", req.Method, err)
			_ = s.writeMessage(w, makeError(req.ID, -32000, err.Error()))
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req *jsonrpcRequest, w *bufio.Writer) error {
	switch req.Method {
	case "initialize":
		var p initializeParams
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params, &p)
		}
		if p.ProtocolVersion == "" {
			p.ProtocolVersion = defaultProtocolVersion
		}
		result := map[string]any{
			"protocolVersion": p.ProtocolVersion,
			"serverInfo":      map[string]any{"name": serverName, "version": serverVersion},
			"capabilities":    map[string]any{"tools": map[string]any{}},
		}
		return s.writeMessage(w, makeResult(req.ID, result))

	case "ping":
		return s.writeMessage(w, makeResult(req.ID, map[string]any{}))

	case "tools/list":
		return s.writeMessage(w, makeResult(req.ID, map[string]any{"tools": s.gw.Tools()}))

	case "tools/call":
		var p toolsCallParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return s.writeMessage(w, makeError(req.ID, -32602, "Invalid params"))
			}
		}
		content := s.gw.Dispatch(ctx, p.Name, p.Arguments)
		return s.writeMessage(w, makeResult(req.ID, map[string]any{"content": content}))
	}

	return s.writeMessage(w, makeError(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method)))
}

func makeResult(id any, result any) jsonrpcResponse {
	return jsonrpcResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func makeError(id any, code int, msg string) jsonrpcResponse {
	return jsonrpcResponse{JSONRPC: "2.0", ID: id, Error: &jsonrpcError{Code: code, Message: msg}}
}

func (s *Server) writeMessage(w *bufio.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if s.framing == framingContentLength {
		if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	} else {
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}

// readMessage sniffs the framing from the first byte: a JSON object start
// means newline-delimited messages, anything else a Content-Length header
// block.
func (s *Server) readMessage(r *bufio.Reader) (*jsonrpcRequest, error) {
	head, err := r.Peek(1)
	if err != nil {
		return nil, err
	}
	if head[0] == '{' {
		s.framing = framingLine
		return readLineMessage(r)
	}
	s.framing = framingContentLength
	return readFramedMessage(r)
}

func readLineMessage(r *bufio.Reader) (*jsonrpcRequest, error) {
	line, err := r.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(strings.TrimSpace(string(line))) == 0) {
		return nil, err
	}
	var req jsonrpcRequest
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func readFramedMessage(r *bufio.Reader) (*jsonrpcRequest, error) {
	headers := map[string]string{}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
		s := strings.TrimRight(line, "\r\n")
		if s == "" {
			break
		}
		if i := strings.IndexByte(s, ':'); i >= 0 {
			key := strings.ToLower(strings.TrimSpace(s[:i]))
			val := strings.TrimSpace(s[i+1:])
			headers[key] = val
		}
	}

	clStr, ok := headers["content-length"]
	if !ok {
		return nil, fmt.Errorf("missing Content-Length")
	}
	var length int
	if _, err := fmt.Sscanf(clStr, "%d", &length); err != nil {
		return nil, fmt.Errorf("invalid Content-Length: %v", err)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	var req jsonrpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
