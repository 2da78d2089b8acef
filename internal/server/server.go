package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/open-edge-platform/geti-sub021/internal/config"
	"github.com/open-edge-platform/geti-sub021/internal/media"
)

// Name and Version identify the server during the MCP handshake.
const (
	Name    = "annotator-mcp"
	Version = "0.1.0"
)

// Server handles MCP protocol communication for a single annotation session.
type Server struct {
	cfg     config.Config
	logger  *zap.Logger
	images  *media.Cache
	session *session
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes used by the server.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// New creates a server using cfg. A nil logger disables logging.
func New(cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		images:  media.NewCache(),
		session: newSession(cfg, logger),
	}
}

// Run serves requests from stdin and writes responses to stdout.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w until r is exhausted or ctx is done. Cancellation is honoured while
// waiting for input.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go readLines(ctx, r, lines, readErr)

	encoder := json.NewEncoder(w)

	for {
		var line []byte
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					if ctxErr := ctx.Err(); ctxErr != nil {
						return ctxErr
					}
					return fmt.Errorf("scanner error: %w", err)
				}
				return nil
			}
			line = l
		}

		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			if err := encoder.Encode(s.errorResponse(nil, codeParseError, "Parse error", err.Error())); err != nil {
				s.logger.Error("failed to encode response", zap.Error(err))
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", zap.Error(err))
			}
		}
	}
}

// readLines sends every line of r to lines, then reports the read error (nil
// at EOF) on errc and closes lines. It stops early when ctx is done.
func readLines(ctx context.Context, r io.Reader, lines chan<- []byte, errc chan<- error) {
	var err error
	defer func() {
		errc <- err
		close(lines)
	}()

	scanner := bufio.NewScanner(r)
	// Annotation lists can be large.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		select {
		case lines <- line:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
	err = scanner.Err()
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	start := time.Now()
	defer func() {
		s.logger.Debug("handled request",
			zap.String("method", req.Method),
			zap.Duration("took", time.Since(start)))
	}()

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    Name,
				"version": Version,
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

// errorResponse creates a JSON-RPC error response. An empty data is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}
