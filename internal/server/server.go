package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/car-finder/internal/classifier"
	"github.com/ironsheep/car-finder/internal/config"
	"github.com/ironsheep/car-finder/internal/features"
	"github.com/ironsheep/car-finder/internal/finder"
	"github.com/ironsheep/car-finder/internal/imaging"
	"github.com/ironsheep/car-finder/internal/logging"
)

// Server handles MCP protocol communication
type Server struct {
	cfg     *config.Config
	builder features.Builder
	clf     classifier.Classifier
	logger  *zap.SugaredLogger
	version string

	cache *imaging.ImageCache

	// still runs single-image requests. Single mode leaves its history empty.
	still *finder.CarFinder

	mu      sync.Mutex
	streams map[string]*finder.CarFinder
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

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithVersion sets the version reported by initialize.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New creates a server that detects cars with the given configuration,
// feature builder and classifier.
func New(cfg *config.Config, builder features.Builder, clf classifier.Classifier, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		builder: builder,
		clf:     clf,
		logger:  logging.Nop(),
		version: "dev",
		cache:   imaging.NewImageCache(),
		streams: make(map[string]*finder.CarFinder),
	}
	for _, opt := range opts {
		opt(s)
	}

	still, err := s.newFinder()
	if err != nil {
		return nil, err
	}
	s.still = still
	return s, nil
}

func (s *Server) newFinder() (*finder.CarFinder, error) {
	return finder.New(s.cfg, s.builder, s.clf, finder.WithLogger(s.logger))
}

// stream returns the finder of the named stream, creating it on first use.
func (s *Server) stream(name string) (*finder.CarFinder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.streams[name]; ok {
		return f, nil
	}
	f, err := s.newFinder()
	if err != nil {
		return nil, err
	}
	s.streams[name] = f
	s.logger.Debugw("stream opened", "stream", name)
	return f, nil
}

// dropStream forgets the named stream. It reports whether the stream existed.
func (s *Server) dropStream(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.streams[name]
	delete(s.streams, name)
	return ok
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve answers newline-delimited JSON-RPC requests from r on w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warnw("failed to parse request", "error", err)
			if err := encoder.Encode(s.errorResponse(nil, -32700, "Parse error", err.Error())); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
			continue
		}

		resp := s.handleRequest(&req)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			if errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			s.logger.Warnw("failed to encode response", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	s.logger.Debugw("request", "method", req.Method, "id", req.ID)

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
		return s.errorResponse(req.ID, -32601, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
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
				"name":    "car-finder",
				"version": s.version,
			},
		},
	}
}
