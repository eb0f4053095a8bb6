package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/ironsheep/livetext-viewer/internal/imaging"
	"github.com/ironsheep/livetext-viewer/internal/livetext"
	"github.com/ironsheep/livetext-viewer/internal/ocr"
	"github.com/ironsheep/livetext-viewer/internal/render"
	"github.com/ironsheep/livetext-viewer/internal/transform"
)

// ProtocolVersion is reported by initialize.
const ProtocolVersion = "2025-01-01"

// Request represents an incoming JSON-RPC request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Notification represents an outgoing notification (no ID)
type Notification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// JSON-RPC error codes.
const (
	CodeMethodNotFound  = -32601
	CodeInvalidParams   = -32602
	CodeOperationFailed = -32000
)

// TextCopier puts selected text somewhere the user can paste it from.
type TextCopier interface {
	Copy(text string) error
}

// RotationPersister is told about every effective rotation.
type RotationPersister interface {
	SetPath(path string)
	Rotated(delta int) error
}

// Deps are the collaborators a Server drives. Engine and Analyzer are
// required; the rest are optional.
type Deps struct {
	Engine    *transform.Engine
	Analyzer  *livetext.Analyzer
	Cache     *imaging.ImageCache
	Persister RotationPersister
	Copier    TextCopier
	Style     render.Style
	Logger    *slog.Logger

	// Name and Version identify the server in initialize.
	Name    string
	Version string

	// Backend names the live text backend in use; OCR describes Tesseract.
	Backend string
	OCR     ocr.Info
}

// Server exposes the viewer over line-delimited JSON-RPC 2.0.
//
// Requests are handled one at a time on the goroutine running Run, which
// is the only goroutine touching the transform engine. Analyzer completions
// arrive on worker goroutines and are written out as notifications under
// the same lock as responses.
type Server struct {
	deps   Deps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	outMu sync.Mutex
	enc   *json.Encoder

	routes map[string]handlerFunc

	path     string
	img      image.Image
	selected int

	unsubscribe []func()
}

type handlerFunc func(params json.RawMessage) (interface{}, error)

// New creates a server over deps and subscribes to engine and analyzer
// events.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Cache == nil {
		deps.Cache = imaging.NewImageCache()
	}
	if deps.Name == "" {
		deps.Name = "livetext-viewer"
	}
	if deps.Style == (render.Style{}) {
		deps.Style = render.DefaultStyle()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		deps:     deps,
		logger:   deps.Logger,
		ctx:      ctx,
		cancel:   cancel,
		selected: -1,
	}
	s.routes = s.handlers()
	s.unsubscribe = append(s.unsubscribe,
		deps.Engine.Subscribe(s.onEngineEvent),
		deps.Analyzer.OnFinished(s.onAnalyzeFinished),
	)
	return s
}

// Close cancels analysis started through the server and drops its
// subscriptions. It does not close the engine or analyzer.
func (s *Server) Close() {
	s.cancel()
	for _, u := range s.unsubscribe {
		u()
	}
	s.unsubscribe = nil
}

// Run reads requests from r and writes responses and notifications to w
// until r is exhausted.
func (s *Server) Run(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.outMu.Lock()
	s.enc = json.NewEncoder(w)
	s.outMu.Unlock()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		if resp := s.handleRequest(&req); resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) write(v interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.enc == nil {
		return
	}
	if err := s.enc.Encode(v); err != nil {
		s.logger.Warn("failed to encode message", "error", err)
	}
}

// notify sends a notification. Before Run it is dropped.
func (s *Server) notify(method string, params interface{}) {
	s.write(&Notification{JSONRPC: "2.0", Method: method, Params: params})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.result(req.ID, s.initializeResult())
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "ping":
		return s.result(req.ID, map[string]interface{}{})
	case "commands/list":
		return s.result(req.ID, map[string]interface{}{"commands": CommandDefinitions()})
	}

	h, ok := s.routes[req.Method]
	if !ok {
		return s.errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}

	result, err := h(req.Params)
	if err != nil {
		var pe *paramError
		if errors.As(err, &pe) {
			return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", pe.Error())
		}
		s.logger.Debug("request failed", "method", req.Method, "error", err)
		return s.errorResponse(req.ID, CodeOperationFailed, "Operation failed", err.Error())
	}
	return s.result(req.ID, result)
}

func (s *Server) initializeResult() map[string]interface{} {
	return map[string]interface{}{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]interface{}{
			"viewer": map[string]interface{}{},
			"livetext": map[string]interface{}{
				"backend": s.deps.Backend,
				"ocr":     s.deps.OCR,
				"copy":    s.deps.Copier != nil,
			},
		},
		"serverInfo": map[string]interface{}{
			"name":    s.deps.Name,
			"version": s.deps.Version,
		},
	}
}

func (s *Server) result(id interface{}, v interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: v}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *Response {
	e := &RPCError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &Response{JSONRPC: "2.0", ID: id, Error: e}
}

// paramError marks a request whose parameters could not be used.
type paramError struct {
	msg string
}

func (e *paramError) Error() string { return e.msg }

func invalidParams(format string, args ...interface{}) error {
	return &paramError{msg: fmt.Sprintf(format, args...)}
}

// decodeParams unmarshals raw into v. Missing params leave v untouched.
func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidParams("%v", err)
	}
	return nil
}
