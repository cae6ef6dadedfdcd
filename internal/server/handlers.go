package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/car-finder/internal/config"
	"github.com/ironsheep/car-finder/internal/finder"
	"github.com/ironsheep/car-finder/internal/geometry"
	"github.com/ironsheep/car-finder/internal/imaging"
	"github.com/ironsheep/car-finder/internal/visualize"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "car_find_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Infow("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "car_find_image":
		return s.handleFindImage(args)
	case "car_find_frame":
		return s.handleFindFrame(args)
	case "car_reset_stream":
		return s.handleResetStream(args)
	case "car_config":
		return s.handleConfig(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// FindResult is the outcome of a detection tool call.
type FindResult struct {
	Path   string `json:"path"`
	Stream string `json:"stream,omitempty"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	Detections []geometry.Rectangle `json:"detections"`
	// Windows is the number of positive windows over all bands.
	Windows int `json:"windows"`
	// Candidates is the number of windows examined.
	Candidates    int     `json:"candidates"`
	Regions       int     `json:"regions"`
	Fused         int     `json:"fused"`
	LowThreshold  float64 `json:"low_threshold"`
	HighThreshold float64 `json:"high_threshold"`

	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

type renderArgs struct {
	// OutputPath, when set, receives the rendered frame.
	OutputPath string `json:"output_path"`
	// Visualization overrides the configured mode.
	Visualization string `json:"visualization"`
	// IncludeImage embeds the rendered frame as base64 PNG.
	IncludeImage bool `json:"include_image"`
}

func (a renderArgs) wanted() bool {
	return a.OutputPath != "" || a.IncludeImage
}

type findImageArgs struct {
	Path string `json:"path"`
	// Reload drops the cached copy first, for files changed on disk.
	Reload bool `json:"reload"`
	renderArgs
}

func (s *Server) handleFindImage(args json.RawMessage) (interface{}, error) {
	var a findImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	if a.Reload {
		s.cache.Evict(a.Path)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	res, err := s.still.FindCars(img, true)
	if err != nil {
		return nil, err
	}
	return s.report(s.still, a.Path, "", img, res, a.renderArgs)
}

type findFrameArgs struct {
	Stream string `json:"stream"`
	Path   string `json:"path"`
	renderArgs
}

func (s *Server) handleFindFrame(args json.RawMessage) (interface{}, error) {
	var a findFrameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.Stream == "" {
		a.Stream = "default"
	}

	// Frames are seen once; keep them out of the cache.
	img, err := imaging.Load(a.Path)
	if err != nil {
		return nil, err
	}
	f, err := s.stream(a.Stream)
	if err != nil {
		return nil, err
	}
	res, err := f.FindCars(img, false)
	if err != nil {
		return nil, err
	}
	return s.report(f, a.Path, a.Stream, img, res, a.renderArgs)
}

// report builds the tool result and renders the frame when asked to.
func (s *Server) report(f *finder.CarFinder, path, stream string, img image.Image, res *finder.FrameResult, a renderArgs) (*FindResult, error) {
	out := &FindResult{
		Path:          path,
		Stream:        stream,
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Detections:    res.Detections,
		Windows:       len(res.Windows),
		Candidates:    len(res.Candidates),
		Regions:       res.Regions,
		Fused:         res.Fused,
		LowThreshold:  res.LowThreshold,
		HighThreshold: res.HighThreshold,
	}
	if !a.wanted() {
		return out, nil
	}

	mode := visualize.Mode(s.cfg.Visualization)
	if a.Visualization != "" {
		m, err := visualize.ParseMode(a.Visualization)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	rendered := f.RenderMode(img, res, mode)

	if a.OutputPath != "" {
		if err := imaging.Save(a.OutputPath, rendered); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
	}
	if a.IncludeImage {
		enc, err := imaging.Encode(rendered)
		if err != nil {
			return nil, err
		}
		out.Image = enc
	}
	return out, nil
}

type resetStreamArgs struct {
	Stream string `json:"stream"`
}

func (s *Server) handleResetStream(args json.RawMessage) (interface{}, error) {
	var a resetStreamArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Stream == "" {
		a.Stream = "default"
	}
	existed := s.dropStream(a.Stream)
	return map[string]interface{}{
		"stream": a.Stream,
		"reset":  existed,
	}, nil
}

// ConfigResult describes the server's detection setup.
type ConfigResult struct {
	Config       config.Config `json:"config"`
	FrameHeatCap float64       `json:"frame_heat_cap"`
	Streams      []Stream      `json:"streams"`
}

// Stream is an open frame stream.
type Stream struct {
	Name    string `json:"name"`
	History int    `json:"history"`
}

func (s *Server) handleConfig(_ json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	streams := make([]Stream, 0, len(s.streams))
	for name, f := range s.streams {
		streams = append(streams, Stream{Name: name, History: f.HistoryLen()})
	}
	s.mu.Unlock()
	sort.Slice(streams, func(i, j int) bool { return streams[i].Name < streams[j].Name })

	cfg := s.still.Config()
	return &ConfigResult{
		Config:       cfg,
		FrameHeatCap: cfg.FrameHeatCap(),
		Streams:      streams,
	}, nil
}
