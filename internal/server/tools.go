package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// renderProperties are the optional output arguments shared by the detection tools.
func renderProperties() map[string]interface{} {
	return map[string]interface{}{
		"output_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional path to write the annotated frame to. Format follows the extension (.png, .jpg, .bmp)",
		},
		"visualization": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"cars", "windows"},
			"description": "Optional rendering mode: 'cars' draws detections, 'windows' adds the heat map and every candidate window. Defaults to the configured mode",
		},
		"include_image": map[string]interface{}{
			"type":        "boolean",
			"description": "Return the annotated frame as base64-encoded PNG",
			"default":     false,
		},
	}
}

func withRender(props map[string]interface{}) map[string]interface{} {
	for k, v := range renderProperties() {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "car_find_image",
			Description: "Find vehicles in a single still image. The image is searched on its own, without the heat history of any stream. Returns detection boxes (inclusive pixel bounds) and search statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withRender(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Decode the file again instead of using the cached copy (default: false)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "car_find_frame",
			Description: "Find vehicles in the next frame of a video stream. Heat from the stream's recent frames is fused with this frame, so detections stabilize over consecutive calls. Frames of one stream must all have the same size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withRender(map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the frame image",
					},
					"stream": map[string]interface{}{
						"type":        "string",
						"description": "Stream name. Each stream keeps its own heat history. Default 'default'",
						"default":     "default",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "car_reset_stream",
			Description: "Forget a stream's heat history, e.g. before feeding frames from a different video.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stream": map[string]interface{}{
						"type":        "string",
						"description": "Stream name. Default 'default'",
						"default":     "default",
					},
				},
			},
		},
		{
			Name:        "car_config",
			Description: "Show the detection configuration in effect (search bands, thresholds, history) and the open streams.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
