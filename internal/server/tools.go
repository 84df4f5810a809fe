package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// samplingProperties are the arguments shared by every tool that samples wells.
func samplingProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the plate frame (PNG, JPEG, GIF, TIFF or FITS)",
		},
		"rows": map[string]interface{}{
			"type":        "integer",
			"description": "Number of well rows (default from config, 8)",
		},
		"cols": map[string]interface{}{
			"type":        "integer",
			"description": "Number of well columns (default from config, 12)",
		},
		"scan_width": map[string]interface{}{
			"type":        "integer",
			"description": "Vertical extent of the scan bundle in pixels (default 10)",
			"default":     10,
		},
		"scan_length": map[string]interface{}{
			"type":        "integer",
			"description": "Samples per profile (default 40)",
			"default":     40,
		},
		"normalize": map[string]interface{}{
			"type":        "boolean",
			"description": "Divide each aligned profile by its mean (default true)",
			"default":     true,
		},
		"boundary": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"pad", "reject"},
			"description": "How to treat wells whose scan leaves the image (default pad)",
			"default":     "pad",
		},
		"window_start": map[string]interface{}{
			"type":        "integer",
			"description": "First profile index searched for the minimum (default scan_length/4)",
		},
		"window_end": map[string]interface{}{
			"type":        "integer",
			"description": "End (exclusive) of the minimum search window (default 3*scan_length/4)",
		},
		"labels": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": "One label per well in row-major order; defaults to well IDs (A1, A2, ...)",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "plate_load",
			Description: "Load a plate frame and return its dimensions, format, bit depth and intensity range. The frame is cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the plate frame",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_sample_wells",
			Description: "Extract an aligned intensity profile for every well of a rows x cols grid. Profiles are returned in row-major order with their well IDs, centers and alignment shifts.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": samplingProperties(),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "plate_annotate",
			Description: "Render the frame with each well's scan region outlined and labelled. Writes the figure to output when given, otherwise returns it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(samplingProperties(), map[string]interface{}{
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Figure path; the extension selects the format (png, jpg, gif, tif, bmp)",
					},
					"return_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the figure as base64 PNG when output is set",
					},
					"edge_color": map[string]interface{}{
						"type":        "string",
						"description": "Outline colour as hex (default #FFFFFF)",
					},
					"text_color": map[string]interface{}{
						"type":        "string",
						"description": "Label colour as hex (default #FFFFFF)",
					},
					"label_background": map[string]interface{}{
						"type":        "string",
						"description": "Label box colour as hex; omitted for no box",
					},
					"line_width": map[string]interface{}{
						"type":        "integer",
						"description": "Outline width in pixels (default 1)",
					},
					"label_offset": map[string]interface{}{
						"type":        "integer",
						"description": "Label distance above the well center in pixels (default 15)",
					},
					"colorbar": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw an intensity colour bar (default true)",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "plate_plot_profiles",
			Description: "Chart every well's aligned profile against scan position and write it to output (png, svg, pdf, jpg, tif or eps).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(samplingProperties(), map[string]interface{}{
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Chart path; the extension selects the format",
					},
					"title": map[string]interface{}{
						"type":        "string",
						"description": "Chart title",
					},
					"legend": map[string]interface{}{
						"type":        "boolean",
						"description": "Add one legend entry per well (default false)",
					},
					"width": map[string]interface{}{
						"type":        "number",
						"description": "Chart width in inches (default 8)",
					},
					"height": map[string]interface{}{
						"type":        "number",
						"description": "Chart height in inches (default 4)",
					},
				}),
				"required": []string{"path", "output"},
			},
		},
		{
			Name:        "plate_read_id",
			Description: "Read the plate identifier from its label using OCR. Returns 00000 when no identifier is legible.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the plate frame",
					},
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Label region left edge (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Label region top edge (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Label region right edge (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Label region bottom edge (exclusive)",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (default from config, eng)",
					},
				},
				"required": []string{"path"},
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
