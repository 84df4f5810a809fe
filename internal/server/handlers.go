package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/wellscan/internal/annotate"
	"github.com/ironsheep/wellscan/internal/imaging"
	"github.com/ironsheep/wellscan/internal/plate"
	"github.com/ironsheep/wellscan/internal/plateid"
)

// ErrUnknownTool is returned for a tool name with no handler.
var ErrUnknownTool = errors.New("unknown tool")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_load", "plate_sample_wells").
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
// Tool execution errors return a JSON-RPC error response with code -32000; a
// result that cannot be encoded returns -32603.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	return s.toolResponse(req.ID, params.Name, result)
}

// toolResponse wraps result in MCP's text content.
func (s *Server) toolResponse(id interface{}, name string, result interface{}) *MCPResponse {
	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.log.Error("tool result not encodable", "tool", name, "error", err)
		return s.errorResponse(id, -32603, "Internal error", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Fills unset parameters from the server config
//  3. Loads the frame from cache
//  4. Calls the plate/annotate/plateid function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	switch name {
	case "plate_load":
		return s.handlePlateLoad(args)
	case "plate_sample_wells":
		return s.handleSampleWells(args)
	case "plate_annotate":
		return s.handleAnnotate(args)
	case "plate_plot_profiles":
		return s.handlePlotProfiles(args)
	case "plate_read_id":
		return s.handleReadID(args)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// === Frame Handlers ===

type plateLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handlePlateLoad(args json.RawMessage) (interface{}, error) {
	var a plateLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

// === Sampling Handlers ===

type samplingArgs struct {
	Path        string   `json:"path"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	ScanWidth   int      `json:"scan_width"`
	ScanLength  int      `json:"scan_length"`
	Normalize   *bool    `json:"normalize"`
	Boundary    string   `json:"boundary"`
	WindowStart int      `json:"window_start"`
	WindowEnd   int      `json:"window_end"`
	Labels      []string `json:"labels"`
}

// resolve fills unset arguments from the server config.
func (s *Server) resolve(a samplingArgs) (plate.Grid, plate.Options, error) {
	opts, err := s.cfg.SampleOptions()
	if err != nil {
		return plate.Grid{}, plate.Options{}, err
	}
	grid := s.cfg.PlateGrid()

	if a.Rows != 0 {
		grid.Rows = a.Rows
	}
	if a.Cols != 0 {
		grid.Cols = a.Cols
	}
	if a.ScanWidth != 0 {
		opts.ScanWidth = a.ScanWidth
	}
	if a.ScanLength != 0 {
		opts.ScanLength = a.ScanLength
		// A config window sized for another length no longer applies.
		opts.Window = plate.SearchWindow{}
	}
	if a.Normalize != nil {
		opts.Normalize = *a.Normalize
	}
	if a.Boundary != "" {
		if opts.Boundary, err = plate.ParseBoundaryPolicy(a.Boundary); err != nil {
			return plate.Grid{}, plate.Options{}, err
		}
	}
	if a.WindowStart != 0 || a.WindowEnd != 0 {
		opts.Window = plate.SearchWindow{Start: a.WindowStart, End: a.WindowEnd}
	}
	return grid, opts, nil
}

// sample loads the frame and extracts its well profiles.
func (s *Server) sample(a samplingArgs) (*imaging.Frame, *plate.Result, error) {
	if a.Path == "" {
		return nil, nil, errors.New("path is required")
	}
	grid, opts, err := s.resolve(a)
	if err != nil {
		return nil, nil, err
	}
	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}
	res, err := plate.SampleWells(frame.Plate, grid, opts)
	if err != nil {
		return nil, nil, err
	}

	if res.Overlapping() {
		s.log.Warn("scans of neighbouring wells overlap",
			"path", a.Path, "scan_length", opts.ScanLength, "cols", grid.Cols, "width", frame.Plate.Width)
	}
	if clipped := res.Clipped(); len(clipped) > 0 {
		s.log.Warn("boundary wells padded", "path", a.Path, "wells", clipped)
	}
	s.log.Debug("sampled wells", "path", a.Path, "wells", len(res.Wells))
	return frame, res, nil
}

// labelsFor returns a's labels or the well IDs, checking the count.
func labelsFor(a samplingArgs, res *plate.Result) ([]string, error) {
	if len(a.Labels) == 0 {
		ids := make([]string, len(res.Wells))
		for i, w := range res.Wells {
			ids[i] = w.ID
		}
		return ids, nil
	}
	if len(a.Labels) != len(res.Wells) {
		return nil, fmt.Errorf("%w: %d labels for %d wells", annotate.ErrLabelMismatch, len(a.Labels), len(res.Wells))
	}
	return a.Labels, nil
}

// WellResult is one well in a plate_sample_wells response.
type WellResult struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Row      int       `json:"row"`
	Col      int       `json:"col"`
	CenterX  int       `json:"center_x"`
	CenterY  int       `json:"center_y"`
	MinIndex int       `json:"min_index"`
	Shift    int       `json:"shift"`
	Clipped  bool      `json:"clipped"`
	Region   Region    `json:"region"`
	Profile  []float64 `json:"profile"`
}

// SampleWellsResult is the plate_sample_wells response.
type SampleWellsResult struct {
	Rows        int                `json:"rows"`
	Cols        int                `json:"cols"`
	ScanWidth   int                `json:"scan_width"`
	ScanLength  int                `json:"scan_length"`
	Normalized  bool               `json:"normalized"`
	Boundary    string             `json:"boundary"`
	Window      plate.SearchWindow `json:"window"`
	Overlapping bool               `json:"overlapping"`
	Clipped     []string           `json:"clipped"`
	Wells       []WellResult       `json:"wells"`
}

func (s *Server) handleSampleWells(args json.RawMessage) (interface{}, error) {
	var a samplingArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	_, res, err := s.sample(a)
	if err != nil {
		return nil, err
	}
	labels, err := labelsFor(a, res)
	if err != nil {
		return nil, err
	}

	window, _ := res.Options.Window.Resolve(res.Options.ScanLength)
	out := &SampleWellsResult{
		Rows:        res.Grid.Rows,
		Cols:        res.Grid.Cols,
		ScanWidth:   res.Options.ScanWidth,
		ScanLength:  res.Options.ScanLength,
		Normalized:  res.Options.Normalize,
		Boundary:    res.Options.Boundary.String(),
		Window:      window,
		Overlapping: res.Overlapping(),
		Clipped:     res.Clipped(),
		Wells:       make([]WellResult, len(res.Wells)),
	}
	if out.Clipped == nil {
		out.Clipped = []string{}
	}
	for i, w := range res.Wells {
		out.Wells[i] = WellResult{
			ID:       w.ID,
			Label:    labels[i],
			Row:      w.GridRow,
			Col:      w.GridCol,
			CenterX:  w.Center.Col,
			CenterY:  w.Center.Row,
			MinIndex: w.MinIndex,
			Shift:    w.Shift,
			Clipped:  w.Clipped,
			Region:   Region{X1: w.Region.Min.X, Y1: w.Region.Min.Y, X2: w.Region.Max.X, Y2: w.Region.Max.Y},
			Profile:  w.Profile,
		}
	}
	return out, nil
}

// === Figure Handlers ===

type annotateArgs struct {
	samplingArgs
	Output          string `json:"output"`
	ReturnImage     bool   `json:"return_image"`
	EdgeColor       string `json:"edge_color"`
	TextColor       string `json:"text_color"`
	LabelBackground string `json:"label_background"`
	LineWidth       int    `json:"line_width"`
	LabelOffset     int    `json:"label_offset"`
	Colorbar        *bool  `json:"colorbar"`
}

func (a annotateArgs) style(base annotate.Style) annotate.Style {
	if a.EdgeColor != "" {
		base.EdgeColor = a.EdgeColor
	}
	if a.TextColor != "" {
		base.TextColor = a.TextColor
	}
	if a.LabelBackground != "" {
		base.LabelBackground = a.LabelBackground
	}
	if a.LineWidth != 0 {
		base.LineWidth = a.LineWidth
	}
	if a.LabelOffset != 0 {
		base.LabelOffset = a.LabelOffset
	}
	if a.Colorbar != nil {
		base.Colorbar = *a.Colorbar
	}
	return base
}

// AnnotateResult is the plate_annotate response.
type AnnotateResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Wells       int    `json:"wells"`
	Output      string `json:"output,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	frame, res, err := s.sample(a.samplingArgs)
	if err != nil {
		return nil, err
	}
	labels, err := labelsFor(a.samplingArgs, res)
	if err != nil {
		return nil, err
	}

	fig, err := annotate.Annotate(frame.Plate, res.Centers(), labels,
		res.Options.ScanWidth, res.Options.ScanLength, a.style(s.cfg.Style()))
	if err != nil {
		return nil, err
	}

	out := &AnnotateResult{
		Width:  fig.Bounds().Dx(),
		Height: fig.Bounds().Dy(),
		Wells:  len(res.Wells),
		Output: a.Output,
	}
	if a.Output != "" {
		if err := annotate.Save(fig, a.Output); err != nil {
			return nil, err
		}
		s.log.Info("annotated figure written", "path", a.Output)
	}
	if a.Output == "" || a.ReturnImage {
		if out.ImageBase64, err = annotate.EncodePNGBase64(fig); err != nil {
			return nil, err
		}
		out.MimeType = "image/png"
	}
	return out, nil
}

type plotArgs struct {
	samplingArgs
	Output string  `json:"output"`
	Title  string  `json:"title"`
	Legend bool    `json:"legend"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlotResult is the plate_plot_profiles response.
type PlotResult struct {
	Output string `json:"output"`
	Wells  int    `json:"wells"`
}

func (s *Server) handlePlotProfiles(args json.RawMessage) (interface{}, error) {
	var a plotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Output == "" {
		return nil, errors.New("output is required")
	}
	_, res, err := s.sample(a.samplingArgs)
	if err != nil {
		return nil, err
	}
	labels, err := labelsFor(a.samplingArgs, res)
	if err != nil {
		return nil, err
	}

	opts := annotate.PlotOptions{Title: a.Title, Legend: a.Legend, Width: a.Width, Height: a.Height}
	if err := annotate.PlotProfiles(res, labels, a.Output, opts); err != nil {
		return nil, err
	}
	s.log.Info("profile chart written", "path", a.Output)
	return &PlotResult{Output: a.Output, Wells: len(res.Wells)}, nil
}

// === Plate ID Handlers ===

type readIDArgs struct {
	Path     string `json:"path"`
	X1       int    `json:"x1"`
	Y1       int    `json:"y1"`
	X2       int    `json:"x2"`
	Y2       int    `json:"y2"`
	Language string `json:"language"`
}

// ReadIDResult is the plate_read_id response.
type ReadIDResult struct {
	PlateID string `json:"plate_id"`
	Default bool   `json:"default"`
	Region  Region `json:"region"`
}

// Region is a rectangle in pixel coordinates, max exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (s *Server) handleReadID(args json.RawMessage) (interface{}, error) {
	var a readIDArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	region := image.Rect(a.X1, a.Y1, a.X2, a.Y2)
	if region == (image.Rectangle{}) {
		region = s.cfg.LabelRegion()
	}

	frame, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	raster := frame.Raster()
	if region == (image.Rectangle{}) {
		region = raster.Bounds()
	}

	reader := s.reader
	if t, ok := reader.(*plateid.Tesseract); ok && a.Language != "" && a.Language != t.Language {
		c := *t
		c.Language = a.Language
		reader = &c
	}

	id, err := reader.ReadID(raster, region)
	if err != nil {
		return nil, err
	}
	if id == plateid.DefaultID {
		s.log.Warn("no plate identifier found", "path", a.Path)
	}
	return &ReadIDResult{
		PlateID: id,
		Default: id == plateid.DefaultID,
		Region:  Region{X1: region.Min.X, Y1: region.Min.Y, X2: region.Max.X, Y2: region.Max.Y},
	}, nil
}
