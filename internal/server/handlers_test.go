package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astrogo/fitsio"

	"github.com/ironsheep/wellscan/internal/config"
	"github.com/ironsheep/wellscan/internal/plateid"
)

// fakeReader records the region it was asked to read.
type fakeReader struct {
	id     string
	err    error
	region image.Rectangle
	calls  int
}

func (f *fakeReader) ReadID(img image.Image, region image.Rectangle) (string, error) {
	f.calls++
	f.region = region
	return f.id, f.err
}

// createPlateFile writes a 400x200 grayscale plate with a repeating texture
// and returns its path.
func createPlateFile(t *testing.T) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(100 + x%13)})
		}
	}

	path := filepath.Join(t.TempDir(), "plate.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// createBlankedFITS writes a 400x200 float64 FITS frame of value 100 with a
// NaN blank pixel inside the A1 scan of a 2x4 grid.
func createBlankedFITS(t *testing.T) string {
	t.Helper()

	data := make([]float64, 400*200)
	for i := range data {
		data[i] = 100
	}
	data[50*400+50] = math.NaN()

	var buf bytes.Buffer
	f, err := fitsio.Create(&buf)
	if err != nil {
		t.Fatalf("fitsio.Create failed: %v", err)
	}
	im := fitsio.NewImage(-64, []int{400, 200})
	defer im.Close()
	if err := im.Write(data); err != nil {
		t.Fatalf("image write failed: %v", err)
	}
	if err := f.Write(im); err != nil {
		t.Fatalf("fits write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("fits close failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "blanked.fits")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write fits: %v", err)
	}
	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	params := map[string]interface{}{"name": name, "arguments": args}
	paramsJSON, _ := json.Marshal(params)

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeContent unmarshals the text content of a successful tool response.
func decodeContent(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %+v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
}

func TestHandleToolsCall_PlateLoad(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)

	var info struct {
		Width        int     `json:"width"`
		Height       int     `json:"height"`
		Format       string  `json:"format"`
		MinIntensity float64 `json:"min_intensity"`
		MaxIntensity float64 `json:"max_intensity"`
	}
	decodeContent(t, callTool(t, s, "plate_load", map[string]interface{}{"path": path}), &info)

	if info.Width != 400 || info.Height != 200 {
		t.Errorf("dimensions: got %dx%d, want 400x200", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if info.MinIntensity != 100 || info.MaxIntensity != 112 {
		t.Errorf("range: got [%v,%v], want [100,112]", info.MinIntensity, info.MaxIntensity)
	}
}

func TestHandleToolsCall_SampleWells(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)

	var res SampleWellsResult
	decodeContent(t, callTool(t, s, "plate_sample_wells", map[string]interface{}{
		"path": path, "rows": 2, "cols": 4,
	}), &res)

	if res.Rows != 2 || res.Cols != 4 {
		t.Fatalf("grid: got %dx%d", res.Rows, res.Cols)
	}
	if res.ScanWidth != 10 || res.ScanLength != 40 || !res.Normalized {
		t.Errorf("defaults not applied: %+v", res)
	}
	if res.Window.Start != 10 || res.Window.End != 30 {
		t.Errorf("window: got %+v, want [10,30)", res.Window)
	}
	if res.Overlapping || len(res.Clipped) != 0 {
		t.Errorf("unexpected overlap %v or clipped %v", res.Overlapping, res.Clipped)
	}

	wantIDs := []string{"A1", "A2", "A3", "A4", "B1", "B2", "B3", "B4"}
	if len(res.Wells) != len(wantIDs) {
		t.Fatalf("wells: got %d, want %d", len(res.Wells), len(wantIDs))
	}
	for i, w := range res.Wells {
		if w.ID != wantIDs[i] || w.Label != wantIDs[i] {
			t.Errorf("well %d: id %s label %s, want %s", i, w.ID, w.Label, wantIDs[i])
		}
		if len(w.Profile) != 40 {
			t.Errorf("well %s: profile length %d, want 40", w.ID, len(w.Profile))
		}
	}
	if res.Wells[5].CenterX != 150 || res.Wells[5].CenterY != 150 {
		t.Errorf("B2 center: got (%d,%d), want (150,150)", res.Wells[5].CenterX, res.Wells[5].CenterY)
	}
	if got, want := res.Wells[5].Region, (Region{X1: 130, Y1: 145, X2: 171, Y2: 156}); got != want {
		t.Errorf("B2 region: got %v, want %v", got, want)
	}
}

func TestHandleToolsCall_SampleWells_Labels(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)

	var res SampleWellsResult
	decodeContent(t, callTool(t, s, "plate_sample_wells", map[string]interface{}{
		"path": path, "rows": 1, "cols": 2, "labels": []string{"wt", "mutant"},
	}), &res)
	if res.Wells[0].Label != "wt" || res.Wells[1].Label != "mutant" {
		t.Errorf("labels not paired in order: %+v", res.Wells)
	}

	resp := callTool(t, s, "plate_sample_wells", map[string]interface{}{
		"path": path, "rows": 1, "cols": 2, "labels": []string{"only"},
	})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("label mismatch should fail with -32000, got %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Data.(string), "labels") {
		t.Errorf("error data: %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_SampleWells_ConfigDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Grid = config.Grid{Rows: 1, Cols: 2}
	cfg.Scan.Normalize = false
	s := New(cfg)
	path := createPlateFile(t)

	var res SampleWellsResult
	decodeContent(t, callTool(t, s, "plate_sample_wells", map[string]interface{}{"path": path}), &res)

	if len(res.Wells) != 2 {
		t.Fatalf("wells: got %d, want 2 from config", len(res.Wells))
	}
	if res.Normalized {
		t.Error("normalize should come from config")
	}
	for _, v := range res.Wells[0].Profile {
		if v < 100 || v > 112 {
			t.Fatalf("raw profile value %v outside image range", v)
		}
	}
}

func TestHandleToolsCall_SampleWells_OverlapAndPad(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)

	var res SampleWellsResult
	decodeContent(t, callTool(t, s, "plate_sample_wells", map[string]interface{}{
		"path": path, "rows": 2, "cols": 4, "scan_length": 150,
	}), &res)

	if !res.Overlapping {
		t.Error("scan length above column spacing should report overlap")
	}
	if len(res.Clipped) == 0 {
		t.Error("edge wells should be reported as clipped")
	}
	if res.Window.Start != 37 || res.Window.End != 112 {
		t.Errorf("window should follow scan length: got %+v", res.Window)
	}
}

func TestHandleToolsCall_SampleWells_Errors(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"non-existent file", map[string]interface{}{"path": "/nonexistent/plate.png"}},
		{"bad boundary", map[string]interface{}{"path": path, "boundary": "wrap"}},
		{"reject clipped", map[string]interface{}{"path": path, "rows": 2, "cols": 4, "scan_length": 150, "boundary": "reject"}},
		{"grid too fine", map[string]interface{}{"path": path, "rows": 500, "cols": 4}},
		{"window outside scan", map[string]interface{}{"path": path, "window_start": 30, "window_end": 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "plate_sample_wells", tt.args)
			if resp.Error == nil {
				t.Fatal("expected tool error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_Annotate(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)
	out := filepath.Join(t.TempDir(), "figures", "plate.png")

	var res AnnotateResult
	decodeContent(t, callTool(t, s, "plate_annotate", map[string]interface{}{
		"path": path, "rows": 2, "cols": 4, "output": out, "colorbar": false, "edge_color": "#FF0000",
	}), &res)

	if res.Output != out {
		t.Errorf("output: got %s", res.Output)
	}
	if res.ImageBase64 != "" {
		t.Error("image should not be returned when written to output")
	}
	if res.Width != 400 || res.Height != 200 || res.Wells != 8 {
		t.Errorf("unexpected result: %+v", res)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("figure not written: %v", err)
	}
	defer f.Close()
	fig, err := png.Decode(f)
	if err != nil {
		t.Fatalf("figure is not a PNG: %v", err)
	}
	// A1 scan region outline starts at (50-20, 50-5).
	if r, g, b, _ := fig.At(30, 45).RGBA(); r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("outline pixel: got (%d,%d,%d), want red", r>>8, g>>8, b>>8)
	}
}

func TestHandleToolsCall_Annotate_ReturnsImage(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)

	var res AnnotateResult
	decodeContent(t, callTool(t, s, "plate_annotate", map[string]interface{}{
		"path": path, "rows": 1, "cols": 2,
	}), &res)

	if res.ImageBase64 == "" || res.MimeType != "image/png" {
		t.Fatalf("expected inline PNG, got %+v", res)
	}
	if res.Width <= 400 {
		t.Errorf("default colour bar should widen the figure, width %d", res.Width)
	}
}

func TestHandleToolsCall_PlotProfiles(t *testing.T) {
	s := New(nil)
	path := createPlateFile(t)
	out := filepath.Join(t.TempDir(), "profiles.svg")

	var res PlotResult
	decodeContent(t, callTool(t, s, "plate_plot_profiles", map[string]interface{}{
		"path": path, "rows": 2, "cols": 4, "output": out, "title": "plate", "legend": true,
	}), &res)

	if res.Wells != 8 || res.Output != out {
		t.Errorf("unexpected result: %+v", res)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("chart not written: %v", err)
	}

	resp := callTool(t, s, "plate_plot_profiles", map[string]interface{}{"path": path})
	if resp.Error == nil {
		t.Error("missing output should fail")
	}
}

func TestHandleToolsCall_ReadID(t *testing.T) {
	reader := &fakeReader{id: "PL-0042"}
	s := New(nil, WithReader(reader))
	path := createPlateFile(t)

	var res ReadIDResult
	decodeContent(t, callTool(t, s, "plate_read_id", map[string]interface{}{
		"path": path, "x1": 10, "y1": 5, "x2": 110, "y2": 45,
	}), &res)

	if res.PlateID != "PL-0042" || res.Default {
		t.Errorf("unexpected result: %+v", res)
	}
	if reader.region != image.Rect(10, 5, 110, 45) {
		t.Errorf("region passed to reader: %v", reader.region)
	}
}

func TestHandleToolsCall_ReadID_Defaults(t *testing.T) {
	reader := &fakeReader{id: plateid.DefaultID}
	cfg := config.Default()
	s := New(cfg, WithReader(reader))
	path := createPlateFile(t)

	var res ReadIDResult
	decodeContent(t, callTool(t, s, "plate_read_id", map[string]interface{}{"path": path}), &res)
	if !res.Default {
		t.Error("DefaultID should be flagged")
	}
	if reader.region != image.Rect(0, 0, 400, 200) {
		t.Errorf("zero region should read the whole frame, got %v", reader.region)
	}

	cfg.PlateID.Region = config.Region{X0: 300, Y0: 0, X1: 400, Y1: 40}
	decodeContent(t, callTool(t, s, "plate_read_id", map[string]interface{}{"path": path}), &res)
	if reader.region != image.Rect(300, 0, 400, 40) {
		t.Errorf("config region not used, got %v", reader.region)
	}
}

func TestHandleToolsCall_ReadID_Error(t *testing.T) {
	reader := &fakeReader{err: plateid.ErrInvalidRegion}
	s := New(nil, WithReader(reader))
	path := createPlateFile(t)

	resp := callTool(t, s, "plate_read_id", map[string]interface{}{"path": path, "x1": 0, "y1": 0, "x2": 900, "y2": 10})
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected tool error, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New(nil)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected -32602, got %+v", resp.Error)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New(nil)

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("got %v, want ErrUnknownTool", err)
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New(nil)

	for _, name := range []string{"plate_load", "plate_sample_wells", "plate_annotate", "plate_plot_profiles", "plate_read_id"} {
		if _, err := s.executeTool(name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("executeTool(%s) should fail for invalid JSON", name)
		}
	}
}

func TestHandleToolsCall_FITSBlankPixels(t *testing.T) {
	s := New(nil)
	path := createBlankedFITS(t)

	var info struct {
		Format       string  `json:"format"`
		MinIntensity float64 `json:"min_intensity"`
		MaxIntensity float64 `json:"max_intensity"`
	}
	decodeContent(t, callTool(t, s, "plate_load", map[string]interface{}{"path": path}), &info)
	if info.Format != "fits" || info.MinIntensity != 100 || info.MaxIntensity != 100 {
		t.Errorf("unexpected frame info: %+v", info)
	}

	for _, normalize := range []bool{true, false} {
		resp := callTool(t, s, "plate_sample_wells", map[string]interface{}{
			"path": path, "rows": 2, "cols": 4, "normalize": normalize,
		})
		if resp.Error == nil || resp.Error.Code != -32000 {
			t.Fatalf("normalize=%v: expected tool error, got %+v", normalize, resp.Error)
		}
		if data := resp.Error.Data.(string); !strings.Contains(data, "non-finite") || !strings.Contains(data, "A1") {
			t.Errorf("normalize=%v: error data %q", normalize, data)
		}
	}
}

func TestToolResponse_Unencodable(t *testing.T) {
	s := New(nil)

	resp := s.toolResponse(7, "plate_sample_wells", map[string]float64{"mean": math.NaN()})
	if resp.Error == nil || resp.Error.Code != -32603 {
		t.Fatalf("expected -32603, got %+v", resp.Error)
	}
	if resp.ID != 7 {
		t.Errorf("ID: got %v, want 7", resp.ID)
	}

	ok := s.toolResponse(8, "plate_load", map[string]int{"width": 3})
	if ok.Error != nil {
		t.Fatalf("unexpected error: %+v", ok.Error)
	}
}
