package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/car-finder/internal/classifier"
	"github.com/ironsheep/car-finder/internal/config"
	"github.com/ironsheep/car-finder/internal/features"
)

// gridBuilder is a features.Builder whose block (bx, by) holds by*1000+bx.
type gridBuilder struct{}

func (gridBuilder) Geometry() features.Geometry {
	return features.Geometry{PixelsPerCell: 8, CellsPerBlock: 2, WindowSize: 64}
}

func (b gridBuilder) Dense(img image.Image) (*features.Dense, error) {
	g := b.Geometry()
	nbx := img.Bounds().Dx()/g.PixelsPerCell - g.CellsPerBlock + 1
	nby := img.Bounds().Dy()/g.PixelsPerCell - g.CellsPerBlock + 1
	d := features.NewDense(1, nby, nbx, 1)
	for by := 0; by < d.BlocksY; by++ {
		for bx := 0; bx < d.BlocksX; bx++ {
			d.Block(0, by, bx)[0] = float64(by*1000 + bx)
		}
	}
	return d, nil
}

func (gridBuilder) Vectors(patches []features.Patch) ([][]float64, error) {
	out := make([][]float64, len(patches))
	for i, p := range patches {
		out[i] = p.Dense
	}
	return out, nil
}

// oneCarClassifier accepts only the window at block (2, 2), pixels 16-79.
var oneCarClassifier = classifier.Func(func(X [][]float64) ([]float64, error) {
	scores := make([]float64, len(X))
	for i, x := range X {
		scores[i] = -1
		if x[0] == 2002 {
			scores[i] = 1
		}
	}
	return scores, nil
})

func testConfig() *config.Config {
	return &config.Config{
		XStop:         100,
		Windows:       []config.SearchWindow{{YStart: 0, YStop: 100, Scale: 1, Overlap: 0.75}},
		ThreshLow:     0.25,
		ThreshHigh:    0.5,
		History:       3,
		Connectivity:  4,
		Visualization: config.VizCars,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig(), gridBuilder{}, oneCarClassifier, WithVersion("test"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

// createTestImageFile writes a solid-color PNG into a test temp dir and returns its path.
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "frame.png")
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

func TestNew(t *testing.T) {
	s := newTestServer(t)
	if s.cache == nil || s.still == nil || s.streams == nil {
		t.Fatal("New did not initialize the server")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Windows = nil
	if _, err := New(cfg, gridBuilder{}, oneCarClassifier); err == nil {
		t.Error("New should fail for an invalid config")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "car-finder" || info["version"] != "test" {
		t.Errorf("serverInfo: got %v", info)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	tools, ok := resp.Result.(map[string]interface{})["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != 4 {
		t.Errorf("expected 4 tools, got %d", len(tools))
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(t)
	if resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Errorf("notifications should not get a response, got %+v", resp)
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 7, Method: "resources/list"})

	if resp == nil || resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Code: got %d, want -32601", resp.Error.Code)
	}
	if resp.Error.Data != nil {
		t.Errorf("Data should be omitted, got %v", resp.Error.Data)
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 100, color.RGBA{90, 90, 90, 255})

	call, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      3,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      "car_find_image",
			"arguments": map[string]interface{}{"path": path},
		},
	})
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		string(call),
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 responses, got %d:\n%s", len(lines), out.String())
	}

	var parseErr MCPResponse
	if err := json.Unmarshal([]byte(lines[1]), &parseErr); err != nil {
		t.Fatal(err)
	}
	if parseErr.Error == nil || parseErr.Error.Code != -32700 {
		t.Errorf("expected parse error, got %s", lines[1])
	}

	if !strings.Contains(lines[2], `\"x1\": 16`) {
		t.Errorf("tool response missing detection: %s", lines[2])
	}
}
