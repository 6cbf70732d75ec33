package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/autocrop/internal/batch"
	"github.com/ironsheep/autocrop/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_autocrop").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Cropping
	case "image_content_bounds":
		return s.handleImageContentBounds(args)
	case "image_autocrop":
		return s.handleImageAutoCrop(ctx, args)
	case "image_autocrop_batch":
		return s.handleImageAutoCropBatch(ctx, args)
	case "image_autocrop_preview":
		return s.handleImageAutoCropPreview(args)
	case "image_crop":
		return s.handleImageCrop(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, treating absent arguments as empty.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

// === Cropping Handlers ===

// cropOptionArgs are the optional tuning arguments shared by the crop tools.
// Absent fields keep the defaults.
type cropOptionArgs struct {
	Threshold      *int   `json:"threshold"`
	Padding        *int   `json:"padding"`
	Flatten        *bool  `json:"flatten"`
	Mode           string `json:"mode"`
	Metric         string `json:"metric"`
	Corner         string `json:"corner"`
	Background     string `json:"background"`
	AlphaThreshold *int   `json:"alpha_threshold"`
}

func (a cropOptionArgs) options() (imaging.Options, error) {
	o := imaging.DefaultOptions()
	if a.Threshold != nil {
		o.Threshold = *a.Threshold
	}
	if a.Padding != nil {
		o.Padding = *a.Padding
	}
	if a.Flatten != nil {
		o.Flatten = *a.Flatten
	}
	if a.Mode != "" {
		o.Mode = imaging.Mode(a.Mode)
	}
	if a.Metric != "" {
		o.Metric = imaging.Metric(a.Metric)
	}
	if a.Corner != "" {
		o.Corner = imaging.Corner(a.Corner)
	}
	if a.Background != "" {
		bg, err := imaging.ParseHexColor(a.Background)
		if err != nil {
			return o, fmt.Errorf("invalid background: %w", err)
		}
		o.Background = &bg
	}
	if a.AlphaThreshold != nil {
		if *a.AlphaThreshold < 0 || *a.AlphaThreshold > 255 {
			return o, fmt.Errorf("alpha_threshold must be 0-255, got %d", *a.AlphaThreshold)
		}
		o.AlphaThreshold = uint8(*a.AlphaThreshold)
	}
	return o, o.Validate()
}

type imageContentBoundsArgs struct {
	Path string `json:"path"`
	cropOptionArgs
}

// ContentBoundsResult is the unpadded content box of an image.
type ContentBoundsResult struct {
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	NoContent  bool             `json:"no_content"`
	Content    *imaging.Box     `json:"content,omitempty"`
	Padded     *imaging.Box     `json:"padded,omitempty"`
	Background imaging.RGBColor `json:"background"`
	Pixels     int              `json:"content_pixels"`
}

func (s *Server) handleImageContentBounds(args json.RawMessage) (interface{}, error) {
	var a imageContentBoundsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	mask, bg, err := imaging.ContentMask(img, opts)
	if err != nil {
		return nil, err
	}
	res := &ContentBoundsResult{
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		Background: bg,
		Pixels:     mask.Count(),
	}
	box, ok := mask.Bounds()
	if !ok {
		res.NoContent = true
		return res, nil
	}
	padded := box.Pad(opts.Padding, res.Width, res.Height)
	res.Content = &box
	res.Padded = &padded
	return res, nil
}

type imageAutoCropArgs struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	DryRun bool   `json:"dry_run"`
	cropOptionArgs
}

// AutoCropToolResult reports one autocrop. NoContent replaces the tool error
// for images that are entirely background.
type AutoCropToolResult struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Written   bool   `json:"written"`
	NoContent bool   `json:"no_content"`
	*imaging.AutoCropResult
}

func (s *Server) handleImageAutoCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageAutoCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}

	res := s.runner(a.DryRun).Process(ctx, batch.Job{Input: a.Path, Output: a.Output, Options: opts})
	switch res.Status {
	case batch.StatusCropped:
		return &AutoCropToolResult{
			Input:          res.Input,
			Output:         res.Output,
			Written:        res.Written,
			AutoCropResult: res.Crop,
		}, nil
	case batch.StatusNoContent:
		return &AutoCropToolResult{Input: res.Input, Output: res.Output, NoContent: true}, nil
	default:
		return nil, res.Err
	}
}

type imageAutoCropBatchArgs struct {
	Paths   []string `json:"paths"`
	Suffix  string   `json:"suffix"`
	Workers int      `json:"workers"`
	DryRun  bool     `json:"dry_run"`
	cropOptionArgs
}

func (s *Server) handleImageAutoCropBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageAutoCropBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must name at least one image")
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}

	jobs := make([]batch.Job, len(a.Paths))
	for i, p := range a.Paths {
		jobs[i] = batch.Job{Input: p, Output: batch.WithSuffix(p, a.Suffix), Options: opts}
	}

	r := s.runner(a.DryRun)
	r.Workers = a.Workers
	return r.Run(ctx, jobs), nil
}

// runner returns a batch runner that reads through the cache and evicts
// every file it overwrites.
func (s *Server) runner(dryRun bool) *batch.Runner {
	return &batch.Runner{
		DryRun:  dryRun,
		Log:     s.log,
		Load:    s.cache.Load,
		Written: s.cache.Evict,
	}
}

type imageAutoCropPreviewArgs struct {
	Path            string `json:"path"`
	ShowCoordinates bool   `json:"show_coordinates"`
	cropOptionArgs
}

func (s *Server) handleImageAutoCropPreview(args json.RawMessage) (interface{}, error) {
	var a imageAutoCropPreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(img, opts, a.ShowCoordinates)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, a.X1, a.Y1, a.X2, a.Y2, a.Scale)
}
