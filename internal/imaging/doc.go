// Package imaging provides the image operations behind autocrop.
//
// The centerpiece is AutoCrop, which finds the rectangle holding an image's
// non-background content, crops to it, and optionally makes the remaining
// background transparent. The package also carries the supporting pieces the
// CLI and the MCP server share: loading and caching, PNG persistence, pixel
// color sampling, crop previews, and explicit rectangular crops.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner. Images
// are normalized to zero-origin *image.NRGBA before analysis, so coordinates
// are always relative to the image itself regardless of the decoded bounds.
//
//   - Box values are inclusive on all four edges (Left..Right, Top..Bottom)
//   - Box.Rect converts to the exclusive image.Rectangle used for cropping
//   - Crop takes (x1,y1) inclusive and (x2,y2) exclusive
//
// # Background Detection
//
// By default the background reference color is the top-left pixel. This is a
// heuristic: when content touches that corner the resulting box is wrong. Use
// Options.Background to supply the color explicitly, or Options.Corner to
// sample a different corner.
//
// # Error Handling
//
// Failures are reported through three sentinel errors, matched with errors.Is:
//   - ErrNotFound: the input path cannot be opened
//   - ErrDecode: the input is not a decodable raster image
//   - ErrNoContent: every pixel is within threshold of the background
//
// ErrNoContent is a result rather than a fault; callers decide whether it is
// fatal (single image) or skippable (batch).
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. AutoCrop and the analysis functions
// are pure and can run concurrently on different images.
package imaging
