// Package server implements the MCP (Model Context Protocol) server for the
// logo cropper.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get color at pixel
//
// Cropping:
//   - image_content_bounds: Locate content without writing
//   - image_autocrop: Crop one image to its content and save it
//   - image_autocrop_batch: Crop many images, one result each
//   - image_autocrop_preview: Outline the crop without writing
//   - image_crop: Extract a rectangular region as base64 PNG
//
// # Image Caching
//
// Images are cached by path and reused across tool calls. A file written by
// image_autocrop or image_autocrop_batch is evicted so later calls see the
// cropped version.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the
// error text as data. An image with no content is not a failure for the crop
// tools; they answer with no_content set instead.
package server
