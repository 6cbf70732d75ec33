package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// withCropOptions adds the shared cropper tuning properties to props.
func withCropOptions(props map[string]interface{}) map[string]interface{} {
	props["threshold"] = map[string]interface{}{
		"type":        "integer",
		"description": "Color distance above which a pixel is content. Default 30",
		"minimum":     0,
		"default":     30,
	}
	props["padding"] = map[string]interface{}{
		"type":        "integer",
		"description": "Pixels kept around the content box, clamped to the image. Default 5",
		"minimum":     0,
		"default":     5,
	}
	props["flatten"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Make cropped pixels near the background color transparent. Default true",
		"default":     true,
	}
	props["mode"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"color", "alpha"},
		"description": "Content detection: difference from the background color, or alpha above alpha_threshold. Padding still applies in alpha mode; pass padding 0 for the exact alpha bounding box",
		"default":     "color",
	}
	props["metric"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"rgb", "lab"},
		"description": "Color distance: summed RGB channel difference (0-765) or CIE-Lab (0-100)",
		"default":     "rgb",
	}
	props["corner"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right"},
		"description": "Corner pixel sampled as the background color",
		"default":     "top-left",
	}
	props["background"] = map[string]interface{}{
		"type":        "string",
		"description": "Explicit background color as hex (#RRGGBB); overrides corner",
	}
	props["alpha_threshold"] = map[string]interface{}{
		"type":        "integer",
		"description": "Alpha a pixel must exceed to be content in alpha mode. Default 0",
		"minimum":     0,
		"maximum":     255,
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a pixel. Useful for choosing an explicit background color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Cropping
		{
			Name:        "image_content_bounds",
			Description: "Find the bounding box of non-background content without writing anything. Returns no_content when the image is entirely background.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withCropOptions(map[string]interface{}{
					"path": pathProperty(),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_autocrop",
			Description: "Crop an image to its content plus padding and save it, overwriting the input unless output is given. Returns no_content instead of failing when nothing differs from the background.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withCropOptions(map[string]interface{}{
					"path": pathProperty(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Where to write the cropped image. Default: overwrite path",
					},
					"dry_run": map[string]interface{}{
						"type":        "boolean",
						"description": "Compute the crop without writing",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_autocrop_batch",
			Description: "Autocrop several images with the same options. Each image is reported separately; a missing or unreadable file does not stop the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withCropOptions(map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the images to crop",
					},
					"suffix": map[string]interface{}{
						"type":        "string",
						"description": "Write <name><suffix>.<ext> next to each input instead of overwriting",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Images processed concurrently. Default 1",
						"minimum":     1,
					},
					"dry_run": map[string]interface{}{
						"type":        "boolean",
						"description": "Compute the crops without writing",
						"default":     false,
					},
				}),
				"required": []string{"paths"},
			},
		},
		{
			Name:        "image_autocrop_preview",
			Description: "Return the image as base64 PNG with the crop box outlined in green and the content box in magenta. Nothing is written.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withCropOptions(map[string]interface{}{
					"path": pathProperty(),
					"show_coordinates": map[string]interface{}{
						"type":        "boolean",
						"description": "Label the crop box corners with their coordinates",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_crop",
			Description: "Extract a rectangular region and return it as a base64 PNG. Use this to inspect content boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
	}
}
