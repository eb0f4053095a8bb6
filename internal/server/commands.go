package server

// Command describes one JSON-RPC method for commands/list.
type Command struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func object(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": description}
}

func pointProps(what string) map[string]interface{} {
	return map[string]interface{}{
		"x": prop("number", what+" X coordinate"),
		"y": prop("number", what+" Y coordinate"),
	}
}

func blockProps(extra map[string]interface{}) map[string]interface{} {
	return merge(map[string]interface{}{
		"block": prop("integer", "Block index in the current result"),
		"id":    prop("string", "Block identifier such as block_3; wins over block"),
	}, extra)
}

// CommandDefinitions returns every method the server answers besides the
// protocol handshake.
func CommandDefinitions() []Command {
	return []Command{
		// Viewer
		{
			Name:        "viewer/open",
			Description: "Open an image file, fit it to the viewport and reset rotation and flips. Optionally start live text analysis.",
			InputSchema: object(map[string]interface{}{
				"path":    prop("string", "Absolute path to the image file"),
				"analyze": prop("boolean", "Start live text analysis after loading (default: false)"),
			}, "path"),
		},
		{
			Name:        "viewer/close",
			Description: "Unload the image and discard live text results.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "viewer/resize",
			Description: "Set the viewport size in device pixels and refit the image.",
			InputSchema: object(map[string]interface{}{
				"width":  prop("integer", "Viewport width"),
				"height": prop("integer", "Viewport height"),
			}, "width", "height"),
		},
		{
			Name:        "viewer/reset",
			Description: "Return to fit-to-window with no rotation or flips.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "viewer/pan",
			Description: "Move the image by a device-pixel delta. Moves that would uncover the viewport edge are absorbed per axis.",
			InputSchema: object(map[string]interface{}{
				"dx": prop("number", "Horizontal delta"),
				"dy": prop("number", "Vertical delta"),
			}),
		},
		{
			Name:        "viewer/zoom",
			Description: "Zoom to a scale relative to fit-to-window, keeping the pivot under the cursor. At or below 1 the image is recentred.",
			InputSchema: object(map[string]interface{}{
				"scale_value": prop("number", "Target scale, 1 = fit to window"),
				"pivot":       object(pointProps("Device pivot")),
			}, "scale_value"),
		},
		{
			Name:        "viewer/wheel",
			Description: "Apply a scroll-wheel zoom at a device point.",
			InputSchema: object(map[string]interface{}{
				"x":           prop("number", "Cursor X"),
				"y":           prop("number", "Cursor Y"),
				"angle_delta": prop("number", "Wheel angle delta in eighths of a degree"),
				"pixel_delta": prop("number", "High resolution pixel delta; wins when non-zero"),
			}),
		},
		{
			Name:        "viewer/rotate",
			Description: "Rotate the image clockwise by a multiple of 90 degrees. When rotation persistence is enabled the file is rewritten.",
			InputSchema: object(map[string]interface{}{
				"degrees": prop("integer", "Rotation delta, negative for counter-clockwise (default: 90)"),
			}),
		},
		{
			Name:        "viewer/flip",
			Description: "Mirror the image along an axis.",
			InputSchema: object(map[string]interface{}{
				"axis": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"horizontal", "vertical"},
					"description": "Flip axis (default: horizontal)",
				},
			}),
		},
		{
			Name:        "viewer/press",
			Description: "Pointer button down. The primary button starts a drag session.",
			InputSchema: object(merge(pointProps("Cursor"), map[string]interface{}{
				"button": map[string]interface{}{
					"type": "string",
					"enum": []string{"primary", "secondary", "middle"},
				},
			})),
		},
		{
			Name:        "viewer/move",
			Description: "Pointer motion. Pans while a drag session is active.",
			InputSchema: object(pointProps("Cursor")),
		},
		{
			Name:        "viewer/release",
			Description: "Pointer button up. Ends the drag session.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "viewer/slideshow",
			Description: "Toggle slideshow mode, which disables drag panning and wheel zoom.",
			InputSchema: object(map[string]interface{}{
				"on": prop("boolean", "Slideshow state"),
			}, "on"),
		},
		{
			Name:        "viewer/state",
			Description: "Report the transform, viewport and interaction state.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "viewer/map",
			Description: "Map a point between device and image space.",
			InputSchema: object(merge(pointProps("Source"), map[string]interface{}{
				"to": map[string]interface{}{
					"type": "string",
					"enum": []string{"image", "device"},
				},
			})),
		},
		{
			Name:        "viewer/render",
			Description: "Render the viewport as a PNG with live text highlights.",
			InputSchema: object(map[string]interface{}{
				"background": prop("string", "Background colour as hex (default: #000000)"),
				"overlay":    prop("boolean", "Draw live text highlights (default: true)"),
			}),
		},

		// Live text
		{
			Name:        "livetext/analyze",
			Description: "Start a live text pass over the current image. Completion arrives as livetext/analyzeFinished.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "livetext/break",
			Description: "Cancel the pass in flight. The previous result stays published.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "livetext/status",
			Description: "Report the image generation, result generation and whether a pass is running.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "livetext/blocks",
			Description: "List detected blocks: identifier, four image-space corners plus angle, and text.",
			InputSchema: object(map[string]interface{}{}),
		},
		{
			Name:        "livetext/char_offsets",
			Description: "Character trailing-edge offsets within a block, starting with 0.",
			InputSchema: object(blockProps(nil)),
		},
		{
			Name:        "livetext/text",
			Description: "Text of a block, or a run of count characters from start.",
			InputSchema: object(blockProps(map[string]interface{}{
				"start": prop("integer", "First character"),
				"count": prop("integer", "Number of characters; 0 for the whole block"),
			})),
		},
		{
			Name:        "livetext/crop",
			Description: "Crop the analyzed bitmap to a block, optionally scaled.",
			InputSchema: object(blockProps(map[string]interface{}{
				"width":  prop("integer", "Output width"),
				"height": prop("integer", "Output height"),
			})),
		},
		{
			Name:        "livetext/hit",
			Description: "Select the block under a device point.",
			InputSchema: object(pointProps("Cursor")),
		},
		{
			Name:        "livetext/copy",
			Description: "Copy block text to the clipboard. Defaults to the selected block.",
			InputSchema: object(blockProps(map[string]interface{}{
				"start": prop("integer", "First character"),
				"count": prop("integer", "Number of characters; 0 for the whole block"),
			})),
		},
	}
}

func merge(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
