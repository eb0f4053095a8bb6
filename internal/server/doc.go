// Package server exposes the viewer and its live text analyzer over
// JSON-RPC 2.0.
//
// # Protocol
//
// The server communicates over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: responses and notifications on stdout (one per line)
//
// Protocol methods:
//   - initialize: handshake, reports the live text backend
//   - commands/list: enumerate the commands below with input schemas
//   - ping: health check
//
// # Viewer Commands
//
// viewer/open, viewer/close, viewer/resize, viewer/reset, viewer/pan,
// viewer/zoom, viewer/wheel, viewer/rotate, viewer/flip, viewer/press,
// viewer/move, viewer/release, viewer/slideshow, viewer/state, viewer/map
// and viewer/render drive a transform.Engine. Each returns the resulting
// ViewerState except map and render.
//
// # Live Text Commands
//
// livetext/analyze starts a pass and returns immediately with the image
// generation. The outcome arrives later as a livetext/analyzeFinished
// notification. livetext/blocks, livetext/char_offsets, livetext/text and
// livetext/crop read the published result. Blocks may be addressed by index
// or by an identifier such as "block_2". livetext/hit selects the block
// under a device point and livetext/copy sends text to the clipboard.
//
// # Notifications
//
// Engine events are forwarded as viewer/transformChanged, viewer/flipped,
// viewer/rotated and viewer/scaleChanged with the event as params. When a
// rotation persister is configured, viewer/rotated also rewrites the file.
//
// # Error Handling
//
//   - -32601: unknown method
//   - -32602: parameters missing, malformed or out of range
//   - -32000: the command itself failed; data carries the Go error string
package server
