// Package detection finds text-like regions without recognizing them.
//
// Heuristic implements livetext.Backend and livetext.CharSegmenter for
// builds without OCR. It binarizes the frame, splits it into bands of rows
// containing ink, and splits each band at column gaps wider than the band
// is tall. What remains is one block per word or line fragment, with empty
// text.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Block polygons run clockwise from the top-left corner, with the
//     bottom-right corner exclusive
//
// # Limitations
//
// The heuristic assumes horizontal text on a roughly uniform background.
// Dark backgrounds are handled by flipping ink polarity when most of the
// frame is dark. Photographs and rotated text produce poor blocks.
package detection
