// Package livetext finds text regions in the displayed image and answers
// selection queries about them.
//
// An Analyzer owns a copy of the current bitmap, packed as an RGB888 Frame,
// and hands it to a pluggable Backend on a worker goroutine. Queries never
// block on the backend: they read the last published Result together with
// the bitmap it was computed from.
//
// # Generations
//
// SetImage bumps a generation counter and clears the published result.
// Analyze starts a pass tagged with the current generation and cancels any
// pass still in flight. When a pass finishes, its result is published only
// if it is still the latest request for the latest image; otherwise it is
// dropped without notifying anyone.
//
//	a := livetext.New(backend, livetext.WithLogger(logger))
//	a.OnFinished(func(c livetext.Completion) { ... })
//	a.SetImage(img)
//	gen, err := a.Analyze(ctx)
//
// # Failures
//
// Query methods never fail. Unknown block indices yield empty slices, empty
// strings or an empty image. A backend error or panic publishes an empty
// result and reports the error through Completion.Err.
//
// # Block identifiers
//
// Crops can be addressed by string identifiers of the form prefix_index
// (see BlockID). ParseBlockID takes the text after the last underscore and
// rejects anything that is not an unsigned integer with ErrMalformedID.
//
// # Backends
//
// Backends live in other packages: a Tesseract recognizer in internal/ocr and
// a detection-only heuristic in internal/detection. A backend that implements
// CharSegmenter may leave TextBlock.Chars nil; the Analyzer then asks for
// character boxes the first time a block's offsets are queried.
package livetext
