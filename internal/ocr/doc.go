// Package ocr provides a live text backend that recognizes text using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2) behind the
// livetext.Backend interface. Each detected text line (or layout block, see
// Level) becomes one livetext.TextBlock; Tesseract's symbol boxes become the
// block's character boxes.
//
// # Build Constraints
//
// Tesseract is a cgo dependency and is compiled in whenever cgo is enabled
// on Linux. Elsewhere, or with CGO_ENABLED=0, New returns ErrNotEnabled and
// callers fall back to the detection-only heuristic in internal/detection.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// Options.TessdataPrefix points Tesseract at a different tessdata directory.
//
// # Supported Languages
//
// The default language is English ("eng"). Other languages can be specified
// using their Tesseract language codes, joined with "+" for several:
//   - "eng" - English
//   - "deu" - German
//   - "chi_sim" - Chinese (Simplified)
//
// # Performance Considerations
//
// OCR is computationally expensive. The analyzer runs passes on a worker
// goroutine and cancels superseded ones; this backend checks the context
// between recognition phases, so a cancelled pass stops at the next phase
// rather than immediately.
//
// # Error Handling
//
// Analyze returns errors for:
//   - Unsupported language codes
//   - Tesseract initialization failures
//   - Recognition failures
//
// If symbol-level box extraction fails, Analyze still returns the blocks,
// with empty character lists.
package ocr
