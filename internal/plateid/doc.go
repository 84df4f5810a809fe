// Package plateid reads the sample identifier printed on a plate label.
//
// The Tesseract reader wraps the Tesseract OCR engine (via gosseract/v2).
// It crops the label region of a frame, enlarges small crops, and keeps the
// longest token made of upper-case letters, digits and hyphens.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Missing Labels
//
// A label that yields no usable token is reported as DefaultID ("00000")
// rather than an error, so a run over many plates is not interrupted by a
// smudged or missing sticker. Callers that need to tell the difference can
// compare against DefaultID.
package plateid
