package middleware

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities. Everything here runs before
// the analysis core ever sees bytes; the core does not re-validate.

const (
	// MaxUploadBytes caps the uploaded photo size.
	MaxUploadBytes = 5 * 1024 * 1024
	// MaxNotesLength caps customer/reviewer note length after sanitization.
	MaxNotesLength = 500
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ValidateImageUpload checks MIME type, extension and filename safety.
func ValidateImageUpload(filename, mimeType string) error {
	if !allowedImageTypes[strings.ToLower(mimeType)] {
		return fmt.Errorf("invalid file type %q (allowed: JPEG, PNG, WebP)", mimeType)
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(filename))] {
		return fmt.Errorf("invalid file extension")
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid filename")
	}
	return nil
}

var (
	jpegMagic = []byte{0xFF, 0xD8}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	riffMagic = []byte("RIFF")
)

// ValidateImageBytes checks the magic bytes so a renamed non-image is
// rejected before reaching the classifier.
func ValidateImageBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image file")
	}
	if len(data) > MaxUploadBytes {
		return fmt.Errorf("file size too large")
	}
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return nil
	case bytes.HasPrefix(data, pngMagic):
		return nil
	case bytes.HasPrefix(data, riffMagic):
		return nil
	}
	return fmt.Errorf("invalid file format or corrupted image")
}

var (
	jsProtocolRe  = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRe = regexp.MustCompile(`(?i)on\w+=`)
)

// SanitizeNotes strips injection-prone characters from free-text notes.
// The MaxNotesLength bound is enforced by the handler so an over-long note
// is rejected, not silently truncated; this only caps pathological input.
func SanitizeNotes(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, input)
	input = jsProtocolRe.ReplaceAllString(input, "")
	input = eventHandlerRe.ReplaceAllString(input, "")
	input = strings.TrimSpace(input)

	runes := []rune(input)
	if len(runes) > 1000 {
		return string(runes[:1000])
	}
	return input
}

var idPattern = regexp.MustCompile(`^[a-fA-F0-9-]{36}$`)

// ValidateAnalysisID checks UUID format before a lookup ever hits storage.
func ValidateAnalysisID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid analysis ID format")
	}
	return nil
}

// ValidateLimit clamps the recent-list limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 10 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDateParam reports whether a daily-stats date parameter is well formed.
func ValidDateParam(date string) bool {
	return datePattern.MatchString(date)
}
