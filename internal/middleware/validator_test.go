package middleware

import (
	"bytes"
	"strings"
	"testing"
)

func TestValidateImageUpload(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		mimeType string
		wantErr  bool
	}{
		{"jpeg ok", "shoe.jpg", "image/jpeg", false},
		{"png ok", "shoe.png", "image/png", false},
		{"webp ok", "shoe.webp", "image/webp", false},
		{"uppercase mime", "shoe.jpg", "IMAGE/JPEG", false},
		{"gif rejected", "shoe.gif", "image/gif", true},
		{"pdf rejected", "shoe.pdf", "application/pdf", true},
		{"mismatched extension", "shoe.txt", "image/jpeg", true},
		{"path traversal", "../../etc/passwd.jpg", "image/jpeg", true},
		{"slash in name", "dir/shoe.jpg", "image/jpeg", true},
		{"backslash in name", `dir\shoe.jpg`, "image/jpeg", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateImageUpload(tc.filename, tc.mimeType)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateImageUpload(%q, %q) err = %v, wantErr %v", tc.filename, tc.mimeType, err, tc.wantErr)
			}
		})
	}
}

func TestValidateImageBytes(t *testing.T) {
	if err := ValidateImageBytes([]byte{0xFF, 0xD8, 0xFF, 0xE0}); err != nil {
		t.Errorf("jpeg magic rejected: %v", err)
	}
	if err := ValidateImageBytes([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}); err != nil {
		t.Errorf("png magic rejected: %v", err)
	}
	if err := ValidateImageBytes([]byte("RIFF....WEBP")); err != nil {
		t.Errorf("webp magic rejected: %v", err)
	}
	if err := ValidateImageBytes([]byte("MZ executable")); err == nil {
		t.Errorf("non-image bytes accepted")
	}
	if err := ValidateImageBytes(nil); err == nil {
		t.Errorf("empty upload accepted")
	}
	if err := ValidateImageBytes(bytes.Repeat([]byte{0xFF}, MaxUploadBytes+1)); err == nil {
		t.Errorf("oversized upload accepted")
	}
}

func TestSanitizeNotes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain note", "plain note"},
		{"  padded  ", "padded"},
		{`<script>alert("x")</script>`, "scriptalert(x)/script"},
		{"click javascript:alert(1)", "click alert(1)"},
		{"a onclick=bad b", "a bad b"},
		{"nul\x00byte", "nulbyte"},
		{"A & B", "A  B"},
	}
	for _, tc := range cases {
		if got := SanitizeNotes(tc.in); got != tc.want {
			t.Errorf("SanitizeNotes(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeNotesCapsPathologicalInput(t *testing.T) {
	got := SanitizeNotes(strings.Repeat("x", 5000))
	if len([]rune(got)) != 1000 {
		t.Fatalf("len = %d, want 1000", len([]rune(got)))
	}
}

func TestValidateAnalysisID(t *testing.T) {
	if err := ValidateAnalysisID("11111111-2222-3333-4444-555555555555"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, id := range []string{"", "short", "11111111-2222-3333-4444-55555555555z", "'; DROP TABLE shoe_analyses;--"} {
		if err := ValidateAnalysisID(id); err == nil {
			t.Errorf("ValidateAnalysisID(%q) accepted", id)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	if got := ValidateLimit(0); got != 10 {
		t.Errorf("ValidateLimit(0) = %d, want default 10", got)
	}
	if got := ValidateLimit(-5); got != 10 {
		t.Errorf("ValidateLimit(-5) = %d, want default 10", got)
	}
	if got := ValidateLimit(25); got != 25 {
		t.Errorf("ValidateLimit(25) = %d", got)
	}
	if got := ValidateLimit(500); got != 100 {
		t.Errorf("ValidateLimit(500) = %d, want clamp 100", got)
	}
}

func TestValidDateParam(t *testing.T) {
	if !ValidDateParam("2025-06-15") {
		t.Errorf("well-formed date rejected")
	}
	for _, d := range []string{"", "15-06-2025", "2025/06/15", "2025-6-5", "yesterday"} {
		if ValidDateParam(d) {
			t.Errorf("ValidDateParam(%q) accepted", d)
		}
	}
}
