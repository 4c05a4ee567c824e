package security

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string // Sniffed from content
	ContentType  string // Canonical type stored with the object
	Error        string
}

// FilePolicy is an extension allow-list plus a size ceiling
type FilePolicy struct {
	Name       string
	MaxBytes   int64
	Extensions map[string]string // extension -> canonical content type
}

var (
	// DocumentPolicy governs candidate document uploads
	DocumentPolicy = FilePolicy{
		Name:     "document",
		MaxBytes: 10 << 20,
		Extensions: map[string]string{
			".pdf":  "application/pdf",
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".png":  "image/png",
			".webp": "image/webp",
			".doc":  "application/msword",
			".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
	}

	// ImagePolicy governs branding assets such as the logo
	ImagePolicy = FilePolicy{
		Name:     "image",
		MaxBytes: 5 << 20,
		Extensions: map[string]string{
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".png":  "image/png",
			".webp": "image/webp",
		},
	}
)

// Magic byte signatures keyed by lowercase extension
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".webp": {{0x52, 0x49, 0x46, 0x46}},                         // RIFF header
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                         // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}}, // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                         // ZIP (PK..)
}

// Sniffed types accepted per extension. Office formats are often sniffed as zip or octet-stream.
var sniffedMIME = map[string][]string{
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".webp": {"image/webp"},
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/octet-stream"},
	".docx": {"application/zip", "application/octet-stream", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// Validate performs the 4-layer check: size, extension allow-list, magic bytes
// and sniffed MIME type.
func (p FilePolicy) Validate(filename string, data []byte) FileValidationResult {
	result := FileValidationResult{
		DetectedMIME: http.DetectContentType(data),
	}

	if len(data) == 0 {
		result.Error = "file is empty"
		return result
	}
	if int64(len(data)) > p.MaxBytes {
		result.Error = fmt.Sprintf("file exceeds the %d MB limit", p.MaxBytes>>20)
		return result
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	contentType, ok := p.Extensions[ext]
	if !ok {
		result.Error = fmt.Sprintf("file extension not allowed: %s (allowed: %s)", ext, strings.Join(p.AllowedExtensions(), ", "))
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	detected := strings.TrimSpace(strings.SplitN(result.DetectedMIME, ";", 2)[0])
	if !contains(sniffedMIME[ext], detected) {
		result.Error = "MIME type not allowed: " + detected
		return result
	}

	result.ContentType = contentType
	result.Valid = true
	return result
}

// AllowedExtensions lists the policy's extensions in stable order
func (p FilePolicy) AllowedExtensions() []string {
	exts := make([]string, 0, len(p.Extensions))
	for ext := range p.Extensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// IsImageExtension checks if the extension is an image type
func IsImageExtension(ext string) bool {
	_, ok := ImagePolicy.Extensions[strings.ToLower(ext)]
	return ok
}
