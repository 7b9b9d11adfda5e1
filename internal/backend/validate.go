// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Upload constraints, enforced client-side before any network call and
// re-validated by the backend.
const (
	// MaxUploadSize is the largest accepted document (10 MiB).
	MaxUploadSize = 10 * 1024 * 1024
)

// AllowedExtensions is the set of accepted document extensions
// (lowercase, with leading dot).
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// ValidateUpload is the local validation gate for document uploads.
// Violations fail fast with a ValidationError and never reach the network.
func ValidateUpload(filename string, size int64) error {
	if filename == "" {
		return &ValidationError{Reason: "no file selected"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return &ValidationError{Reason: fmt.Sprintf("Unsupported file type %q: allowed types are .pdf, .docx, .txt", ext)}
	}
	if size > MaxUploadSize {
		return &ValidationError{Reason: fmt.Sprintf("File too large (%d bytes): maximum is 10 MiB", size)}
	}
	return nil
}
