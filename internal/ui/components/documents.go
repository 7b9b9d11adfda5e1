// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/sera-tui/internal/model"
	"github.com/jeranaias/sera-tui/internal/ui/styles"
	"github.com/jeranaias/sera-tui/internal/util"
)

// =============================================================================
// DOCUMENT STRIP COMPONENT
// =============================================================================

// DocumentStrip renders the active chat's uploaded documents as a single
// line of badges under the header.
type DocumentStrip struct {
	Width int
	theme *styles.Theme
}

// NewDocumentStrip creates a document strip renderer.
func NewDocumentStrip(theme *styles.Theme) *DocumentStrip {
	return &DocumentStrip{Width: 80, theme: theme}
}

// SetWidth updates the strip width.
func (d *DocumentStrip) SetWidth(width int) {
	d.Width = width
}

// Render returns the strip, or "" when there are no documents.
func (d *DocumentStrip) Render(docs []model.Document) string {
	if len(docs) == 0 {
		return ""
	}

	var parts []string
	for _, doc := range docs {
		parts = append(parts, d.theme.DocBadge.Render(util.TruncateWidth(doc.Filename, 24)))
	}
	label := d.theme.DocMeta.Render(fmt.Sprintf("%d %s:",
		len(docs), util.Pluralize(len(docs), "document", "documents")))
	return label + " " + strings.Join(parts, " ")
}

// FormatSize renders a byte count for document metadata.
func FormatSize(bytes int64) string {
	const (
		kib = 1024
		mib = 1024 * kib
	)
	switch {
	case bytes >= mib:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mib))
	case bytes >= kib:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kib))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
