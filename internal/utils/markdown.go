package utils

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func init() {
	ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	ugcPolicy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts idea descriptions to sanitized HTML for the
// frontend. On a parser error the plain text is sanitized and returned
// as-is.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return plainPolicy.Sanitize(source)
	}
	return ugcPolicy.Sanitize(buf.String())
}

// StripHTML removes all markup from user-supplied plain-text fields
// (titles, author names, comment text) before they are persisted.
func StripHTML(s string) string {
	return strings.TrimSpace(plainPolicy.Sanitize(s))
}
