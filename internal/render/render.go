package render

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

	descriptionPolicy = newDescriptionPolicy()
	plainPolicy       = bluemonday.StrictPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	return policy
}

// DescriptionHTML renders a product description written in markdown to safe HTML.
func DescriptionHTML(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(description), &buf); err != nil {
		return plainPolicy.Sanitize(description)
	}
	return descriptionPolicy.Sanitize(buf.String())
}

// PlainText strips every tag from user input meant to be displayed as text (names, flash messages).
func PlainText(s string) string {
	return strings.TrimSpace(plainPolicy.Sanitize(s))
}
