package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptionHTML(t *testing.T) {
	html := DescriptionHTML("A **bold** read.\n\n<script>alert(1)</script>")

	assert.Contains(t, html, "<strong>bold</strong>")
	assert.NotContains(t, html, "<script>")
}

func TestDescriptionHTML_Links(t *testing.T) {
	html := DescriptionHTML("[shop](https://example.com)")

	assert.Contains(t, html, `href="https://example.com"`)
	assert.Contains(t, html, "nofollow")
}

func TestDescriptionHTML_Empty(t *testing.T) {
	assert.Equal(t, "", DescriptionHTML("   "))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Books", PlainText(" <b>Books</b> "))
	assert.NotContains(t, PlainText("<script>x</script>"), "<script>")
}
