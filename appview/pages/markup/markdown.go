// Package markup renders the bits of user-supplied text the pages show.
package markup

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var inline = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
)

// RenderInline renders a one-line markdown source such as a repository
// description. The output is not sanitized.
func RenderInline(source string) string {
	var buf bytes.Buffer
	if err := inline.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return string(bytes.TrimSpace(buf.Bytes()))
}
