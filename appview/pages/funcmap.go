package pages

import (
	"html/template"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"tangled.org/repobrowser/appview/pages/markup"
)

var hexColor = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

func (p *Pages) funcMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"timeAgo": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return humanize.Time(t)
		},
		"description": func(s string) template.HTML {
			return template.HTML(p.sanitizer.SanitizeDescription(markup.RenderInline(s)))
		},
		"errorMessage": ErrorMessage,
		// labels come with a bare hex color, anything else falls back to the stylesheet
		"labelStyle": func(color string) template.CSS {
			if !hexColor.MatchString(color) {
				return ""
			}
			return template.CSS("background-color: #" + color)
		},
	}
}
