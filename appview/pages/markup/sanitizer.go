package markup

import (
	"github.com/microcosm-cc/bluemonday"
)

type Sanitizer struct {
	descriptionPolicy *bluemonday.Policy
}

func NewSanitizer() Sanitizer {
	return Sanitizer{
		descriptionPolicy: descriptionPolicy(),
	}
}

func (s Sanitizer) SanitizeDescription(html string) string {
	return s.descriptionPolicy.Sanitize(html)
}

func descriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowStandardURLs()

	// allow italics and bold.
	policy.AllowElements("i", "b", "em", "strong", "del")

	// allow code.
	policy.AllowElements("code")

	// allow links
	policy.AllowAttrs("href").OnElements("a")
	policy.RequireNoFollowOnLinks(true)

	return policy
}
