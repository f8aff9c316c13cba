// Package i18n formats user-facing error messages by code.
package i18n

import (
	"strings"
	"text/template"
)

// Code mirrors the error code strings defined in platform/errors.
// They are duplicated here as plain strings to avoid an import cycle.
type Code = string

// Catalog maps error codes to templated user-facing messages for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the catalog locale tag.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with the given metadata. Unknown codes
// fall back to a generic message so callers always have something to show.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	msg, ok := c.messages[code]
	if !ok {
		return "Something went wrong. Please try again."
	}
	if !strings.Contains(msg, "{{") {
		return msg
	}
	tmpl, err := template.New(code).Parse(msg)
	if err != nil {
		return msg
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, metadata); err != nil {
		return msg
	}
	return b.String()
}

// GetCatalog returns the catalog for the given locale, defaulting to en-US.
func GetCatalog(locale string) *Catalog {
	switch strings.ToLower(locale) {
	case "", "en", "en-us":
		return enUSCatalog
	default:
		return enUSCatalog
	}
}
