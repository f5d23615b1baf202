// Package markup implements HTML escaping for template output.
package markup

import (
	"strings"

	"github.com/tetframework/tonnikala/tonnikala-go/value"
)

// EscapeFunc escapes text for inclusion in markup.
type EscapeFunc func(string) string

const (
	entityAmp  = "&amp;"
	entityLt   = "&lt;"
	entityGt   = "&gt;"
	entityQuot = "&#34;"
)

// Escape replaces the reserved characters &, < and > in text with their
// entity encodings. If quotes is true, " is encoded as &#34; as well; this
// is only required for text placed inside attribute values.
//
// When text contains nothing to escape the very same string is returned,
// without allocating. Callers may rely on this (see value.Same).
//
//	Escape(`"1 < 2"`, true)  // &#34;1 &lt; 2&#34;
//	Escape(`"1 < 2"`, false) // "1 &lt; 2"
func Escape(text string, quotes bool) string {
	size, count := measure(text, quotes)
	if count == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(size)
	emitted := 0
	last := 0
	for i := 0; i < len(text); i++ {
		var entity string
		switch text[i] {
		case '&':
			entity = entityAmp
		case '<':
			entity = entityLt
		case '>':
			entity = entityGt
		case '"':
			if !quotes {
				continue
			}
			entity = entityQuot
		default:
			continue
		}
		b.WriteString(text[last:i])
		b.WriteString(entity)
		last = i + 1
		emitted++
		if emitted == count {
			break
		}
	}
	b.WriteString(text[last:])
	return b.String()
}

// measure returns the escaped length of text and the number of
// substitutions it needs.
func measure(text string, quotes bool) (size, count int) {
	size = len(text)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '&', '"':
			if text[i] == '"' && !quotes {
				continue
			}
			size += len(entityAmp) - 1
			count++
		case '<', '>':
			size += len(entityLt) - 1
			count++
		}
	}
	return size, count
}

// EscapeAttr escapes text for use inside a double-quoted attribute value.
// It is the standard escaper for boolean attribute output.
func EscapeAttr(text string) string {
	return Escape(text, true)
}

// EscapeText escapes text for use in element content, leaving double
// quotes alone.
func EscapeText(text string) string {
	return Escape(text, false)
}

// EscapeValue renders v as text and escapes it. Markup values are already
// safe and are returned without escaping.
func EscapeValue(v any, quotes bool) (string, error) {
	if m, ok := v.(value.Markup); ok {
		return m.HTML(), nil
	}
	s, err := value.Text(v)
	if err != nil {
		return "", err
	}
	return Escape(s, quotes), nil
}
