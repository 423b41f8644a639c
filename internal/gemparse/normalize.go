package gemparse

import "strings"

// Normalize strips quoting from a raw token text, producing the logical
// string a Ruby program would see at runtime. It is a no-op on
// already-normalized text unless that text itself starts with ':', a
// quote, or %q/%w (the token ':foo' yields :foo, which normalizes again
// to foo).
func Normalize(text string) string {
	switch {
	case strings.HasPrefix(text, "%q") || strings.HasPrefix(text, "%w"):
		return normalizePercent(text)
	case len(text) >= 2 && text[0] == ':' && (text[1] == '\'' || text[1] == '"'):
		return text[2 : len(text)-1]
	case len(text) >= 1 && text[0] == ':':
		return text[1:]
	case len(text) >= 2 && (text[0] == '\'' || text[0] == '"') && text[len(text)-1] == text[0]:
		return stripQuoted(text)
	default:
		return text
	}
}

// normalizePercent strips the "%q"/"%w" prefix and its delimiter pair,
// then applies the angle-bracket and triple-quote special cases observed
// in real-world manifests.
func normalizePercent(text string) string {
	if len(text) < 4 {
		return text
	}
	opener := text[2]
	content := text[3 : len(text)-1]
	content = strings.TrimSpace(content)

	if opener == '<' {
		content = strings.TrimSuffix(content, ">")
		for {
			next := strings.TrimSuffix(strings.TrimPrefix(content, "><"), "><")
			if next == content {
				break
			}
			content = next
		}
	}

	if len(content) >= 6 && strings.HasPrefix(content, "'''") && strings.HasSuffix(content, "'''") {
		content = content[3 : len(content)-3]
	}

	return content
}

// stripQuoted drops the outer quote pair from a '...' or "..." token,
// then peels any further layers of matching quotes wrapping the content
// (real-world manifests sometimes double- or triple-quote a bare name).
func stripQuoted(text string) string {
	quote := text[0]
	inner := text[1 : len(text)-1]
	inner = strings.Trim(inner, string(quote))

	for len(inner) >= 2 {
		c := inner[0]
		if (c == '\'' || c == '"') && inner[len(inner)-1] == c {
			inner = inner[1 : len(inner)-1]
			continue
		}
		break
	}
	return inner
}

// ExpandWordArray splits a %w literal's normalized content into its
// individual words, on runs of space, tab, or newline.
func ExpandWordArray(rawText string) []string {
	content := Normalize(rawText)
	return strings.FieldsFunc(content, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
}

// FormatVersion inserts a single space between a leading non-digit
// operator run and the digit run that follows it, if one isn't already
// there. It is a no-op on an already-formatted string and on a string
// with no digit at all.
func FormatVersion(v string) string {
	idx := strings.IndexFunc(v, func(r rune) bool { return r >= '0' && r <= '9' })
	if idx <= 0 {
		return v
	}
	if v[idx-1] == ' ' {
		return v
	}
	return v[:idx] + " " + v[idx:]
}
