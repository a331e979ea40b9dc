package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slug turns a display name into an id: diacritics stripped, lowercased,
// anything that is not a letter or digit collapsed into single dashes.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	dash := false
	for _, r := range norm.NFD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			dash = true
		}
	}
	return b.String()
}

// normalized trims names and derives missing ids from them.
func (t Team) normalized() Team {
	out := t.Clone()
	out.Name = collapseWhitespace(out.Name)
	if out.ID == "" {
		out.ID = Slug(out.Name)
	}
	for i, p := range out.Players {
		p.Name = collapseWhitespace(norm.NFC.String(p.Name))
		if p.ID == "" && p.Name != "" {
			p.ID = Slug(p.Name)
		}
		out.Players[i] = p
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
