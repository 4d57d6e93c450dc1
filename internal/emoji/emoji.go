// Package emoji derives a sign-language emoji gloss from French text
// without any network dependency. It is the substitute used whenever the
// AI API cannot produce a sequence.
package emoji

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSequence is returned when no input token matches the table.
const DefaultSequence = "🤟 🙌 👐 🤲 👋"

// Dictionary keys are lowercase and diacritic-folded.
var dictionary = map[string]string{
	"bonjour":     "👋",
	"salut":       "👋",
	"bonsoir":     "🌙",
	"aurevoir":    "👋",
	"merci":       "🙏",
	"pardon":      "🙏",
	"plait":       "🙏",
	"oui":         "👍",
	"non":         "👎",
	"aide":        "🆘",
	"aider":       "🆘",
	"amour":       "❤️",
	"aimer":       "❤️",
	"famille":     "👨‍👩‍👧‍👦",
	"maison":      "🏠",
	"manger":      "🍽️",
	"boire":       "🥤",
	"eau":         "💧",
	"travail":     "💼",
	"ecole":       "🏫",
	"ami":         "🤝",
	"amis":        "🤝",
	"content":     "😊",
	"heureux":     "😊",
	"triste":      "😢",
	"comment":     "❓",
	"pourquoi":    "❓",
	"aujourd'hui": "📅",
	"demain":      "⏭️",
	"hier":        "⏮️",
	"je":          "👈",
	"moi":         "👈",
	"vous":        "👉",
	"tu":          "👉",
	"aller":       "🚶",
	"allez":       "🚶",
	"parler":      "🗣️",
	"ecouter":     "👂",
	"voir":        "👀",
	"dormir":      "😴",
	"bien":        "👌",
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate maps each recognized word of text to its emoji and joins the
// matches with single spaces. Deterministic for a given input.
func Generate(text string) string {
	var glyphs []string
	for _, token := range strings.Fields(strings.ToLower(text)) {
		word := normalizeToken(token)
		if word == "" {
			continue
		}
		if g, ok := dictionary[word]; ok {
			glyphs = append(glyphs, g)
		}
	}
	if len(glyphs) == 0 {
		return DefaultSequence
	}
	return strings.Join(glyphs, " ")
}

// normalizeToken strips trailing punctuation and folds diacritics so that
// "École!" and "ecole" hit the same entry.
func normalizeToken(token string) string {
	token = strings.TrimRightFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\''
	})
	folded, _, err := transform.String(foldTransformer, token)
	if err != nil {
		return token
	}
	return folded
}
