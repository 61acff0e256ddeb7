package utils

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify transforme un nom en identifiant URL ("Chaussures Été 2026" → "chaussures-ete-2026")
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // évite un tiret en tête

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case unicode.IsLetter(r):
			// Translittération basique des accents français
			if repl, ok := accentMap[r]; ok {
				b.WriteString(repl)
				lastDash = false
			}
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}

// SlugifyWithFallback couvre les noms sans aucun caractère translittérable
// (nom entièrement en idéogrammes par exemple): plutôt qu'un slug vide, on
// génère "<prefix>-<suffixe aléatoire>"
func SlugifyWithFallback(name, prefix string) string {
	if slug := Slugify(name); slug != "" {
		return slug
	}
	return prefix + "-" + uuid.NewString()[:8]
}

// NextSlug retourne le slug candidat suivant en cas de collision
// ("mon-produit" → "mon-produit-2" → "mon-produit-3" …)
func NextSlug(base string, attempt int) string {
	if attempt <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}

var accentMap = map[rune]string{
	'à': "a", 'â': "a", 'ä': "a", 'á': "a", 'ã': "a",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'î': "i", 'ï': "i", 'í': "i",
	'ô': "o", 'ö': "o", 'ó': "o", 'õ': "o",
	'ù': "u", 'û': "u", 'ü': "u", 'ú': "u",
	'ç': "c", 'ñ': "n",
	'œ': "oe", 'æ': "ae",
}
