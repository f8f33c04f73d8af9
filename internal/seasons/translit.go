package seasons

import (
	"strings"
	"unicode"
)

const (
	devanagariVirama = '्'
	devanagariNukta  = '़'
)

var devanagariConsonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "ng",
	'च': "ch", 'छ': "chh", 'ज': "j", 'झ': "jh", 'ञ': "ny",
	'ट': "t", 'ठ': "th", 'ड': "d", 'ढ': "dh", 'ण': "n",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'व': "v",
	'श': "sh", 'ष': "sh", 'स': "s", 'ह': "h",
	'क़': "q", 'ख़': "kh", 'ग़': "g", 'ज़': "z",
	'ड़': "r", 'ढ़': "rh", 'फ़': "f", 'य़': "y",
}

var devanagariVowels = map[rune]string{
	'अ': "a", 'आ': "a", 'इ': "i", 'ई': "i", 'उ': "u", 'ऊ': "u",
	'ऋ': "ri", 'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au", 'ऑ': "o",
}

var devanagariVowelSigns = map[rune]string{
	'ा': "a", 'ि': "i", 'ी': "i", 'ु': "u", 'ू': "u", 'ृ': "ri",
	'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au", 'ॉ': "o",
}

var devanagariSigns = map[rune]string{
	'ं': "n", 'ँ': "n", 'ः': "h",
}

// transliterateDevanagari spells Devanagari text in plain Latin letters so
// Nepali and Hindi names survive slug folding. Consonants carry an inherent
// "a" that a vowel sign replaces and a virama drops; the inherent vowel of a
// word's last consonant is dropped once the word has another vowel
// ("नेपाल" becomes "nepal"). Text without Devanagari is returned unchanged.
func transliterateDevanagari(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return unicode.Is(unicode.Devanagari, r) }) {
		return s
	}

	var b strings.Builder
	pending := false
	wordHasVowel := false

	resolve := func(continuesWord bool) {
		if !pending {
			return
		}
		if continuesWord || !wordHasVowel {
			b.WriteString("a")
			wordHasVowel = true
		}
		pending = false
	}

	for _, r := range s {
		if sign, ok := devanagariVowelSigns[r]; ok {
			b.WriteString(sign)
			pending = false
			wordHasVowel = true
			continue
		}
		switch r {
		case devanagariVirama:
			pending = false
			continue
		case devanagariNukta:
			continue
		}

		consonant, isConsonant := devanagariConsonants[r]
		vowel, isVowel := devanagariVowels[r]
		sign, isSign := devanagariSigns[r]
		resolve(isConsonant || isVowel || isSign)

		switch {
		case isConsonant:
			b.WriteString(consonant)
			pending = true
		case isVowel:
			b.WriteString(vowel)
			wordHasVowel = true
		case isSign:
			b.WriteString(sign)
		case r >= '०' && r <= '९':
			b.WriteRune('0' + (r - '०'))
			wordHasVowel = false
		default:
			b.WriteRune(r)
			wordHasVowel = false
		}
	}
	resolve(false)
	return b.String()
}
