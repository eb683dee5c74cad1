package analyzer

import "strings"

// PorterStemmer implements the Porter stemming algorithm. Suffix rules are
// kept in ordered tables, longest suffix first, so stemming is deterministic.
type PorterStemmer struct{}

// NewPorterStemmer creates a new Porter stemmer.
func NewPorterStemmer() *PorterStemmer {
	return &PorterStemmer{}
}

// Stem returns the stem of a word.
func (p *PorterStemmer) Stem(word string) string {
	if len(word) < 3 {
		return word
	}
	word = strings.ToLower(word)
	word = plurals(word)
	word = pastParticiples(word)
	word = terminalY(word)
	word = applyRules(word, doubleSuffixRules, 0)
	word = applyRules(word, suffixToShortRules, 0)
	word = stripResidualSuffix(word)
	word = finalE(word)
	word = finalDoubleL(word)
	return word
}

type suffixRule struct {
	suffix  string
	replace string
}

// doubleSuffixRules maps derivational double suffixes to simpler forms
// (step 2 of the algorithm). Longest suffixes come first.
var doubleSuffixRules = []suffixRule{
	{"ational", "ate"},
	{"ization", "ize"},
	{"iveness", "ive"},
	{"fulness", "ful"},
	{"ousness", "ous"},
	{"tional", "tion"},
	{"biliti", "ble"},
	{"entli", "ent"},
	{"ousli", "ous"},
	{"ation", "ate"},
	{"alism", "al"},
	{"aliti", "al"},
	{"iviti", "ive"},
	{"enci", "ence"},
	{"anci", "ance"},
	{"izer", "ize"},
	{"abli", "able"},
	{"alli", "al"},
	{"ator", "ate"},
	{"eli", "e"},
}

// suffixToShortRules handles -ic-, -full, -ness and friends (step 3).
var suffixToShortRules = []suffixRule{
	{"icate", "ic"},
	{"ative", ""},
	{"alize", "al"},
	{"iciti", "ic"},
	{"ical", "ic"},
	{"ness", ""},
	{"ful", ""},
}

// residualSuffixes are stripped outright when the stem is long enough
// (step 4). Longest first; "ion" carries an extra condition.
var residualSuffixes = []string{
	"ement", "ance", "ence", "able", "ible", "ment",
	"ant", "ent", "ion", "ism", "ate", "iti", "ous", "ive", "ize",
	"al", "er", "ic", "ou",
}

func isConsonant(word string, i int) bool {
	switch word[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(word, i-1)
	}
	return true
}

// measure counts vowel-consonant sequences in the word.
func measure(word string) int {
	n := len(word)
	m := 0
	i := 0
	for i < n && isConsonant(word, i) {
		i++
	}
	for i < n {
		for i < n && !isConsonant(word, i) {
			i++
		}
		if i >= n {
			break
		}
		m++
		for i < n && isConsonant(word, i) {
			i++
		}
	}
	return m
}

func hasVowel(word string) bool {
	for i := 0; i < len(word); i++ {
		if !isConsonant(word, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(word string) bool {
	n := len(word)
	return n >= 2 && word[n-1] == word[n-2] && isConsonant(word, n-1)
}

// endsCVC reports whether the word ends consonant-vowel-consonant where the
// final consonant is not w, x or y.
func endsCVC(word string) bool {
	n := len(word)
	if n < 3 {
		return false
	}
	if !isConsonant(word, n-3) || isConsonant(word, n-2) || !isConsonant(word, n-1) {
		return false
	}
	c := word[n-1]
	return c != 'w' && c != 'x' && c != 'y'
}

func plurals(word string) string {
	switch {
	case strings.HasSuffix(word, "sses"), strings.HasSuffix(word, "ies"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}

func pastParticiples(word string) string {
	if strings.HasSuffix(word, "eed") {
		if measure(word[:len(word)-3]) > 0 {
			return word[:len(word)-1]
		}
		return word
	}

	modified := false
	if stem, ok := strings.CutSuffix(word, "ed"); ok && hasVowel(stem) {
		word = stem
		modified = true
	} else if stem, ok := strings.CutSuffix(word, "ing"); ok && hasVowel(stem) {
		word = stem
		modified = true
	}
	if !modified {
		return word
	}

	switch {
	case strings.HasSuffix(word, "at"), strings.HasSuffix(word, "bl"), strings.HasSuffix(word, "iz"):
		return word + "e"
	case endsDoubleConsonant(word):
		c := word[len(word)-1]
		if c != 'l' && c != 's' && c != 'z' {
			return word[:len(word)-1]
		}
	case measure(word) == 1 && endsCVC(word):
		return word + "e"
	}
	return word
}

func terminalY(word string) string {
	if stem, ok := strings.CutSuffix(word, "y"); ok && hasVowel(stem) {
		return stem + "i"
	}
	return word
}

func applyRules(word string, rules []suffixRule, minMeasure int) string {
	for _, r := range rules {
		if stem, ok := strings.CutSuffix(word, r.suffix); ok {
			if measure(stem) > minMeasure {
				return stem + r.replace
			}
			return word
		}
	}
	return word
}

func stripResidualSuffix(word string) string {
	for _, suffix := range residualSuffixes {
		stem, ok := strings.CutSuffix(word, suffix)
		if !ok {
			continue
		}
		if measure(stem) <= 1 {
			return word
		}
		if suffix == "ion" {
			if n := len(stem); n == 0 || (stem[n-1] != 's' && stem[n-1] != 't') {
				return word
			}
		}
		return stem
	}
	return word
}

func finalE(word string) string {
	if stem, ok := strings.CutSuffix(word, "e"); ok {
		m := measure(stem)
		if m > 1 || (m == 1 && !endsCVC(stem)) {
			return stem
		}
	}
	return word
}

func finalDoubleL(word string) string {
	if measure(word) > 1 && endsDoubleConsonant(word) && word[len(word)-1] == 'l' {
		return word[:len(word)-1]
	}
	return word
}
