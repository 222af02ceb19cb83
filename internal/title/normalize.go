// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package title canonicalizes free-text paper titles and scores how similar
// two titles are.
//
// Normalize is a deterministic, idempotent pipeline: it strips bracketed
// noise and trailing subtitles, folds case and accents, removes punctuation,
// expands a fixed abbreviation table, drops stop words, converts Roman
// numerals, and makes the tail of long titles order-independent.
package title

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-dedup/internal/textsim"
)

// Titles with at most this many words keep their word order.
const orderedWordLimit = 3

// A subtitle is only cut when the remaining head keeps this many words.
const minHeadWords = 3

// Numerals above this value are years, volume numbers, or page counts.
// Converted Roman numerals stay below it, so a second pass keeps them.
const maxKeptNumeral = 39

var (
	bracketed = []*regexp.Regexp{
		regexp.MustCompile(`\([^()]*\)`),
		regexp.MustCompile(`\[[^\[\]]*\]`),
		regexp.MustCompile(`\{[^{}]*\}`),
	}
	romanNumeral = regexp.MustCompile(`^x{0,3}(ix|iv|v?i{0,3})$`)
)

var quoteReplacer = strings.NewReplacer(
	`"`, " ", "“", " ", "”", " ", "„", " ", "«", " ", "»", " ", "`", " ",
	"‘", "'", "’", "'",
)

var symbolReplacer = strings.NewReplacer(
	"&", " and ",
	"+", " plus ",
	"%", " percent ",
	"@", " at ",
)

// subtitleSeparators introduce venue or version noise after the real title.
var subtitleSeparators = []string{":", " - ", " – ", " — ", "|"}

// abbreviations expands common technical shorthand word by word. No
// expansion word is itself a key.
var abbreviations = map[string][]string{
	"ai":    {"artificial", "intelligence"},
	"ml":    {"machine", "learning"},
	"dl":    {"deep", "learning"},
	"rl":    {"reinforcement", "learning"},
	"nlp":   {"natural", "language", "processing"},
	"cv":    {"computer", "vision"},
	"ir":    {"information", "retrieval"},
	"qa":    {"question", "answering"},
	"nn":    {"neural", "network"},
	"nns":   {"neural", "networks"},
	"dnn":   {"deep", "neural", "network"},
	"dnns":  {"deep", "neural", "networks"},
	"cnn":   {"convolutional", "neural", "network"},
	"cnns":  {"convolutional", "neural", "networks"},
	"rnn":   {"recurrent", "neural", "network"},
	"rnns":  {"recurrent", "neural", "networks"},
	"gnn":   {"graph", "neural", "network"},
	"gnns":  {"graph", "neural", "networks"},
	"gan":   {"generative", "adversarial", "network"},
	"gans":  {"generative", "adversarial", "networks"},
	"lstm":  {"long", "short-term", "memory"},
	"llm":   {"large", "language", "model"},
	"llms":  {"large", "language", "models"},
	"svm":   {"support", "vector", "machine"},
	"svms":  {"support", "vector", "machines"},
	"mlp":   {"multilayer", "perceptron"},
	"nmt":   {"neural", "machine", "translation"},
	"asr":   {"automatic", "speech", "recognition"},
	"ocr":   {"optical", "character", "recognition"},
	"iot":   {"internet", "things"},
	"vs":    {"versus"},
	"2d":    {"two-dimensional"},
	"3d":    {"three-dimensional"},
	"km":    {"kilometer"},
	"kg":    {"kilogram"},
	"ms":    {"millisecond"},
	"hz":    {"hertz"},
	"khz":   {"kilohertz"},
	"mhz":   {"megahertz"},
	"ghz":   {"gigahertz"},
	"kb":    {"kilobyte"},
	"mb":    {"megabyte"},
	"gb":    {"gigabyte"},
	"tb":    {"terabyte"},
	"intl":  {"international"},
	"conf":  {"conference"},
	"proc":  {"proceedings"},
	"univ":  {"university"},
	"eng":   {"engineering"},
	"sci":   {"science"},
	"tech":  {"technology"},
	"appl":  {"applications"},
	"comp":  {"computing"},
	"syst":  {"systems"},
	"trans": {"transactions"},
}

// stopWords are dropped after abbreviation expansion. "a" is kept.
var stopWords = map[string]bool{
	"the": true, "an": true, "of": true, "and": true, "or": true,
	"in": true, "on": true, "at": true, "for": true, "to": true,
	"with": true, "by": true, "from": true, "as": true, "into": true,
	"via": true, "is": true, "are": true, "be": true, "its": true,
	"this": true, "that": true, "these": true, "using": true, "towards": true,
	"toward": true, "through": true, "about": true, "over": true, "under": true,
}

// Normalize returns the canonical comparison form of a title. Empty or
// all-noise input yields "".
func Normalize(title string) string {
	return strings.Join(normalizeWords(title), " ")
}

// Tokens returns the distinct tokens of the normalized title in order.
func Tokens(title string) []string {
	return uniqueWords(normalizeWords(title))
}

// NormalizedTokens is Tokens for a title that is already normalized.
func NormalizedTokens(normalized string) []string {
	return uniqueWords(strings.Fields(normalized))
}

func uniqueWords(words []string) []string {
	seen := make(map[string]bool, len(words))
	tokens := words[:0]
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return tokens
}

func normalizeWords(title string) []string {
	s := stripBrackets(title)
	s = quoteReplacer.Replace(s)
	s = stripSubtitle(s)
	s = textsim.Fold(strings.ToLower(s))
	s = symbolReplacer.Replace(s)
	s = stripPunctuation(s)

	var words []string
	for _, raw := range strings.Fields(s) {
		w := strings.Trim(raw, "-'")
		if w == "" {
			continue
		}
		if exp, ok := abbreviations[w]; ok {
			words = append(words, exp...)
			continue
		}
		words = append(words, w)
	}

	kept := words[:0]
	for _, w := range words {
		if dropWord(w) {
			continue
		}
		kept = append(kept, romanToArabic(w))
	}

	if len(kept) > orderedWordLimit {
		slices.Sort(kept[2:])
	}
	return kept
}

// stripBrackets removes bracketed content, innermost first, so nesting
// like "(a (b) c)" is fully removed.
func stripBrackets(s string) string {
	for {
		before := s
		for _, re := range bracketed {
			s = re.ReplaceAllString(s, " ")
		}
		if s == before {
			return s
		}
	}
}

func stripSubtitle(s string) string {
	cut := -1
	for _, sep := range subtitleSeparators {
		if i := strings.Index(s, sep); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}
	if cut < 0 {
		return s
	}
	head := s[:cut]
	if len(strings.Fields(head)) < minHeadWords {
		return s
	}
	return head
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '\'':
			return r
		default:
			return ' '
		}
	}, s)
}

func dropWord(w string) bool {
	if stopWords[w] {
		return true
	}
	if w != "a" && len([]rune(w)) == 1 && !isDigits(w) {
		return true
	}
	if isDigits(w) {
		n, err := strconv.Atoi(w)
		return err != nil || n == 0 || n > maxKeptNumeral
	}
	return false
}

// romanToArabic converts multi-letter Roman numerals built from i, v and x
// ("ii" through "xxxix"). Single letters never reach it.
func romanToArabic(w string) string {
	if len(w) < 2 || !romanNumeral.MatchString(w) {
		return w
	}
	values := map[byte]int{'i': 1, 'v': 5, 'x': 10}
	total := 0
	for i := 0; i < len(w); i++ {
		v := values[w[i]]
		if i+1 < len(w) && values[w[i+1]] > v {
			total -= v
		} else {
			total += v
		}
	}
	return strconv.Itoa(total)
}

func isDigits(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
