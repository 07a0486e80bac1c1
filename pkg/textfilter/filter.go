// Package textfilter holds the fixed vocabulary batteries used to
// police generated dialogue: equipment nouns banter must not mention,
// modern slang that breaks the setting, and a profanity filter applied
// before lines reach the in-game message log.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// itemKeywords are equipment and consumable nouns. Banter is ambient
// character talk; shop inventory does not belong in it. Matched as
// case-insensitive substrings.
var itemKeywords = []string{
	"sword", "axe", "mace", "dagger", "spear", "halberd", "bow", "crossbow",
	"shield", "helmet", "gauntlet", "breastplate", "chainmail", "plate armor",
	"leather armor", "buckler", "potion", "elixir", "antidote", "scroll",
	"wand", "staff", "amulet", "ring of", "cloak of",
}

// slangWords are casual modern terms that break a medieval fantasy
// register. Matched as case-insensitive whole words.
var slangWords = []string{
	"okay", "ok", "yeah", "yep", "nope", "cool", "awesome", "dude", "guys",
	"gonna", "wanna", "gotta", "kinda", "sorta", "whatever", "totally",
	"basically", "literally", "super", "stuff", "hey", "wow", "omg",
	"lol", "bro",
}

// KeywordFilter scans text for a fixed list of banned terms.
type KeywordFilter struct {
	substrings []string
	wordOrder  []string
	words      map[string]*regexp.Regexp
}

// NewItemFilter returns a filter over the equipment/item noun list,
// matching case-insensitive substrings.
func NewItemFilter() *KeywordFilter {
	return &KeywordFilter{substrings: itemKeywords}
}

// NewSlangFilter returns a filter over the modern-slang list, matching
// case-insensitive whole words only.
func NewSlangFilter() *KeywordFilter {
	words := make(map[string]*regexp.Regexp, len(slangWords))
	for _, w := range slangWords {
		words[w] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return &KeywordFilter{wordOrder: slangWords, words: words}
}

// FindMatch returns the first banned term found in text, in list
// order, and whether any was found.
func (f *KeywordFilter) FindMatch(text string) (string, bool) {
	if f.substrings != nil {
		lower := strings.ToLower(text)
		for _, kw := range f.substrings {
			if strings.Contains(lower, kw) {
				return kw, true
			}
		}
		return "", false
	}
	for _, w := range f.wordOrder {
		if f.words[w].MatchString(text) {
			return w, true
		}
	}
	return "", false
}

// swearReplacements maps common US English swear words to
// family-friendly alternatives, applied before dialogue reaches the
// message log.
var swearReplacements = []struct {
	word        string
	replacement string
}{
	{"motherfucker", "mother-trucker"},
	{"bullshit", "baloney"},
	{"goddamn", "gosh-dang"},
	{"asshole", "jerk"},
	{"dumbass", "dummy"},
	{"bastard", "jerk"},
	{"fuck", "fudge"},
	{"shit", "shoot"},
	{"damn", "dang"},
	{"hell", "heck"},
	{"ass", "butt"},
	{"bitch", "jerk"},
	{"crap", "crud"},
	{"piss", "ticked"},
	{"prick", "jerk"},
}

// ProfanityFilter replaces profanity in presented dialogue with
// family-friendly alternatives, preserving the case of the original.
type ProfanityFilter struct {
	regexes map[string]*regexp.Regexp
}

// NewProfanityFilter creates a filter with patterns pre-compiled.
func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{
		regexes: make(map[string]*regexp.Regexp, len(swearReplacements)),
	}
	for _, sr := range swearReplacements {
		pf.regexes[sr.word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(sr.word) + `\b`)
	}
	return pf
}

// FilterText replaces each swear word with its alternative.
func (pf *ProfanityFilter) FilterText(text string) string {
	result := text
	for _, sr := range swearReplacements {
		result = pf.regexes[sr.word].ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, sr.replacement)
		})
	}
	return result
}

// ContainsProfanity reports whether the text contains any filtered word.
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, sr := range swearReplacements {
		if pf.regexes[sr.word].MatchString(text) {
			return true
		}
	}
	return false
}

// preserveCase applies the case pattern of the original word to the
// replacement.
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: mirror character by character.
	originalRunes := []rune(original)
	result := make([]rune, 0, len(replacement))
	for i, r := range []rune(replacement) {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
