// Package speech rewrites generated answers into text that a TTS engine
// reads correctly: acronyms spaced into letters, rupee amounts verbalized in
// the Indian numbering system, percent signs spelled out.
package speech

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AcronymRule maps one written form to its spoken form. CaseSensitive rules
// match the exact written form only, so "IT" expands while the pronoun "it"
// survives. Insensitive rules catch all spellings of unambiguous tokens like
// BTech.
type AcronymRule struct {
	Match         string `yaml:"match"`
	Spoken        string `yaml:"spoken"`
	CaseSensitive bool   `yaml:"case_sensitive"`
}

// DefaultAcronymRules is the lexicon for engineering admissions: program and
// branch abbreviations as they appear in prospectuses.
func DefaultAcronymRules() []AcronymRule {
	exact := func(match, spoken string) AcronymRule {
		return AcronymRule{Match: match, Spoken: spoken, CaseSensitive: true}
	}
	loose := func(match, spoken string) AcronymRule {
		return AcronymRule{Match: match, Spoken: spoken}
	}
	return []AcronymRule{
		loose(`B\.?Tech`, "B Tech"),
		loose(`M\.?Tech`, "M Tech"),
		exact("AIML", "A I M L"),
		exact("CSE", "C S E"),
		exact("ECE", "E C E"),
		exact("CSD", "C S D"),
		exact("IT", "I T"),
		exact("EE", "E E"),
		exact("ME", "M E"),
		exact("CE", "C E"),
		exact("CS", "C S"),
		exact("DS", "D S"),
	}
}

var (
	rupeeAmount   = regexp.MustCompile(`₹\s*([0-9][0-9,]*)(?:\.([0-9]{1,2}))?`)
	percentAmount = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*%`)
)

// Normalizer applies the spoken-form rewrites. Build one at startup; it is
// safe for concurrent use.
type Normalizer struct {
	acronyms []compiledAcronym
}

type compiledAcronym struct {
	re     *regexp.Regexp
	spoken string
}

func NewNormalizer(rules []AcronymRule) (*Normalizer, error) {
	if rules == nil {
		rules = DefaultAcronymRules()
	}
	compiled := make([]compiledAcronym, 0, len(rules))
	for _, r := range rules {
		pattern := `\b` + r.Match + `\b`
		if !r.CaseSensitive {
			pattern = `(?i)` + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile acronym rule %q: %w", r.Match, err)
		}
		compiled = append(compiled, compiledAcronym{re: re, spoken: r.Spoken})
	}
	return &Normalizer{acronyms: compiled}, nil
}

func (n *Normalizer) Normalize(text string) string {
	text = rupeeAmount.ReplaceAllStringFunc(text, verbalizeRupees)
	text = percentAmount.ReplaceAllString(text, "$1 percent")
	for _, rule := range n.acronyms {
		text = rule.re.ReplaceAllString(text, rule.spoken)
	}
	return strings.Join(strings.Fields(text), " ")
}

func verbalizeRupees(match string) string {
	sub := rupeeAmount.FindStringSubmatch(match)
	whole, err := strconv.ParseInt(strings.ReplaceAll(sub[1], ",", ""), 10, 64)
	if err != nil {
		// Degenerate digits, keep the original text rather than losing it.
		return match
	}

	out := indianNumberWords(whole) + " rupees"
	if sub[2] != "" {
		paise, err := strconv.ParseInt(sub[2], 10, 64)
		if err == nil && paise > 0 {
			if len(sub[2]) == 1 {
				paise *= 10
			}
			out += " and " + indianNumberWords(paise) + " paise"
		}
	}
	return out
}
