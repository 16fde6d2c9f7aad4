package usecase

import (
	"regexp"
	"strings"
)

// TranscriptRule rewrites one speech-recognition artifact. Pattern is a
// regular expression applied to the lowercased query.
type TranscriptRule struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

type transcriptFixer struct {
	rules []compiledRule
}

type compiledRule struct {
	re      *regexp.Regexp
	replace string
}

// DefaultTranscriptRules covers the mishearings browser speech recognition
// produces for program names: "aiemail" and spelled-out letters for AIML,
// and "it" next to academic words meaning Information Technology.
func DefaultTranscriptRules() []TranscriptRule {
	return []TranscriptRule{
		{Pattern: `\baiemail\b`, Replace: "aiml"},
		{Pattern: `\ba\s?i\s?m\s?l\b`, Replace: "aiml"},
		{Pattern: `\bai\s+ml\b`, Replace: "aiml"},
		{Pattern: `\b(?:it|i\.t\.)\s+(department|dept|branch|course|engineering|program|major)\b`, Replace: "information technology $1"},
		{Pattern: `\b(btech|b\.tech|mtech|m\.tech|bachelor|master|degree|diploma)\s+(in|of)\s+(?:it|i\.t\.)\b`, Replace: "$1 $2 information technology"},
	}
}

func newTranscriptFixer(rules []TranscriptRule) (*transcriptFixer, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{re: re, replace: r.Replace})
	}
	return &transcriptFixer{rules: compiled}, nil
}

// clean lowercases and applies the rewrite rules in order.
func (f *transcriptFixer) clean(query string) string {
	out := strings.ToLower(strings.TrimSpace(query))
	for _, rule := range f.rules {
		out = rule.re.ReplaceAllString(out, rule.replace)
	}
	return out
}
