package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/askcampus/askcampus/internal/core/usecase"
	"github.com/askcampus/askcampus/internal/speech"
)

// LoadTranscriptRules reads speech-recognition rewrite rules from a YAML
// file. An empty path means the built-in rules.
func LoadTranscriptRules(path string) ([]usecase.TranscriptRule, error) {
	if path == "" {
		return usecase.DefaultTranscriptRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript rules: %w", err)
	}
	var rules []usecase.TranscriptRule
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse transcript rules %s: %w", path, err)
	}
	return rules, nil
}

// LoadAcronymRules reads the spoken-form lexicon from a YAML file. An empty
// path means the built-in lexicon.
func LoadAcronymRules(path string) ([]speech.AcronymRule, error) {
	if path == "" {
		return speech.DefaultAcronymRules(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read acronym rules: %w", err)
	}
	var rules []speech.AcronymRule
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse acronym rules %s: %w", path, err)
	}
	return rules, nil
}
