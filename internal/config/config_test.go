package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("QA_TOP_K", "")
	t.Setenv("QA_CANDIDATE_POOL", "")
	t.Setenv("QA_SEMANTIC_WEIGHT", "")
	t.Setenv("QA_LEXICAL_WEIGHT", "")
	t.Setenv("QA_EXPAND_TIMEOUT_MS", "")

	cfg := Load()
	if cfg.QATopK != 5 {
		t.Fatalf("expected default top k 5, got %d", cfg.QATopK)
	}
	if cfg.QACandidatePool != 10 {
		t.Fatalf("expected default candidate pool 10, got %d", cfg.QACandidatePool)
	}
	if cfg.QASemanticWeight != 0.6 || cfg.QALexicalWeight != 0.4 {
		t.Fatalf("expected default weights 0.6/0.4, got %f/%f", cfg.QASemanticWeight, cfg.QALexicalWeight)
	}
	if cfg.QAExpandTimeoutMS != 800 {
		t.Fatalf("expected default expand timeout 800ms, got %d", cfg.QAExpandTimeoutMS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("QA_TOP_K", "8")
	t.Setenv("QA_SEMANTIC_WEIGHT", "0.75")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("INSTITUTION_NAME", "Crescent College")

	cfg := Load()
	if cfg.QATopK != 8 {
		t.Fatalf("expected top k 8, got %d", cfg.QATopK)
	}
	if cfg.QASemanticWeight != 0.75 {
		t.Fatalf("expected semantic weight 0.75, got %f", cfg.QASemanticWeight)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %f", cfg.RateLimitRPS)
	}
	if cfg.InstitutionName != "Crescent College" {
		t.Fatalf("expected institution override, got %q", cfg.InstitutionName)
	}
}

func TestLoadGenerationTemperature(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "")
	if cfg := Load(); cfg.LLMTemperature != 0 {
		t.Fatalf("expected default temperature 0, got %f", cfg.LLMTemperature)
	}

	t.Setenv("LLM_TEMPERATURE", "0.7")
	if cfg := Load(); cfg.LLMTemperature != 0.7 {
		t.Fatalf("expected temperature override 0.7, got %f", cfg.LLMTemperature)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("QA_TOP_K", "not-a-number")
	t.Setenv("QA_SEMANTIC_WEIGHT", "many")

	cfg := Load()
	if cfg.QATopK != 5 || cfg.QASemanticWeight != 0.6 {
		t.Fatalf("invalid values must fall back to defaults, got %d/%f", cfg.QATopK, cfg.QASemanticWeight)
	}
}

func TestLoadTranscriptRulesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := []byte("- pattern: \\bcse\\b\n  replace: computer science\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadTranscriptRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].Replace != "computer science" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}

func TestLoadTranscriptRulesDefaults(t *testing.T) {
	rules, err := LoadTranscriptRules("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) == 0 {
		t.Fatal("expected built-in rules")
	}
}

func TestLoadAcronymRulesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := []byte("- match: MBA\n  spoken: M B A\n  case_sensitive: true\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write lexicon: %v", err)
	}

	rules, err := LoadAcronymRules(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].Spoken != "M B A" || !rules[0].CaseSensitive {
		t.Fatalf("unexpected rules: %+v", rules)
	}
}

func TestLoadAcronymRulesMissingFile(t *testing.T) {
	if _, err := LoadAcronymRules("/nonexistent/lexicon.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
