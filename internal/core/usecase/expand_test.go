package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeExpander struct {
	out   string
	err   error
	delay time.Duration
}

func (f *fakeExpander) Expand(ctx context.Context, query string) (string, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func TestExpandQueryUsesExpansion(t *testing.T) {
	exp := &fakeExpander{out: "btech fee structure tuition annual cost"}
	got, degraded := expandQuery(context.Background(), exp, "btech fee", 0)
	if degraded {
		t.Error("usable expansion must not report degradation")
	}
	if !strings.Contains(got, "tuition") {
		t.Errorf("expected expanded query, got %q", got)
	}
	if !strings.Contains(got, "btech fee") {
		t.Errorf("expansion must retain the original query, got %q", got)
	}
}

func TestExpandQueryPrefixesOriginalWhenDropped(t *testing.T) {
	exp := &fakeExpander{out: "annual tuition cost"}
	got, _ := expandQuery(context.Background(), exp, "btech fee", 0)
	if !strings.HasPrefix(got, "btech fee") {
		t.Errorf("original query must lead, got %q", got)
	}
}

func TestExpandQueryDegradesOnError(t *testing.T) {
	exp := &fakeExpander{err: errors.New("model down")}
	got, degraded := expandQuery(context.Background(), exp, "btech fee", 0)
	if got != "btech fee" {
		t.Errorf("expected original query on error, got %q", got)
	}
	if !degraded {
		t.Error("expansion error must report degradation")
	}
}

func TestExpandQueryDegradesOnTimeout(t *testing.T) {
	exp := &fakeExpander{out: "never arrives", delay: 200 * time.Millisecond}
	got, degraded := expandQuery(context.Background(), exp, "btech fee", 10*time.Millisecond)
	if got != "btech fee" {
		t.Errorf("expected original query on timeout, got %q", got)
	}
	if !degraded {
		t.Error("timeout must report degradation")
	}
}

func TestExpandQueryDegradesOnUnusableOutput(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"empty", "   "},
		{"runaway length", strings.Repeat("words ", 200)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &fakeExpander{out: tt.out}
			got, degraded := expandQuery(context.Background(), exp, "fee", 0)
			if got != "fee" {
				t.Errorf("expected original query, got %q", got)
			}
			if !degraded {
				t.Error("unusable output must report degradation")
			}
		})
	}
}

func TestExpandQueryNilExpander(t *testing.T) {
	got, degraded := expandQuery(context.Background(), nil, "fee", 0)
	if got != "fee" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if degraded {
		t.Error("missing expander is not a degradation")
	}
}
