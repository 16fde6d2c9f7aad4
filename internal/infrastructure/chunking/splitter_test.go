package chunking

import (
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(800, 100)
	if got := s.Split(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(800, 100)
	got := s.Split("Tuition for the BTech program is 120000 rupees.")
	if len(got) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(got))
	}
}

func TestSplitOverlappingWindows(t *testing.T) {
	s := NewSplitter(10, 4)
	got := s.Split("abcdefghijklmnopqrstuvwxyz")
	if len(got) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(got))
	}
	// Consecutive chunks share the overlap region.
	if !strings.HasPrefix(got[1], got[0][len(got[0])-4:]) {
		t.Errorf("chunk 1 %q does not start with tail of chunk 0 %q", got[1], got[0])
	}
}

func TestSplitBoundsEveryChunk(t *testing.T) {
	s := NewSplitter(50, 10)
	got := s.Split(strings.Repeat("admission fee hostel mess library ", 40))
	if len(got) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range got {
		if n := len([]rune(c)); n > 50 {
			t.Errorf("chunk %d has %d runes", i, n)
		}
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	s := NewSplitter(0, -1)
	if s.ChunkSize != 800 || s.Overlap != 0 {
		t.Errorf("unexpected defaults: size=%d overlap=%d", s.ChunkSize, s.Overlap)
	}
	s = NewSplitter(100, 200)
	if s.Overlap != 25 {
		t.Errorf("oversized overlap must clamp, got %d", s.Overlap)
	}
}
