package chunker

import (
	"reflect"
	"strings"
	"testing"

	"github.com/busraauz/ai-quest-platform/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := New()
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, c.chunkSize)
		}
		if c.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, c.overlap)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		c := New(WithChunkSize(500), WithOverlap(100))
		if c.chunkSize != 500 || c.overlap != 100 {
			t.Errorf("expected 500/100, got %d/%d", c.chunkSize, c.overlap)
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		c := New(WithChunkSize(0), WithOverlap(-1))
		if c.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", c.chunkSize)
		}
		if c.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", c.overlap)
		}
	})
}

func TestSplit_EmptyInput(t *testing.T) {
	c := New(WithChunkSize(100), WithOverlap(10))
	for _, text := range []string{"", "   ", "\n\t \n"} {
		if chunks := c.Split(text); len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestSplit_AdvancesByChunkSizeMinusOverlap(t *testing.T) {
	c := New(WithChunkSize(4), WithOverlap(1))
	got := c.Split("abcdef")
	want := []string{"abcd", "def"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplit_OverlapNotLessThanChunkSizeTerminates(t *testing.T) {
	t.Run("overlap greater than size", func(t *testing.T) {
		c := New(WithChunkSize(2), WithOverlap(5))
		got := c.Split("abcdef")
		want := []string{"ab", "bc", "cd", "de", "ef"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("overlap equal to size", func(t *testing.T) {
		c := New(WithChunkSize(3), WithOverlap(3))
		got := c.Split("abcdef")
		if len(got) != 4 {
			t.Fatalf("expected 4 chunks, got %d: %v", len(got), got)
		}
		if got[len(got)-1] != "def" {
			t.Errorf("expected last chunk 'def', got %q", got[len(got)-1])
		}
	})
}

func TestSplit_FinalChunkMayBeShorter(t *testing.T) {
	c := New(WithChunkSize(5), WithOverlap(0))
	got := c.Split("abcdefghijkl")
	want := []string{"abcde", "fghij", "kl"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("The mitochondria is the powerhouse of the cell. ", 200)
	c := New(WithChunkSize(300), WithOverlap(40))

	first := c.Split(text)
	second := c.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical chunks for identical input")
	}
}

func TestSplit_OverlapStrippedReconstructsText(t *testing.T) {
	// No whitespace, so per-chunk trimming cannot drop characters.
	text := strings.Repeat("abcdefghijklmnopqrstuvwxyz0123456789", 30)
	const size, overlap = 100, 17
	chunks := New(WithChunkSize(size), WithOverlap(overlap)).Split(text)

	var b strings.Builder
	b.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		b.WriteString(chunk[overlap:])
	}
	if b.String() != text {
		t.Error("expected chunks with overlaps removed to reconstruct the text")
	}
}

func TestSplit_DefaultSizes(t *testing.T) {
	c := New()

	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"shorter than one chunk", 3000, 1},
		{"three windows", 9600, 3},
		{"tail beyond third window", 10000, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := c.Split(strings.Repeat("x", tt.length))
			if len(chunks) != tt.want {
				t.Errorf("expected %d chunks, got %d", tt.want, len(chunks))
			}
			for i, chunk := range chunks {
				if len(chunk) > DefaultChunkSize {
					t.Errorf("chunk %d exceeds chunk size: %d", i, len(chunk))
				}
			}
		})
	}
}

func TestSplit_CountsRunesNotBytes(t *testing.T) {
	c := New(WithChunkSize(2), WithOverlap(0))
	got := c.Split("ééééé")
	want := []string{"éé", "éé", "é"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSplit_SkipsWhitespaceOnlyWindows(t *testing.T) {
	c := New(WithChunkSize(4), WithOverlap(0))
	got := c.Split("abcd        efgh")
	want := []string{"abcd", "efgh"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestProcess_AssignsScopeAndIndex(t *testing.T) {
	doc := &domain.Document{
		ID:            "doc-1",
		OwnerID:       "owner-1",
		SessionID:     "session-1",
		ExtractedText: strings.Repeat("y", 25),
	}

	chunks := New(WithChunkSize(10), WithOverlap(0)).Process(doc)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	seen := make(map[string]bool)
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("expected index %d, got %d", i, chunk.Index)
		}
		if chunk.DocumentID != "doc-1" || chunk.OwnerID != "owner-1" || chunk.SessionID != "session-1" {
			t.Errorf("chunk %d has wrong scope: %+v", i, chunk)
		}
		if chunk.Embedding != nil {
			t.Errorf("chunk %d should not be embedded yet", i)
		}
		if seen[chunk.ID] {
			t.Errorf("duplicate chunk ID %s", chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestProcess_EmptyText(t *testing.T) {
	chunks := New().Process(&domain.Document{ID: "doc-1"})
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}
