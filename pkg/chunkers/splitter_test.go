package chunkers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/joaoccaldas/rag-sub006/pkg/config"
	"github.com/joaoccaldas/rag-sub006/pkg/structure"
)

// fiftyCharSentence is exactly 50 bytes long, ending with a period.
const fiftyCharSentence = "Exactly fifty characters are in this one sentence."

func intPtr(v int) *int {
	return &v
}

func splitterConfig(maxSize, minSize, overlap int) *config.ChunkingConfig {
	cfg := config.DefaultChunkingConfig()
	cfg.MaxChunkSize = maxSize
	cfg.MinChunkSize = minSize
	cfg.OverlapSize = overlap
	return cfg
}

func TestSplitShortBlock(t *testing.T) {
	content := "One short paragraph that easily fits."
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split(content, &structure.DocumentStructure{Blocks: []string{content}})

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	chunk := chunks[0]
	if chunk.ID != "chunk_0" {
		t.Errorf("Expected ID chunk_0, got %s", chunk.ID)
	}
	if chunk.Content != content {
		t.Errorf("Expected content to be the whole block, got %q", chunk.Content)
	}
	if chunk.StartIndex != 0 || chunk.EndIndex != len(content) {
		t.Errorf("Expected span [0, %d), got [%d, %d)", len(content), chunk.StartIndex, chunk.EndIndex)
	}
	if chunk.PageNumber != nil || chunk.SectionIndex != nil {
		t.Errorf("Expected no unit origin for a flat block chunk")
	}
}

func TestSplitLongBlockAtSentences(t *testing.T) {
	content := strings.Repeat(fiftyCharSentence, 50)
	if len(content) != 2500 {
		t.Fatalf("Expected 2500 chars of input, got %d", len(content))
	}
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split(content, &structure.DocumentStructure{Blocks: []string{content}})

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	wantSpans := [][2]int{{0, 1000}, {850, 1850}, {1700, 2500}}
	for i, chunk := range chunks {
		if chunk.StartIndex != wantSpans[i][0] || chunk.EndIndex != wantSpans[i][1] {
			t.Errorf("Chunk %d: expected span %v, got [%d, %d)", i, wantSpans[i], chunk.StartIndex, chunk.EndIndex)
		}
		if chunk.Content != content[chunk.StartIndex:chunk.EndIndex] {
			t.Errorf("Chunk %d content does not match its document span", i)
		}
		if !strings.HasSuffix(chunk.Content, ".") {
			t.Errorf("Chunk %d: expected a sentence-terminated cut, got ending %q", i, chunk.Content[len(chunk.Content)-10:])
		}
	}

	// Consecutive chunks share exactly the configured overlap here because no
	// whitespace sits at the cut points.
	for i := 1; i < len(chunks); i++ {
		shared := chunks[i-1].EndIndex - chunks[i].StartIndex
		if shared != 150 {
			t.Errorf("Expected 150 shared chars between chunks %d and %d, got %d", i-1, i, shared)
		}
	}
}

func TestSplitPaginated(t *testing.T) {
	docStructure := &structure.DocumentStructure{
		Pages: []structure.PageContent{
			{Number: 1, Content: "Page one body.", Offset: 0},
			{Number: 2, Content: "Page two body.", Offset: 20},
		},
	}
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split("", docStructure)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.PageNumber == nil {
			t.Fatalf("Chunk %d: expected a page number", i)
		}
		if *chunk.PageNumber != i+1 {
			t.Errorf("Chunk %d: expected page %d, got %d", i, i+1, *chunk.PageNumber)
		}
		if chunk.SectionIndex != nil {
			t.Errorf("Chunk %d: expected no section index for a page chunk", i)
		}
	}
	if chunks[0].StartIndex != 0 || chunks[0].EndIndex != 14 {
		t.Errorf("Expected first span [0, 14), got [%d, %d)", chunks[0].StartIndex, chunks[0].EndIndex)
	}
	if chunks[1].StartIndex != 20 || chunks[1].EndIndex != 34 {
		t.Errorf("Expected second span [20, 34), got [%d, %d)", chunks[1].StartIndex, chunks[1].EndIndex)
	}
}

func TestSplitSections(t *testing.T) {
	docStructure := &structure.DocumentStructure{
		Sections: []structure.SectionContent{
			{Level: 1, Title: "Intro", Content: "Intro body text.", Offset: 8},
			{Level: 2, Title: "Detail", Content: "Detail body text.", Offset: 40},
		},
	}
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split("", docStructure)

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.SectionIndex == nil || *chunk.SectionIndex != i {
			t.Errorf("Chunk %d: expected section index %d, got %v", i, i, chunk.SectionIndex)
		}
		if chunk.PageNumber != nil {
			t.Errorf("Chunk %d: expected no page number for a section chunk", i)
		}
	}
	if chunks[0].StartIndex != 8 || chunks[0].EndIndex != 24 {
		t.Errorf("Expected first span [8, 24), got [%d, %d)", chunks[0].StartIndex, chunks[0].EndIndex)
	}
	if chunks[1].StartIndex != 40 || chunks[1].EndIndex != 57 {
		t.Errorf("Expected second span [40, 57), got [%d, %d)", chunks[1].StartIndex, chunks[1].EndIndex)
	}
}

func TestSplitBlockOffsetRecovery(t *testing.T) {
	content := "alpha beta.\n\nalpha beta.\n\ngamma delta."
	docStructure := &structure.DocumentStructure{
		Blocks: []string{"alpha beta.", "alpha beta.", "gamma delta."},
	}
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split(content, docStructure)

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	wantStarts := []int{0, 13, 26}
	for i, chunk := range chunks {
		if chunk.StartIndex != wantStarts[i] {
			t.Errorf("Chunk %d: expected start %d, got %d", i, wantStarts[i], chunk.StartIndex)
		}
		if got := content[chunk.StartIndex:chunk.EndIndex]; got != chunk.Content {
			t.Errorf("Chunk %d: span text %q does not match content %q", i, got, chunk.Content)
		}
	}
	// The repeated block must resolve to its second occurrence, not the first.
	if chunks[1].StartIndex != 13 {
		t.Errorf("Expected repeated block at offset 13, got %d", chunks[1].StartIndex)
	}
}

func TestSplitWordBoundaryFallback(t *testing.T) {
	// No sentence terminators anywhere, so cuts fall back to word boundaries.
	content := strings.TrimRight(strings.Repeat("abcdefg ", 150), " ")
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split(content, &structure.DocumentStructure{Blocks: []string{content}})

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk.Content) > 1000 {
			t.Errorf("Chunk %d: expected at most 1000 chars, got %d", i, len(chunk.Content))
		}
		if !strings.HasSuffix(chunk.Content, "abcdefg") {
			t.Errorf("Chunk %d: expected cut at a word boundary, got ending %q", i, chunk.Content[len(chunk.Content)-8:])
		}
	}
}

func TestSplitUnbrokenRunKeepsRunesWhole(t *testing.T) {
	// 600 two-byte runes with no spaces or terminators force hard cuts.
	content := strings.Repeat("х", 600)
	splitter := NewChunkSplitter(splitterConfig(999, 200, 150))

	chunks := splitter.Split(content, &structure.DocumentStructure{Blocks: []string{content}})

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	// Byte 999 sits inside a rune, so the cut backs up to 998.
	if len(chunks[0].Content) != 998 {
		t.Errorf("Expected first chunk of 998 bytes, got %d", len(chunks[0].Content))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk.Content) {
			t.Errorf("Chunk %d: cut bisects a rune", i)
		}
		if chunk.Content != content[chunk.StartIndex:chunk.EndIndex] {
			t.Errorf("Chunk %d content does not match its document span", i)
		}
	}
}

func TestSplitProgressWithOverlap(t *testing.T) {
	content := strings.Repeat(fiftyCharSentence, 100)
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split(content, &structure.DocumentStructure{Blocks: []string{content}})

	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartIndex <= chunks[i-1].StartIndex {
			t.Fatalf("Chunk %d does not advance past chunk %d", i, i-1)
		}
		if chunks[i].StartIndex >= chunks[i-1].EndIndex {
			t.Errorf("Chunks %d and %d do not overlap", i-1, i)
		}
	}
}

func TestSplitEmptyInput(t *testing.T) {
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	if chunks := splitter.Split("", &structure.DocumentStructure{}); len(chunks) != 0 {
		t.Errorf("Expected no chunks for an empty structure, got %d", len(chunks))
	}
	if chunks := splitter.Split("text", nil); len(chunks) != 0 {
		t.Errorf("Expected no chunks for a nil structure, got %d", len(chunks))
	}
}

func TestSplitTokenEstimate(t *testing.T) {
	content := "alpha beta gamma."
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))

	chunks := splitter.Split(content, &structure.DocumentStructure{Blocks: []string{content}})

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	// Three words at 1.3 tokens per word, rounded up.
	if chunks[0].TokenEstimate != 4 {
		t.Errorf("Expected token estimate 4, got %d", chunks[0].TokenEstimate)
	}
}

func BenchmarkSplitLongDocument(b *testing.B) {
	content := strings.Repeat(fiftyCharSentence, 200)
	docStructure := &structure.DocumentStructure{Blocks: []string{content}}
	splitter := NewChunkSplitter(splitterConfig(1000, 200, 150))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		splitter.Split(content, docStructure)
	}
}
