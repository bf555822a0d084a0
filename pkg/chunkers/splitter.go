package chunkers

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joaoccaldas/rag-sub006/pkg/config"
	"github.com/joaoccaldas/rag-sub006/pkg/structure"
)

// ChunkSplitter cuts the units of a document structure into size-bounded,
// overlapping chunks. Cuts prefer sentence terminators, fall back to word
// boundaries, and never bisect a multi-byte character.
type ChunkSplitter struct {
	config *config.ChunkingConfig
}

// NewChunkSplitter creates a splitter bound to the given configuration.
func NewChunkSplitter(cfg *config.ChunkingConfig) *ChunkSplitter {
	if cfg == nil {
		cfg = config.DefaultChunkingConfig()
	}
	return &ChunkSplitter{config: cfg}
}

// Split cuts every unit of the document structure into chunks and assigns
// stable chunk IDs in emission order. Pages and sections carry their own
// offsets; block offsets are recovered by scanning content forward, so
// chunks never span two units.
func (cs *ChunkSplitter) Split(content string, docStructure *structure.DocumentStructure) []*RawChunk {
	var chunks []*RawChunk
	switch {
	case docStructure == nil:
	case len(docStructure.Pages) > 0:
		for _, page := range docStructure.Pages {
			number := page.Number
			chunks = append(chunks, cs.splitUnit(page.Content, page.Offset, &number, nil)...)
		}
	case len(docStructure.Sections) > 0:
		for i, section := range docStructure.Sections {
			index := i
			chunks = append(chunks, cs.splitUnit(section.Content, section.Offset, nil, &index)...)
		}
	case len(docStructure.Blocks) > 0:
		cursor := 0
		for _, block := range docStructure.Blocks {
			offset := strings.Index(content[cursor:], block)
			if offset < 0 {
				continue
			}
			offset += cursor
			cursor = offset + len(block)
			chunks = append(chunks, cs.splitUnit(block, offset, nil, nil)...)
		}
	}
	for i, chunk := range chunks {
		chunk.ID = fmt.Sprintf("chunk_%d", i)
	}
	return chunks
}

// splitUnit cuts one unit of text into chunks anchored at base, attaching
// the unit origin to each.
func (cs *ChunkSplitter) splitUnit(text string, base int, page, section *int) []*RawChunk {
	var chunks []*RawChunk
	for _, cut := range splitSpan(text, cs.config.MaxChunkSize, cs.config.MinChunkSize, cs.config.OverlapSize) {
		content, start := trimRange(text, cut[0], cut[1])
		if content == "" {
			continue
		}
		chunks = append(chunks, &RawChunk{
			Content:       content,
			StartIndex:    base + start,
			EndIndex:      base + start + len(content),
			PageNumber:    page,
			SectionIndex:  section,
			TokenEstimate: estimateTokens(content),
		})
	}
	return chunks
}

// splitSpan scans text left to right and returns successive [start, end)
// cut ranges of at most maxSize bytes. Consecutive ranges share overlap
// bytes, except where stepping back would stall the scan.
func splitSpan(text string, maxSize, minSize, overlap int) [][2]int {
	var cuts [][2]int
	start := 0
	for start < len(text) {
		end := start + maxSize
		if end >= len(text) {
			cuts = append(cuts, [2]int{start, len(text)})
			break
		}
		end = cutPoint(text, start, end, minSize)
		cuts = append(cuts, [2]int{start, end})
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return cuts
}

// cutPoint picks where to close a chunk that cannot reach the end of its
// unit: after the last sentence terminator inside the preferred window,
// else at the last word boundary, else at a rune boundary near the cap.
func cutPoint(text string, start, limit, minSize int) int {
	windowStart := start + minSize
	if windowStart > limit {
		windowStart = limit
	}
	if idx := strings.LastIndexByte(text[windowStart:limit], '.'); idx >= 0 {
		return windowStart + idx + 1
	}
	if idx := strings.LastIndexFunc(text[start:limit], unicode.IsSpace); idx > 0 {
		return start + idx
	}
	// A single unbroken run longer than the cap. Back the cut up to a rune
	// boundary so it never bisects a multi-byte character.
	cut := limit
	for cut > start && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == start {
		cut = limit
		for cut < len(text) && !utf8.RuneStart(text[cut]) {
			cut++
		}
	}
	return cut
}
