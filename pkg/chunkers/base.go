// Package chunkers implements the chunking pipeline that partitions
// extracted document text into bounded, overlapping chunks enriched with
// visual context for embedding and retrieval.
package chunkers

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

// RawChunk represents a text span produced by the splitter before visual
// enhancement and optimization. Indexes are byte offsets into the document
// content.
type RawChunk struct {
	// ID is the stable chunk identifier, assigned in emission order
	ID string

	// Content is the trimmed chunk text, verbatim from the document
	Content string

	// StartIndex is the byte offset of Content within the document
	StartIndex int

	// EndIndex is StartIndex + len(Content)
	EndIndex int

	// PageNumber is set for chunks cut from paginated documents
	PageNumber *int

	// SectionIndex is set for chunks cut from markup or structured documents
	SectionIndex *int

	// Position is an optional spatial anchor within the page
	Position *types.Position

	// TokenEstimate approximates the language-model token count
	TokenEstimate int
}

// tokensPerWord converts a word count into an estimated token count.
const tokensPerWord = 1.3

// sentenceTerminators are the characters accepted as clean chunk endings.
const sentenceTerminators = ".!?:;"

var sentenceSplitRegex = regexp.MustCompile(`[.!?]+`)

// estimateTokens approximates the token count of content from its word count.
func estimateTokens(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) * tokensPerWord))
}

// endsAtSentenceBoundary reports whether content ends with a sentence
// terminator after trailing whitespace is ignored.
func endsAtSentenceBoundary(content string) bool {
	trimmed := strings.TrimRightFunc(content, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	return strings.IndexByte(sentenceTerminators, trimmed[len(trimmed)-1]) >= 0
}

// readabilityScore grades content on average sentence length. Fifteen words
// per sentence scores 1.0 and the score decays linearly to 0.0 at forty-five.
func readabilityScore(content string) float64 {
	sentences := 0
	totalWords := 0
	for _, sentence := range sentenceSplitRegex.Split(content, -1) {
		words := len(strings.Fields(sentence))
		if words == 0 {
			continue
		}
		sentences++
		totalWords += words
	}
	if sentences == 0 {
		return 0
	}
	avgWords := float64(totalWords) / float64(sentences)
	return clamp01(1 - (avgWords-15)/30)
}

// clamp01 bounds v to the [0, 1] interval.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// trimRange trims whitespace from both ends of text[start:end] and returns
// the trimmed content together with its adjusted start offset.
func trimRange(text string, start, end int) (string, int) {
	slice := text[start:end]
	trimmedLeft := strings.TrimLeftFunc(slice, unicode.IsSpace)
	lead := len(slice) - len(trimmedLeft)
	content := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	return content, start + lead
}

// finalizeChunk lifts a raw chunk into a final chunk carrying the default
// retrieval context. Visual fields start empty; the enhancer fills them in
// when visual context is enabled.
func finalizeChunk(raw *RawChunk) types.FinalChunk {
	return types.FinalChunk{
		ID:            raw.ID,
		Content:       raw.Content,
		StartIndex:    raw.StartIndex,
		EndIndex:      raw.EndIndex,
		PageNumber:    raw.PageNumber,
		SectionIndex:  raw.SectionIndex,
		Position:      raw.Position,
		TokenEstimate: raw.TokenEstimate,
		SectionType:   types.SectionTypeText,
		Context: types.ChunkContext{
			Importance:       1.0,
			ReadabilityScore: readabilityScore(raw.Content),
		},
	}
}

// finalizeChunks converts raw chunks into final chunks without visual
// enhancement.
func finalizeChunks(raws []*RawChunk) []types.FinalChunk {
	chunks := make([]types.FinalChunk, 0, len(raws))
	for _, raw := range raws {
		chunks = append(chunks, finalizeChunk(raw))
	}
	return chunks
}

// unionStrings appends the elements of additions that are not already
// present in base, preserving first-seen order.
func unionStrings(base, additions []string) []string {
	if len(additions) == 0 {
		return base
	}
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range additions {
		if !seen[s] {
			seen[s] = true
			base = append(base, s)
		}
	}
	return base
}
