package chunkers

import (
	"github.com/joaoccaldas/rag-sub006/pkg/config"
	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

// mergeTolerance lets a merged chunk exceed the configured cap by 20%.
const mergeTolerance = 1.2

// Boundary markers recorded in chunk context by the optimizer.
const (
	boundarySentenceEnd        = "sentence-end"
	boundaryMergedContinuation = "merged-continuation"
)

// SemanticBoundaryOptimizer repairs chunks that end mid-thought by merging
// them with their successors.
type SemanticBoundaryOptimizer struct {
	config *config.ChunkingConfig
}

// NewSemanticBoundaryOptimizer creates an optimizer bound to the given
// configuration.
func NewSemanticBoundaryOptimizer(cfg *config.ChunkingConfig) *SemanticBoundaryOptimizer {
	if cfg == nil {
		cfg = config.DefaultChunkingConfig()
	}
	return &SemanticBoundaryOptimizer{config: cfg}
}

// Optimize walks the chunk list once, left to right, merging each chunk
// that ends without a sentence terminator into its successor when the pair
// fits within the merge tolerance. A merged chunk is not reconsidered in
// the same pass.
func (sbo *SemanticBoundaryOptimizer) Optimize(chunks []types.FinalChunk) []types.FinalChunk {
	limit := int(float64(sbo.config.MaxChunkSize) * mergeTolerance)
	result := make([]types.FinalChunk, 0, len(chunks))
	for i := 0; i < len(chunks); i++ {
		chunk := chunks[i]
		merged := false
		if i+1 < len(chunks) && !endsAtSentenceBoundary(chunk.Content) && sbo.canMerge(&chunk, &chunks[i+1], limit) {
			chunk = mergeChunks(chunk, chunks[i+1])
			merged = true
			i++
		}
		switch {
		case merged:
			chunk.Context.SemanticBoundaries = append(chunk.Context.SemanticBoundaries, boundaryMergedContinuation)
		case endsAtSentenceBoundary(chunk.Content):
			chunk.Context.SemanticBoundaries = append(chunk.Context.SemanticBoundaries, boundarySentenceEnd)
		}
		result = append(result, chunk)
	}
	return result
}

// canMerge reports whether chunk may absorb next without breaking the size
// tolerance or crossing a preserved page boundary.
func (sbo *SemanticBoundaryOptimizer) canMerge(chunk, next *types.FinalChunk, limit int) bool {
	if len(chunk.Content)+1+len(next.Content) > limit {
		return false
	}
	if sbo.config.PreservePageBoundaries && onDifferentPages(chunk, next) {
		return false
	}
	return true
}

// onDifferentPages reports whether both chunks carry page numbers that
// disagree.
func onDifferentPages(chunk, next *types.FinalChunk) bool {
	return chunk.PageNumber != nil && next.PageNumber != nil && *chunk.PageNumber != *next.PageNumber
}

// mergeChunks absorbs next into chunk: content joins with a single space,
// the span extends to next's end, visual references union, and the
// stronger importance and density win. The merged chunk keeps the first
// chunk's identity and origin.
func mergeChunks(chunk, next types.FinalChunk) types.FinalChunk {
	chunk.Content = chunk.Content + " " + next.Content
	chunk.EndIndex = next.EndIndex
	chunk.TokenEstimate = estimateTokens(chunk.Content)
	chunk.VisualReferences = unionStrings(chunk.VisualReferences, next.VisualReferences)
	chunk.Context.NearbyVisuals = unionStrings(chunk.Context.NearbyVisuals, next.Context.NearbyVisuals)
	if next.Context.Importance > chunk.Context.Importance {
		chunk.Context.Importance = next.Context.Importance
	}
	if next.Context.VisualDensity > chunk.Context.VisualDensity {
		chunk.Context.VisualDensity = next.Context.VisualDensity
	}
	chunk.SectionType = sectionTypeForDensity(chunk.Context.VisualDensity)
	chunk.Context.ReadabilityScore = readabilityScore(chunk.Content)
	return chunk
}
