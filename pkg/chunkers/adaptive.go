package chunkers

import (
	"fmt"

	"github.com/joaoccaldas/rag-sub006/pkg/config"
	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

// Factors applied when sizing chunks to their content.
const (
	denseVisualFactor    = 0.8
	lowReadabilityFactor = 0.7
	oversizeTolerance    = 1.5
)

// AdaptiveSizeOptimizer rescales chunks toward a per-chunk optimal size
// derived from visual density and readability.
type AdaptiveSizeOptimizer struct {
	config *config.ChunkingConfig
}

// NewAdaptiveSizeOptimizer creates an optimizer bound to the given
// configuration.
func NewAdaptiveSizeOptimizer(cfg *config.ChunkingConfig) *AdaptiveSizeOptimizer {
	if cfg == nil {
		cfg = config.DefaultChunkingConfig()
	}
	return &AdaptiveSizeOptimizer{config: cfg}
}

// Optimize splits chunks that run far past their optimal size and demotes
// the importance of fragments far below it. Sub-chunks produced here are
// not re-evaluated in the same pass.
func (aso *AdaptiveSizeOptimizer) Optimize(chunks []types.FinalChunk) []types.FinalChunk {
	result := make([]types.FinalChunk, 0, len(chunks))
	for i := range chunks {
		chunk := chunks[i]
		optimal := aso.optimalSize(&chunk)
		switch {
		case float64(len(chunk.Content)) > float64(optimal)*oversizeTolerance:
			result = append(result, aso.splitOversized(chunk, optimal)...)
		case len(chunk.Content) < optimal/2:
			if chunk.Context.Importance > 0.5 {
				chunk.Context.Importance = 0.5
			}
			result = append(result, chunk)
		default:
			result = append(result, chunk)
		}
	}
	return result
}

// optimalSize derives the preferred size for one chunk. Dense visual
// regions and hard-to-read text both shrink it, floored at the configured
// minimum.
func (aso *AdaptiveSizeOptimizer) optimalSize(chunk *types.FinalChunk) int {
	optimal := float64(aso.config.MaxChunkSize)
	if chunk.Context.VisualDensity > 0.5 {
		optimal *= denseVisualFactor
	}
	if chunk.Context.ReadabilityScore < 0.3 {
		optimal *= lowReadabilityFactor
	}
	if optimal < float64(aso.config.MinChunkSize) {
		optimal = float64(aso.config.MinChunkSize)
	}
	return int(optimal)
}

// splitOversized cuts a chunk into overlapping sub-chunks of roughly
// optimal size. Sub-chunks inherit the parent's origin, references and
// context; readability and token estimates are recomputed per sub-chunk.
func (aso *AdaptiveSizeOptimizer) splitOversized(parent types.FinalChunk, optimal int) []types.FinalChunk {
	var subChunks []types.FinalChunk
	for _, cut := range splitSpan(parent.Content, optimal, aso.config.MinChunkSize, aso.config.OverlapSize) {
		content, start := trimRange(parent.Content, cut[0], cut[1])
		if content == "" {
			continue
		}
		sub := parent
		sub.ID = fmt.Sprintf("%s_s%d", parent.ID, len(subChunks))
		sub.Content = content
		sub.StartIndex = parent.StartIndex + start
		sub.EndIndex = parent.StartIndex + start + len(content)
		sub.TokenEstimate = estimateTokens(content)
		sub.VisualReferences = append([]string(nil), parent.VisualReferences...)
		sub.Context.NearbyVisuals = append([]string(nil), parent.Context.NearbyVisuals...)
		sub.Context.SemanticBoundaries = append([]string(nil), parent.Context.SemanticBoundaries...)
		sub.Context.ReadabilityScore = readabilityScore(content)
		subChunks = append(subChunks, sub)
	}
	return subChunks
}
