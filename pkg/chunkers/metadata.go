package chunkers

import (
	"time"

	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

// MetadataAggregator summarizes a finished chunk list into run metadata.
type MetadataAggregator struct{}

// NewMetadataAggregator creates an aggregator.
func NewMetadataAggregator() *MetadataAggregator {
	return &MetadataAggregator{}
}

// Aggregate computes the metadata for one chunking run. Aggregation is a
// pure summary pass; the chunks themselves are not modified.
func (ma *MetadataAggregator) Aggregate(documentID string, chunks []types.FinalChunk, elapsed time.Duration) types.ChunkingMetadata {
	metadata := types.NewChunkingMetadata(documentID)
	metadata.TotalChunks = len(chunks)
	metadata.ProcessingTimeMs = elapsed.Milliseconds()
	if len(chunks) == 0 {
		return *metadata
	}

	totalSize := 0
	totalDensity := 0.0
	totalReadability := 0.0
	for i := range chunks {
		chunk := &chunks[i]
		totalSize += len(chunk.Content)
		totalDensity += chunk.Context.VisualDensity
		totalReadability += chunk.Context.ReadabilityScore
		if chunk.HasVisualContext() {
			metadata.VisualContextChunks++
		}
		if chunk.PageNumber != nil {
			metadata.PageDistribution[*chunk.PageNumber]++
		}
		metadata.SectionTypeDistribution[chunk.SectionType]++
	}

	count := float64(len(chunks))
	metadata.AverageChunkSize = float64(totalSize) / count
	metadata.AverageVisualDensity = totalDensity / count
	metadata.AverageReadability = totalReadability / count
	return *metadata
}
