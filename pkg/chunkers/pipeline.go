package chunkers

import (
	"context"
	"fmt"
	"time"

	"github.com/joaoccaldas/rag-sub006/pkg/config"
	"github.com/joaoccaldas/rag-sub006/pkg/errors"
	"github.com/joaoccaldas/rag-sub006/pkg/interfaces"
	"github.com/joaoccaldas/rag-sub006/pkg/logger"
	"github.com/joaoccaldas/rag-sub006/pkg/metrics"
	"github.com/joaoccaldas/rag-sub006/pkg/structure"
	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

// Pipeline wires the chunking stages into a DocumentChunker. A pipeline
// never mutates its inputs or its configuration, so one instance can serve
// concurrent callers.
type Pipeline struct {
	config     *config.ChunkingConfig
	logger     interfaces.Logger
	metrics    interfaces.Metrics
	parser     *structure.StructureParser
	splitter   *ChunkSplitter
	enhancer   *VisualContextEnhancer
	semantic   *SemanticBoundaryOptimizer
	adaptive   *AdaptiveSizeOptimizer
	aggregator *MetadataAggregator
}

var _ interfaces.DocumentChunker = (*Pipeline)(nil)

// NewPipeline validates the configuration and builds the chunking stages.
// A nil config selects the defaults; nil logger and metrics select the
// console logger and the no-op collector. The configuration is copied, so
// later changes by the caller do not reach a running pipeline.
func NewPipeline(cfg *config.ChunkingConfig, log interfaces.Logger, collector interfaces.Metrics) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultChunkingConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	if log == nil {
		log = logger.NewLogger()
	}
	if collector == nil {
		collector = metrics.NewNoOpMetrics()
	}
	return &Pipeline{
		config:     cfg,
		logger:     log,
		metrics:    collector,
		parser:     structure.NewStructureParser(log),
		splitter:   NewChunkSplitter(cfg),
		enhancer:   NewVisualContextEnhancer(cfg, log),
		semantic:   NewSemanticBoundaryOptimizer(cfg),
		adaptive:   NewAdaptiveSizeOptimizer(cfg),
		aggregator: NewMetadataAggregator(),
	}, nil
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() *config.ChunkingConfig {
	return p.config.Clone()
}

// ChunkDocument partitions a document and its visual elements into
// retrieval-ready chunks. The document and visuals are borrowed read-only.
// A panic in any stage surfaces as a pipeline error with no partial result.
func (p *Pipeline) ChunkDocument(ctx context.Context, doc *types.Document, visuals []types.VisualElement) (result *types.ChunkingResult, err error) {
	if doc == nil {
		return nil, errors.NewInvalidInputError("document is required")
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewPipelineError("chunking", fmt.Errorf("%v", r))
			p.logger.Error("chunking pipeline panicked", err, map[string]interface{}{
				"document_id": doc.ID,
			})
		}
	}()

	started := time.Now()
	docType := types.ParseDocumentType(string(doc.Type))

	stageStart := time.Now()
	docStructure := p.parser.Parse(doc.Content, docType)
	p.observeStage("structure", stageStart)

	stageStart = time.Now()
	raws := p.splitter.Split(doc.Content, docStructure)
	p.observeStage("split", stageStart)

	var chunks []types.FinalChunk
	if p.config.IncludeVisualContext {
		stageStart = time.Now()
		chunks = p.enhancer.Enhance(raws, visuals)
		p.observeStage("visual", stageStart)
	} else {
		chunks = finalizeChunks(raws)
	}

	if p.config.SemanticBoundaryDetection {
		stageStart = time.Now()
		chunks = p.semantic.Optimize(chunks)
		p.observeStage("semantic", stageStart)
	}

	if p.config.AdaptiveChunkSizing {
		stageStart = time.Now()
		chunks = p.adaptive.Optimize(chunks)
		p.observeStage("adaptive", stageStart)
	}

	metadata := p.aggregator.Aggregate(doc.ID, chunks, time.Since(started))

	p.metrics.Counter("chunker_documents_total", 1, map[string]string{"document_type": string(docType)})
	p.metrics.Counter("chunker_chunks_total", float64(len(chunks)), nil)
	for i := range chunks {
		p.metrics.Histogram("chunker_chunk_size_chars", float64(len(chunks[i].Content)), nil)
	}
	p.metrics.Timer("chunker_duration_ms", durationMs(started), nil)

	p.logger.Info("document chunked", map[string]interface{}{
		"document_id":           doc.ID,
		"job_id":                metadata.JobID,
		"document_type":         string(docType),
		"total_chunks":          metadata.TotalChunks,
		"visual_context_chunks": metadata.VisualContextChunks,
		"processing_time_ms":    metadata.ProcessingTimeMs,
	})

	return &types.ChunkingResult{Chunks: chunks, Metadata: metadata}, nil
}

// observeStage records one stage duration under the stage label.
func (p *Pipeline) observeStage(stage string, started time.Time) {
	p.metrics.Timer("chunker_stage_duration_ms", durationMs(started), map[string]string{"stage": stage})
}

// durationMs returns the elapsed time since started in fractional
// milliseconds.
func durationMs(started time.Time) float64 {
	return float64(time.Since(started).Microseconds()) / 1000.0
}
