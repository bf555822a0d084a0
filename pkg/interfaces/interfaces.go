// Package interfaces defines the core interfaces for the chunking engine and
// the external collaborators that surround it in the document pipeline
package interfaces

import (
	"context"
	"io"

	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

// DocumentChunker defines the interface for document chunking implementations
type DocumentChunker interface {
	// ChunkDocument partitions a document and its visual elements into retrieval-ready chunks
	ChunkDocument(ctx context.Context, doc *types.Document, visuals []types.VisualElement) (*types.ChunkingResult, error)
}

// TextExtractor defines the interface for OCR/text extraction implementations.
// Extraction runs upstream of the chunker; the chunker only consumes its output.
type TextExtractor interface {
	// Extract extracts document text from a reader
	Extract(ctx context.Context, reader io.Reader, contentType string) (*types.Document, error)

	// ExtractFile extracts document text from a file
	ExtractFile(ctx context.Context, filePath string) (*types.Document, error)

	// SupportedTypes returns supported content types
	SupportedTypes() []string
}

// VisualDetector defines the interface for visual element detection implementations
type VisualDetector interface {
	// Detect detects visual elements in a document
	Detect(ctx context.Context, reader io.Reader, contentType string) ([]types.VisualElement, error)

	// DetectFile detects visual elements in a file
	DetectFile(ctx context.Context, filePath string) ([]types.VisualElement, error)
}

// Embedder defines the interface for embedding implementations
type Embedder interface {
	// Embed generates an embedding for a chunk's content
	Embed(ctx context.Context, text string) (types.EmbeddingVector, error)

	// EmbedBatch generates embeddings for multiple texts
	EmbedBatch(ctx context.Context, texts []string) ([]types.EmbeddingVector, error)

	// GetDimension returns the embedding dimension
	GetDimension() int

	// Close closes the embedder
	Close() error
}

// ChunkIndexer defines the interface for chunk index implementations
type ChunkIndexer interface {
	// Index stores chunks with their embeddings
	Index(ctx context.Context, chunks []types.FinalChunk, vectors []types.EmbeddingVector) error

	// Search searches for chunks similar to the query vector
	Search(ctx context.Context, query types.EmbeddingVector, topK int, filters map[string]string) ([]types.ChunkSearchResult, error)

	// Delete deletes indexed chunks by ID
	Delete(ctx context.Context, chunkIDs []string) error

	// Close closes the index connection
	Close() error
}

// Summarizer defines the interface for AI summarization implementations
type Summarizer interface {
	// Summarize produces a summary with keywords for the given text
	Summarize(ctx context.Context, text string) (*types.SummaryResult, error)

	// Close closes the summarizer connection
	Close() error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	// Load loads configuration from a file
	Load(ctx context.Context, path string) error

	// Get retrieves a configuration value
	Get(key string) interface{}

	// Set sets a configuration value
	Set(key string, value interface{}) error

	// Save saves configuration to a file
	Save(ctx context.Context, path string) error

	// Watch watches for configuration changes
	Watch(ctx context.Context, callback func(key string, value interface{})) error
}

// Logger defines the interface for logging implementations
type Logger interface {
	// Debug logs debug level messages
	Debug(msg string, fields ...map[string]interface{})

	// Info logs info level messages
	Info(msg string, fields ...map[string]interface{})

	// Warn logs warning level messages
	Warn(msg string, fields ...map[string]interface{})

	// Error logs error level messages
	Error(msg string, err error, fields ...map[string]interface{})

	// Fatal logs fatal level messages and exits
	Fatal(msg string, err error, fields ...map[string]interface{})

	// WithFields returns a logger with additional fields
	WithFields(fields map[string]interface{}) Logger
}

// Metrics defines the interface for metrics collection
type Metrics interface {
	// Counter increments a counter metric
	Counter(name string, value float64, labels map[string]string)

	// Gauge sets a gauge metric
	Gauge(name string, value float64, labels map[string]string)

	// Histogram records a histogram metric
	Histogram(name string, value float64, labels map[string]string)

	// Timer records timing metrics
	Timer(name string, duration float64, labels map[string]string)
}
