// Package types defines the core types for the document chunking engine
package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentType represents the structural family of a source document
type DocumentType string

const (
	DocumentTypePaginated  DocumentType = "paginated"
	DocumentTypeMarkup     DocumentType = "markup"
	DocumentTypeStructured DocumentType = "structured"
	DocumentTypeFlat       DocumentType = "flat"
)

// ParseDocumentType maps a raw string to a DocumentType; unknown values
// are treated as flat text
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(strings.ToLower(strings.TrimSpace(s))) {
	case DocumentTypePaginated:
		return DocumentTypePaginated
	case DocumentTypeMarkup:
		return DocumentTypeMarkup
	case DocumentTypeStructured:
		return DocumentTypeStructured
	default:
		return DocumentTypeFlat
	}
}

// Document represents extracted document text ready for chunking.
// The caller owns the document; the chunker borrows it read-only.
type Document struct {
	ID       string                 `json:"id,omitempty"`
	Title    string                 `json:"title,omitempty"`
	Source   string                 `json:"source,omitempty"`
	Content  string                 `json:"content"`
	Type     DocumentType           `json:"type" validate:"omitempty,oneof=paginated markup structured flat"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// VisualElementType represents the kind of a detected visual element
type VisualElementType string

const (
	VisualElementTypeChart   VisualElementType = "chart"
	VisualElementTypeTable   VisualElementType = "table"
	VisualElementTypeImage   VisualElementType = "image"
	VisualElementTypeDiagram VisualElementType = "diagram"
	VisualElementTypeFigure  VisualElementType = "figure"
)

// BoundingBox represents the rectangle a visual element occupies on a page
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// Area returns the box area in squared position units
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// Center returns the box center point
func (b BoundingBox) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Position represents a spatial anchor point for a chunk within a page
type Position struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// VisualElement represents a chart, table, image or diagram detected by the
// visual-extraction component. Immutable input to the chunker.
type VisualElement struct {
	ID          string                 `json:"id" validate:"required"`
	Type        VisualElementType      `json:"type"`
	PageNumber  *int                   `json:"page_number,omitempty"`
	BoundingBox *BoundingBox           `json:"bounding_box,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	Confidence  float64                `json:"confidence" validate:"gte=0,lte=1"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// SectionType represents the content mix classification of a final chunk
type SectionType string

const (
	SectionTypeText        SectionType = "text"
	SectionTypeMixed       SectionType = "mixed"
	SectionTypeVisualHeavy SectionType = "visual-heavy"
)

// ChunkContext represents the retrieval context attached to a final chunk
type ChunkContext struct {
	NearbyVisuals      []string `json:"nearby_visuals,omitempty"`
	SemanticBoundaries []string `json:"semantic_boundaries,omitempty"`
	Importance         float64  `json:"importance"`
	ReadabilityScore   float64  `json:"readability_score"`
	VisualDensity      float64  `json:"visual_density"`
}

// FinalChunk represents one bounded span of document text treated as a
// single retrieval/embedding unit
type FinalChunk struct {
	ID               string       `json:"id"`
	Content          string       `json:"content"`
	StartIndex       int          `json:"start_index"`
	EndIndex         int          `json:"end_index"`
	PageNumber       *int         `json:"page_number,omitempty"`
	SectionIndex     *int         `json:"section_index,omitempty"`
	Position         *Position    `json:"position,omitempty"`
	TokenEstimate    int          `json:"token_estimate"`
	SectionType      SectionType  `json:"section_type"`
	VisualReferences []string     `json:"visual_references,omitempty"`
	Context          ChunkContext `json:"context"`
}

// HasVisualContext reports whether the chunk carries at least one visual reference
func (c *FinalChunk) HasVisualContext() bool {
	return len(c.VisualReferences) > 0
}

// ChunkingMetadata represents summary statistics for one chunking run
type ChunkingMetadata struct {
	JobID                   string              `json:"job_id"`
	DocumentID              string              `json:"document_id,omitempty"`
	TotalChunks             int                 `json:"total_chunks"`
	AverageChunkSize        float64             `json:"average_chunk_size"`
	VisualContextChunks     int                 `json:"visual_context_chunks"`
	PageDistribution        map[int]int         `json:"page_distribution,omitempty"`
	SectionTypeDistribution map[SectionType]int `json:"section_type_distribution,omitempty"`
	AverageVisualDensity    float64             `json:"average_visual_density"`
	AverageReadability      float64             `json:"average_readability"`
	ProcessingTimeMs        int64               `json:"processing_time_ms"`
	CreatedAt               time.Time           `json:"created_at"`
}

// NewChunkingMetadata creates metadata for a chunking run with a generated job ID
func NewChunkingMetadata(documentID string) *ChunkingMetadata {
	return &ChunkingMetadata{
		JobID:                   uuid.New().String(),
		DocumentID:              documentID,
		PageDistribution:        make(map[int]int),
		SectionTypeDistribution: make(map[SectionType]int),
		CreatedAt:               time.Now(),
	}
}

// ChunkingResult represents the complete output of one chunking run
type ChunkingResult struct {
	Chunks   []FinalChunk     `json:"chunks"`
	Metadata ChunkingMetadata `json:"metadata"`
}

// EmbeddingVector represents an embedding vector produced for a chunk
type EmbeddingVector []float32

// ChunkSearchResult represents a retrieval hit for an indexed chunk
type ChunkSearchResult struct {
	ChunkID  string                 `json:"chunk_id"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// SummaryResult represents AI-generated summary data for a document
type SummaryResult struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords,omitempty"`
}
