// Package structure provides document layout analysis for the chunking pipeline.
package structure

// DocumentStructure is the layout derived from a document. Exactly one of
// Pages, Sections, or Blocks is populated, chosen by the document type.
type DocumentStructure struct {
	// Pages holds page segments for paginated documents.
	Pages []PageContent `json:"pages,omitempty"`

	// Sections holds heading-delimited segments for markup documents and
	// paragraph pseudo-sections for structured documents.
	Sections []SectionContent `json:"sections,omitempty"`

	// Blocks holds paragraph blocks for flat documents.
	Blocks []string `json:"blocks,omitempty"`
}

// PageContent is a single page of a paginated document.
type PageContent struct {
	// Number is the 1-based page number.
	Number int `json:"number"`

	// Content is the page text without surrounding whitespace.
	Content string `json:"content"`

	// Offset is the byte offset of Content in the original document.
	Offset int `json:"offset"`
}

// SectionContent is a heading-delimited segment of a markup document or a
// paragraph pseudo-section of a structured document.
type SectionContent struct {
	// Level is the heading level (1-6), or 0 for implicit sections.
	Level int `json:"level"`

	// Title is the heading text, empty for implicit sections.
	Title string `json:"title,omitempty"`

	// Content is the section body without surrounding whitespace.
	Content string `json:"content"`

	// Offset is the byte offset of Content in the original document.
	Offset int `json:"offset"`
}
