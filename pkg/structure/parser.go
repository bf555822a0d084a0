package structure

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/joaoccaldas/rag-sub006/pkg/errors"
	"github.com/joaoccaldas/rag-sub006/pkg/interfaces"
	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

var (
	// pageMarkerRegex matches explicit page-break marker lines.
	pageMarkerRegex = regexp.MustCompile(`(?m)^[ \t]*--- Page \d+ ---[ \t]*\r?\n?`)

	// blockBoundaryRegex splits paragraphs on blank lines, including lines
	// that contain only whitespace.
	blockBoundaryRegex = regexp.MustCompile(`\n\s*\n`)

	// htmlHeadingRegex captures heading level and inner markup together with
	// their byte offsets.
	htmlHeadingRegex = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]\s*>`)

	// htmlTagRegex strips residual tags from heading titles.
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// StructureParser derives the page, section, or block layout of a document
// before chunking.
type StructureParser struct {
	logger interfaces.Logger
}

// NewStructureParser creates a new structure parser.
func NewStructureParser(logger interfaces.Logger) *StructureParser {
	return &StructureParser{logger: logger}
}

// Parse analyzes content according to the declared document type. It never
// returns an error: a failed format-specific parse falls back to flat
// paragraph blocks.
func (sp *StructureParser) Parse(content string, docType types.DocumentType) (result *DocumentStructure) {
	defer func() {
		if r := recover(); r != nil {
			parseErr := errors.NewStructureParseError(string(docType), fmt.Errorf("%v", r))
			sp.logger.Debug("structure parse failed, falling back to flat blocks", map[string]interface{}{
				"document_type": string(docType),
				"error":         parseErr.Error(),
			})
			result = sp.parseFlat(content)
		}
	}()

	switch docType {
	case types.DocumentTypePaginated:
		return sp.parsePaginated(content)
	case types.DocumentTypeMarkup:
		return sp.parseMarkup(content)
	case types.DocumentTypeStructured:
		return sp.parseStructured(content)
	default:
		return sp.parseFlat(content)
	}
}

// parsePaginated splits content on form feeds or page marker lines. Page
// numbers are assigned sequentially in order of appearance.
func (sp *StructureParser) parsePaginated(content string) *DocumentStructure {
	var pages []PageContent
	if strings.ContainsRune(content, '\f') {
		pages = sp.splitFormFeedPages(content)
	} else if pageMarkerRegex.MatchString(content) {
		pages = sp.splitMarkerPages(content)
	}

	if len(pages) == 0 {
		// No recognizable page breaks: the whole document is one page.
		if body, offset := trimWithOffset(content, 0); body != "" {
			pages = append(pages, PageContent{Number: 1, Content: body, Offset: offset})
		}
	}

	return &DocumentStructure{Pages: pages}
}

// splitFormFeedPages splits content on form feed characters.
func (sp *StructureParser) splitFormFeedPages(content string) []PageContent {
	var pages []PageContent
	offset := 0
	number := 1

	for _, segment := range strings.Split(content, "\f") {
		if body, start := trimWithOffset(segment, offset); body != "" {
			pages = append(pages, PageContent{Number: number, Content: body, Offset: start})
			number++
		}
		offset += len(segment) + 1
	}

	return pages
}

// splitMarkerPages splits content on page marker lines. Content before the
// first marker becomes the first page; the marker lines themselves are
// dropped.
func (sp *StructureParser) splitMarkerPages(content string) []PageContent {
	markers := pageMarkerRegex.FindAllStringIndex(content, -1)

	starts := []int{0}
	ends := []int{}
	for _, marker := range markers {
		ends = append(ends, marker[0])
		starts = append(starts, marker[1])
	}
	ends = append(ends, len(content))

	var pages []PageContent
	number := 1
	for i := range starts {
		body, offset := trimWithOffset(content[starts[i]:ends[i]], starts[i])
		if body == "" {
			continue
		}
		pages = append(pages, PageContent{Number: number, Content: body, Offset: offset})
		number++
	}

	return pages
}

// parseMarkup splits content on heading tags. HTML headings take precedence;
// when none are present, ATX markdown headings are detected instead.
func (sp *StructureParser) parseMarkup(content string) *DocumentStructure {
	sections := sp.htmlSections(content)
	if len(sections) == 0 {
		sections = sp.markdownSections(content)
	}

	if len(sections) == 0 {
		// No headings at all: the whole document is one untitled section.
		if body, offset := trimWithOffset(content, 0); body != "" {
			sections = append(sections, SectionContent{Content: body, Offset: offset})
		}
	}

	return &DocumentStructure{Sections: sections}
}

// htmlSections extracts sections delimited by h1-h6 tags. Heading offsets
// come from the regex match positions; clean heading text comes from goquery
// when it agrees on the heading count.
func (sp *StructureParser) htmlSections(content string) []SectionContent {
	matches := htmlHeadingRegex.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	titles := sp.headingTitles(content, len(matches))

	marks := make([]headingMark, 0, len(matches))
	for i, match := range matches {
		var title string
		if titles != nil {
			title = titles[i]
		} else {
			title = strings.TrimSpace(htmlTagRegex.ReplaceAllString(content[match[4]:match[5]], ""))
		}
		marks = append(marks, headingMark{
			level:        int(content[match[2]] - '0'),
			title:        title,
			lineStart:    match[0],
			contentStart: match[1],
		})
	}

	return sp.sectionsFromMarks(content, marks)
}

// headingTitles extracts heading text in document order using goquery. It
// returns nil when the markup cannot be parsed or the heading count differs
// from the regex scan, in which case the caller falls back to tag stripping.
func (sp *StructureParser) headingTitles(content string, expected int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	titles := make([]string, 0, expected)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		titles = append(titles, strings.TrimSpace(s.Text()))
	})

	if len(titles) != expected {
		return nil
	}
	return titles
}

// markdownSections extracts sections delimited by ATX headings through a
// goldmark AST walk.
func (sp *StructureParser) markdownSections(content string) []SectionContent {
	md := goldmark.New()
	source := []byte(content)

	doc := md.Parser().Parse(text.NewReader(source))
	if doc == nil {
		return nil
	}

	var marks []headingMark
	ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		first := heading.Lines().At(0)
		last := heading.Lines().At(heading.Lines().Len() - 1)

		lineStart := strings.LastIndexByte(content[:first.Start], '\n') + 1
		// Only ATX headings delimit sections; setext underlines would skew
		// the line offsets.
		if !strings.HasPrefix(strings.TrimLeft(content[lineStart:first.Start], " \t"), "#") {
			return ast.WalkContinue, nil
		}

		contentStart := len(content)
		if next := strings.IndexByte(content[last.Stop:], '\n'); next >= 0 {
			contentStart = last.Stop + next + 1
		}

		marks = append(marks, headingMark{
			level:        heading.Level,
			title:        nodeText(heading, source),
			lineStart:    lineStart,
			contentStart: contentStart,
		})
		return ast.WalkContinue, nil
	})

	return sp.sectionsFromMarks(content, marks)
}

// parseStructured splits content into blank-line-delimited paragraphs, each
// becoming a pseudo-section.
func (sp *StructureParser) parseStructured(content string) *DocumentStructure {
	spans := splitBlocks(content)

	sections := make([]SectionContent, 0, len(spans))
	for _, span := range spans {
		sections = append(sections, SectionContent{Content: span.text, Offset: span.offset})
	}

	return &DocumentStructure{Sections: sections}
}

// parseFlat splits content into paragraph blocks on blank-line boundaries.
func (sp *StructureParser) parseFlat(content string) *DocumentStructure {
	spans := splitBlocks(content)

	blocks := make([]string, 0, len(spans))
	for _, span := range spans {
		blocks = append(blocks, span.text)
	}

	return &DocumentStructure{Blocks: blocks}
}

// headingMark records where a heading sits in the original content.
type headingMark struct {
	level        int
	title        string
	lineStart    int
	contentStart int
}

// sectionsFromMarks builds sections from the text between heading marks.
// Content before the first heading becomes an implicit untitled section.
func (sp *StructureParser) sectionsFromMarks(content string, marks []headingMark) []SectionContent {
	if len(marks) == 0 {
		return nil
	}

	var sections []SectionContent
	if body, offset := trimWithOffset(content[:marks[0].lineStart], 0); body != "" {
		sections = append(sections, SectionContent{Content: body, Offset: offset})
	}

	for i, mark := range marks {
		end := len(content)
		if i+1 < len(marks) {
			end = marks[i+1].lineStart
		}
		body, offset := trimWithOffset(content[mark.contentStart:end], mark.contentStart)
		sections = append(sections, SectionContent{
			Level:   mark.level,
			Title:   mark.title,
			Content: body,
			Offset:  offset,
		})
	}

	return sections
}

// textSpan is a trimmed slice of the original content with its byte offset.
type textSpan struct {
	text   string
	offset int
}

// splitBlocks splits content into paragraph blocks on blank lines, keeping
// the byte offset of every block.
func splitBlocks(content string) []textSpan {
	boundaries := blockBoundaryRegex.FindAllStringIndex(content, -1)

	var spans []textSpan
	start := 0
	for _, boundary := range boundaries {
		if body, offset := trimWithOffset(content[start:boundary[0]], start); body != "" {
			spans = append(spans, textSpan{text: body, offset: offset})
		}
		start = boundary[1]
	}
	if body, offset := trimWithOffset(content[start:], start); body != "" {
		spans = append(spans, textSpan{text: body, offset: offset})
	}

	return spans
}

// trimWithOffset trims surrounding whitespace and returns the trimmed text
// with the byte offset of its first character relative to base.
func trimWithOffset(s string, base int) (string, int) {
	trimmedLeft := strings.TrimLeftFunc(s, unicode.IsSpace)
	lead := len(s) - len(trimmedLeft)
	body := strings.TrimRightFunc(trimmedLeft, unicode.IsSpace)
	return body, base + lead
}

// nodeText concatenates the text segments beneath an AST node.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if textNode, ok := child.(*ast.Text); ok {
			buf.Write(textNode.Segment.Value(source))
		} else if child.HasChildren() {
			buf.WriteString(nodeText(child, source))
		}
	}
	return strings.TrimSpace(buf.String())
}
