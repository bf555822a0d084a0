package chunkers

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/joaoccaldas/rag-sub006/pkg/config"
	"github.com/joaoccaldas/rag-sub006/pkg/errors"
	"github.com/joaoccaldas/rag-sub006/pkg/interfaces"
	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

// defaultVisualArea stands in for visuals that carry no bounding box.
const defaultVisualArea = 1000.0

// textAreaPerChar converts chunk text length into comparable area units.
const textAreaPerChar = 10.0

// visualMatcher decides whether a visual element belongs with a chunk.
// Matchers combine with OR semantics; the first match wins.
type visualMatcher func(chunk *types.FinalChunk, visual *types.VisualElement) bool

// VisualContextEnhancer associates chunks with nearby visual elements and
// grades chunks by visual density.
type VisualContextEnhancer struct {
	config   *config.ChunkingConfig
	logger   interfaces.Logger
	matchers []visualMatcher
	validate *validator.Validate
}

// NewVisualContextEnhancer creates an enhancer with the page, spatial and
// textual matching strategies.
func NewVisualContextEnhancer(cfg *config.ChunkingConfig, logger interfaces.Logger) *VisualContextEnhancer {
	if cfg == nil {
		cfg = config.DefaultChunkingConfig()
	}
	vce := &VisualContextEnhancer{
		config:   cfg,
		logger:   logger,
		validate: validator.New(),
	}
	vce.matchers = []visualMatcher{
		matchByPage,
		vce.matchBySpatialProximity,
		matchByText,
	}
	return vce
}

// Enhance converts raw chunks into final chunks carrying visual references,
// visual density and a section type. Malformed visuals are skipped with a
// warning; the remaining visuals still apply.
func (vce *VisualContextEnhancer) Enhance(raws []*RawChunk, visuals []types.VisualElement) []types.FinalChunk {
	usable := vce.usableVisuals(visuals)
	chunks := make([]types.FinalChunk, 0, len(raws))
	for _, raw := range raws {
		chunk := finalizeChunk(raw)
		vce.attachVisuals(&chunk, usable)
		chunks = append(chunks, chunk)
	}
	return chunks
}

// usableVisuals filters out visuals whose metadata cannot support matching.
func (vce *VisualContextEnhancer) usableVisuals(visuals []types.VisualElement) []*types.VisualElement {
	usable := make([]*types.VisualElement, 0, len(visuals))
	for i := range visuals {
		visual := &visuals[i]
		if err := vce.validate.Struct(visual); err != nil {
			enhanceErr := errors.NewVisualEnhancementError(visual.ID, err)
			vce.logger.Warn("skipping malformed visual element", map[string]interface{}{
				"visual_id": visual.ID,
				"error":     enhanceErr.Error(),
			})
			continue
		}
		usable = append(usable, visual)
	}
	return usable
}

// attachVisuals runs every matcher over the visuals and fills in the
// chunk's visual references, density and section type.
func (vce *VisualContextEnhancer) attachVisuals(chunk *types.FinalChunk, visuals []*types.VisualElement) {
	var matched []*types.VisualElement
	for _, visual := range visuals {
		for _, matcher := range vce.matchers {
			if matcher(chunk, visual) {
				matched = append(matched, visual)
				break
			}
		}
	}
	for _, visual := range matched {
		chunk.VisualReferences = append(chunk.VisualReferences, visual.ID)
	}
	chunk.Context.NearbyVisuals = append([]string(nil), chunk.VisualReferences...)
	chunk.Context.VisualDensity = visualDensity(chunk.Content, matched)
	chunk.SectionType = sectionTypeForDensity(chunk.Context.VisualDensity)
}

// matchByPage associates visuals on the same page as the chunk or on an
// adjacent one.
func matchByPage(chunk *types.FinalChunk, visual *types.VisualElement) bool {
	if chunk.PageNumber == nil || visual.PageNumber == nil {
		return false
	}
	distance := *chunk.PageNumber - *visual.PageNumber
	if distance < 0 {
		distance = -distance
	}
	return distance <= 1
}

// matchBySpatialProximity associates visuals whose bounding-box center lies
// within the configured distance of the chunk's position anchor.
func (vce *VisualContextEnhancer) matchBySpatialProximity(chunk *types.FinalChunk, visual *types.VisualElement) bool {
	if chunk.Position == nil || visual.BoundingBox == nil {
		return false
	}
	cx, cy := visual.BoundingBox.Center()
	dx := chunk.Position.X - cx
	dy := chunk.Position.Y - cy
	return math.Sqrt(dx*dx+dy*dy) <= vce.config.VisualProximityThreshold
}

// matchByText associates visuals whose title or description appears in the
// chunk content, case-insensitively.
func matchByText(chunk *types.FinalChunk, visual *types.VisualElement) bool {
	content := strings.ToLower(chunk.Content)
	if visual.Title != "" && strings.Contains(content, strings.ToLower(visual.Title)) {
		return true
	}
	if visual.Description != "" && strings.Contains(content, strings.ToLower(visual.Description)) {
		return true
	}
	return false
}

// visualDensity estimates the share of a chunk occupied by visual content,
// comparing the matched visual area against the text footprint.
func visualDensity(content string, visuals []*types.VisualElement) float64 {
	if len(visuals) == 0 {
		return 0
	}
	visualArea := 0.0
	for _, visual := range visuals {
		if visual.BoundingBox != nil {
			visualArea += visual.BoundingBox.Area()
		} else {
			visualArea += defaultVisualArea
		}
	}
	textArea := float64(len(content)) * textAreaPerChar
	return clamp01(visualArea / (visualArea + textArea))
}

// sectionTypeForDensity buckets a chunk by its visual density.
func sectionTypeForDensity(density float64) types.SectionType {
	switch {
	case density > 0.6:
		return types.SectionTypeVisualHeavy
	case density > 0.2:
		return types.SectionTypeMixed
	default:
		return types.SectionTypeText
	}
}
