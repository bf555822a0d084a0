package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joaoccaldas/rag-sub006/pkg/chunkers"
	"github.com/joaoccaldas/rag-sub006/pkg/config"
	"github.com/joaoccaldas/rag-sub006/pkg/logger"
	"github.com/joaoccaldas/rag-sub006/pkg/metrics"
	"github.com/joaoccaldas/rag-sub006/pkg/types"
)

func chunkCmd() *cobra.Command {
	var (
		docType       string
		visualsPath   string
		configPath    string
		maxSize       int
		minSize       int
		overlap       int
		preservePages bool
		outputPath    string
		pretty        bool
		stats         bool
	)

	defaults := config.DefaultChunkingConfig()

	cmd := &cobra.Command{
		Use:   "chunk <textfile>",
		Short: "Chunk an extracted text file and emit chunk JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			cfg := config.DefaultChunkingConfig()
			if configPath != "" {
				if err := cfg.FromFile(configPath); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
			}

			// Flags override the config file, but only when given
			if cmd.Flags().Changed("max-size") {
				cfg.MaxChunkSize = maxSize
			}
			if cmd.Flags().Changed("min-size") {
				cfg.MinChunkSize = minSize
			}
			if cmd.Flags().Changed("overlap") {
				cfg.OverlapSize = overlap
			}
			if cmd.Flags().Changed("preserve-pages") {
				cfg.PreservePageBoundaries = preservePages
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read document: %w", err)
			}
			content := string(raw)

			resolvedType, err := resolveDocumentType(docType, path, content)
			if err != nil {
				return err
			}

			var visuals []types.VisualElement
			if visualsPath != "" {
				visuals, err = loadVisuals(visualsPath)
				if err != nil {
					return fmt.Errorf("failed to load visuals: %w", err)
				}
			}

			doc := &types.Document{
				ID:      filepath.Base(path),
				Source:  path,
				Content: content,
				Type:    resolvedType,
			}

			log := logger.NewConsoleLogger(cfg.LogLevel)
			pipeline, err := chunkers.NewPipeline(cfg, log, metrics.NewNoOpMetrics())
			if err != nil {
				return fmt.Errorf("failed to initialize pipeline: %w", err)
			}

			result, err := pipeline.ChunkDocument(cmd.Context(), doc, visuals)
			if err != nil {
				return fmt.Errorf("failed to chunk document: %w", err)
			}

			var encoded []byte
			if pretty {
				encoded, err = json.MarshalIndent(result, "", "  ")
			} else {
				encoded, err = json.Marshal(result)
			}
			if err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
			encoded = append(encoded, '\n')

			if outputPath != "" {
				if err := os.WriteFile(outputPath, encoded, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			} else {
				if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			}

			if stats {
				printStats(cmd.ErrOrStderr(), result.Metadata)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&docType, "type", "t", "", "document type: paginated|markup|structured|flat (default: inferred)")
	cmd.Flags().StringVar(&visualsPath, "visuals", "", "JSON file of visual elements detected during extraction")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "chunking config file (yaml or json)")
	cmd.Flags().IntVar(&maxSize, "max-size", defaults.MaxChunkSize, "maximum chunk size in characters")
	cmd.Flags().IntVar(&minSize, "min-size", defaults.MinChunkSize, "minimum chunk size in characters")
	cmd.Flags().IntVar(&overlap, "overlap", defaults.OverlapSize, "characters carried over into the next chunk")
	cmd.Flags().BoolVar(&preservePages, "preserve-pages", defaults.PreservePageBoundaries, "never merge chunks across page boundaries")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write chunk JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	cmd.Flags().BoolVar(&stats, "stats", false, "print a chunking summary to stderr")
	return cmd
}

// resolveDocumentType picks the document type for a chunking run. An
// explicit flag value wins; otherwise the type is inferred from the
// content and the file extension. Structured documents cannot be told
// apart from flat prose reliably, so they require the flag.
func resolveDocumentType(flagValue, path, content string) (types.DocumentType, error) {
	switch flagValue {
	case "":
	case "paginated", "markup", "structured", "flat":
		return types.DocumentType(flagValue), nil
	default:
		return "", fmt.Errorf("unknown document type %q (want paginated, markup, structured or flat)", flagValue)
	}

	if strings.ContainsRune(content, '\f') {
		return types.DocumentTypePaginated, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".html", ".htm":
		return types.DocumentTypeMarkup, nil
	}
	return types.DocumentTypeFlat, nil
}

func loadVisuals(path string) ([]types.VisualElement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var visuals []types.VisualElement
	if err := json.Unmarshal(raw, &visuals); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return visuals, nil
}

func printStats(w io.Writer, md types.ChunkingMetadata) {
	fmt.Fprintf(w, "Document:          %s\n", md.DocumentID)
	fmt.Fprintf(w, "Chunks:            %d\n", md.TotalChunks)
	fmt.Fprintf(w, "Average size:      %.1f chars\n", md.AverageChunkSize)
	fmt.Fprintf(w, "Visual context:    %d chunks\n", md.VisualContextChunks)
	fmt.Fprintf(w, "Visual density:    %.3f\n", md.AverageVisualDensity)
	fmt.Fprintf(w, "Readability:       %.3f\n", md.AverageReadability)
	fmt.Fprintf(w, "Processing time:   %dms\n", md.ProcessingTimeMs)

	if len(md.PageDistribution) > 0 {
		pages := make([]int, 0, len(md.PageDistribution))
		for page := range md.PageDistribution {
			pages = append(pages, page)
		}
		sort.Ints(pages)
		fmt.Fprintf(w, "Pages:\n")
		for _, page := range pages {
			fmt.Fprintf(w, "  page %d: %d chunks\n", page, md.PageDistribution[page])
		}
	}

	if len(md.SectionTypeDistribution) > 0 {
		sections := make([]string, 0, len(md.SectionTypeDistribution))
		for section := range md.SectionTypeDistribution {
			sections = append(sections, string(section))
		}
		sort.Strings(sections)
		fmt.Fprintf(w, "Section types:\n")
		for _, section := range sections {
			fmt.Fprintf(w, "  %s: %d chunks\n", section, md.SectionTypeDistribution[types.SectionType(section)])
		}
	}
}
