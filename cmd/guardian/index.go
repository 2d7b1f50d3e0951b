package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/guardianai/guardianai/internal/core/domain"
	"github.com/guardianai/guardianai/internal/infrastructure/extractor"
)

var (
	flagDataDir  string
	flagFilepath string
	flagMetadata string
	flagDocID    string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index every supported document under a directory",
	RunE:  runIndex,
}

var addDocumentCmd = &cobra.Command{
	Use:   "add-document",
	Short: "Index a single document with optional metadata",
	RunE:  runAddDocument,
}

var deleteDocumentCmd = &cobra.Command{
	Use:   "delete-document",
	Short: "Remove every chunk of a document from the collection",
	RunE:  runDeleteDocument,
}

func init() {
	indexCmd.Flags().StringVar(&flagDataDir, "data_dir", "", "directory to index recursively")
	_ = indexCmd.MarkFlagRequired("data_dir")

	addDocumentCmd.Flags().StringVar(&flagFilepath, "filepath", "", "document to index")
	addDocumentCmd.Flags().StringVar(&flagMetadata, "metadata", "", "JSON metadata to attach to the document")
	_ = addDocumentCmd.MarkFlagRequired("filepath")

	deleteDocumentCmd.Flags().StringVar(&flagDocID, "doc_id", "", "document id to delete")
	_ = deleteDocumentCmd.MarkFlagRequired("doc_id")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(addDocumentCmd)
	rootCmd.AddCommand(deleteDocumentCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	pipeline, _, err := newPipeline()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	progress("Discovering files under %s", flagDataDir)
	var indexed, skipped, total int
	err = filepath.WalkDir(flagDataDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !extractor.IsSupported(path) {
			return nil
		}
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			progress("skipping %s: %v", path, readErr)
			skipped++
			return nil
		}
		text, extractErr := extractor.FromBytes(path, raw)
		if extractErr != nil || text == "" {
			progress("skipping %s: no extractable text", path)
			skipped++
			return nil
		}
		chunks, indexErr := pipeline.Indexer.IndexText(ctx, uuid.NewString(), path, text, domain.PolicyMetadata{})
		if indexErr != nil {
			return fmt.Errorf("index %s: %w", path, indexErr)
		}
		progress("indexed %s (%d chunks)", path, chunks)
		indexed++
		total += chunks
		return nil
	})
	if err != nil {
		return err
	}

	count, err := pipeline.Indexer.CountPoints(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"collection":    flagCollection,
		"files_indexed": indexed,
		"files_skipped": skipped,
		"chunks":        total,
		"total_points":  count,
	})
}

func runAddDocument(cmd *cobra.Command, _ []string) error {
	pipeline, _, err := newPipeline()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	meta, err := domain.ParsePolicyMetadata(flagMetadata)
	if err != nil {
		return err
	}

	progress("Processing document %s", flagFilepath)
	raw, err := os.ReadFile(flagFilepath)
	if err != nil {
		return err
	}
	text, err := extractor.FromBytes(flagFilepath, raw)
	if err != nil {
		return err
	}

	docID := meta.ID
	if docID == "" {
		docID = uuid.NewString()
	}
	chunks, err := pipeline.Indexer.IndexText(ctx, docID, flagFilepath, text, meta)
	if err != nil {
		return err
	}
	count, err := pipeline.Indexer.CountPoints(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"collection":   flagCollection,
		"doc_id":       docID,
		"chunks":       chunks,
		"total_points": count,
	})
}

func runDeleteDocument(cmd *cobra.Command, _ []string) error {
	pipeline, _, err := newPipeline()
	if err != nil {
		return err
	}
	if err := pipeline.Indexer.DeleteDocument(cmd.Context(), flagDocID); err != nil {
		return err
	}
	return printJSON(map[string]any{
		"collection": flagCollection,
		"doc_id":     flagDocID,
		"deleted":    true,
	})
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
