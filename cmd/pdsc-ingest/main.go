// Command pdsc-ingest ingests PDS cumulative index tables into PDSC
// metadata tables, segment tables, and segment-tree artifacts, and can
// repair a segment-tree artifact from an existing segment table.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jplmlia/pdsc/internal/localize"
	"github.com/jplmlia/pdsc/pkg/pdsc"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pdsc-ingest",
		Short: "Ingest PDS cumulative indices into PDSC databases and index structures",
	}
	root.AddCommand(ingestCmd())
	root.AddCommand(repairIndexCmd())
	return root
}

func ingestCmd() *cobra.Command {
	var (
		instrument  string
		configPath  string
		outputDir   string
		bodyRadiusM float64
	)

	cmd := &cobra.Command{
		Use:   "ingest <csv-source-file>",
		Short: "Ingest a cumulative index CSV stand-in into a PDSC database directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath := args[0]

			cfg, err := resolveConfig(configPath, instrument)
			if err != nil {
				return err
			}

			sources, err := readCSVSource(sourcePath)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory %q: %w", outputDir, err)
			}

			ingestor := pdsc.NewIngestor(bodyRadiusM)
			result, err := ingestor.Ingest(instrument, sources, cfg, outputDir)
			if err != nil {
				return fmt.Errorf("ingesting %q: %w", instrument, err)
			}

			log.Printf("ingested %d records (%d skipped, %d segments) for instrument %q into %s",
				result.RecordsStored, result.RecordsSkipped, result.SegmentsWritten, instrument, outputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&instrument, "instrument", "", "PDSC instrument name (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "ingest config file, or a directory containing <instrument>_metadata.yaml (required)")
	cmd.Flags().StringVar(&outputDir, "output", ".", "directory to write ingested databases and index structures into")
	cmd.Flags().Float64Var(&bodyRadiusM, "body-radius-m", localize.MarsRadiusM, "reference body radius in metres")
	cmd.MarkFlagRequired("instrument")
	cmd.MarkFlagRequired("config")

	return cmd
}

func repairIndexCmd() *cobra.Command {
	var (
		segmentDB   string
		treeOutput  string
		bodyRadiusM float64
	)

	cmd := &cobra.Command{
		Use:   "repair-index",
		Short: "Rebuild a segment-tree artifact from an existing segment table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ingestor := pdsc.NewIngestor(bodyRadiusM)
			if err := ingestor.RepairIndex(segmentDB, treeOutput); err != nil {
				return fmt.Errorf("repairing index: %w", err)
			}
			log.Printf("rebuilt segment tree %s from %s", treeOutput, segmentDB)
			return nil
		},
	}

	cmd.Flags().StringVar(&segmentDB, "segments", "", "path to the existing <instrument>_segments.db file (required)")
	cmd.Flags().StringVar(&treeOutput, "output", "", "path to write the rebuilt segment-tree artifact to (required)")
	cmd.Flags().Float64Var(&bodyRadiusM, "body-radius-m", localize.MarsRadiusM, "reference body radius in metres")
	cmd.MarkFlagRequired("segments")
	cmd.MarkFlagRequired("output")

	return cmd
}

func resolveConfig(configPath, instrument string) (*pdsc.IngestConfig, error) {
	info, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config path %q: %w", configPath, err)
	}
	path := configPath
	if info.IsDir() {
		path = filepath.Join(configPath, instrument+"_metadata.yaml")
	}
	return pdsc.LoadConfig(path)
}
