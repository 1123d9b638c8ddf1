package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/albadia/villachat/internal/config"
	"github.com/albadia/villachat/internal/evidence"
	"github.com/albadia/villachat/internal/ingest"
	"github.com/albadia/villachat/internal/openai"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the floorplans PDF and images into the evidence store",
	Long: `Index the floorplans PDF and images into the evidence store.

Run this once before starting the server. Re-running is idempotent since
chunk ids are deterministic; pass --reset to drop existing evidence first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reset, _ := cmd.Flags().GetBool("reset")
		return runIngestion(reset)
	},
}

func init() {
	ingestCmd.Flags().Bool("reset", false, "drop existing evidence before ingesting")
}

func runIngestion(reset bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := evidence.OpenSQLite(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening evidence store: %w", err)
	}
	defer store.Close()

	aiClient := openai.New(openai.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		EmbedModel: cfg.OpenAI.EmbedModel,
	})
	index := evidence.NewIndex(store, aiClient)

	if reset {
		printWarning("existing evidence will be dropped")
	}
	printStep("ingesting %s", cfg.Data.PDFPath)

	pipeline := ingest.NewPipeline(index, store)
	if err := pipeline.Run(ctx, ingest.Options{
		PDFPath:   cfg.Data.PDFPath,
		ImagesDir: cfg.Data.ImagesDir,
		ChunkSize: cfg.Retrieval.ChunkSize,
		Overlap:   cfg.Retrieval.ChunkOverlap,
		Reset:     reset,
	}); err != nil {
		printError("ingestion failed: %v", err)
		return err
	}

	texts, err := index.Count(ctx, evidence.ClassText)
	if err != nil {
		return err
	}
	images, err := index.Count(ctx, evidence.ClassImage)
	if err != nil {
		return err
	}

	printSuccess("Ingestion complete")
	printStatus("Text chunks", "%d", texts)
	printStatus("Images", "%d", images)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
