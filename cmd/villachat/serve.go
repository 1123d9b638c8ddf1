package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/albadia/villachat/internal/api"
	"github.com/albadia/villachat/internal/chat"
	"github.com/albadia/villachat/internal/config"
	"github.com/albadia/villachat/internal/evidence"
	"github.com/albadia/villachat/internal/lead"
	"github.com/albadia/villachat/internal/openai"
	"github.com/albadia/villachat/internal/retrieval"
	"github.com/albadia/villachat/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "villachat version %s\n", version)

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
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing evidence store: %v\n", err)
		}
	}()

	aiClient := openai.New(openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		ChatModel:   cfg.OpenAI.ChatModel,
		EmbedModel:  cfg.OpenAI.EmbedModel,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	index := evidence.NewIndex(store, aiClient)

	// Refuse to serve an empty index: every reply must be grounded.
	if n, err := index.Count(ctx, evidence.ClassText); err != nil {
		return fmt.Errorf("checking evidence index: %w", err)
	} else if n == 0 {
		return fmt.Errorf("evidence index is empty, run 'villachat ingest' first")
	}

	retriever := retrieval.New(index, cfg.Retrieval.TopKText, cfg.Retrieval.TopKImages, cfg.Retrieval.SimilarityThreshold)

	ttl, err := cfg.SessionTTL()
	if err != nil {
		return err
	}
	sessions := session.NewMemoryStore(ttl)

	thresholds := lead.Thresholds{
		Low:    cfg.Lead.LowThreshold,
		Medium: cfg.Lead.MediumThreshold,
		High:   cfg.Lead.HighThreshold,
	}
	chatSvc := chat.NewService(retriever, aiClient, sessions, thresholds)

	handler := api.NewHandler(api.Deps{
		Chat:       chatSvc,
		Evidence:   index,
		Sessions:   sessions,
		AdminToken: cfg.Server.AdminToken,
	})

	// Periodic expiry sweep alongside the on-demand admin endpoint.
	sweepInterval, err := cfg.SweepInterval()
	if err != nil {
		return err
	}
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := sessions.SweepExpired(); n > 0 {
					slog.Info("swept expired sessions", "count", n)
				}
			}
		}
	}()

	// MCP server over stdio, sharing the retriever and session state.
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Retriever:  retriever,
		Sessions:   sessions,
		Thresholds: thresholds,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "villachat listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
