package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	chatfile "github.com/custodia-labs/weave/internal/adapters/driven/chatstore/file"
	configfile "github.com/custodia-labs/weave/internal/adapters/driven/config/file"
	embeddingopenai "github.com/custodia-labs/weave/internal/adapters/driven/embedding/openai"
	knowledgefile "github.com/custodia-labs/weave/internal/adapters/driven/knowledge/file"
	llmopenai "github.com/custodia-labs/weave/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/weave/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/weave/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/weave/internal/connectors/airtable"
	"github.com/custodia-labs/weave/internal/connectors/hubspot"
	"github.com/custodia-labs/weave/internal/connectors/notion"
	"github.com/custodia-labs/weave/internal/core/domain"
	"github.com/custodia-labs/weave/internal/core/ports/driven"
	"github.com/custodia-labs/weave/internal/core/services"
	"github.com/custodia-labs/weave/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Starts the integration broker and chat assistant, serving the
HTTP API until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := configfile.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.SetVerbose(true)
	}

	kv, err := sqlite.NewKVStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open broker store: %w", err)
	}
	defer kv.Close()

	var (
		embedder driven.EmbeddingService
		llm      driven.LLMService
	)
	if cfg.OpenAI.APIKey != "" {
		embedder, err = embeddingopenai.NewEmbeddingService(embeddingopenai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.EmbeddingModel,
		})
		if err != nil {
			return fmt.Errorf("embedding service: %w", err)
		}
		defer embedder.Close()

		llm, err = llmopenai.NewLLMService(llmopenai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.ChatModel,
		})
		if err != nil {
			return fmt.Errorf("llm service: %w", err)
		}
		defer llm.Close()
	} else {
		logger.Warn("no OpenAI API key configured: chat and ingestion are disabled")
	}

	knowledge := knowledgefile.NewStore(cfg.DataDir, embedder)
	chatStore := chatfile.NewStore(cfg.DataDir)

	registry := services.NewRegistry(buildConnectors(cfg)...)
	for _, t := range registry.Types() {
		logger.Info("connector enabled: %s", t)
	}

	broker := services.NewBroker(kv, registry)
	ingestor := services.NewIngestor(knowledge, nil)
	integrations := services.NewIntegrations(broker, registry, ingestor)
	chat := services.NewChat(knowledge, chatStore, llm, cfg.TokenBudget)

	server := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.NewServer(integrations, chat).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Surface config file edits; a restart applies them.
	go func() {
		if err := configfile.Watch(ctx, cfgPath, func(*configfile.Config) {
			logger.Warn("config file changed: restart to apply")
		}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("config watcher stopped: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		cmd.Printf("Listening on %s\n", cfg.Listen)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	cmd.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	// Let in-flight ingestions land before the process exits.
	ingestor.Wait()
	return nil
}

// buildConnectors instantiates an adapter for every provider with
// configured credentials.
func buildConnectors(cfg *configfile.Config) []driven.Connector {
	var conns []driven.Connector
	if app := cfg.OAuthApp(domain.ConnectorAirtable); app != nil {
		conns = append(conns, airtable.New(app))
	}
	if app := cfg.OAuthApp(domain.ConnectorHubspot); app != nil {
		conns = append(conns, hubspot.New(app))
	}
	if app := cfg.OAuthApp(domain.ConnectorNotion); app != nil {
		conns = append(conns, notion.New(app))
	}
	return conns
}
