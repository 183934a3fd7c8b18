package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kpbu-assistant/internal/ai"
	"kpbu-assistant/internal/app"
	"kpbu-assistant/internal/config"
	"kpbu-assistant/internal/logging"
	"kpbu-assistant/internal/model"
	mysqlClient "kpbu-assistant/internal/platform/mysql"
	rabbitmqClient "kpbu-assistant/internal/platform/rabbitmq"
	"kpbu-assistant/internal/repository"
)

type options struct {
	projectID string
	enqueue   bool
	dryRun    bool
}

func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "kpbu-ingest [path...]",
		Short: "Index KPBU documents for question answering",
		Long: `Index .pdf, .docx and .txt documents so the chat endpoint can answer from them.

Paths may be files or directories; directories are walked recursively.

Examples:
  kpbu-ingest --project 1 ./dokumen/tol
  kpbu-ingest --project 4 --enqueue studi-kelayakan.pdf
  kpbu-ingest --dry-run ./dokumen`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.projectID, "project", "p", "", "Project ID stored with every chunk (default \"unknown\")")
	cmd.Flags().BoolVar(&opts.enqueue, "enqueue", false, "Publish jobs to the ingest queue instead of indexing inline")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "List the documents that would be indexed and exit")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console", Output: cmd.ErrOrStderr()})

	docs, err := collectDocuments(args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no .pdf, .docx or .txt documents found")
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		for _, d := range docs {
			fmt.Fprintf(out, "%s\t%s\n", d.fileType, d.path)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	submit, closeFn, err := newSubmitter(ctx, cfg, opts.enqueue)
	if err != nil {
		return err
	}
	defer closeFn()

	failed := 0
	for _, d := range docs {
		input, err := d.load(opts.projectID)
		if err != nil {
			failed++
			logging.Error().Err(err).Str("path", d.path).Msg("read document failed")
			continue
		}
		summary, err := submit(ctx, input)
		if err != nil {
			failed++
			logging.Error().Err(err).Str("path", d.path).Msg("ingest document failed")
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", d.path, summary)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(docs))
	}
	return nil
}

type submitFunc func(ctx context.Context, input app.IngestInput) (string, error)

func newSubmitter(ctx context.Context, cfg *config.Config, enqueue bool) (submitFunc, func(), error) {
	if enqueue {
		conn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return nil, nil, err
		}
		publisher := rabbitmqClient.NewIngestPublisher(conn, cfg.RabbitMQ.IngestQueue)
		submit := func(ctx context.Context, input app.IngestInput) (string, error) {
			jobID, err := publisher.Publish(ctx, model.IngestJob{
				ProjectID:    input.ProjectID,
				DocumentName: input.DocumentName,
				FileType:     input.FileType,
				Content:      input.Content,
			})
			if err != nil {
				return "", err
			}
			return "queued " + jobID, nil
		}
		return submit, func() { _ = conn.Close() }, nil
	}

	if !cfg.ProvidersConfigured() {
		return nil, nil, fmt.Errorf("inline ingestion needs LLM_API_KEY: %w", ai.ErrNotConfigured)
	}
	db, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, nil, err
	}
	if err := mysqlClient.Migrate(db); err != nil {
		_ = mysqlClient.Close(db)
		return nil, nil, err
	}
	embedder, err := ai.NewEmbedder(ai.EmbeddingConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.EmbeddingModel,
		Timeout: cfg.LLMTimeout(),
	})
	if err != nil {
		_ = mysqlClient.Close(db)
		return nil, nil, err
	}

	svc := app.NewIngestService(embedder, repository.NewRAGDocumentRepository(db), app.IngestConfig{
		ChunkSize:          cfg.RAG.ChunkSize,
		ChunkOverlap:       cfg.RAG.ChunkOverlap,
		EmbeddingBatchSize: cfg.RAG.EmbeddingBatchSize,
	})
	submit := func(ctx context.Context, input app.IngestInput) (string, error) {
		res, err := svc.Ingest(ctx, input)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("document %d, %d chunks", res.Document.ID, res.ChunkCount), nil
	}
	return submit, func() { _ = mysqlClient.Close(db) }, nil
}
