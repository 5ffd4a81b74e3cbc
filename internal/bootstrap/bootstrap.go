package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/legal-assistant/internal/config"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
	"github.com/kirillkom/legal-assistant/internal/core/usecase"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/chunking"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/corpusrules"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/extractor"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/langdetect"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/llm/openai"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/vector/qdrant"
)

// App holds the wired pipeline. Queue, Repo, UploadUC and ProcessUC are nil
// unless asynchronous ingestion is enabled.
type App struct {
	Config config.Config

	Extractor *extractor.Extractor
	QueryUC   *usecase.QueryUseCase
	IngestUC  *usecase.IngestUseCase

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	UploadUC  *usecase.UploadUseCase
	ProcessUC *usecase.ProcessDocumentUseCase

	closers []func()
}

func New(ctx context.Context, cfg config.Config, observer ports.PipelineObserver) (*App, error) {
	if observer == nil {
		observer = ports.NopObserver{}
	}
	executor := resilience.NewExecutor(resilienceConfig(cfg))
	slog.Info("resilience_configured", "policy", executor.Config())
	app := &App{Config: cfg}

	embedder, generator, err := newModels(cfg, executor)
	if err != nil {
		return nil, err
	}

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, qdrant.Options{
		APIKey:             cfg.QdrantAPIKey,
		VectorSize:         cfg.EmbedDim,
		ResilienceExecutor: executor,
	})
	app.closers = append(app.closers, vectorDB.Close)
	if err := vectorDB.EnsureCollection(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("ensure qdrant collection: %w", err)
	}

	rules, err := corpusrules.Load(cfg.CorpusRulesPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load corpus rules: %w", err)
	}

	textExtractor := extractor.New()
	chunker := chunking.NewSentenceChunker(cfg.ChunkTargetTokens, cfg.ChunkOverlapSentences, rules, langdetect.New(), observer)
	indexer := usecase.NewIndexer(embedder, vectorDB, cfg.IndexBatchSize)
	synthesizer := usecase.NewAnswerSynthesizer(generator, cfg.AnswerMaxTokens, observer)

	app.Extractor = textExtractor
	app.IngestUC = usecase.NewIngestUseCase(textExtractor, chunker, indexer, observer, cfg.IngestErrorDetail)
	app.QueryUC = usecase.NewQueryUseCase(
		usecase.NewDecisionAgent(rules),
		embedder,
		vectorDB,
		synthesizer,
		observer,
		usecase.QueryOptions{
			TopK:            cfg.TopK,
			SnippetMaxChars: cfg.SnippetMaxChars,
			FilterMode:      usecase.ParseFilterMode(cfg.RAGFilterMode),
		},
	)

	if !cfg.AsyncIngestEnabled {
		return app, nil
	}

	if err := app.wireAsync(ctx, executor, textExtractor, chunker, indexer); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wireAsync(
	ctx context.Context,
	executor *resilience.Executor,
	textExtractor *extractor.Extractor,
	chunker ports.Chunker,
	indexer *usecase.Indexer,
) error {
	db, err := postgres.OpenDB(a.Config.PostgresDSN)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	a.closers = append(a.closers, func() { closeDB(db) })

	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(a.Config.StoragePath)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(a.Config.NATSURL, a.Config.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return fmt.Errorf("init message queue: %w", err)
	}
	a.closers = append(a.closers, queue.Close)

	a.Queue = queue
	a.Repo = repo
	a.UploadUC = usecase.NewUploadUseCase(repo, storage, queue, textExtractor)
	a.ProcessUC = usecase.NewProcessDocumentUseCase(repo, storage, textExtractor, chunker, indexer)
	return nil
}

func newModels(cfg config.Config, executor *resilience.Executor) (ports.Embedder, ports.AnswerGenerator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY is required for provider %q", cfg.LLMProvider)
		}
		client := openai.New(openai.Options{
			APIKey:             cfg.OpenAIAPIKey,
			BaseURL:            cfg.OpenAIBaseURL,
			EmbedModel:         cfg.EmbedModel,
			GenModel:           cfg.GenModel,
			Dimension:          cfg.EmbedDim,
			ResilienceExecutor: executor,
		})
		return openai.NewEmbedder(client), openai.NewGenerator(client), nil
	case config.ProviderOllama:
		client := ollama.New(cfg.OllamaURL, cfg.GenModel, cfg.EmbedModel, executor)
		return ollama.NewEmbedder(client), ollama.NewGenerator(client), nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	out.RetryInitialBackoff = time.Duration(cfg.ResilienceRetryInitialBackoff) * time.Millisecond
	out.RetryMaxBackoff = time.Duration(cfg.ResilienceRetryMaxBackoff) * time.Millisecond
	out.BreakerEnabled = cfg.ResilienceBreakerEnabled
	if cfg.ResilienceBreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.ResilienceBreakerMinRequests)
	}
	out.BreakerFailureRatio = cfg.ResilienceBreakerFailureRatio
	out.BreakerOpenTimeout = time.Duration(cfg.ResilienceBreakerOpenTimeout) * time.Millisecond
	return out
}

func closeDB(db *sql.DB) {
	_ = db.Close()
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
