// Command api serves the routine generation JSON API.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/envstruct"
	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/llm"
	"github.com/myrjola/routinegen/internal/logging"
	"github.com/myrjola/routinegen/internal/metrics"
	"github.com/myrjola/routinegen/internal/routine"
	"github.com/myrjola/routinegen/internal/sqlite"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// routineService is the synthesis surface the handlers depend on.
type routineService interface {
	Analyze(ctx context.Context, entry metrics.LogEntry, profile metrics.UserProfile) (routine.Analysis, error)
	Recommend(ctx context.Context, logs []metrics.LogEntry, days, frequency int, profile metrics.UserProfile) (routine.Routine, error)
	WeeklyPattern(ctx context.Context, logs []metrics.LogEntry, profile metrics.UserProfile) (routine.WeeklyPatternResult, error)
}

// catalogStore is the relational surface behind the CRUD-lite endpoints.
type catalogStore interface {
	GetExercise(ctx context.Context, id int) (catalog.Exercise, error)
	ListExercises(ctx context.Context, limit, offset int) ([]catalog.Exercise, error)
	AddFeedback(ctx context.Context, feedback catalog.Feedback) error
	ListGoals(ctx context.Context, userID string) ([]catalog.Goal, error)
	AddGoal(ctx context.Context, goal catalog.Goal) error
	DeleteGoal(ctx context.Context, id, userID string) error
}

type application struct {
	logger      *slog.Logger
	routines    routineService
	store       catalogStore
	validate    *validator.Validate
	catalogRows int
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"ROUTINEGEN_ADDR" envDefault:"localhost:8080"`
	// OpenAIAPIKey authenticates both the chat and embedding calls.
	OpenAIAPIKey string `env:"ROUTINEGEN_OPENAI_API_KEY"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"ROUTINEGEN_SQLITE_URL" envDefault:"./routinegen.sqlite3"`
	// EmbeddingModel must match the model the vector index was built with.
	EmbeddingModel string `env:"ROUTINEGEN_EMBEDDING_MODEL" envDefault:"text-embedding-3-large"`
	// EmbeddingBatchSize bounds how many texts one embedding call carries (1-256).
	EmbeddingBatchSize string `env:"ROUTINEGEN_EMBEDDING_BATCH_SIZE" envDefault:"64"`
	// RagTopK is the default number of candidates per retrieval round.
	RagTopK string `env:"ROUTINEGEN_RAG_TOP_K" envDefault:"5"`
	// RagIndexPath points at the binary vector index.
	RagIndexPath string `env:"ROUTINEGEN_RAG_INDEX_PATH" envDefault:"data/catalog.vec"`
	// RagMetadataPath points at the JSON metadata sidecar.
	RagMetadataPath string `env:"ROUTINEGEN_RAG_METADATA_PATH" envDefault:"data/catalog.meta.json"`
	// LLMModel is the chat-completion model identifier.
	LLMModel string `env:"ROUTINEGEN_LLM_MODEL" envDefault:"gpt-4o"`
	// LLMTemperature is the sampling temperature, 0.0-1.0.
	LLMTemperature string `env:"ROUTINEGEN_LLM_TEMPERATURE" envDefault:"0.4"`
	// LLMMaxTokens caps the chat response length.
	LLMMaxTokens string `env:"ROUTINEGEN_LLM_MAX_TOKENS" envDefault:"2048"`
	// CacheTTL bounds the external-API result cache. Zero disables it.
	CacheTTL string `env:"ROUTINEGEN_CACHE_TTL" envDefault:"10m"`
	// RefreshOnStart reruns the offline CSV ingest and index build before serving.
	RefreshOnStart string `env:"ROUTINEGEN_REFRESH_ON_START" envDefault:"false"`
	// CatalogCSV is the CSV export the ingest reads when refreshing.
	CatalogCSV string `env:"ROUTINEGEN_CATALOG_CSV" envDefault:"data/catalog.csv"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	typed, err := cfg.parse()
	if err != nil {
		return errors.Wrap(err, "parse config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	openaiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	embedder := catalog.NewOpenAIEmbedder(openaiClient, cfg.EmbeddingModel, logger)
	repository := catalog.NewRepository(db, logger)

	if typed.refreshOnStart {
		if err = refreshCatalog(ctx, cfg, typed, repository, embedder, logger); err != nil {
			return errors.Wrap(err, "refresh catalog")
		}
	}

	loaded, err := catalog.Load(cfg.RagIndexPath, cfg.RagMetadataPath)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	if loaded.EmbeddingModel() != "" && loaded.EmbeddingModel() != cfg.EmbeddingModel {
		return errors.WithKind(errors.New("index was built with a different embedding model",
			slog.String("index_model", loaded.EmbeddingModel()),
			slog.String("configured_model", cfg.EmbeddingModel)), errors.KindCatalogInconsistent)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "loaded catalog", slog.Int("rows", loaded.Len()))

	gateway := catalog.NewGateway(loaded, embedder, typed.ragTopK, logger)
	chatClient := llm.NewClient(openaiClient, llm.Config{
		Model:       cfg.LLMModel,
		Temperature: typed.llmTemperature,
		MaxTokens:   typed.llmMaxTokens,
	}, logger)

	app := application{
		logger:      logger,
		routines:    routine.NewService(chatClient, gateway, typed.cacheTTL, logger),
		store:       repository,
		validate:    validator.New(),
		catalogRows: loaded.Len(),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

// typedConfig holds the config values that need conversion and range checks
// beyond envstruct's string fields.
type typedConfig struct {
	embeddingBatchSize int
	ragTopK            int
	llmTemperature     float64
	llmMaxTokens       int64
	cacheTTL           time.Duration
	refreshOnStart     bool
}

func (cfg config) parse() (typedConfig, error) {
	var (
		typed typedConfig
		errs  []error
	)
	batchSize, err := strconv.Atoi(cfg.EmbeddingBatchSize)
	if err != nil || batchSize < 1 || batchSize > 256 {
		errs = append(errs, errors.New("embedding batch size must be an integer in 1-256",
			slog.String("value", cfg.EmbeddingBatchSize)))
	}
	typed.embeddingBatchSize = batchSize

	topK, err := strconv.Atoi(cfg.RagTopK)
	if err != nil || topK < 1 {
		errs = append(errs, errors.New("rag top k must be a positive integer",
			slog.String("value", cfg.RagTopK)))
	}
	typed.ragTopK = topK

	temperature, err := strconv.ParseFloat(cfg.LLMTemperature, 64)
	if err != nil || temperature < 0 || temperature > 1 {
		errs = append(errs, errors.New("llm temperature must be a float in 0.0-1.0",
			slog.String("value", cfg.LLMTemperature)))
	}
	typed.llmTemperature = temperature

	maxTokens, err := strconv.ParseInt(cfg.LLMMaxTokens, 10, 64)
	if err != nil || maxTokens < 1 {
		errs = append(errs, errors.New("llm max tokens must be a positive integer",
			slog.String("value", cfg.LLMMaxTokens)))
	}
	typed.llmMaxTokens = maxTokens

	ttl, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil || ttl < 0 {
		errs = append(errs, errors.New("cache ttl must be a non-negative duration",
			slog.String("value", cfg.CacheTTL)))
	}
	typed.cacheTTL = ttl

	refresh, err := strconv.ParseBool(cfg.RefreshOnStart)
	if err != nil {
		errs = append(errs, errors.New("refresh on start must be a boolean",
			slog.String("value", cfg.RefreshOnStart)))
	}
	typed.refreshOnStart = refresh

	if len(errs) > 0 {
		return typedConfig{}, errors.Join(errs...)
	}
	return typed, nil
}

// refreshCatalog reruns the offline ingest and index build, the same path
// cmd/indexer takes, before the server loads the artifacts.
func refreshCatalog(ctx context.Context, cfg config, typed typedConfig, repository *catalog.Repository, embedder catalog.Embedder, logger *slog.Logger) error {
	exercises, err := catalog.ReadCSV(cfg.CatalogCSV)
	if err != nil {
		return errors.Wrap(err, "read catalog csv")
	}
	if err = repository.UpsertExercises(ctx, exercises); err != nil {
		return errors.Wrap(err, "upsert exercises")
	}
	vectors, err := catalog.BuildVectors(ctx, embedder, exercises, typed.embeddingBatchSize)
	if err != nil {
		return errors.Wrap(err, "build vectors")
	}
	sidecar := catalog.Sidecar{EmbeddingModel: cfg.EmbeddingModel, Exercises: exercises}
	return catalog.WriteArtifacts(cfg.RagIndexPath, cfg.RagMetadataPath, vectors, sidecar, logger)
}

func main() {
	// A missing .env file is fine; the environment may be fully populated.
	_ = godotenv.Load()

	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
