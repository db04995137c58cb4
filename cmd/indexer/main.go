// Command indexer ingests the exercise catalog CSV, embeds every exercise,
// and writes the vector index and metadata sidecar the api server loads.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/myrjola/routinegen/internal/catalog"
	"github.com/myrjola/routinegen/internal/envstruct"
	"github.com/myrjola/routinegen/internal/errors"
	"github.com/myrjola/routinegen/internal/logging"
	"github.com/myrjola/routinegen/internal/sqlite"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Exit codes so batch schedulers can distinguish retryable failures from
// broken input.
const (
	exitOK              = 0
	exitFailure         = 1
	exitInvalidInput    = 2
	exitServiceFailure  = 3
	exitMalformedOutput = 4
)

type config struct {
	// OpenAIAPIKey authenticates the embedding calls.
	OpenAIAPIKey string `env:"ROUTINEGEN_OPENAI_API_KEY"`
	// SqliteURL is the URL to the SQLite database receiving the catalog rows.
	SqliteURL string `env:"ROUTINEGEN_SQLITE_URL" envDefault:"./routinegen.sqlite3"`
	// EmbeddingModel is recorded in the sidecar so the server can detect
	// mismatched artifacts.
	EmbeddingModel string `env:"ROUTINEGEN_EMBEDDING_MODEL" envDefault:"text-embedding-3-large"`
	// EmbeddingBatchSize bounds how many texts one embedding call carries (1-256).
	EmbeddingBatchSize string `env:"ROUTINEGEN_EMBEDDING_BATCH_SIZE" envDefault:"64"`
	// RagIndexPath is where the binary vector index is written.
	RagIndexPath string `env:"ROUTINEGEN_RAG_INDEX_PATH" envDefault:"data/catalog.vec"`
	// RagMetadataPath is where the JSON metadata sidecar is written.
	RagMetadataPath string `env:"ROUTINEGEN_RAG_METADATA_PATH" envDefault:"data/catalog.meta.json"`
	// CatalogCSV is the CSV export to ingest.
	CatalogCSV string `env:"ROUTINEGEN_CATALOG_CSV" envDefault:"data/catalog.csv"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	batchSize, err := strconv.Atoi(cfg.EmbeddingBatchSize)
	if err != nil || batchSize < 1 || batchSize > 256 {
		return errors.WithKind(errors.New("embedding batch size must be an integer in 1-256",
			slog.String("value", cfg.EmbeddingBatchSize)), errors.KindInputInvalid)
	}

	exercises, err := catalog.ReadCSV(cfg.CatalogCSV)
	if err != nil {
		return errors.Wrap(err, "read catalog csv", slog.String("path", cfg.CatalogCSV))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "read catalog", slog.Int("exercises", len(exercises)))

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	repository := catalog.NewRepository(db, logger)
	if err = repository.UpsertExercises(ctx, exercises); err != nil {
		return errors.Wrap(err, "upsert exercises")
	}

	openaiClient := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	embedder := catalog.NewOpenAIEmbedder(openaiClient, cfg.EmbeddingModel, logger)
	vectors, err := catalog.BuildVectors(ctx, embedder, exercises, batchSize)
	if err != nil {
		return errors.Wrap(err, "build vectors")
	}

	sidecar := catalog.Sidecar{EmbeddingModel: cfg.EmbeddingModel, Exercises: exercises}
	if err = catalog.WriteArtifacts(cfg.RagIndexPath, cfg.RagMetadataPath, vectors, sidecar, logger); err != nil {
		return errors.Wrap(err, "write artifacts")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "index built",
		slog.Int("rows", len(exercises)),
		slog.String("index", cfg.RagIndexPath),
		slog.String("metadata", cfg.RagMetadataPath))
	return nil
}

func exitCode(err error) int {
	switch errors.KindOf(err) {
	case errors.KindInputInvalid:
		return exitInvalidInput
	case errors.KindEmbeddingUnavailable, errors.KindChatUnavailable:
		return exitServiceFailure
	case errors.KindResponseMalformed:
		return exitMalformedOutput
	default:
		return exitFailure
	}
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
		logger.LogAttrs(ctx, slog.LevelError, "indexer failed", errors.SlogError(err))
		os.Exit(exitCode(err))
	}
	os.Exit(exitOK)
}
