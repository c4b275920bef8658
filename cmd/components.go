package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/rag"
	"github.com/miminchandrank/Csv-data-analyst/src/infrastructure/integrations/ollama"
	"github.com/miminchandrank/Csv-data-analyst/src/log"
	"github.com/miminchandrank/Csv-data-analyst/src/storage/minioctrl"
	"github.com/miminchandrank/Csv-data-analyst/src/storage/weaviate"
)

// openDatabase connects to the configured chat history database; nil when none is configured
func openDatabase() (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver := viper.GetString("database.driver"); driver {
	case "":
		return nil, nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			viper.GetString("postgres.host"),
			viper.GetString("postgres.user"),
			viper.GetString("postgres.password"),
			viper.GetString("postgres.db"),
			viper.GetString("postgres.port"))
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(viper.GetString("sqlite.path"))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error(err, "Failed to get underlying *sql.DB")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error(err, "Error closing database connection")
	}
}

func newOllamaClient() (*ollama.Client, error) {
	timeout := viper.GetDuration("ollama.timeout")
	return ollama.NewClient(viper.GetString("ollama.url"), &http.Client{Timeout: timeout})
}

// modelsAvailable checks that every configured model has been pulled
func modelsAvailable(oc *ollama.Client, models ...string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pulled, err := oc.Models(ctx)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(pulled))
		for _, name := range pulled {
			have[name] = true
		}
		for _, model := range models {
			if model == "" {
				continue
			}
			if !have[model] && !have[model+":latest"] {
				return fmt.Errorf("model %q is not available in ollama", model)
			}
		}
		return nil
	}
}

// loadOptions builds the CSV loader options from config
func loadOptions(parseDates bool) ([]dataset.Option, error) {
	var opts []dataset.Option
	if sep := viper.GetString("data.separator"); sep != "" {
		if sep == `\t` {
			sep = "\t"
		}
		r, size := utf8.DecodeRuneInString(sep)
		if size != len(sep) {
			return nil, fmt.Errorf("data.separator must be a single character, got %q", sep)
		}
		opts = append(opts, dataset.WithSeparator(r))
	}
	if parseDates {
		opts = append(opts, dataset.WithParseDates())
	}
	return opts, nil
}

// pinger is implemented by components that can report their own health
type pinger interface {
	Ping(ctx context.Context) error
}

// newVectorStore returns the configured store and, for remote stores, its health check
func newVectorStore() (rag.VectorStore, pinger, error) {
	switch kind := viper.GetString("rag.vector_store"); kind {
	case "", "memory":
		return rag.NewMemoryStore(), nil, nil
	case "weaviate":
		scheme, host := splitURL(viper.GetString("weaviate.url"))
		wc := weaviateClient.New(weaviateClient.Config{
			Host:   host,
			Scheme: scheme,
		})
		store := weaviate.NewStore(weaviate.NewSDK(wc))
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported vector store %q", kind)
	}
}

// splitURL accepts both "host:port" and "scheme://host:port"
func splitURL(raw string) (scheme, host string) {
	if !strings.Contains(raw, "://") {
		return "http", raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "http", raw
	}
	return u.Scheme, u.Host
}

func newSystemFactory(client *ollama.Client, store rag.VectorStore) func() *rag.System {
	embedder := ollama.NewEmbedder(client, viper.GetString("ollama.embedding_model"))
	llm := ollama.NewLLM(client, viper.GetString("ollama.model"), ollama.DefaultTemperature, ollama.DefaultMaxTokens)
	topK := viper.GetInt("rag.top_k")
	chunkSize := viper.GetInt("rag.chunk_size")
	chunkOverlap := viper.GetInt("rag.chunk_overlap")

	return func() *rag.System {
		return rag.NewSystem(embedder, llm, store,
			rag.WithTopK(topK),
			rag.WithChunking(chunkSize, chunkOverlap),
		)
	}
}

func newMinioService() (*minioctrl.MinioService, error) {
	svc, err := minioctrl.NewMinioService(
		viper.GetString("minio.endpoint"),
		viper.GetString("minio.access_key"),
		viper.GetString("minio.secret_key"),
		viper.GetBool("minio.use_ssl"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio service: %w", err)
	}
	return svc, nil
}

// newArchive returns nil when object storage is disabled
func newArchive(ctx context.Context) (*minioctrl.Archive, error) {
	if !viper.GetBool("minio.enabled") {
		return nil, nil
	}
	svc, err := newMinioService()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return minioctrl.NewArchive(ctx, svc, viper.GetString("minio.bucket"))
}
