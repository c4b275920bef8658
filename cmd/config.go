package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	viper.BindEnv("server.max_upload_mb", "SERVER_MAX_UPLOAD_MB")
	viper.BindEnv("server.node_id", "SERVER_NODE_ID")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")
	viper.SetDefault("server.max_upload_mb", 200)
	viper.SetDefault("server.node_id", 1)

	// Logging
	viper.BindEnv("log.level", "LOG_LEVEL")
	viper.BindEnv("log.development", "LOG_DEVELOPMENT")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)

	// Ollama
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("ollama.model", "OLLAMA_MODEL")
	viper.BindEnv("ollama.embedding_model", "OLLAMA_EMBEDDING_MODEL")
	viper.BindEnv("ollama.timeout", "OLLAMA_TIMEOUT")
	viper.SetDefault("ollama.url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "llama3")
	viper.SetDefault("ollama.embedding_model", "llama3")
	viper.SetDefault("ollama.timeout", "120s")

	// Retrieval
	viper.BindEnv("rag.vector_store", "RAG_VECTOR_STORE")
	viper.BindEnv("rag.top_k", "RAG_TOP_K")
	viper.BindEnv("rag.chunk_size", "RAG_CHUNK_SIZE")
	viper.BindEnv("rag.chunk_overlap", "RAG_CHUNK_OVERLAP")
	viper.SetDefault("rag.vector_store", "memory")
	viper.SetDefault("rag.top_k", 4)
	viper.SetDefault("rag.chunk_size", 1000)
	viper.SetDefault("rag.chunk_overlap", 100)

	viper.BindEnv("weaviate.url", "WEAVIATE_URL")
	viper.SetDefault("weaviate.url", "localhost:8081")

	// Sessions and staging
	viper.BindEnv("session.ttl", "SESSION_TTL")
	viper.BindEnv("data.root", "DATA_ROOT")
	viper.BindEnv("data.parse_dates", "DATA_PARSE_DATES")
	viper.BindEnv("data.separator", "DATA_SEPARATOR")
	viper.SetDefault("session.ttl", "2h")
	viper.SetDefault("data.root", "")
	viper.SetDefault("data.parse_dates", false)
	viper.SetDefault("data.separator", "")

	// Map environment variables to Viper keys for MinIO
	viper.BindEnv("minio.enabled", "MINIO_ENABLED")
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.use_ssl", "MINIO_USE_SSL")
	viper.BindEnv("minio.bucket", "MINIO_BUCKET")
	viper.SetDefault("minio.enabled", false)
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.use_ssl", false)
	viper.SetDefault("minio.bucket", "csv-datasets")

	// Database: postgres, sqlite or empty for none
	viper.BindEnv("database.driver", "DATABASE_DRIVER")
	viper.SetDefault("database.driver", "")

	// Map environment variables to Viper keys for PostgreSQL
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.db", "POSTGRES_DB")
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.db", "csvanalyst")

	viper.BindEnv("sqlite.path", "SQLITE_PATH")
	viper.SetDefault("sqlite.path", "csvanalyst.db")

	// Map environment variables to Viper keys for RabbitMQ; empty keeps events in process
	viper.BindEnv("amqp.url", "AMQP_URL")
	viper.SetDefault("amqp.url", "")
}
