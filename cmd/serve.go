package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	v1 "github.com/miminchandrank/Csv-data-analyst/handler/http/v1"
	"github.com/miminchandrank/Csv-data-analyst/src/core/chat"
	"github.com/miminchandrank/Csv-data-analyst/src/core/system"
	"github.com/miminchandrank/Csv-data-analyst/src/fsutil"
	"github.com/miminchandrank/Csv-data-analyst/src/infrastructure/events"
	"github.com/miminchandrank/Csv-data-analyst/src/infrastructure/metrics"
	"github.com/miminchandrank/Csv-data-analyst/src/log"
	"github.com/miminchandrank/Csv-data-analyst/src/storage/postgres/chatctrl"
)

const sessionCleanupInterval = 10 * time.Minute

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the CSV analyst HTTP server",
	Long:  `The serve command starts an HTTP server that lets clients upload CSV files and ask questions about them`,
	RunE:  runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	health := system.NewService()

	// Chat history database, optional
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	var history *chatctrl.ChatService
	if db != nil {
		history, err = chatctrl.NewChatService(db)
		if err != nil {
			return fmt.Errorf("failed to initialize chat history: %w", err)
		}
		if err := history.Migrate(ctx); err != nil {
			return err
		}
		health.Register("database", history.Ping)
	}

	// Initialize Ollama client
	oc, err := newOllamaClient()
	if err != nil {
		return err
	}
	health.Register("ollama", oc.Heartbeat)
	health.Register("ollama_models", modelsAvailable(oc,
		viper.GetString("ollama.model"),
		viper.GetString("ollama.embedding_model"),
	))

	store, storePinger, err := newVectorStore()
	if err != nil {
		return err
	}
	if storePinger != nil {
		health.Register("vector_store", storePinger.Ping)
	}

	archive, err := newArchive(ctx)
	if err != nil {
		return err
	}

	// Session events: AMQP when configured, in process when there is a local
	// history to record them, otherwise not published at all
	wmLogger := events.NewLogger(log.WithName("events"))
	var router *message.Router
	var publisher *events.Publisher
	if amqpURL := viper.GetString("amqp.url"); amqpURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(amqpURL, wmLogger)
		if err != nil {
			return err
		}
		publisher = events.NewPublisher(amqpPublisher)
	} else if history != nil {
		pubSub := events.NewInProcess(wmLogger)
		publisher = events.NewPublisher(pubSub)
		router, err = events.NewRouter(pubSub, events.NewRecorder(history, wmLogger), wmLogger)
		if err != nil {
			return err
		}
		go func() {
			if err := router.Run(ctx); err != nil {
				log.Error(err, "Event router stopped")
			}
		}()
		<-router.Running()
	}

	opts := []chat.Option{
		chat.WithTempDir(viper.GetString("data.root")),
		chat.WithNodeID(viper.GetInt64("server.node_id")),
	}
	loadOpts, err := loadOptions(viper.GetBool("data.parse_dates"))
	if err != nil {
		return err
	}
	if len(loadOpts) > 0 {
		opts = append(opts, chat.WithLoadOptions(loadOpts...))
	}
	if publisher != nil {
		defer publisher.Close()
		opts = append(opts, chat.WithPublisher(publisher))
	}
	if archive != nil {
		opts = append(opts, chat.WithArchive(archive))
	}

	sessions := chat.NewSessionStore(viper.GetDuration("session.ttl"), sessionCleanupInterval)
	chatService, err := chat.NewService(sessions, fsutil.NewLocalFileStore(), newSystemFactory(oc, store), opts...)
	if err != nil {
		return fmt.Errorf("failed to create chat service: %w", err)
	}

	recorder := metrics.NewRecorder()
	recorder.SessionGauge(sessions.Len)

	// Initialize HTTP handler with individual services
	handlerOpts := []v1.Option{
		v1.WithObserver(recorder),
		v1.WithMaxUploadBytes(viper.GetInt64("server.max_upload_mb") << 20),
	}
	if history != nil {
		handlerOpts = append(handlerOpts, v1.WithHistory(history))
	}
	handler := v1.NewHandler(chatService, health, handlerOpts...)

	// Setup gin router
	r := gin.New()
	r.Use(gin.Recovery(), recorder.Middleware())
	r.GET("/metrics", gin.WrapH(recorder.Handler()))

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}
	log.Info("Shutting down server...")

	timeout := viper.GetDuration("server.shutdown_timeout")
	if timeout <= 0 {
		log.Info("Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	if router != nil {
		if err := router.Close(); err != nil {
			log.Error(err, "Error closing event router")
		}
	}

	log.Info("Server exited")
	return nil
}
